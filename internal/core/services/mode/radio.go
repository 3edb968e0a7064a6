package mode

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lcalzada-xor/wdeck/internal/core/domain"
	"github.com/lcalzada-xor/wdeck/internal/core/ports"
)

// startScan runs the station scan off the control loop. The result is picked
// up by Tick.
func (c *Controller) startScan(ctx context.Context) error {
	c.cancelScan()
	c.scanGen++
	gen := c.scanGen

	scanCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c.scanCancel = cancel
	c.scroll = 0
	c.setMode(ctx, domain.Mode{Kind: domain.ModeScanning})

	c.scanWG.Add(1)
	go func() {
		defer c.scanWG.Done()
		records, err := c.radio.ScanNetworks(scanCtx)
		select {
		case c.scanDone <- scanResult{gen: gen, records: records, err: err}:
		case <-scanCtx.Done():
		}
	}()
	return nil
}

func (c *Controller) abortScan(ctx context.Context) error {
	c.cancelScan()
	return c.backToMenu(ctx)
}

// cancelScan stops a running scan and returns once the scan goroutine has
// exited, so the radio is free before the next mode configures it.
func (c *Controller) cancelScan() {
	if c.scanCancel == nil {
		return
	}
	c.scanCancel()
	c.scanCancel = nil
	c.scanWG.Wait()

	// A result that raced the cancellation is stale.
	select {
	case <-c.scanDone:
	default:
	}
}

// collectScan replaces the network list with a finished scan. Results of
// aborted scans are dropped.
func (c *Controller) collectScan(ctx context.Context) {
	var res scanResult
	select {
	case res = <-c.scanDone:
	default:
		return
	}
	if res.gen != c.scanGen || c.mode.Kind != domain.ModeScanning {
		return
	}
	c.cancelScan()

	if res.err != nil {
		c.setMode(ctx, domain.Mode{Kind: domain.ModeMenu})
		_ = c.fail(ctx, setupFailed("scan", res.err), "Scan failed!")
		return
	}

	c.networks = domain.NewNetworkList(res.records)
	c.selected = domain.NoSelection
	c.scroll = 0
	slog.Info("Scan completed", "networks", c.networks.Len(), "reported", len(res.records))
	c.record(ctx, domain.ActionScan, "", fmt.Sprintf("%d networks", c.networks.Len()))
	c.setMode(ctx, domain.Mode{Kind: domain.ModeScanResults})
}

// enterPacketCapture locks the radio to the selected network's channel and
// starts a fresh capture session.
func (c *Controller) enterPacketCapture(ctx context.Context) error {
	target, err := c.networks.At(c.selected)
	if err != nil {
		return c.fail(ctx, domain.ErrNoNetworkSelected, "No network", "selected!")
	}

	c.radio.SetPromiscuousCallback(nil)
	c.radio.SetPromiscuousCallback(c.session.HandleFrame)
	if err := c.radio.SetPromiscuous(true); err != nil {
		c.abandonCapture()
		return c.fail(ctx, setupFailed("promiscuous", err), "Sniffer Setup", "Failed!")
	}
	if err := c.radio.SetChannel(target.Channel); err != nil {
		c.abandonCapture()
		return c.fail(ctx, setupFailed("set-channel", err), "Sniffer Setup", "Failed!")
	}

	c.activation = c.session.Begin(target)
	c.logIndex = 0
	c.logBrowsing = false
	slog.Info("Packet capture started", "ssid", target.SSID, "bssid", target.BSSIDString(), "channel", target.Channel)
	c.setMode(ctx, domain.Mode{Kind: domain.ModePacketCapture})
	return nil
}

func (c *Controller) abandonCapture() {
	if err := c.radio.SetPromiscuous(false); err != nil {
		slog.Warn("Failed to disable promiscuous mode", "error", err)
	}
	c.radio.SetPromiscuousCallback(nil)
	c.idle()
}

// enterAccessPoint brings up the access point for kind and its portal.
func (c *Controller) enterAccessPoint(ctx context.Context, kind domain.ModeKind) error {
	names := c.names()
	name, portal := names.Rogue, c.rogue
	if kind == domain.ModeHoneypotAP {
		name, portal = names.Honeypot, c.honeypot
	}

	if err := c.radio.SetIdle(); err != nil {
		return c.fail(ctx, setupFailed("set-idle", err), "AP Setup Failed!")
	}
	if err := c.radio.StartAccessPoint(name); err != nil {
		c.abandonAccessPoint(ctx, nil)
		return c.fail(ctx, setupFailed("start-ap", err), "AP Setup Failed!")
	}

	c.activation = uuid.New().String()
	c.apName = name
	c.stations = 0
	c.lastStations = c.now()
	c.logIndex = 0
	c.logBrowsing = false
	if kind == domain.ModeHoneypotAP {
		c.activity.Clear()
		if c.actFeed != nil {
			c.actFeed.Discard()
		}
	} else {
		c.credentials.Clear()
		if c.credFeed != nil {
			c.credFeed.Discard()
		}
	}

	if portal != nil {
		if err := portal.Start(ctx); err != nil {
			c.abandonAccessPoint(ctx, portal)
			c.activation = ""
			return c.fail(ctx, setupFailed("start-portal", err), "AP Setup Failed!")
		}
	}

	slog.Info("Access point started", "mode", kind.String(), "ssid", name)
	c.setMode(ctx, domain.Mode{Kind: kind})
	return nil
}

func (c *Controller) abandonAccessPoint(ctx context.Context, portal ports.Portal) {
	if portal != nil {
		if err := portal.Stop(ctx); err != nil {
			slog.Warn("Failed to stop portal", "error", err)
		}
	}
	if err := c.radio.StopAccessPoint(); err != nil {
		slog.Warn("Failed to stop access point", "error", err)
	}
	c.idle()
}

// leaveAttack tears the running attack down and returns to the attack menu.
func (c *Controller) leaveAttack(ctx context.Context) error {
	c.teardown(ctx)
	c.setMode(ctx, domain.Mode{Kind: domain.ModeAttackMenu})
	c.activation = ""
	return nil
}

// teardown stops the producer of the current attack mode and waits for it
// before the radio is returned to idle. Errors are logged and do not stop
// the teardown.
func (c *Controller) teardown(ctx context.Context) {
	switch c.mode.Kind {
	case domain.ModePacketCapture:
		if err := c.radio.SetPromiscuous(false); err != nil {
			slog.Warn("Failed to disable promiscuous mode", "error", err)
		}
		c.radio.SetPromiscuousCallback(nil)
		c.session.Stop()
		c.idle()
		slog.Info("Packet capture stopped", "frames", c.session.Counters().Total)

	case domain.ModeRogueAP, domain.ModeHoneypotAP:
		portal := c.rogue
		if c.mode.Kind == domain.ModeHoneypotAP {
			portal = c.honeypot
		}
		c.abandonAccessPoint(ctx, portal)
		// Anything published before the handlers stopped is kept for display.
		c.drainPortals(ctx)
		slog.Info("Access point stopped", "mode", c.mode.Kind.String())
	}
	c.logIndex = 0
	c.logBrowsing = false
}

func (c *Controller) idle() {
	if err := c.radio.SetIdle(); err != nil {
		slog.Warn("Failed to return radio to idle", "error", err)
	}
}
