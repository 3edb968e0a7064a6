package mode

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lcalzada-xor/wdeck/internal/core/domain"
)

type transitionKey struct {
	mode domain.ModeKind
	ev   domain.NavEvent
}

type action func(c *Controller, ctx context.Context) error

// transitions is the complete navigation table. A (mode, event) pair that is
// not listed is a no-op.
var transitions = map[transitionKey]action{
	{domain.ModeMenu, domain.NavUp}:     menuStep(-1),
	{domain.ModeMenu, domain.NavDown}:   menuStep(+1),
	{domain.ModeMenu, domain.NavRight}:  (*Controller).activateMenu,
	{domain.ModeMenu, domain.NavSelect}: (*Controller).activateMenu,

	{domain.ModeAttackMenu, domain.NavUp}:     attackStep(-1),
	{domain.ModeAttackMenu, domain.NavDown}:   attackStep(+1),
	{domain.ModeAttackMenu, domain.NavRight}:  (*Controller).activateAttack,
	{domain.ModeAttackMenu, domain.NavSelect}: (*Controller).activateAttack,
	{domain.ModeAttackMenu, domain.NavLeft}:   (*Controller).backToMenu,

	{domain.ModeScanning, domain.NavLeft}: (*Controller).abortScan,

	{domain.ModeScanResults, domain.NavUp}:   scrollStep(-1),
	{domain.ModeScanResults, domain.NavDown}: scrollStep(+1),
	{domain.ModeScanResults, domain.NavLeft}: (*Controller).backToMenu,

	{domain.ModeSelectingNetwork, domain.NavUp}:     scrollStep(-1),
	{domain.ModeSelectingNetwork, domain.NavDown}:   scrollStep(+1),
	{domain.ModeSelectingNetwork, domain.NavRight}:  (*Controller).commitSelection,
	{domain.ModeSelectingNetwork, domain.NavSelect}: (*Controller).commitSelection,
	{domain.ModeSelectingNetwork, domain.NavLeft}:   (*Controller).backToMenu,

	{domain.ModeShowingInfo, domain.NavUp}:   infoStep(-1),
	{domain.ModeShowingInfo, domain.NavDown}: infoStep(+1),
	{domain.ModeShowingInfo, domain.NavLeft}: (*Controller).backToMenu,

	{domain.ModePacketCapture, domain.NavUp}:   logStep(-1),
	{domain.ModePacketCapture, domain.NavDown}: logStep(+1),
	{domain.ModePacketCapture, domain.NavLeft}: (*Controller).leaveAttack,

	{domain.ModeRogueAP, domain.NavUp}:     logStep(-1),
	{domain.ModeRogueAP, domain.NavDown}:   logStep(+1),
	{domain.ModeRogueAP, domain.NavSelect}: (*Controller).togglePage,
	{domain.ModeRogueAP, domain.NavLeft}:   (*Controller).leaveAttack,

	{domain.ModeHoneypotAP, domain.NavUp}:     logStep(-1),
	{domain.ModeHoneypotAP, domain.NavDown}:   logStep(+1),
	{domain.ModeHoneypotAP, domain.NavSelect}: (*Controller).togglePage,
	{domain.ModeHoneypotAP, domain.NavLeft}:   (*Controller).leaveAttack,
}

// wrap moves i by delta modulo m. It returns 0 when m is not positive.
func wrap(i, delta, m int) int {
	if m <= 0 {
		return 0
	}
	return ((i+delta)%m + m) % m
}

func menuStep(delta int) action {
	return func(c *Controller, _ context.Context) error {
		c.menuIndex = wrap(c.menuIndex, delta, len(domain.MainMenuItems))
		return nil
	}
}

func attackStep(delta int) action {
	return func(c *Controller, _ context.Context) error {
		c.attackIndex = wrap(c.attackIndex, delta, len(domain.AttackMenuItems))
		return nil
	}
}

func scrollStep(delta int) action {
	return func(c *Controller, _ context.Context) error {
		if n := c.networks.Len(); n > 0 {
			c.scroll = wrap(c.scroll, delta, n)
		}
		return nil
	}
}

func infoStep(delta int) action {
	return func(c *Controller, _ context.Context) error {
		c.infoPage = wrap(c.infoPage, delta, domain.InfoPages)
		return nil
	}
}

// logStep scrolls the log view. The first press starts from the newest line.
func logStep(delta int) action {
	return func(c *Controller, _ context.Context) error {
		n := c.activeLogLen()
		if n == 0 {
			return nil
		}
		if !c.logBrowsing {
			c.logIndex = n - 1
			c.logBrowsing = true
		}
		c.logIndex = wrap(c.logIndex, delta, n)
		return nil
	}
}

func (c *Controller) activateMenu(ctx context.Context) error {
	switch c.menuIndex {
	case 0:
		return c.startScan(ctx)
	case 1:
		return c.enterSelect(ctx)
	case 2:
		c.attackIndex = 0
		c.setMode(ctx, domain.Mode{Kind: domain.ModeAttackMenu})
		return nil
	case 3:
		return c.enterInfo(ctx)
	}
	return nil
}

func (c *Controller) activateAttack(ctx context.Context) error {
	switch c.attackIndex {
	case 0:
		return c.enterPacketCapture(ctx)
	case 1:
		return c.enterAccessPoint(ctx, domain.ModeRogueAP)
	case 2:
		return c.enterAccessPoint(ctx, domain.ModeHoneypotAP)
	}
	return nil
}

// backToMenu leaves a non-radio screen and resets its scroll and paging.
func (c *Controller) backToMenu(ctx context.Context) error {
	c.scroll = 0
	c.infoPage = 0
	c.setMode(ctx, domain.Mode{Kind: domain.ModeMenu})
	return nil
}

func (c *Controller) enterSelect(ctx context.Context) error {
	if c.networks.Len() == 0 {
		return c.fail(ctx, domain.ErrNoNetworksAvailable, "No networks!", "Scan first")
	}
	c.scroll = 0
	if c.selected != domain.NoSelection {
		c.scroll = c.selected
	}
	c.setMode(ctx, domain.Mode{Kind: domain.ModeSelectingNetwork})
	return nil
}

func (c *Controller) commitSelection(ctx context.Context) error {
	rec, err := c.networks.At(c.scroll)
	if err != nil {
		return c.fail(ctx, domain.ErrNoNetworksAvailable, "No networks!", "Scan first")
	}
	c.selected = c.scroll
	slog.Info("Network selected", "ssid", rec.SSID, "bssid", rec.BSSIDString(), "channel", rec.Channel)
	c.record(ctx, domain.ActionSelect, rec.BSSIDString(), rec.SSID)
	c.showNotice("Selected:", truncate(rec.SSID, 16))
	c.scroll = 0
	c.setMode(ctx, domain.Mode{Kind: domain.ModeMenu})
	return nil
}

func (c *Controller) enterInfo(ctx context.Context) error {
	if c.networks.Len() == 0 {
		return c.fail(ctx, domain.ErrNoNetworksAvailable, "No networks!", "Scan first")
	}
	if c.selected == domain.NoSelection {
		return c.fail(ctx, domain.ErrNoNetworkSelected, "No network", "selected!")
	}
	c.infoPage = 0
	c.setMode(ctx, domain.Mode{Kind: domain.ModeShowingInfo})
	return nil
}

func (c *Controller) togglePage(_ context.Context) error {
	c.mode.Page = (c.mode.Page + 1) % domain.AccessPointPages
	c.logIndex = 0
	c.logBrowsing = false
	return nil
}

// activeLogLen is the length of the log the current view browses.
func (c *Controller) activeLogLen() int {
	switch c.mode.Kind {
	case domain.ModePacketCapture:
		return c.session.LogLen()
	case domain.ModeRogueAP:
		if c.mode.Page == 1 {
			return c.credentials.Len()
		}
	case domain.ModeHoneypotAP:
		if c.mode.Page == 1 {
			return c.activity.Len()
		}
	}
	return 0
}

// viewLogIndex is the log line on screen: the user's position while
// browsing, otherwise the newest line.
func (c *Controller) viewLogIndex() int {
	n := c.activeLogLen()
	if n == 0 {
		return 0
	}
	if !c.logBrowsing {
		return n - 1
	}
	return c.logIndex
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

func setupFailed(op string, err error) error {
	return fmt.Errorf("%w: %w", domain.ErrRadioSetupFailed, &domain.RadioError{Op: op, Err: err})
}
