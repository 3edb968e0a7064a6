package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/lcalzada-xor/wdeck/internal/adapters/display"
	"github.com/lcalzada-xor/wdeck/internal/adapters/input"
	"github.com/lcalzada-xor/wdeck/internal/adapters/portal"
	"github.com/lcalzada-xor/wdeck/internal/adapters/radio"
	"github.com/lcalzada-xor/wdeck/internal/adapters/storage"
	"github.com/lcalzada-xor/wdeck/internal/adapters/web"
	"github.com/lcalzada-xor/wdeck/internal/config"
	"github.com/lcalzada-xor/wdeck/internal/core/domain"
	"github.com/lcalzada-xor/wdeck/internal/core/logbuf"
	"github.com/lcalzada-xor/wdeck/internal/core/ports"
	"github.com/lcalzada-xor/wdeck/internal/core/services/capture"
	"github.com/lcalzada-xor/wdeck/internal/core/services/journal"
	dispatch "github.com/lcalzada-xor/wdeck/internal/core/services/input"
	"github.com/lcalzada-xor/wdeck/internal/core/services/mode"
	"github.com/lcalzada-xor/wdeck/internal/telemetry"
)

// feedSize bounds the hand-off queues between producer goroutines and the
// control loop. It comfortably exceeds what arrives within one refresh.
const feedSize = 64

// Application holds the core components of the application.
// It acts as the Facade for the entire system, orchestrating services and infrastructure.
type Application struct {
	Config       *config.Config
	Store        *storage.SQLiteAdapter
	Journal      *journal.Service
	Radio        ports.Radio
	Session      *capture.Session
	Controller   *mode.Controller
	Dispatcher   *dispatch.Dispatcher
	Input        ports.InputSource
	Displays     []ports.Display
	StatusServer *web.Server
	Watcher      *config.Watcher

	journalCancel context.CancelFunc
}

// New creates a new Application instance and bootstraps its components.
// input may be nil, in which case the keyboard is opened when configured.
func New(cfg *config.Config, source ports.InputSource) (*Application, error) {
	app := &Application{
		Config: cfg,
		Input:  source,
	}

	if err := app.bootstrap(); err != nil {
		return nil, fmt.Errorf("application bootstrap failed: %w", err)
	}

	return app, nil
}

// bootstrap orchestrates the initialization sequence.
func (app *Application) bootstrap() error {
	// 1. Foundation & Infrastructure
	telemetry.InitMetrics()

	if err := app.initStorage(); err != nil {
		return err
	}

	// 2. Radio
	app.initRadio()

	// 3. Domain Services
	app.initController()

	// 4. Input, displays and servers
	if err := app.initInput(); err != nil {
		return err
	}
	app.initDisplays()
	app.initServers()

	return nil
}

func (app *Application) initStorage() error {
	dsn := app.Config.JournalDSN
	if dsn == "" {
		dsn = storage.MemoryDSN
	}
	store, err := storage.NewSQLiteAdapter(dsn)
	if err != nil {
		return fmt.Errorf("failed to init journal storage: %w", err)
	}
	app.Store = store
	app.Journal = journal.NewService(store, 1024)
	return nil
}

func (app *Application) initRadio() {
	if app.Config.Radio == config.RadioLinux {
		log.Println("Stopping conflicting network services...")
		if err := radio.KillConflictingProcesses(); err != nil {
			log.Printf("Warning: Failed to stop conflicting processes: %v", err)
		}
		app.Radio = radio.NewLinux(radio.LinuxOptions{
			Interface:   app.Config.Interface,
			HostapdPath: app.Config.HostapdPath,
			APAddr:      app.Config.APAddr,
		})
		return
	}
	log.Println("Using simulated radio")
	app.Radio = radio.NewSimulated(radio.SimOptions{})
}

func (app *Application) initController() {
	cfg := app.Config

	creds := logbuf.NewFeed[domain.CredentialRecord](feedSize)
	activity := logbuf.NewFeed[string](feedSize)

	rogue := portal.NewCaptive(portal.CaptiveOptions{
		Addr:    cfg.PortalAddr,
		DNSAddr: cfg.DNSAddr,
		APAddr:  net.ParseIP(cfg.APAddr),
	}, creds)
	honeypot := portal.NewHoneypot(cfg.PortalAddr, activity)

	app.Session = capture.NewSession(capture.Options{
		LogInterval: cfg.LogInterval,
		LogCapacity: cfg.PacketLogCapacity,
	})

	app.Watcher = config.NewWatcher(cfg.ConfigFile, cfg.Profile())

	app.Controller = mode.NewController(mode.Options{
		Radio:          app.Radio,
		Session:        app.Session,
		RoguePortal:    rogue,
		HoneypotPortal: honeypot,
		Credentials:    creds,
		Activity:       activity,
		Journal:        app.Journal,
		Names: func() mode.APNames {
			p := app.Watcher.Profile()
			return mode.APNames{Rogue: p.RogueSSID, Honeypot: p.HoneypotSSID}
		},
		MessageDelay:       cfg.MessageDelay,
		StationInterval:    cfg.StationInterval,
		CredentialCapacity: cfg.CredentialCapacity,
		ActivityCapacity:   cfg.ActivityCapacity,
	})

	app.Dispatcher = dispatch.NewDispatcher(dispatch.Options{Debounce: cfg.Debounce})
}

func (app *Application) initInput() error {
	if app.Input != nil {
		return nil
	}
	if !app.Config.Keyboard {
		// Headless: navigation arrives through the status server's /api/nav.
		app.Input = input.NewChannel(8)
		return nil
	}
	kb, err := input.OpenKeyboard()
	if err != nil {
		return err
	}
	app.Input = kb
	return nil
}

func (app *Application) initDisplays() {
	if app.Config.Terminal {
		app.Displays = append(app.Displays, display.NewTerminal(os.Stdout))
	}
}

func (app *Application) initServers() {
	if app.Config.StatusAddr == "" {
		return
	}
	app.StatusServer = web.NewServer(app.Config.StatusAddr, app.Controller, app.Journal)
	if ch, ok := app.Input.(*input.Channel); ok {
		app.StatusServer.Input = ch
	}
	app.Displays = append(app.Displays, app.StatusServer.Hub)
}

// Run starts the application components and manages their execution lifecycle.
func (app *Application) Run(ctx context.Context) error {
	slog.Info("Starting wdeck components...")

	// The journal outlives ctx so teardown transitions are still recorded.
	journalCtx, cancel := context.WithCancel(context.Background())
	app.journalCancel = cancel
	app.Journal.Start(journalCtx)

	errChan := make(chan error, 2)

	if app.StatusServer != nil {
		go func() {
			if err := app.StatusServer.Run(ctx); err != nil {
				errChan <- fmt.Errorf("status server error: %w", err)
			}
		}()
	}

	if app.Config.ConfigFile != "" {
		go func() {
			if err := app.Watcher.Run(ctx); err != nil {
				slog.Warn("Config watcher stopped", "error", err)
			}
		}()
	}

	slog.Info("wdeck ready")
	err := app.runControlLoop(ctx, errChan)

	if cerr := app.cleanup(); cerr != nil {
		err = errors.Join(err, cerr)
	}
	return err
}

// runControlLoop is the only goroutine that drives the controller. It
// turns input samples into navigation events and, every refresh, advances
// time-driven behaviour and redraws the displays.
func (app *Application) runControlLoop(ctx context.Context, errChan <-chan error) error {
	ticker := time.NewTicker(app.Config.RefreshInterval)
	defer ticker.Stop()

	var quit <-chan struct{}
	if q, ok := app.Input.(interface{ Quit() <-chan struct{} }); ok {
		quit = q.Quit()
	}
	samples := app.Input.Samples()

	app.render()
	for {
		select {
		case <-ctx.Done():
			slog.Info("Termination signal received")
			return nil
		case <-quit:
			slog.Info("Quit requested")
			return nil
		case err := <-errChan:
			return err
		case s, ok := <-samples:
			if !ok {
				samples = nil
				continue
			}
			app.handleSample(ctx, s)
		case now := <-ticker.C:
			app.Controller.Tick(ctx, now)
			app.render()
		}
	}
}

func (app *Application) handleSample(ctx context.Context, s domain.RawSample) {
	ev, ok := app.Dispatcher.Dispatch(s)
	if !ok {
		return
	}
	if err := app.Controller.HandleNavigation(ctx, ev); err != nil {
		// Already recovered by the controller; it is on screen.
		slog.Debug("Navigation error", "event", ev.String(), "error", err)
	}
	app.render()
}

func (app *Application) render() {
	snap := app.Controller.Snapshot()
	for _, d := range app.Displays {
		if err := d.Render(snap); err != nil {
			slog.Debug("Render failed", "error", err)
		}
	}
}

func (app *Application) cleanup() error {
	slog.Info("Cleaning up resources...")

	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	app.Controller.Close(closeCtx)

	var errs []error
	if app.Input != nil {
		if err := app.Input.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close input: %w", err))
		}
	}

	if app.journalCancel != nil {
		app.journalCancel()
		select {
		case <-app.Journal.Done():
		case <-closeCtx.Done():
			errs = append(errs, errors.New("journal did not flush in time"))
		}
	}

	if err := app.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close journal storage: %w", err))
	}
	return errors.Join(errs...)
}

// RestoreNetwork reverts changes made to network interfaces and services.
func (app *Application) RestoreNetwork() {
	if app.Config.Radio != config.RadioLinux {
		return
	}

	log.Println("Restoring networking infrastructure...")
	if err := app.Radio.SetIdle(); err != nil {
		log.Printf("Error idling radio: %v", err)
	}
	if err := radio.RestoreNetworkServices(); err != nil {
		log.Printf("Error restoring system services: %v", err)
	}
}
