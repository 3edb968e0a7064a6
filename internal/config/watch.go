package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/lcalzada-xor/wdeck/internal/core/domain"
	"gopkg.in/ini.v1"
)

// Profile is the part of the configuration that can change while running.
// It is read on every access point activation.
type Profile struct {
	RogueSSID    string
	HoneypotSSID string
}

// Watcher keeps the current Profile in step with the [portal] section of the
// configuration file.
type Watcher struct {
	path    string
	current atomic.Pointer[Profile]
}

// NewWatcher creates a watcher serving initial until the file changes.
func NewWatcher(path string, initial Profile) *Watcher {
	w := &Watcher{path: path}
	w.current.Store(&initial)
	return w
}

// Profile returns the current profile.
func (w *Watcher) Profile() Profile {
	return *w.current.Load()
}

// Reload re-reads the file. An invalid profile is rejected and the previous
// one kept.
func (w *Watcher) Reload() error {
	prev := w.Profile()
	p, err := loadProfile(w.path, prev)
	if err != nil {
		return err
	}
	if p != prev {
		w.current.Store(&p)
		slog.Info("Portal profile reloaded", "rogue_ssid", p.RogueSSID, "honeypot_ssid", p.HoneypotSSID)
	}
	return nil
}

// Run watches the file until ctx is cancelled. The parent directory is
// watched so editors that replace the file are picked up.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}
	target, _ := filepath.Abs(w.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if name, _ := filepath.Abs(event.Name); name != target {
				continue
			}
			if err := w.Reload(); err != nil {
				slog.Warn("Config reload failed", "file", w.path, "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("File watcher error", "error", err)
		}
	}
}

func loadProfile(path string, prev Profile) (Profile, error) {
	file, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, path)
	if err != nil {
		return prev, fmt.Errorf("load config %s: %w", path, err)
	}
	portal := file.Section("portal")
	p := Profile{
		RogueSSID:    portal.Key("rogue_ssid").MustString(prev.RogueSSID),
		HoneypotSSID: portal.Key("honeypot_ssid").MustString(prev.HoneypotSSID),
	}
	if !domain.IsValidSSID(p.RogueSSID) || !domain.IsValidSSID(p.HoneypotSSID) {
		return prev, fmt.Errorf("invalid SSID in %s", path)
	}
	return p, nil
}
