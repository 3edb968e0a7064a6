package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lcalzada-xor/wdeck/internal/core/domain"
	"gopkg.in/ini.v1"
)

// Radio backends.
const (
	RadioSim   = "sim"
	RadioLinux = "linux"
)

// Bounds for the rogue access point credential log.
const (
	MinCredentialLog = 10
	MaxCredentialLog = 30
)

// Config holds all application configuration.
type Config struct {
	ConfigFile string

	Interface   string
	Radio       string
	HostapdPath string

	StatusAddr string
	PortalAddr string
	DNSAddr    string
	APAddr     string

	RogueSSID    string
	HoneypotSSID string

	Debounce        time.Duration
	LogInterval     time.Duration
	MessageDelay    time.Duration
	RefreshInterval time.Duration
	StationInterval time.Duration

	PacketLogCapacity  int
	CredentialCapacity int
	ActivityCapacity   int

	JournalDSN string

	Debug    bool
	Terminal bool
	Keyboard bool
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Interface:          "wlan0",
		Radio:              RadioSim,
		HostapdPath:        "hostapd",
		StatusAddr:         ":8080",
		PortalAddr:         ":80",
		DNSAddr:            ":53",
		APAddr:             "192.168.4.1",
		RogueSSID:          "Free_Public_WiFi",
		HoneypotSSID:       "Weak_Open_WiFi",
		Debounce:           200 * time.Millisecond,
		LogInterval:        2000 * time.Millisecond,
		MessageDelay:       2 * time.Second,
		RefreshInterval:    100 * time.Millisecond,
		StationInterval:    2 * time.Second,
		PacketLogCapacity:  20,
		CredentialCapacity: 10,
		ActivityCapacity:   20,
		Terminal:           true,
		Keyboard:           true,
	}
}

// Load builds the configuration from defaults, the INI file, WDECK_*
// environment variables and finally args. Later layers win.
func Load(args []string) (*Config, error) {
	cfg := Default()

	cfg.ConfigFile = getEnv("WDECK_CONFIG", "")
	if path, ok := configFlag(args); ok {
		cfg.ConfigFile = path
	}
	if cfg.ConfigFile != "" {
		if err := cfg.LoadFromFile(cfg.ConfigFile); err != nil {
			return nil, err
		}
	}

	cfg.LoadFromEnv()

	fs := flag.NewFlagSet("wdeck", flag.ContinueOnError)
	fs.StringVar(&cfg.ConfigFile, "config", cfg.ConfigFile, "Path to INI configuration file")
	fs.StringVar(&cfg.Interface, "i", cfg.Interface, "Wireless interface")
	fs.StringVar(&cfg.Radio, "radio", cfg.Radio, "Radio backend (sim|linux)")
	fs.StringVar(&cfg.HostapdPath, "hostapd-path", cfg.HostapdPath, "Path to hostapd binary")
	fs.StringVar(&cfg.StatusAddr, "addr", cfg.StatusAddr, "Status server address (empty to disable)")
	fs.StringVar(&cfg.PortalAddr, "portal-addr", cfg.PortalAddr, "Portal HTTP listen address")
	fs.StringVar(&cfg.DNSAddr, "dns-addr", cfg.DNSAddr, "Captive DNS listen address")
	fs.StringVar(&cfg.APAddr, "ap-ip", cfg.APAddr, "Access point IP address")
	fs.StringVar(&cfg.RogueSSID, "rogue-ssid", cfg.RogueSSID, "Rogue access point SSID")
	fs.StringVar(&cfg.HoneypotSSID, "honeypot-ssid", cfg.HoneypotSSID, "Honeypot access point SSID")
	fs.DurationVar(&cfg.Debounce, "debounce", cfg.Debounce, "Joystick debounce window")
	fs.DurationVar(&cfg.LogInterval, "log-interval", cfg.LogInterval, "Minimum interval between packet log lines")
	fs.DurationVar(&cfg.MessageDelay, "message-delay", cfg.MessageDelay, "How long notices stay on screen")
	fs.DurationVar(&cfg.RefreshInterval, "refresh", cfg.RefreshInterval, "Control loop refresh interval")
	fs.DurationVar(&cfg.StationInterval, "station-interval", cfg.StationInterval, "Access point station poll interval")
	fs.IntVar(&cfg.PacketLogCapacity, "packet-log", cfg.PacketLogCapacity, "Packet log capacity")
	fs.IntVar(&cfg.CredentialCapacity, "credential-log", cfg.CredentialCapacity, "Credential log capacity (10-30)")
	fs.IntVar(&cfg.ActivityCapacity, "activity-log", cfg.ActivityCapacity, "Honeypot activity log capacity")
	fs.StringVar(&cfg.JournalDSN, "journal", cfg.JournalDSN, "Journal SQLite DSN (empty for in-memory)")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable verbose debug logging")
	fs.BoolVar(&cfg.Terminal, "terminal", cfg.Terminal, "Render the display in the terminal")
	fs.BoolVar(&cfg.Keyboard, "keyboard", cfg.Keyboard, "Read joystick input from the keyboard")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from an INI file.
func (c *Config) LoadFromFile(filename string) error {
	file, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, filename)
	if err != nil {
		return fmt.Errorf("load config %s: %w", filename, err)
	}

	root := file.Section("")
	c.Interface = root.Key("interface").MustString(c.Interface)
	c.Radio = root.Key("radio").MustString(c.Radio)
	c.HostapdPath = root.Key("hostapd_path").MustString(c.HostapdPath)
	c.Debug = root.Key("debug").MustBool(c.Debug)

	in := file.Section("input")
	c.Debounce = in.Key("debounce").MustDuration(c.Debounce)
	c.Keyboard = in.Key("keyboard").MustBool(c.Keyboard)

	capture := file.Section("capture")
	c.LogInterval = capture.Key("log_interval").MustDuration(c.LogInterval)
	c.PacketLogCapacity = capture.Key("packet_log").MustInt(c.PacketLogCapacity)

	portal := file.Section("portal")
	c.RogueSSID = portal.Key("rogue_ssid").MustString(c.RogueSSID)
	c.HoneypotSSID = portal.Key("honeypot_ssid").MustString(c.HoneypotSSID)
	c.APAddr = portal.Key("ap_ip").MustString(c.APAddr)
	c.PortalAddr = portal.Key("listen").MustString(c.PortalAddr)
	c.DNSAddr = portal.Key("dns").MustString(c.DNSAddr)
	c.CredentialCapacity = portal.Key("credential_log").MustInt(c.CredentialCapacity)
	c.ActivityCapacity = portal.Key("activity_log").MustInt(c.ActivityCapacity)

	status := file.Section("status")
	c.StatusAddr = status.Key("listen").MustString(c.StatusAddr)
	c.JournalDSN = status.Key("journal").MustString(c.JournalDSN)

	ui := file.Section("ui")
	c.MessageDelay = ui.Key("message_delay").MustDuration(c.MessageDelay)
	c.RefreshInterval = ui.Key("refresh").MustDuration(c.RefreshInterval)
	c.StationInterval = ui.Key("station_interval").MustDuration(c.StationInterval)
	c.Terminal = ui.Key("terminal").MustBool(c.Terminal)

	return nil
}

// LoadFromEnv loads configuration from WDECK_* environment variables.
func (c *Config) LoadFromEnv() {
	c.Interface = getEnv("WDECK_INTERFACE", c.Interface)
	c.Radio = getEnv("WDECK_RADIO", c.Radio)
	c.HostapdPath = getEnv("WDECK_HOSTAPD", c.HostapdPath)
	c.StatusAddr = getEnv("WDECK_ADDR", c.StatusAddr)
	c.PortalAddr = getEnv("WDECK_PORTAL_ADDR", c.PortalAddr)
	c.DNSAddr = getEnv("WDECK_DNS_ADDR", c.DNSAddr)
	c.APAddr = getEnv("WDECK_AP_IP", c.APAddr)
	c.RogueSSID = getEnv("WDECK_ROGUE_SSID", c.RogueSSID)
	c.HoneypotSSID = getEnv("WDECK_HONEYPOT_SSID", c.HoneypotSSID)
	c.Debounce = getEnvDuration("WDECK_DEBOUNCE", c.Debounce)
	c.LogInterval = getEnvDuration("WDECK_LOG_INTERVAL", c.LogInterval)
	c.MessageDelay = getEnvDuration("WDECK_MESSAGE_DELAY", c.MessageDelay)
	c.CredentialCapacity = getEnvInt("WDECK_CREDENTIAL_LOG", c.CredentialCapacity)
	c.JournalDSN = getEnv("WDECK_JOURNAL", c.JournalDSN)
	c.Debug = getEnvBool("WDECK_DEBUG", c.Debug)
	c.Terminal = getEnvBool("WDECK_TERMINAL", c.Terminal)
	c.Keyboard = getEnvBool("WDECK_KEYBOARD", c.Keyboard)
}

// Validate rejects configurations the device cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Radio != RadioSim && c.Radio != RadioLinux {
		errs = append(errs, fmt.Errorf("unknown radio backend %q", c.Radio))
	}
	if c.Radio == RadioLinux && !domain.IsValidInterface(c.Interface) {
		errs = append(errs, fmt.Errorf("invalid interface name %q", c.Interface))
	}
	if !domain.IsValidSSID(c.RogueSSID) {
		errs = append(errs, fmt.Errorf("invalid rogue SSID %q", c.RogueSSID))
	}
	if !domain.IsValidSSID(c.HoneypotSSID) {
		errs = append(errs, fmt.Errorf("invalid honeypot SSID %q", c.HoneypotSSID))
	}
	if c.CredentialCapacity < MinCredentialLog || c.CredentialCapacity > MaxCredentialLog {
		errs = append(errs, fmt.Errorf("credential log capacity %d outside %d-%d", c.CredentialCapacity, MinCredentialLog, MaxCredentialLog))
	}
	if c.PacketLogCapacity < 1 || c.ActivityCapacity < 1 {
		errs = append(errs, errors.New("log capacities must be positive"))
	}
	if c.Debounce <= 0 || c.LogInterval <= 0 || c.MessageDelay <= 0 || c.RefreshInterval <= 0 || c.StationInterval <= 0 {
		errs = append(errs, errors.New("intervals must be positive"))
	}
	return errors.Join(errs...)
}

// Profile returns the hot-reloadable part of the configuration.
func (c *Config) Profile() Profile {
	return Profile{RogueSSID: c.RogueSSID, HoneypotSSID: c.HoneypotSSID}
}

// configFlag finds -config / --config in args without parsing the rest.
func configFlag(args []string) (string, bool) {
	for i, a := range args {
		name, value, hasValue := strings.Cut(strings.TrimLeft(a, "-"), "=")
		if !strings.HasPrefix(a, "-") || name != "config" {
			continue
		}
		if hasValue {
			return value, true
		}
		if i+1 < len(args) {
			return args[i+1], true
		}
	}
	return "", false
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("Warning: ignoring %s=%q: not an integer", key, value)
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Warning: ignoring %s=%q: not a duration", key, value)
	}
	return fallback
}
