package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/darkhound/internal/validate"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "darkhound"

	// DefaultSocksAddr is the standard Tor SOCKS5 proxy address.
	// We use 127.0.0.1 instead of localhost to avoid DNS resolution
	// overhead and potential issues with IPv6 resolution on some systems.
	DefaultSocksAddr = "127.0.0.1:9050"

	// DefaultFetchTimeout applies to each source fetch. Tor circuits are
	// slow; anything shorter produces false fetch failures.
	DefaultFetchTimeout = 30 * time.Second

	// MaxFetchTimeout caps the configurable fetch timeout. A cycle with
	// ten sources at two minutes each is already twenty minutes; beyond
	// that the monitor stops being a monitor.
	MaxFetchTimeout = 120 * time.Second

	// DefaultConcurrentScans is how many sources run at once when the
	// configuration does not say.
	DefaultConcurrentScans = 3

	// MaxConcurrentScans caps concurrency. All sources share one proxy.
	MaxConcurrentScans = 10

	// DefaultTorStartupTimeout is the maximum time to wait for the
	// embedded Tor daemon to bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute
)

// Environment variables carrying credentials. Secrets are accepted only
// through the environment, never the YAML file.
const (
	// EnvSMTPUsername carries the SMTP authentication username.
	EnvSMTPUsername = "DARKHOUND_SMTP_USERNAME"

	// EnvSMTPPassword carries the SMTP authentication password.
	EnvSMTPPassword = "DARKHOUND_SMTP_PASSWORD"

	// EnvFeedAPIKey carries the threat feed API key.
	EnvFeedAPIKey = "DARKHOUND_FEED_API_KEY"

	// EnvSocksAddr overrides the SOCKS proxy address.
	EnvSocksAddr = "DARKHOUND_SOCKS_ADDR"
)

// Config holds all configuration options for DarkHound.
// This struct is populated from the YAML file and environment, then
// passed through the application via dependency injection rather than
// global state.
type Config struct {
	// Sources is the list of URLs to monitor. Onion hosts must be valid
	// v3 addresses.
	Sources []string `yaml:"sources"`

	// Indicators is the list of tokens to watch for in fetched content.
	Indicators []string `yaml:"indicators"`

	// Alerting configures SMTP alert delivery.
	Alerting Alerting `yaml:"alerting"`

	// Proxy configures the Tor SOCKS proxy.
	Proxy Proxy `yaml:"proxy"`

	// Security bounds fetch and scan behavior.
	Security Security `yaml:"security"`

	// Storage configures the leak database.
	Storage Storage `yaml:"storage"`

	// Scanner configures optional scan features.
	Scanner Scanner `yaml:"scanner"`

	// Feed configures the optional threat intelligence feed.
	Feed Feed `yaml:"feed"`

	// Verbose enables detailed log output using slog.LevelDebug.
	// Set from the CLI, not the file.
	Verbose bool `yaml:"-"`
}

// Alerting configures SMTP alert delivery.
type Alerting struct {
	// Destination is the email address alerts are sent to.
	// Empty disables alerting.
	Destination string `yaml:"destination"`

	// From is the sender address on alert mail.
	From string `yaml:"from"`

	// SMTPAddr is the SMTP server in "host:port" format.
	SMTPAddr string `yaml:"smtp_addr"`

	// Username and Password authenticate to the SMTP server.
	// Environment only; never read from the file.
	Username string `yaml:"-"`
	Password string `yaml:"-"`
}

// Proxy configures the Tor SOCKS proxy.
type Proxy struct {
	// SocksAddr is the SOCKS5 proxy in "host:port" format.
	SocksAddr string `yaml:"socks_addr"`

	// Embedded starts an embedded Tor daemon instead of using an
	// external proxy at SocksAddr.
	Embedded bool `yaml:"embedded"`

	// StartupTimeout bounds embedded Tor bootstrap.
	StartupTimeout time.Duration `yaml:"startup_timeout"`
}

// Security bounds fetch and scan behavior.
type Security struct {
	// FetchTimeout applies to each source fetch. Values outside
	// (0, MaxFetchTimeout] fall back to the default.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	// MaxConcurrentScans is how many sources run at once.
	// Clamped to [1, MaxConcurrentScans].
	MaxConcurrentScans int `yaml:"max_concurrent_scans"`
}

// Storage configures the leak database.
type Storage struct {
	// Dir is the database directory. Defaults to the XDG data dir.
	Dir string `yaml:"dir"`
}

// Scanner configures optional scan features.
type Scanner struct {
	// InspectMedia enables EXIF extraction from embedded images.
	InspectMedia bool `yaml:"inspect_media"`
}

// Feed configures the optional threat intelligence feed.
type Feed struct {
	// URL is the feed endpoint. Empty disables feed enrichment.
	URL string `yaml:"url"`

	// APIKey authenticates to the feed. Environment only.
	APIKey string `yaml:"-"`
}

// New creates a Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, port
// numbers). This also serves as documentation of what the defaults are.
func New() *Config {
	return &Config{
		Proxy: Proxy{
			SocksAddr:      DefaultSocksAddr,
			StartupTimeout: DefaultTorStartupTimeout,
		},
		Security: Security{
			FetchTimeout:       DefaultFetchTimeout,
			MaxConcurrentScans: DefaultConcurrentScans,
		},
		Storage: Storage{
			Dir: XDGDataDir(),
		},
	}
}

// XDGDataDir returns the XDG data directory for DarkHound.
// On Linux: ~/.local/share/darkhound
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for DarkHound.
// On Linux: ~/.config/darkhound
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Normalize drops invalid sources and indicators and clamps the bounded
// numeric settings, logging every adjustment. It is forgiving where
// Validate is strict: one bad source should not take the monitor down,
// but it should be visible.
func (c *Config) Normalize(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	valid := c.Sources[:0]
	for _, source := range c.Sources {
		if err := validate.SourceURL(source); err != nil {
			logger.Warn("dropping invalid source", "source", source, "error", err)
			continue
		}
		valid = append(valid, source)
	}
	c.Sources = valid

	indicators := c.Indicators[:0]
	for _, indicator := range c.Indicators {
		if err := validate.Indicator(indicator); err != nil {
			logger.Warn("dropping invalid indicator", "length", len(indicator), "error", err)
			continue
		}
		indicators = append(indicators, indicator)
	}
	c.Indicators = indicators

	if c.Security.FetchTimeout <= 0 || c.Security.FetchTimeout > MaxFetchTimeout {
		logger.Warn("fetch timeout outside valid range, using default",
			"configured", c.Security.FetchTimeout,
			"default", DefaultFetchTimeout)
		c.Security.FetchTimeout = DefaultFetchTimeout
	}

	switch {
	case c.Security.MaxConcurrentScans < 1:
		c.Security.MaxConcurrentScans = DefaultConcurrentScans
	case c.Security.MaxConcurrentScans > MaxConcurrentScans:
		logger.Warn("concurrency above cap, clamping",
			"configured", c.Security.MaxConcurrentScans,
			"cap", MaxConcurrentScans)
		c.Security.MaxConcurrentScans = MaxConcurrentScans
	}

	if c.Proxy.SocksAddr == "" {
		c.Proxy.SocksAddr = DefaultSocksAddr
	}
	if c.Proxy.StartupTimeout <= 0 {
		c.Proxy.StartupTimeout = DefaultTorStartupTimeout
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = XDGDataDir()
	}
}

// Validate checks if the configuration is usable. Call after Normalize.
//
// We chose to return the first error found rather than collecting all
// errors because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return ErrNoSources
	}
	if len(c.Indicators) == 0 {
		return ErrNoIndicators
	}

	if c.Alerting.Destination != "" {
		if err := validate.Email(c.Alerting.Destination); err != nil {
			return fmt.Errorf("alerting destination: %w", err)
		}
		if c.Alerting.SMTPAddr == "" {
			return ErrMissingSMTPServer
		}
	}

	return nil
}
