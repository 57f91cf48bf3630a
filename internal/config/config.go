// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Resolver() ResolverConfig
	Browser() BrowserConfig
}

// Browser kinds understood by the driver layer.
const (
	KindChrome  = "chrome"
	KindEdge    = "edge"
	KindFirefox = "firefox"
)

// Kinds lists every supported browser kind.
var Kinds = []string{KindChrome, KindEdge, KindFirefox}

// ParseKind normalises a configured browser name, ignoring case and padding.
func ParseKind(s string) (string, error) {
	kind := strings.ToLower(strings.TrimSpace(s))
	for _, k := range Kinds {
		if k == kind {
			return kind, nil
		}
	}
	return "", fmt.Errorf("kind %q is not supported (want one of %s)", s, strings.Join(Kinds, ", "))
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg   LoggerConfig   `mapstructure:"logger" yaml:"logger" json:"logger"`
	ResolverCfg ResolverConfig `mapstructure:"resolver" yaml:"resolver" json:"resolver"`
	BrowserCfg  BrowserConfig  `mapstructure:"browser" yaml:"browser" json:"browser"`
}

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig     { return c.LoggerCfg }
func (c *Config) Resolver() ResolverConfig { return c.ResolverCfg }
func (c *Config) Browser() BrowserConfig   { return c.BrowserCfg }

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level" json:"level"`
	Format      string      `mapstructure:"format" yaml:"format" json:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source" json:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name" json:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file" json:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size" json:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups" json:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age" json:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress" json:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors" json:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug string `mapstructure:"debug" yaml:"debug" json:"debug"`
	Info  string `mapstructure:"info" yaml:"info" json:"info"`
	Warn  string `mapstructure:"warn" yaml:"warn" json:"warn"`
	Error string `mapstructure:"error" yaml:"error" json:"error"`
	Fatal string `mapstructure:"fatal" yaml:"fatal" json:"fatal"`
}

// ResolverConfig bounds the retry loops of the element resolver.
type ResolverConfig struct {
	// ExistenceAttempts is how many times an empty candidate query is repeated.
	ExistenceAttempts int `mapstructure:"existence_attempts" yaml:"existence_attempts" json:"existence_attempts"`
	// Attempts and Interval govern every filter strategy.
	Attempts int           `mapstructure:"attempts" yaml:"attempts" json:"attempts"`
	Interval time.Duration `mapstructure:"interval" yaml:"interval" json:"interval"`
	// ClickAttempts and ClickInterval govern click retries on interception.
	ClickAttempts int           `mapstructure:"click_attempts" yaml:"click_attempts" json:"click_attempts"`
	ClickInterval time.Duration `mapstructure:"click_interval" yaml:"click_interval" json:"click_interval"`
}

// DriverOptions are the launch options for one browser kind.
type DriverOptions struct {
	Arguments []string `mapstructure:"arguments" yaml:"arguments" json:"arguments"`
	ExecPath  string   `mapstructure:"exec_path" yaml:"exec_path" json:"exec_path"`
}

// BrowserConfig selects and configures the live browser backend.
type BrowserConfig struct {
	Kind              string        `mapstructure:"kind" yaml:"kind" json:"kind"`
	Headless          bool          `mapstructure:"headless" yaml:"headless" json:"headless"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout" json:"navigation_timeout"`
	Chrome            DriverOptions `mapstructure:"chrome" yaml:"chrome" json:"chrome"`
	Edge              DriverOptions `mapstructure:"edge" yaml:"edge" json:"edge"`
	Firefox           DriverOptions `mapstructure:"firefox" yaml:"firefox" json:"firefox"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "locus")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Resolver --
	v.SetDefault("resolver.existence_attempts", 3)
	v.SetDefault("resolver.attempts", 20)
	v.SetDefault("resolver.interval", "250ms")
	v.SetDefault("resolver.click_attempts", 10)
	v.SetDefault("resolver.click_interval", "1s")

	// -- Browser --
	v.SetDefault("browser.kind", KindChrome)
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.navigation_timeout", "60s")
	v.SetDefault("browser.chrome.arguments", []string{})
	v.SetDefault("browser.edge.arguments", []string{})
	v.SetDefault("browser.firefox.arguments", []string{})
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if kind, err := ParseKind(cfg.BrowserCfg.Kind); err == nil {
		cfg.BrowserCfg.Kind = kind
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if err := c.LoggerCfg.Validate(); err != nil {
		return fmt.Errorf("logger configuration invalid: %w", err)
	}
	if err := c.ResolverCfg.Validate(); err != nil {
		return fmt.Errorf("resolver configuration invalid: %w", err)
	}
	if err := c.BrowserCfg.Validate(); err != nil {
		return fmt.Errorf("browser configuration invalid: %w", err)
	}
	return nil
}

// Validate checks the logger level against the levels the CLI exposes.
func (l *LoggerConfig) Validate() error {
	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "error", "fatal":
		return nil
	default:
		return fmt.Errorf("level must be one of debug, info, warn, error, fatal; got %q", l.Level)
	}
}

// Validate checks the ResolverConfig settings.
func (r *ResolverConfig) Validate() error {
	if r.ExistenceAttempts <= 0 {
		return fmt.Errorf("existence_attempts must be a positive integer")
	}
	if r.Attempts <= 0 {
		return fmt.Errorf("attempts must be a positive integer")
	}
	if r.ClickAttempts <= 0 {
		return fmt.Errorf("click_attempts must be a positive integer")
	}
	if r.Interval < 0 || r.ClickInterval < 0 {
		return fmt.Errorf("intervals must not be negative")
	}
	return nil
}

// Validate checks the BrowserConfig settings.
func (b *BrowserConfig) Validate() error {
	if _, err := ParseKind(b.Kind); err != nil {
		return err
	}
	if b.NavigationTimeout < 0 {
		return fmt.Errorf("navigation_timeout must not be negative")
	}
	return nil
}
