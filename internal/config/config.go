// Package config loads image-tools settings from, in increasing precedence,
// defaults, a YAML config file, IMAGE_TOOLS_* environment variables and
// command-line flags.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ironsheep/image-tools/internal/imaging"
)

// Setting keys.
const (
	KeyLogLevel      = "log_level"
	KeyHTTPTimeout   = "http.timeout"
	KeyUserAgent     = "http.user_agent"
	KeyConcurrency   = "fetch.concurrency"
	KeyJPEGQuality   = "output.jpeg_quality"
	EnvPrefix        = "IMAGE_TOOLS"
	configName       = ".image-tools"
	systemConfigPath = "/etc/image-tools"
)

// Config holds the resolved settings.
type Config struct {
	LogLevel    string
	HTTPTimeout time.Duration
	UserAgent   string
	Concurrency int
	JPEGQuality int

	// File is the config file that was read, or "".
	File string
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyHTTPTimeout, imaging.DefaultHTTPTimeout)
	v.SetDefault(KeyUserAgent, "")
	v.SetDefault(KeyConcurrency, imaging.DefaultConcurrency)
	v.SetDefault(KeyJPEGQuality, 95)
	return v
}

// BindFlags binds the global flags to their keys. A flag only overrides the
// other sources when it was given.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	if f := flags.Lookup("log-level"); f != nil {
		if err := v.BindPFlag(KeyLogLevel, f); err != nil {
			return errors.Wrap(err, "unable to bind log-level flag")
		}
	}
	return nil
}

// Load reads the config file and returns the resolved settings. With an
// explicit file a missing or unreadable file is an error; otherwise
// .image-tools.yaml is looked up in the current directory, the home directory
// and /etc/image-tools, and not finding one is fine.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(systemConfigPath)
		v.SetConfigType("yaml")
		v.SetConfigName(configName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "unable to read config file")
		}
	}

	cfg := &Config{
		LogLevel:    v.GetString(KeyLogLevel),
		HTTPTimeout: v.GetDuration(KeyHTTPTimeout),
		UserAgent:   v.GetString(KeyUserAgent),
		Concurrency: v.GetInt(KeyConcurrency),
		JPEGQuality: v.GetInt(KeyJPEGQuality),
		File:        v.ConfigFileUsed(),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the ranges of numeric settings.
func (c *Config) Validate() error {
	if c.HTTPTimeout <= 0 {
		return errors.Errorf("%s must be positive, got %s", KeyHTTPTimeout, c.HTTPTimeout)
	}
	if c.Concurrency < 1 {
		return errors.Errorf("%s must be at least 1, got %d", KeyConcurrency, c.Concurrency)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return errors.Errorf("%s must be between 1 and 100, got %d", KeyJPEGQuality, c.JPEGQuality)
	}
	return nil
}

// Configure mounts an HTTP fetcher built from c on src and sets its fetch
// concurrency.
func (c *Config) Configure(src *imaging.Source) {
	f := imaging.NewHTTPFetcher(c.HTTPTimeout, c.UserAgent)
	src.Mount("http", f)
	src.Mount("https", f)
	src.SetConcurrency(c.Concurrency)
}
