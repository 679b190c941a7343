// Package config loads the run settings from the local .env file and the
// process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	stmtfetch "github.com/porticus-lab/go-statement-fetch"
)

// DefaultEnvFile is the untracked settings file read at startup.
const DefaultEnvFile = ".env"

// ErrMissingCredentials is returned when LOGIN_USERNAME or LOGIN_PASSWORD
// is not set.
var ErrMissingCredentials = errors.New("config: LOGIN_USERNAME and LOGIN_PASSWORD must be set")

// Config holds every setting of a run. Keys match the environment variable
// names, lower-cased.
type Config struct {
	Username string `mapstructure:"login_username"`
	Password string `mapstructure:"login_password"`

	PortalURL   string        `mapstructure:"portal_url"`
	OutputDir   string        `mapstructure:"output_dir"`
	Headless    bool          `mapstructure:"headless"`
	Timeout     time.Duration `mapstructure:"timeout"`
	SettleDelay time.Duration `mapstructure:"settle_delay"`

	ChromePath          string `mapstructure:"chrome_path"`
	AutoDownloadBrowser bool   `mapstructure:"auto_download_browser"`
	NoSandbox           bool   `mapstructure:"no_sandbox"`

	S3Bucket   string `mapstructure:"s3_bucket"`
	S3Prefix   string `mapstructure:"s3_prefix"`
	AWSProfile string `mapstructure:"aws_profile"`
	AWSRegion  string `mapstructure:"aws_region"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("login_username", "")
	v.SetDefault("login_password", "")
	v.SetDefault("portal_url", stmtfetch.DefaultPortalURL)
	v.SetDefault("output_dir", stmtfetch.DefaultOutputRoot)
	v.SetDefault("headless", false)
	v.SetDefault("timeout", 10*time.Minute)
	v.SetDefault("settle_delay", 5*time.Second)
	v.SetDefault("chrome_path", "")
	v.SetDefault("auto_download_browser", false)
	v.SetDefault("no_sandbox", false)
	v.SetDefault("s3_bucket", "")
	v.SetDefault("s3_prefix", "")
	v.SetDefault("aws_profile", "")
	v.SetDefault("aws_region", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
}

// Load reads envFile, when it exists, and overlays the process environment
// on it: a variable set in the environment wins over the file. Load does
// not validate; see [Config.Validate].
func Load(envFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			v.SetConfigFile(envFile)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings a run cannot start without.
func (c *Config) Validate() error {
	if c.Username == "" || c.Password == "" {
		return ErrMissingCredentials
	}
	if c.Timeout < 0 || c.SettleDelay < 0 {
		return fmt.Errorf("config: timeout and settle delay must not be negative")
	}
	return nil
}

// Credentials returns the portal login.
func (c *Config) Credentials() stmtfetch.Credentials {
	return stmtfetch.Credentials{Username: c.Username, Password: c.Password}
}

// SessionOptions translates the browser settings into session options.
func (c *Config) SessionOptions() []stmtfetch.Option {
	opts := []stmtfetch.Option{
		stmtfetch.WithHeadless(c.Headless),
		stmtfetch.WithTimeout(c.Timeout),
		stmtfetch.WithSettleDelay(c.SettleDelay),
	}
	if c.PortalURL != "" {
		opts = append(opts, stmtfetch.WithPortalURL(c.PortalURL))
	}
	if c.ChromePath != "" {
		opts = append(opts, stmtfetch.WithChromePath(c.ChromePath))
	}
	if c.AutoDownloadBrowser {
		opts = append(opts, stmtfetch.WithAutoDownload())
	}
	if c.NoSandbox {
		opts = append(opts, stmtfetch.WithNoSandbox())
	}
	return opts
}
