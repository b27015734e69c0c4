// Package conf loads and provides access to the CropGuard-Go configuration.
package conf

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// ProviderConfig holds the connection settings for an optional external API.
// A provider with an empty URL is treated as not configured.
type ProviderConfig struct {
	URL     string        // base URL of the provider endpoint
	APIKey  string        // bearer token, if the provider requires one
	Timeout time.Duration // per-request timeout
}

// Enabled reports whether the provider has been configured.
func (p *ProviderConfig) Enabled() bool {
	return p.URL != ""
}

// LogConfig defines the configuration for a log file
type LogConfig struct {
	Enabled bool   // true to enable this log
	Path    string // path to the log file
}

// Settings contains all configuration options for the CropGuard-Go application.
type Settings struct {
	Debug bool // true to enable debug mode

	// Runtime values, not stored in config file
	Version string `yaml:"-"` // version from build

	Main struct {
		Name string    // name of this CropGuard-Go node
		Log  LogConfig // logging configuration
	}

	WebServer struct {
		Enabled     bool   // true to enable the web server
		Port        string // port for the web server
		BindAddress string // interface address to listen on, empty for all interfaces
		Host        string // public base URL, used to build upload links
	}

	Detection struct {
		Locale       string        // default response language code
		CacheTTL     time.Duration // response cache time to live
		UploadPath   string        // directory where uploaded images are stored
		Classifier   ProviderConfig
		Verification ProviderConfig
	}

	Translation struct {
		Provider ProviderConfig
	}

	Output struct {
		SQLite struct {
			Enabled bool   // true to enable sqlite output
			Path    string // path to sqlite database
		}

		MySQL struct {
			Enabled  bool   // true to enable mysql output
			Username string // username for mysql database
			Password string // password for mysql database
			Database string // database name for mysql database
			Host     string // host for mysql database
			Port     string // port for mysql database
		}
	}
}

// ListenAddress returns the TCP address the web server binds to. The public
// Host URL is never part of it.
func (s *Settings) ListenAddress() string {
	return net.JoinHostPort(s.WebServer.BindAddress, s.WebServer.Port)
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into Settings.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settings, nil
}

// initViper sets up viper with defaults, config file locations and env binding.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/cropguard-go")
	viper.AddConfigPath("/etc/cropguard-go")

	viper.SetEnvPrefix("cropguard")
	viper.AutomaticEnv()

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// No config file is fine, defaults and env vars apply.
	}

	return nil
}

// GetSettings returns the current settings instance, or nil before Load().
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// Setting returns the current settings instance, loading it on first use.
func Setting() *Settings {
	settingsMutex.RLock()
	instance := settingsInstance
	settingsMutex.RUnlock()
	if instance != nil {
		return instance
	}

	settings, err := Load()
	if err != nil {
		return nil
	}
	return settings
}
