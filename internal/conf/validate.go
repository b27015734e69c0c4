package conf

import (
	"fmt"
	"strconv"
)

// ValidateSettings checks the loaded settings for inconsistencies that would
// prevent the application from starting.
func ValidateSettings(settings *Settings) error {
	if settings.WebServer.Enabled {
		port, err := strconv.Atoi(settings.WebServer.Port)
		if err != nil || port < 1 || port > 65535 {
			return fmt.Errorf("invalid web server port: %q", settings.WebServer.Port)
		}
	}

	if settings.Output.SQLite.Enabled && settings.Output.MySQL.Enabled {
		return fmt.Errorf("only one database output can be enabled at a time")
	}
	if !settings.Output.SQLite.Enabled && !settings.Output.MySQL.Enabled {
		return fmt.Errorf("no database output enabled, enable either sqlite or mysql")
	}
	if settings.Output.SQLite.Enabled && settings.Output.SQLite.Path == "" {
		return fmt.Errorf("sqlite output enabled but no database path set")
	}

	if settings.Detection.Locale == "" {
		settings.Detection.Locale = "en"
	}
	if settings.Detection.CacheTTL <= 0 {
		return fmt.Errorf("detection cache TTL must be positive, got %v", settings.Detection.CacheTTL)
	}

	return nil
}
