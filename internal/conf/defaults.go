package conf

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaultConfig registers the default values for all settings.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "CropGuard-Go")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "logs/cropguard.log")

	viper.SetDefault("webserver.enabled", true)
	viper.SetDefault("webserver.port", "8090")
	viper.SetDefault("webserver.bindaddress", "0.0.0.0")
	viper.SetDefault("webserver.host", "http://localhost:8090")

	viper.SetDefault("detection.locale", "en")
	viper.SetDefault("detection.cachettl", time.Hour)
	viper.SetDefault("detection.uploadpath", "uploads")
	viper.SetDefault("detection.classifier.timeout", 15*time.Second)
	viper.SetDefault("detection.verification.timeout", 15*time.Second)

	viper.SetDefault("translation.provider.timeout", 10*time.Second)

	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "cropguard.db")

	viper.SetDefault("output.mysql.enabled", false)
	viper.SetDefault("output.mysql.host", "localhost")
	viper.SetDefault("output.mysql.port", "3306")
	viper.SetDefault("output.mysql.database", "cropguard")
}
