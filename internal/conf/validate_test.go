package conf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTestSettings() *Settings {
	s := &Settings{}
	s.WebServer.Enabled = true
	s.WebServer.Port = "8090"
	s.Output.SQLite.Enabled = true
	s.Output.SQLite.Path = "test.db"
	s.Detection.Locale = "en"
	s.Detection.CacheTTL = time.Hour
	return s
}

func TestValidateSettings(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateSettings(validTestSettings()))
}

func TestValidateSettingsBadPort(t *testing.T) {
	t.Parallel()

	s := validTestSettings()
	s.WebServer.Port = "notaport"
	err := ValidateSettings(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port")
}

func TestValidateSettingsDatabaseSelection(t *testing.T) {
	t.Parallel()

	s := validTestSettings()
	s.Output.MySQL.Enabled = true
	require.Error(t, ValidateSettings(s), "both outputs enabled should fail")

	s = validTestSettings()
	s.Output.SQLite.Enabled = false
	require.Error(t, ValidateSettings(s), "no output enabled should fail")
}

func TestValidateSettingsDefaultsLocale(t *testing.T) {
	t.Parallel()

	s := validTestSettings()
	s.Detection.Locale = ""
	require.NoError(t, ValidateSettings(s))
	assert.Equal(t, "en", s.Detection.Locale)
}

func TestListenAddress(t *testing.T) {
	t.Parallel()

	s := validTestSettings()
	s.WebServer.BindAddress = "0.0.0.0"
	s.WebServer.Host = "http://localhost:8090"
	assert.Equal(t, "0.0.0.0:8090", s.ListenAddress())

	// An empty bind address listens on all interfaces; the public URL must
	// never leak into the listener address.
	s.WebServer.BindAddress = ""
	assert.Equal(t, ":8090", s.ListenAddress())
	assert.NotContains(t, s.ListenAddress(), "http")
}

func TestProviderEnabled(t *testing.T) {
	t.Parallel()

	p := ProviderConfig{}
	assert.False(t, p.Enabled())

	p.URL = "https://translate.example.com"
	assert.True(t, p.Enabled())
}
