package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `environment = "production"

[nse]
base_url = "https://www.nseindia.com"
min_request_interval = "3s"
session_lifetime = "30m"
request_timeout = "45s"
max_retries = 2
error_threshold = 4

[storage.badger]
path = "./data/test"

[pipeline]
schedule = "0 */2 * * *"
lookback_days = 3

[logging]
level = "debug"
output = ["stdout"]
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quartermaster.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFromFiles_ParsesDurationStrings(t *testing.T) {
	cfg, err := LoadFromFiles(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 3*time.Second, cfg.NSE.MinRequestInterval.Std())
	assert.Equal(t, 30*time.Minute, cfg.NSE.SessionLifetime.Std())
	assert.Equal(t, 45*time.Second, cfg.NSE.RequestTimeout.Std())
	assert.Equal(t, 2, cfg.NSE.MaxRetries)
	assert.Equal(t, 4, cfg.NSE.ErrorThreshold)
	assert.Equal(t, 3, cfg.Pipeline.LookbackDays)
}

func TestLoadFromFiles_DefaultsWithoutFiles(t *testing.T) {
	cfg, err := LoadFromFiles()
	require.NoError(t, err)

	assert.Equal(t, 3*time.Second, cfg.NSE.MinRequestInterval.Std())
	assert.Equal(t, 30*time.Minute, cfg.NSE.SessionLifetime.Std())
	assert.Equal(t, 7, cfg.Pipeline.LookbackDays)
}

func TestLoadFromFiles_RejectsBadDuration(t *testing.T) {
	bad := `[nse]
base_url = "https://www.nseindia.com"
min_request_interval = "three seconds"
`
	_, err := LoadFromFiles(writeConfig(t, bad))
	assert.Error(t, err)
}

func TestLoadFromFiles_EnvOverrides(t *testing.T) {
	t.Setenv("QUARTERMASTER_LOOKBACK_DAYS", "14")
	t.Setenv("QUARTERMASTER_LOG_LEVEL", "warn")

	cfg, err := LoadFromFiles()
	require.NoError(t, err)

	assert.Equal(t, 14, cfg.Pipeline.LookbackDays)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestDurationRoundTrip(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("90s")))
	assert.Equal(t, 90*time.Second, d.Std())

	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(text))
}
