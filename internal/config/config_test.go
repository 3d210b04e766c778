package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_EnvAndFileOverlay(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("DB_ENABLED", "false")
	t.Setenv("FETCH_TIMEOUT", "3s")
	t.Setenv("SHARE_ORIGIN", "https://pmp.example.com/")
	t.Setenv("MQTT_ENABLED", "true")
	t.Setenv("PDF_FONT_FILE", "/usr/share/fonts/NotoSans-Regular.ttf")

	path := filepath.Join(t.TempDir(), "pmp-reports.yaml")
	require.NoError(t, os.WriteFile(path, []byte("reports:\n  share_cache_ttl: 1m\nproject_api:\n  retry_count: 5\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg := Load()

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.False(t, cfg.DBEnabled)
	assert.Equal(t, 3*time.Second, cfg.Projects.FetchTimeout)
	assert.Equal(t, 5, cfg.Projects.RetryCount)
	assert.Equal(t, "https://pmp.example.com", cfg.Reports.ShareOrigin)
	assert.Equal(t, time.Minute, cfg.Reports.ShareCacheTTL)
	assert.Equal(t, "/usr/share/fonts/NotoSans-Regular.ttf", cfg.Reports.PDFFontFile)
	assert.Empty(t, cfg.Reports.PDFFontBoldFile)
	assert.True(t, cfg.MQTT.Enabled)
	assert.Equal(t, "pmp/reports/generate", cfg.MQTT.Topic)
	assert.Equal(t, byte(1), cfg.MQTT.Client.QoS)
}

func TestLoad_BadDurationFallsBack(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("FETCH_TIMEOUT", "soon")

	cfg := Load()
	assert.Equal(t, 10*time.Second, cfg.Projects.FetchTimeout)
}
