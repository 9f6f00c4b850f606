package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, "https://www.ercot.com/content/cdr/html/real_time_spp.html", cfg.RTSURL)
	assert.Equal(t, "01/02/2006", cfg.DateFormat)
	assert.Equal(t, "1504", cfg.TimeFormat)
	assert.Equal(t, "America/Chicago", cfg.Timezone)
	assert.Equal(t, 5*time.Minute, cfg.CollectInterval)
	assert.Equal(t, 6, cfg.FetchRatePerMin)
	assert.Nil(t, cfg.CollectHubs)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("ERCOT_RTS_URL", "http://mirror.test/spp.html")
	t.Setenv("COLLECT_INTERVAL", "90s")
	t.Setenv("COLLECT_HUBS", "HB_NORTH, HB_HOUSTON,,")
	t.Setenv("FETCH_RATE_PER_MIN", "not-a-number")

	cfg := Load(filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, "http://mirror.test/spp.html", cfg.RTSURL)
	assert.Equal(t, 90*time.Second, cfg.CollectInterval)
	assert.Equal(t, []string{"HB_NORTH", "HB_HOUSTON"}, cfg.CollectHubs)
	assert.Equal(t, 6, cfg.FetchRatePerMin)
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("MONGO_DB=rts_test\nHTTP_PORT=9191\n"), 0o600))
	// t.Setenv registers restore; the unsets let godotenv fill the keys
	t.Setenv("MONGO_DB", "")
	t.Setenv("HTTP_PORT", "")
	os.Unsetenv("MONGO_DB")
	os.Unsetenv("HTTP_PORT")

	cfg := Load(path)

	assert.Equal(t, "rts_test", cfg.MongoDB)
	assert.Equal(t, "9191", cfg.HTTPPort)
}

func TestConfig_Location(t *testing.T) {
	cfg := &Config{Timezone: "America/Chicago"}

	loc, err := cfg.Location()

	require.NoError(t, err)
	assert.Equal(t, "America/Chicago", loc.String())

	cfg.Timezone = "Mars/Olympus"
	_, err = cfg.Location()
	assert.Error(t, err)
}
