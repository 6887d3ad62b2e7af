package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nyc_buildings/models"
)

func writeWatchFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "watch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("WATCH_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://nyc.marketproof.com", cfg.BaseURL)
	assert.Equal(t, "scraped_buildings", cfg.OutputDir)
	assert.Equal(t, "scraper.db", cfg.DBPath)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 5*time.Second, cfg.Browser.PageWait)
	assert.Equal(t, 3*time.Second, cfg.Browser.MapWait)
	assert.Equal(t, 50, cfg.Browser.FootprintCropPx)
	assert.Equal(t, 2, cfg.Watch.RatePerMin)
	assert.Empty(t, cfg.Watch.Buildings)
}

func TestLoad_Env(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("WATCH_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("HEADLESS", "false")
	t.Setenv("PAGE_WAIT_MS", "250")
	t.Setenv("FOOTPRINT_CROP_PX", "not-a-number")
	t.Setenv("OUTPUT_DIR", "/tmp/out")
	t.Setenv("S3_BUCKET", "footprints")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 250*time.Millisecond, cfg.Browser.PageWait)
	assert.Equal(t, 50, cfg.Browser.FootprintCropPx, "invalid values fall back to the default")
	assert.Equal(t, "/tmp/out", cfg.OutputDir)
	assert.Equal(t, "footprints", cfg.S3.Bucket)
}

func TestLoad_WatchList(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("WATCH_FILE", writeWatchFile(t, `
cron: "*/30 * * * *"
buildings:
  - address: 110 West 57 Street
    zip: "10019"
  - url: https://nyc.marketproof.com/building/manhattan/midtown/1-main-street
`))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "*/30 * * * *", cfg.Watch.Cron)
	assert.Equal(t, []models.WatchedBuilding{
		{Address: "110 West 57 Street", Zip: "10019"},
		{URL: "https://nyc.marketproof.com/building/manhattan/midtown/1-main-street"},
	}, cfg.Watch.Buildings)
}

func TestLoad_WatchCronEnvOverridesFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("WATCH_FILE", writeWatchFile(t, "cron: \"@daily\"\nbuildings: []\n"))
	t.Setenv("WATCH_CRON", "@hourly")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "@hourly", cfg.Watch.Cron)
}

func TestLoad_WatchListInvalid(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("WATCH_FILE", writeWatchFile(t, "buildings:\n  - zip: \"10019\"\n"))
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("WATCH_FILE", writeWatchFile(t, "buildings: [unclosed"))
	_, err = Load()
	assert.Error(t, err)
}
