package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nyc_buildings/config"
	"nyc_buildings/models"
	"nyc_buildings/scraper"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"scrape", "url", "replay", "watch", "history"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestScrapeCommand_Flags(t *testing.T) {
	for _, name := range []string{"address", "zip", "url", "headless", "out"} {
		require.NotNil(t, scrapeCmd.Flags().Lookup(name), "scrape should have --%s", name)
	}
	assert.Equal(t, "true", scrapeCmd.Flags().Lookup("headless").DefValue)
}

func TestHistoryCommand_Flags(t *testing.T) {
	flag := historyCmd.Flags().Lookup("limit")
	require.NotNil(t, flag)
	assert.Equal(t, "20", flag.DefValue)
}

func TestTargetURL(t *testing.T) {
	cfg = &config.Config{BaseURL: "https://nyc.marketproof.com"}
	defer func() { cfg = nil }()

	got, err := targetURL("", "110 West 57 Street", "10019")
	require.NoError(t, err)
	assert.Equal(t, "https://nyc.marketproof.com/building/manhattan/midtown/110-west-57-street-10019?tab=details", got)

	got, err = targetURL("https://example.com/x", "ignored", "")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/x", got)

	_, err = targetURL("", "", "10019")
	assert.Error(t, err)
}

func TestFormatRuns(t *testing.T) {
	started := time.Date(2024, 3, 9, 14, 5, 6, 0, time.Local)
	finished := started.Add(42 * time.Second)
	runs := []models.ScrapeRun{
		{SourceURL: "https://example.com/a", StartedAt: started, FinishedAt: &finished, Status: models.RunStatusCompleted, FieldsFound: 11},
		{SourceURL: "https://example.com/b", StartedAt: started, Status: models.RunStatusRunning},
	}

	var buf bytes.Buffer
	formatRuns(&buf, runs)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "STATUS")
	assert.Contains(t, lines[1], "2024-03-09 14:05:06")
	assert.Contains(t, lines[1], "42s")
	assert.Contains(t, lines[1], "completed")
	assert.Contains(t, lines[2], "running")
}

func TestPrintResult(t *testing.T) {
	addr := "110 West 57th Street"
	res := &scraper.Result{
		Record: models.BuildingRecord{
			SourceURL: "https://example.com/a",
			Overview:  models.OverviewFields{Address: &addr},
		},
		Run:        models.ScrapeRun{Status: models.RunStatusPartial, FieldsFound: 1, ErrorsCount: 1},
		OutputPath: "scraped_buildings/110_West_57th_Street.json",
	}

	var buf bytes.Buffer
	printResult(&buf, res)
	out := buf.String()

	assert.Contains(t, out, "Address:         110 West 57th Street")
	assert.Contains(t, out, "Year Built:      -")
	assert.Contains(t, out, "Footprint:       -")
	assert.Contains(t, out, "Status: partial (1 fields, 1 errors)")
	assert.Contains(t, out, "Output file: scraped_buildings/110_West_57th_Street.json")
}

func TestMaskConnectionString(t *testing.T) {
	assert.Equal(t, "postgres://user:xxxxx@db:5432/nyc", maskConnectionString("postgres://user:secret@db:5432/nyc"))
	assert.Equal(t, "postgres://user@db/nyc", maskConnectionString("postgres://user@db/nyc"))
	assert.Equal(t, "postgres://db/nyc", maskConnectionString("postgres://db/nyc"))
	assert.Equal(t, "host=db user=app password=xxxxx dbname=nyc", maskConnectionString("host=db user=app password=secret dbname=nyc"))
	assert.Equal(t, "not a url", maskConnectionString("not a url"))
}
