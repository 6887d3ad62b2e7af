package scraper

import (
	"context"

	"github.com/rotisserie/eris"

	"nyc_buildings/extract"
	"nyc_buildings/models"
)

// ErrNoPage is returned when a provider could not load a page at all.
var ErrNoPage = eris.New("scraper: page not available")

// ViewProvider materializes one logical view of a building page: its body
// text, primary heading and short container texts.
type ViewProvider interface {
	FetchView(ctx context.Context, pageURL string, kind models.ViewKind) (*extract.View, error)
}

// FootprintProvider captures the building footprint image of the page most
// recently fetched and returns a reference to it (a file path).
type FootprintProvider interface {
	CaptureFootprint(ctx context.Context, dir string) (string, error)
}

// LogFunc receives run-level log lines, e.g. to persist them next to the run.
type LogFunc func(level models.LogLevel, message string)

// NoOpLogger does nothing (default)
var NoOpLogger LogFunc = func(level models.LogLevel, message string) {}
