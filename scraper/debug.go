package scraper

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"nyc_buildings/models"
)

// DebugSink receives raw page artifacts for troubleshooting. Implementations
// must not fail the scrape; errors are only logged by the caller.
type DebugSink interface {
	SavePage(kind models.ViewKind, html []byte, screenshot []byte) error
}

// NopDebugSink discards everything.
type NopDebugSink struct{}

func (NopDebugSink) SavePage(models.ViewKind, []byte, []byte) error { return nil }

// FileDebugSink writes debug_<view>_source.html and debug_<view>_screenshot.png
// into Dir.
type FileDebugSink struct {
	Dir string
}

func (s FileDebugSink) SavePage(kind models.ViewKind, html []byte, screenshot []byte) error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return eris.Wrap(err, "debug: create dir")
	}
	if len(html) > 0 {
		path := filepath.Join(s.Dir, "debug_"+string(kind)+"_source.html")
		if err := os.WriteFile(path, html, 0644); err != nil {
			return eris.Wrap(err, "debug: write page source")
		}
		zap.L().Debug("debug: saved page source", zap.String("path", path))
	}
	if len(screenshot) > 0 {
		path := filepath.Join(s.Dir, "debug_"+string(kind)+"_screenshot.png")
		if err := os.WriteFile(path, screenshot, 0644); err != nil {
			return eris.Wrap(err, "debug: write screenshot")
		}
		zap.L().Debug("debug: saved screenshot", zap.String("path", path))
	}
	return nil
}
