package scraper

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
)

// DefaultFootprintCropPx is the height of the map attribution strip that is
// cut off the bottom of a footprint screenshot.
const DefaultFootprintCropPx = 50

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// CropBottom decodes a PNG, drops the bottom px rows and re-encodes it.
func CropBottom(data []byte, px int) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, eris.Wrap(err, "footprint: decode png")
	}

	b := img.Bounds()
	if px < 0 || px >= b.Dy() {
		return nil, eris.Errorf("footprint: cannot crop %dpx from %dpx tall image", px, b.Dy())
	}

	cropped := img
	if px > 0 {
		si, ok := img.(subImager)
		if !ok {
			return nil, eris.New("footprint: image type does not support cropping")
		}
		cropped = si.SubImage(image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Max.Y-px))
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, cropped); err != nil {
		return nil, eris.Wrap(err, "footprint: encode png")
	}
	return buf.Bytes(), nil
}

// FootprintFilename is the file name used for a footprint captured at t.
func FootprintFilename(t time.Time) string {
	return "footprint_" + t.Format("20060102_150405") + ".png"
}

// SaveFootprint crops a canvas screenshot and writes it to dir. The
// uncropped capture never touches disk.
func SaveFootprint(shot []byte, cropPx int, dir string, at time.Time) (string, error) {
	cropped, err := CropBottom(shot, cropPx)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", eris.Wrap(err, "footprint: create dir")
	}

	path := filepath.Join(dir, FootprintFilename(at))
	if err := os.WriteFile(path, cropped, 0644); err != nil {
		return "", eris.Wrap(err, "footprint: write file")
	}
	return path, nil
}
