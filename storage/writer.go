package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"nyc_buildings/models"
)

// RecordWriter persists an assembled record under a file-safe id and returns
// a reference to where it was written.
type RecordWriter interface {
	Save(ctx context.Context, rec models.BuildingRecord, id string) (string, error)
}

// JSONWriter writes {Dir}/{id}.json, indented, with unset fields as null.
type JSONWriter struct {
	Dir string
}

func NewJSONWriter(dir string) *JSONWriter {
	return &JSONWriter{Dir: dir}
}

func (w *JSONWriter) Save(ctx context.Context, rec models.BuildingRecord, id string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(w.Dir, 0755); err != nil {
		return "", eris.Wrap(err, "json: create output dir")
	}

	data, err := MarshalRecord(rec)
	if err != nil {
		return "", err
	}

	path := filepath.Join(w.Dir, id+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", eris.Wrapf(err, "json: write %s", path)
	}
	zap.L().Debug("json: record written", zap.String("path", path))
	return path, nil
}

// MarshalRecord renders a record the way it is stored on disk. Non-ASCII
// text and characters like & are written as-is.
func MarshalRecord(rec models.BuildingRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		return nil, eris.Wrap(err, "json: encode record")
	}
	return buf.Bytes(), nil
}

// MultiWriter saves a record to every writer in order. The reference of the
// first writer is returned; the first failure stops the fan-out.
type MultiWriter []RecordWriter

func (m MultiWriter) Save(ctx context.Context, rec models.BuildingRecord, id string) (string, error) {
	var ref string
	for i, w := range m {
		r, err := w.Save(ctx, rec, id)
		if err != nil {
			return ref, err
		}
		if i == 0 {
			ref = r
		}
	}
	return ref, nil
}
