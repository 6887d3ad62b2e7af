package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rotisserie/eris"

	"nyc_buildings/identity"
	"nyc_buildings/models"
)

// SQLiteStore keeps the local scrape history: runs, their log lines and the
// latest record per building.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}

	store := &SQLiteStore{db: db, path: dbPath}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "sqlite: migrate")
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS scrape_runs (
		id TEXT PRIMARY KEY,
		source_url TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME,
		status TEXT NOT NULL,
		fields_found INTEGER DEFAULT 0,
		errors_count INTEGER DEFAULT 0,
		output_path TEXT DEFAULT '',
		error_message TEXT DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS buildings (
		file_id TEXT PRIMARY KEY,
		fingerprint TEXT NOT NULL,
		address TEXT,
		zip_code TEXT,
		url TEXT NOT NULL,
		record JSON NOT NULL,
		first_seen_at DATETIME NOT NULL,
		last_scraped_at DATETIME NOT NULL,
		times_scraped INTEGER DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS scrape_logs (
		id INTEGER PRIMARY KEY,
		run_id TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		level TEXT NOT NULL,
		message TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON scrape_runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_buildings_fingerprint ON buildings(fingerprint);
	CREATE INDEX IF NOT EXISTS idx_logs_run ON scrape_logs(run_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// Runs
// =============================================================================

func (s *SQLiteStore) CreateRun(ctx context.Context, run *models.ScrapeRun) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scrape_runs (id, source_url, started_at, status)
		VALUES (?, ?, ?, ?)`,
		run.ID.String(), run.SourceURL, run.StartedAt, run.Status)
	if err != nil {
		return eris.Wrap(err, "sqlite: create run")
	}
	return nil
}

func (s *SQLiteStore) UpdateRun(ctx context.Context, run *models.ScrapeRun) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE scrape_runs SET finished_at = ?, status = ?, fields_found = ?,
			errors_count = ?, output_path = ?, error_message = ?
		WHERE id = ?`,
		run.FinishedAt, run.Status, run.FieldsFound, run.ErrorsCount,
		run.OutputPath, run.ErrorMessage, run.ID.String())
	if err != nil {
		return eris.Wrap(err, "sqlite: update run")
	}
	return nil
}

func (s *SQLiteStore) Log(ctx context.Context, runID uuid.UUID, level models.LogLevel, message string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scrape_logs (run_id, timestamp, level, message)
		VALUES (?, ?, ?, ?)`,
		runID.String(), time.Now(), level, message)
	if err != nil {
		return eris.Wrap(err, "sqlite: insert log")
	}
	return nil
}

// RecentRuns returns the latest runs, newest first.
func (s *SQLiteStore) RecentRuns(ctx context.Context, limit int) ([]models.ScrapeRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_url, started_at, finished_at, status, fields_found,
			errors_count, output_path, error_message
		FROM scrape_runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query runs")
	}
	defer rows.Close()

	var runs []models.ScrapeRun
	for rows.Next() {
		var run models.ScrapeRun
		var id string
		var finished sql.NullTime
		if err := rows.Scan(&id, &run.SourceURL, &run.StartedAt, &finished, &run.Status,
			&run.FieldsFound, &run.ErrorsCount, &run.OutputPath, &run.ErrorMessage); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		if run.ID, err = uuid.Parse(id); err != nil {
			return nil, eris.Wrapf(err, "sqlite: bad run id %q", id)
		}
		if finished.Valid {
			t := finished.Time
			run.FinishedAt = &t
		}
		runs = append(runs, run)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}

// RunLogs returns the log lines of one run in insertion order.
func (s *SQLiteStore) RunLogs(ctx context.Context, runID uuid.UUID) ([]models.ScrapeLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, level, message FROM scrape_logs
		WHERE run_id = ? ORDER BY id`, runID.String())
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query logs")
	}
	defer rows.Close()

	var logs []models.ScrapeLog
	for rows.Next() {
		l := models.ScrapeLog{RunID: runID}
		if err := rows.Scan(&l.ID, &l.Timestamp, &l.Level, &l.Message); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan log")
		}
		logs = append(logs, l)
	}
	return logs, eris.Wrap(rows.Err(), "sqlite: iterate logs")
}

// =============================================================================
// Buildings
// =============================================================================

// Save stores rec as the latest record for id. It implements RecordWriter.
func (s *SQLiteStore) Save(ctx context.Context, rec models.BuildingRecord, id string) (string, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: encode record")
	}

	address := deref(rec.Overview.Address)
	zip := deref(rec.Overview.ZipCode)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO buildings (file_id, fingerprint, address, zip_code, url, record,
			first_seen_at, last_scraped_at, times_scraped)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1)
		ON CONFLICT(file_id) DO UPDATE SET
			fingerprint = excluded.fingerprint,
			address = excluded.address,
			zip_code = excluded.zip_code,
			url = excluded.url,
			record = excluded.record,
			last_scraped_at = excluded.last_scraped_at,
			times_scraped = buildings.times_scraped + 1`,
		id, identity.Fingerprint(address, zip), address, zip, rec.SourceURL, string(data),
		rec.RetrievedAt, rec.RetrievedAt)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: upsert building")
	}
	return "sqlite://" + s.path + "#" + id, nil
}

// GetBuilding returns the latest stored record for id, or nil if unknown.
func (s *SQLiteStore) GetBuilding(ctx context.Context, id string) (*models.BuildingRecord, int, error) {
	var data string
	var times int
	err := s.db.QueryRowContext(ctx,
		`SELECT record, times_scraped FROM buildings WHERE file_id = ?`, id).Scan(&data, &times)
	if err == sql.ErrNoRows {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, eris.Wrap(err, "sqlite: get building")
	}

	var rec models.BuildingRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, 0, eris.Wrap(err, "sqlite: decode record")
	}
	return &rec, times, nil
}

// BuildingCount returns how many distinct buildings have been stored.
func (s *SQLiteStore) BuildingCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM buildings`).Scan(&count)
	return count, eris.Wrap(err, "sqlite: count buildings")
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
