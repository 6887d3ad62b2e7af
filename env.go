package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"nyc_buildings/scraper"
	"nyc_buildings/storage"
)

// scrapeEnv holds the persistence side of a scrape: the JSON output, the
// SQLite history and the optional Postgres mirror and S3 uploader.
type scrapeEnv struct {
	SQLite   *storage.SQLiteStore
	Postgres *storage.PostgresStore
	Writer   storage.RecordWriter
	Uploader scraper.FootprintUploader
}

func openEnv(ctx context.Context) (*scrapeEnv, error) {
	log := zap.L()

	sqlite, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return nil, eris.Wrap(err, "open history")
	}
	log.Info("sqlite database", zap.String("path", cfg.DBPath))

	env := &scrapeEnv{SQLite: sqlite}
	writers := storage.MultiWriter{storage.NewJSONWriter(cfg.OutputDir), sqlite}

	if cfg.DatabaseURL != "" {
		pg, err := storage.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			env.Close()
			return nil, eris.Wrap(err, "connect postgres")
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			env.Close()
			return nil, err
		}
		env.Postgres = pg
		writers = append(writers, pg)
		log.Info("mirroring to postgres", zap.String("url", maskConnectionString(cfg.DatabaseURL)))
	}
	env.Writer = writers

	s3cfg := storage.S3Config{
		Bucket:          cfg.S3.Bucket,
		Region:          cfg.S3.Region,
		Endpoint:        cfg.S3.Endpoint,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
	}
	if s3cfg.Enabled() {
		up, err := storage.NewS3Uploader(ctx, s3cfg)
		if err != nil {
			env.Close()
			return nil, eris.Wrap(err, "init s3 uploader")
		}
		env.Uploader = up
		log.Info("uploading footprints to s3", zap.String("bucket", s3cfg.Bucket))
	}

	return env, nil
}

func (e *scrapeEnv) Close() {
	if e.Postgres != nil {
		e.Postgres.Close()
	}
	if e.SQLite != nil {
		e.SQLite.Close()
	}
}

// orchestrator wires views (and optionally a footprint provider) to the
// environment's persistence.
func (e *scrapeEnv) orchestrator(views scraper.ViewProvider, footprint scraper.FootprintProvider) *scraper.Orchestrator {
	opts := []scraper.Option{
		scraper.WithRunStore(e.SQLite),
		scraper.WithLogger(zap.L()),
	}
	if footprint != nil {
		opts = append(opts, scraper.WithFootprint(footprint))
	}
	if e.Uploader != nil {
		opts = append(opts, scraper.WithUploader(e.Uploader))
	}
	return scraper.NewOrchestrator(views, e.Writer, cfg.OutputDir, opts...)
}

func debugSink() scraper.DebugSink {
	if cfg.DebugDir == "" {
		return scraper.NopDebugSink{}
	}
	return scraper.FileDebugSink{Dir: cfg.DebugDir}
}
