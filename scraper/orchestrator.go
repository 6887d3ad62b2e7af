package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"nyc_buildings/extract"
	"nyc_buildings/identity"
	"nyc_buildings/models"
	"nyc_buildings/services"
	"nyc_buildings/storage"
)

// RunStore persists scrape runs and their log lines.
type RunStore interface {
	CreateRun(ctx context.Context, run *models.ScrapeRun) error
	UpdateRun(ctx context.Context, run *models.ScrapeRun) error
	Log(ctx context.Context, runID uuid.UUID, level models.LogLevel, message string) error
}

// FootprintUploader publishes a captured footprint and returns its URL.
type FootprintUploader interface {
	UploadFootprint(ctx context.Context, localPath string) (string, error)
}

// Result is the outcome of one scrape session.
type Result struct {
	Run        models.ScrapeRun
	Record     models.BuildingRecord
	FileID     string
	OutputPath string
	Candidates []extract.Candidate
}

type Orchestrator struct {
	views     ViewProvider
	writer    storage.RecordWriter
	outputDir string

	footprint FootprintProvider
	uploader  FootprintUploader
	runs      RunStore
	logger    *zap.Logger
	now       func() time.Time
}

type Option func(*Orchestrator)

func WithFootprint(p FootprintProvider) Option { return func(o *Orchestrator) { o.footprint = p } }
func WithUploader(u FootprintUploader) Option { return func(o *Orchestrator) { o.uploader = u } }
func WithRunStore(s RunStore) Option { return func(o *Orchestrator) { o.runs = s } }
func WithLogger(l *zap.Logger) Option { return func(o *Orchestrator) { o.logger = l } }
func WithClock(now func() time.Time) Option { return func(o *Orchestrator) { o.now = now } }

func NewOrchestrator(views ViewProvider, writer storage.RecordWriter, outputDir string, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		views:     views,
		writer:    writer,
		outputDir: outputDir,
		logger:    zap.L(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ScrapeAddress builds the MarketProof URL for an address and scrapes it.
func (o *Orchestrator) ScrapeAddress(ctx context.Context, baseURL, address, zip string) (*Result, error) {
	url := identity.BuildingURL(baseURL, address, zip)
	o.logger.Info("scraper: generated url", zap.String("address", address), zap.String("url", url))
	return o.Scrape(ctx, url)
}

// Scrape runs one session for a building page: overview view, footprint,
// violations view, extraction, assembly and persistence. A failing view or
// footprint only degrades the record; an error is returned when neither view
// could be loaded or the record could not be saved.
func (o *Orchestrator) Scrape(ctx context.Context, url string) (*Result, error) {
	run := &models.ScrapeRun{
		ID:        uuid.New(),
		SourceURL: url,
		StartedAt: o.now(),
		Status:    models.RunStatusRunning,
	}
	if o.runs != nil {
		if err := o.runs.CreateRun(ctx, run); err != nil {
			o.logger.Warn("scraper: failed to record run", zap.Error(err))
		}
	}
	logf := o.runLog(ctx, run.ID)
	defer o.finish(ctx, run)

	logf(models.LogLevelInfo, "Scraping "+url)
	logf(models.LogLevelInfo, "Address from URL: "+identity.AddressFromURL(url))

	overview, ovErr := o.fetch(ctx, url, models.ViewOverview, run, logf)

	var footprint *string
	if ovErr == nil {
		footprint = o.captureFootprint(ctx, run, logf)
	}

	violations, vioErr := o.fetch(ctx, url, models.ViewViolations, run, logf)

	if ovErr != nil && vioErr != nil {
		run.Status = models.RunStatusFailed
		run.ErrorMessage = ovErr.Error()
		return nil, ovErr
	}

	ovAcc := extract.NewOverviewPipeline(o.logger).Run(overview)
	vioAcc := extract.NewViolationsPipeline(o.logger).Run(violations)

	rec := services.Assemble(services.AssembleInput{
		SourceURL:   url,
		RetrievedAt: run.StartedAt,
		Overview:    ovAcc.Overview(),
		Violations:  vioAcc.Violations(),
		Footprint:   footprint,
	})
	id := services.RecordFileID(rec)

	candidates := append(ovAcc.Candidates(), vioAcc.Candidates()...)
	run.FieldsFound = len(candidates)

	path, err := o.writer.Save(ctx, rec, id)
	if err != nil {
		run.Status = models.RunStatusFailed
		run.ErrorsCount++
		run.ErrorMessage = err.Error()
		logf(models.LogLevelError, fmt.Sprintf("Save failed: %v", err))
		return nil, eris.Wrap(err, "scraper: save record")
	}
	run.OutputPath = path
	logf(models.LogLevelInfo, "Data saved to: "+path)

	if run.ErrorsCount > 0 {
		run.Status = models.RunStatusPartial
	} else {
		run.Status = models.RunStatusCompleted
	}

	return &Result{
		Run:        *run,
		Record:     rec,
		FileID:     id,
		OutputPath: path,
		Candidates: candidates,
	}, nil
}

func (o *Orchestrator) fetch(ctx context.Context, url string, kind models.ViewKind, run *models.ScrapeRun, logf LogFunc) (*extract.View, error) {
	view, err := o.views.FetchView(ctx, url, kind)
	if err != nil {
		run.ErrorsCount++
		logf(models.LogLevelError, fmt.Sprintf("Error loading %s view: %v", kind, err))
		return &extract.View{Kind: kind}, err
	}
	return view, nil
}

func (o *Orchestrator) captureFootprint(ctx context.Context, run *models.ScrapeRun, logf LogFunc) *string {
	if o.footprint == nil {
		return nil
	}

	path, err := o.footprint.CaptureFootprint(ctx, o.outputDir)
	if err != nil {
		run.ErrorsCount++
		logf(models.LogLevelWarn, fmt.Sprintf("Error getting footprint image: %v", err))
		return nil
	}
	logf(models.LogLevelInfo, "Footprint saved: "+path)

	if o.uploader != nil {
		url, err := o.uploader.UploadFootprint(ctx, path)
		if err != nil {
			logf(models.LogLevelWarn, fmt.Sprintf("Footprint upload failed, keeping local file: %v", err))
		} else {
			path = url
		}
	}
	return &path
}

func (o *Orchestrator) finish(ctx context.Context, run *models.ScrapeRun) {
	now := o.now()
	run.FinishedAt = &now
	o.logger.Info("scraper: run finished",
		zap.String("run_id", run.ID.String()),
		zap.String("status", string(run.Status)),
		zap.Int("fields_found", run.FieldsFound),
		zap.Int("errors", run.ErrorsCount),
	)
	if o.runs == nil {
		return
	}
	if err := o.runs.UpdateRun(context.WithoutCancel(ctx), run); err != nil {
		o.logger.Warn("scraper: failed to update run", zap.Error(err))
	}
}

// runLog returns a LogFunc that writes to the zap logger and, when a run
// store is configured, to the run's persisted log.
func (o *Orchestrator) runLog(ctx context.Context, runID uuid.UUID) LogFunc {
	store := NoOpLogger
	if o.runs != nil {
		store = func(level models.LogLevel, message string) {
			if err := o.runs.Log(context.WithoutCancel(ctx), runID, level, message); err != nil {
				o.logger.Debug("scraper: failed to persist log line", zap.Error(err))
			}
		}
	}

	return func(level models.LogLevel, message string) {
		fields := []zap.Field{zap.String("run_id", runID.String())}
		switch level {
		case models.LogLevelError:
			o.logger.Error(message, fields...)
		case models.LogLevelWarn:
			o.logger.Warn(message, fields...)
		default:
			o.logger.Info(message, fields...)
		}
		store(level, message)
	}
}
