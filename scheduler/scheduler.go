package scheduler

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"nyc_buildings/config"
	"nyc_buildings/identity"
	"nyc_buildings/models"
	"nyc_buildings/scraper"
)

// Scraper is the part of the orchestrator the scheduler drives.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*scraper.Result, error)
}

// BatchStats summarizes one pass over the watch list.
type BatchStats struct {
	Processed int
	Completed int
	Partial   int
	Failed    int
}

// Aggregate folds one scrape outcome into the stats.
func (s *BatchStats) Aggregate(res *scraper.Result, err error) {
	s.Processed++
	switch {
	case err != nil || res == nil:
		s.Failed++
	case res.Run.Status == models.RunStatusPartial:
		s.Partial++
	default:
		s.Completed++
	}
}

// Scheduler re-scrapes the watch list on a cron schedule, one building at a
// time, paced by a rate limiter.
type Scheduler struct {
	cfg     config.WatchConfig
	baseURL string
	scraper Scraper
	limiter *rate.Limiter
	cron    *cron.Cron
	logger  *zap.Logger

	running sync.Mutex
	stopCh  chan struct{}
}

func New(cfg config.WatchConfig, baseURL string, s Scraper) *Scheduler {
	limit := rate.Inf
	if cfg.RatePerMin > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RatePerMin))
	}
	return &Scheduler{
		cfg:     cfg,
		baseURL: baseURL,
		scraper: s,
		limiter: rate.NewLimiter(limit, 1),
		cron:    cron.New(),
		logger:  zap.L().With(zap.String("component", "scheduler")),
		stopCh:  make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	if s.cfg.Cron == "" {
		return eris.New("scheduler: no cron schedule configured")
	}

	s.logger.Info("starting scheduler",
		zap.String("cron", s.cfg.Cron),
		zap.Int("buildings", len(s.cfg.Buildings)),
	)
	_, err := s.cron.AddFunc(s.cfg.Cron, func() {
		s.RunOnce(ctx)
	})
	if err != nil {
		return eris.Wrap(err, "scheduler: invalid cron expression")
	}
	s.cron.Start()

	go func() {
		select {
		case <-ctx.Done():
			s.cron.Stop()
		case <-s.stopCh:
		}
	}()
	return nil
}

// Stop stops the cron and waits for a running batch to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	close(s.stopCh)
}

// RunOnce scrapes every watched building. A batch that starts while another
// is still running is skipped.
func (s *Scheduler) RunOnce(ctx context.Context) BatchStats {
	var stats BatchStats
	if !s.running.TryLock() {
		s.logger.Warn("previous batch still running, skipping")
		return stats
	}
	defer s.running.Unlock()

	for _, b := range s.cfg.Buildings {
		if err := s.limiter.Wait(ctx); err != nil {
			s.logger.Info("batch interrupted", zap.Error(err))
			break
		}

		url := s.resolve(b)
		res, err := s.scraper.Scrape(ctx, url)
		stats.Aggregate(res, err)
		if err != nil {
			s.logger.Error("scheduled scrape failed", zap.String("url", url), zap.Error(err))
		}
	}

	s.logger.Info("batch finished",
		zap.Int("processed", stats.Processed),
		zap.Int("completed", stats.Completed),
		zap.Int("partial", stats.Partial),
		zap.Int("failed", stats.Failed),
	)
	return stats
}

// Entries reports how many jobs are registered with the cron.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) resolve(b models.WatchedBuilding) string {
	if u := strings.TrimSpace(b.URL); u != "" {
		return u
	}
	return identity.BuildingURL(s.baseURL, b.Address, b.Zip)
}
