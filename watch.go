package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nyc_buildings/scheduler"
	"nyc_buildings/scraper"
)

var watchOnce bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-scrape the watch list on a cron schedule",
	Long:  "Scrapes every building in the watch list (config/watch.yaml) on the WATCH_CRON schedule, at most WATCH_RATE_PER_MIN buildings per minute.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if len(cfg.Watch.Buildings) == 0 {
			return eris.Errorf("watch list %s is empty", cfg.Watch.File)
		}

		env, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		browser := scraper.NewBrowserProvider(cfg.Browser, debugSink(), nil)
		defer browser.Close()

		sched := scheduler.New(cfg.Watch, cfg.BaseURL, env.orchestrator(browser, browser))

		if watchOnce {
			sched.RunOnce(ctx)
			return nil
		}

		if err := sched.Start(ctx); err != nil {
			return err
		}
		zap.L().Info("watching buildings, press Ctrl+C to stop", zap.Int("buildings", len(cfg.Watch.Buildings)))

		<-ctx.Done()
		zap.L().Info("shutting down")
		sched.Stop()
		return nil
	},
}

func init() {
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "scrape the watch list once and exit")
	rootCmd.AddCommand(watchCmd)
}
