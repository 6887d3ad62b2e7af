package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"nyc_buildings/scraper"
)

var (
	replayOverview   string
	replayViolations string
	replayURL        string
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Extract a record from saved page sources",
	Long:  "Runs extraction over HTML saved earlier (for example with DEBUG_DIR) instead of a live browser. No footprint is captured.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		views := scraper.NewHTMLProvider(replayOverview, replayViolations)
		res, err := env.orchestrator(views, nil).Scrape(ctx, replayURL)
		if err != nil {
			return eris.Wrap(err, "replay")
		}

		printResult(os.Stdout, res)
		return nil
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayOverview, "overview", "", "saved overview page source")
	replayCmd.Flags().StringVar(&replayViolations, "violations", "", "saved violations page source")
	replayCmd.Flags().StringVar(&replayURL, "url", "", "URL the pages were saved from")
	replayCmd.MarkFlagsOneRequired("overview", "violations")
	_ = replayCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(replayCmd)
}
