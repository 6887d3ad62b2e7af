package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"nyc_buildings/identity"
	"nyc_buildings/models"
	"nyc_buildings/scraper"
)

var (
	scrapeAddress  string
	scrapeZip      string
	scrapeURL      string
	scrapeHeadless bool
	scrapeOut      string
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape one building by address or URL",
	Example: `  nyc-buildings scrape --address "110 West 57 Street" --zip 10019
  nyc-buildings scrape --url "https://nyc.marketproof.com/building/manhattan/midtown/110-west-57-street-10019?tab=details"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		url, err := targetURL(scrapeURL, scrapeAddress, scrapeZip)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("headless") {
			cfg.Browser.Headless = scrapeHeadless
		}
		if scrapeOut != "" {
			cfg.OutputDir = scrapeOut
		}

		env, err := openEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		browser := scraper.NewBrowserProvider(cfg.Browser, debugSink(), nil)
		defer browser.Close()

		res, err := env.orchestrator(browser, browser).Scrape(ctx, url)
		if err != nil {
			return eris.Wrap(err, "scrape")
		}

		printResult(os.Stdout, res)
		return nil
	},
}

var urlCmd = &cobra.Command{
	Use:   "url",
	Short: "Print the MarketProof URL for an address",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), identity.BuildingURL(cfg.BaseURL, urlAddress, urlZip))
		return nil
	},
}

var (
	urlAddress string
	urlZip     string
)

func init() {
	scrapeCmd.Flags().StringVar(&scrapeAddress, "address", "", "street address, e.g. \"110 West 57 Street\"")
	scrapeCmd.Flags().StringVar(&scrapeZip, "zip", "", "optional ZIP code")
	scrapeCmd.Flags().StringVar(&scrapeURL, "url", "", "full MarketProof building URL")
	scrapeCmd.Flags().BoolVar(&scrapeHeadless, "headless", true, "run the browser headless")
	scrapeCmd.Flags().StringVar(&scrapeOut, "out", "", "output directory (default $OUTPUT_DIR)")
	scrapeCmd.MarkFlagsMutuallyExclusive("address", "url")
	scrapeCmd.MarkFlagsOneRequired("address", "url")
	rootCmd.AddCommand(scrapeCmd)

	urlCmd.Flags().StringVar(&urlAddress, "address", "", "street address")
	urlCmd.Flags().StringVar(&urlZip, "zip", "", "optional ZIP code")
	_ = urlCmd.MarkFlagRequired("address")
	rootCmd.AddCommand(urlCmd)
}

// targetURL picks the page to scrape: an explicit URL wins, otherwise one is
// built from the address.
func targetURL(rawURL, address, zip string) (string, error) {
	switch {
	case rawURL != "":
		return rawURL, nil
	case address != "":
		return identity.BuildingURL(cfg.BaseURL, address, zip), nil
	}
	return "", eris.New("either --url or --address is required")
}

// printResult writes the extraction summary of a finished scrape.
func printResult(w io.Writer, res *scraper.Result) {
	fmt.Fprintf(w, "Scraped: %s\n", res.Record.SourceURL)
	for _, f := range models.OverviewFieldOrder {
		v, _ := res.Record.Overview.Get(f)
		fmt.Fprintf(w, "  %-16s %s\n", f.Label()+":", orMissing(v))
	}
	for _, f := range models.ViolationFieldOrder {
		v, _ := res.Record.Violations.Get(f)
		fmt.Fprintf(w, "  %-16s %s\n", f.Label()+":", orMissing(v))
	}
	footprint := ""
	if res.Record.FootprintImage != nil {
		footprint = *res.Record.FootprintImage
	}
	fmt.Fprintf(w, "  %-16s %s\n", "Footprint:", orMissing(footprint))
	fmt.Fprintf(w, "Status: %s (%d fields, %d errors)\n", res.Run.Status, res.Run.FieldsFound, res.Run.ErrorsCount)
	fmt.Fprintf(w, "Output file: %s\n", res.OutputPath)
}

func orMissing(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
