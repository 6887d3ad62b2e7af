package main

import (
	"net/url"
	"os"
	"regexp"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nyc_buildings/config"
	"nyc_buildings/logging"
)

var (
	cfg        *config.Config
	closeLogFn = func() {}
)

var rootCmd = &cobra.Command{
	Use:          "nyc-buildings",
	Short:        "Scrape NYC building records from MarketProof",
	Long:         "Reads building overview and violations pages from MarketProof, extracts a structured record and a footprint image, and stores them as JSON with a local SQLite history.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		_, closer, err := logging.Setup(cfg.Log.File, cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return eris.Wrap(err, "init logger")
		}
		closeLogFn = closer

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeLogFn()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		zap.L().Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}

var dsnPassword = regexp.MustCompile(`(password=)\S+`)

// maskConnectionString hides the password of a URL or keyword/value DSN.
func maskConnectionString(connStr string) string {
	u, err := url.Parse(connStr)
	if err != nil || u.Scheme == "" {
		return dsnPassword.ReplaceAllString(connStr, "${1}xxxxx")
	}
	return u.Redacted()
}
