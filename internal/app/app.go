package app

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"pilemap/internal/config"
	"pilemap/internal/httpx"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "pilemap",
	Short: "Pile status markers over a site drawing",
	Long: `pilemap fetches pile records from a published spreadsheet, places a
status marker for each pile over a site drawing and summarizes progress.

Commands:
  serve   - run the web page and JSON API
  render  - write a static HTML page to the output dir
  summary - print the current status counts`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default config.yaml, or CONFIG_PATH)")
	rootCmd.AddCommand(serveCmd, renderCmd, summaryCmd)
}

func Main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads config, applies the log level and the external HTTP timeout.
func setup() (config.Config, error) {
	if configPath != "" {
		if err := os.Setenv("CONFIG_PATH", configPath); err != nil {
			return config.Config{}, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return cfg, fmt.Errorf("invalid log_level '%s': %w", cfg.LogLevel, err)
	}
	log.SetLevel(level)

	appliedHTTPTimeout := httpx.ConfigureExternalHTTPClient(cfg.ExternalHTTPTimeoutSeconds)
	log.Printf(
		"Config loaded. Sheet=%s/%s Parser=%s Resolver=%s GridColumns=%d Container=%gx%g ExternalHTTPTimeout=%s",
		cfg.SheetID,
		cfg.SheetName,
		cfg.Parser,
		cfg.Resolver,
		cfg.GridColumns,
		cfg.ContainerWidth,
		cfg.ContainerHeight,
		appliedHTTPTimeout,
	)
	return cfg, nil
}
