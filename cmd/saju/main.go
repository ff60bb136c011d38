// Package main implements the saju CLI for Four Pillars analysis.
package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/codeGROOVE-dev/fourpillars/pkg/calendar"
	"github.com/codeGROOVE-dev/fourpillars/pkg/config"
	"github.com/codeGROOVE-dev/fourpillars/pkg/geo"
	"github.com/codeGROOVE-dev/fourpillars/pkg/httpcache"
	"github.com/codeGROOVE-dev/fourpillars/pkg/personality"
	"github.com/codeGROOVE-dev/fourpillars/pkg/report"
)

const version = "saju CLI v1.0.0"

// flagKeys maps persistent flags to config keys.
var flagKeys = map[string]string{
	"cache-dir":            "cache.dir",
	"no-cache":             "cache.disabled",
	"geo-endpoint":         "geo.endpoint",
	"personality-endpoint": "personality.endpoint",
	"personality-key":      "personality.api_key",
	"sect":                 "calendar.sect",
}

// app holds the services shared by every subcommand.
type app struct {
	v        *viper.Viper
	cfg      *config.Config
	logger   *slog.Logger
	out      io.Writer
	store    *httpcache.Store
	resolver *geo.Resolver
	analyzer *report.Analyzer
	now      func() time.Time

	configFile string
	verbose    bool
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{v: config.New(), out: out, now: time.Now}

	root := &cobra.Command{
		Use:          "saju",
		Short:        "Four Pillars analysis with true solar time correction",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			a.close()
		},
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "Config file (default ./fourpillars.yaml)")
	pf.BoolVar(&a.verbose, "verbose", false, "Enable verbose logging")
	pf.String("cache-dir", "", "Cache directory (or set FOURPILLARS_CACHE_DIR)")
	pf.Bool("no-cache", false, "Disable the upstream response cache")
	pf.String("geo-endpoint", "", "Place search endpoint (or set FOURPILLARS_GEO_ENDPOINT)")
	pf.String("personality-endpoint", "", "Personality API endpoint (or set FOURPILLARS_PERSONALITY_ENDPOINT)")
	pf.String("personality-key", "", "Personality API key (or set FOURPILLARS_PERSONALITY_API_KEY)")
	pf.Int("sect", calendar.DefaultSect, "Day boundary convention for the late rat hour (1 or 2)")

	root.AddCommand(newChartCmd(a), newPlacesCmd(a), newTimezoneCmd(a), &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(version)
		},
	})
	return root
}

// setup loads configuration and builds the shared services.
func (a *app) setup(cmd *cobra.Command) error {
	if err := config.BindFlags(a.v, cmd.Flags(), flagKeys); err != nil {
		return err
	}
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := slog.LevelError
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if !cfg.Cache.Disabled {
		store, err := httpcache.New(cmd.Context(), httpcache.Options{Dir: cfg.Cache.Dir, TTL: cfg.Cache.TTL}, a.logger)
		if err != nil {
			a.logger.Warn("response cache unavailable", "error", err)
		} else {
			a.store = store
		}
	}
	client := httpcache.NewClient(a.store, http.DefaultClient, a.logger)

	a.resolver = geo.NewResolver(a.logger,
		geo.WithEndpoint(cfg.Geo.Endpoint),
		geo.WithLanguage(cfg.Geo.Language),
		geo.WithTimeout(cfg.Geo.Timeout),
		geo.WithHTTPClient(client),
	)

	opts := []report.Option{
		report.WithResolver(a.resolver),
		report.WithCalendar(calendar.NewLunar(cfg.Calendar.Sect)),
		report.WithClock(a.now),
	}
	if cfg.Personality.Endpoint != "" {
		opts = append(opts, report.WithPersonality(personality.New(cfg.Personality.Endpoint, a.logger,
			personality.WithHTTPClient(client),
			personality.WithAPIKey(cfg.Personality.APIKey),
			personality.WithTimeout(cfg.Personality.Timeout),
		)))
	}
	a.analyzer = report.New(a.logger, opts...)
	return nil
}

func (a *app) close() {
	if a.store == nil {
		return
	}
	if err := a.store.Close(); err != nil {
		a.logger.Error("Failed to close cache", "error", err)
	}
}

// timeout bounds every subcommand's upstream calls.
func timeout(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 30*time.Second)
}
