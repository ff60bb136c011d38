// Package main implements the saju web server, a JSON API over the Four
// Pillars report pipeline.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/codeGROOVE-dev/fourpillars/pkg/calendar"
	"github.com/codeGROOVE-dev/fourpillars/pkg/config"
	"github.com/codeGROOVE-dev/fourpillars/pkg/geo"
	"github.com/codeGROOVE-dev/fourpillars/pkg/httpcache"
	"github.com/codeGROOVE-dev/fourpillars/pkg/metrics"
	"github.com/codeGROOVE-dev/fourpillars/pkg/personality"
	"github.com/codeGROOVE-dev/fourpillars/pkg/report"
)

var (
	configFile  = pflag.String("config", "", "Config file (default ./fourpillars.yaml)")
	verbose     = pflag.Bool("verbose", false, "Enable verbose logging")
	showVersion = pflag.Bool("version", false, "Show version")
)

// Flags below are read through config; flagKeys binds them.
func init() {
	pflag.String("port", "", "Port for web server (or set FOURPILLARS_SERVER_PORT)")
	pflag.String("cache-dir", "", "Cache directory (or set FOURPILLARS_CACHE_DIR)")
	pflag.Int("rate-limit", 0, "Report requests per minute per IP (or set FOURPILLARS_SERVER_RATE_LIMIT)")
	pflag.String("personality-endpoint", "", "Personality API endpoint (or set FOURPILLARS_PERSONALITY_ENDPOINT)")
}

var flagKeys = map[string]string{
	"port":                 "server.port",
	"cache-dir":            "cache.dir",
	"rate-limit":           "server.rate_limit",
	"personality-endpoint": "personality.endpoint",
}

func main() {
	pflag.Parse()

	if *showVersion {
		fmt.Println("saju Server v1.0.0")
		return
	}

	v := config.New()
	if err := config.BindFlags(v, pflag.CommandLine, flagKeys); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg, err := config.Load(v, *configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	level := cfg.Level()
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	// Log configuration (without exposing sensitive keys)
	logger.Info("Server configuration",
		"port", cfg.Server.Port,
		"verbose", *verbose,
		"cache_dir", cfg.Cache.Dir,
		"cache_disabled", cfg.Cache.Disabled,
		"rate_limit", cfg.Server.RateLimit,
		"calendar_sect", cfg.Calendar.Sect,
		"has_personality_endpoint", cfg.Personality.Endpoint != "",
		"has_personality_key", cfg.Personality.APIKey != "")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	observer, err := metrics.NewPrometheusObserver(metrics.DefaultNamespace, reg)
	if err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}

	var store *httpcache.Store
	if !cfg.Cache.Disabled {
		store, err = httpcache.New(ctx, httpcache.Options{Dir: cfg.Cache.Dir, TTL: cfg.Cache.TTL}, logger)
		if err != nil {
			return fmt.Errorf("creating response cache: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				logger.Error("Failed to close cache", "error", err)
			}
		}()
	}
	client := httpcache.NewClient(store, &http.Client{Timeout: 30 * time.Second}, logger)

	resolver := geo.NewResolver(logger,
		geo.WithEndpoint(cfg.Geo.Endpoint),
		geo.WithLanguage(cfg.Geo.Language),
		geo.WithTimeout(cfg.Geo.Timeout),
		geo.WithHTTPClient(client),
		geo.WithObserver(observer),
	)

	opts := []report.Option{
		report.WithResolver(resolver),
		report.WithCalendar(calendar.NewLunar(cfg.Calendar.Sect)),
		report.WithObserver(observer),
	}
	if cfg.Personality.Endpoint != "" {
		opts = append(opts, report.WithPersonality(personality.New(cfg.Personality.Endpoint, logger,
			personality.WithHTTPClient(client),
			personality.WithAPIKey(cfg.Personality.APIKey),
			personality.WithTimeout(cfg.Personality.Timeout),
			personality.WithObserver(observer),
		)))
	}

	s := newServer(serverDeps{
		analyzer:  report.New(logger, opts...),
		resolver:  resolver,
		observer:  observer,
		gatherer:  reg,
		logger:    logger,
		rateLimit: cfg.Server.RateLimit,
		geoLimit:  cfg.Geo.Limit,
	})
	defer s.close()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           s.handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}
