package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"bcrawatch/config"
	"bcrawatch/internal/history"
	"bcrawatch/internal/metrics"
	"bcrawatch/internal/pipeline"
	"bcrawatch/internal/publish"
	"bcrawatch/internal/source/bcra"
	"bcrawatch/internal/source/dolar"
	"bcrawatch/internal/source/extras"
	"bcrawatch/logger"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run executes the command line and returns the process exit code.
func run(args []string, stdout io.Writer) int {
	log := logger.GetLogger()

	// Load environment variables from .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Error loading .env file")
	}

	flags := flag.NewFlagSet("bcrawatch", flag.ContinueOnError)
	configPath := flags.String("config", config.DefaultPath, "Path to configuration file")
	once := flags.Bool("once", false, "Run a single refresh, print the snapshot and exit")
	text := flags.Bool("text", false, "With -once, print the dashboard as text instead of JSON")
	seriesID := flags.Int("series", 0, "Print the trailing history of a variable id and exit")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	path := config.ResolvePath(*configPath)
	env := config.AppEnvironment()
	if config.IsProductionLike(env) {
		if _, err := os.Stat(path); err != nil {
			log.WithError(err).WithFields(logger.Fields{"env": env, "path": path}).Error("configuration file required in this environment")
			return 1
		}
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		log.WithError(err).Error("Failed to load configuration")
		return 1
	}

	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		log.WithError(err).Error("Failed to configure logger")
		return 1
	}

	log.WithFields(logger.Fields{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
		"env":     env,
	}).Info("starting bcrawatch")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			log.WithFields(logger.Fields{"signal": sig.String()}).Info("shutdown signal received")
			cancel()
		case <-ctx.Done():
		}
	}()

	bcraClient := bcra.New(cfg.Sources.BCRA, cfg.Sources.UserAgent, log)

	if *seriesID != 0 {
		svc := history.NewService(bcraClient, cfg.History, log)
		series, err := svc.Series(ctx, *seriesID)
		if err != nil {
			log.WithError(err).Error("failed to fetch series")
			return 1
		}
		return printJSON(log, stdout, series)
	}

	if cfg.Metrics.CloudWatch.Enabled {
		if err := metrics.InitCloudWatch(ctx, cfg.Metrics.CloudWatch.Region, cfg.Metrics.CloudWatch.Namespace); err != nil {
			log.WithComponent("main").WithError(err).Warn("CloudWatch metrics disabled")
		}
	}

	sources := pipeline.Sources{Primary: bcraClient}
	if cfg.Sources.Extras.Enabled {
		sources.Secondary = extras.New(cfg.Sources.Extras, cfg.Sources.UserAgent, log)
	} else {
		log.WithComponent("main").Info("extras source disabled; derived fields will be unavailable")
	}
	if cfg.Sources.Dolar.Enabled {
		sources.Quotes = dolar.New(cfg.Sources.Dolar, cfg.Sources.UserAgent, log)
	}

	sinks, err := buildSinks(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Error("failed to create sinks")
		return 1
	}

	agg := pipeline.New(sources, pipeline.Options{
		Interval: cfg.Pipeline.RefreshInterval,
		Sinks:    sinks,
		Log:      log,
	})

	if *once {
		snap, err := agg.Refresh(ctx)
		if err != nil {
			log.WithError(err).Error("refresh failed")
			return 1
		}
		if *text {
			renderText(stdout, snap, time.Now(), agg.Interval())
			return 0
		}
		return printJSON(log, stdout, snap)
	}

	if strings.EqualFold(cfg.Logging.Level, logger.LevelReport) {
		metrics.StartReport(ctx, log, cfg.Metrics.ReportInterval)
	}

	if err := agg.Run(ctx); err != nil {
		log.WithError(err).Error("refresh loop failed")
		return 1
	}

	log.Info("bcrawatch stopped")
	return 0
}

func buildSinks(ctx context.Context, cfg *config.Config, log *logger.Log) ([]publish.Sink, error) {
	var sinks []publish.Sink
	if cfg.Publish.Log {
		sinks = append(sinks, publish.NewLogSink(log))
	}
	if cfg.Publish.S3.Enabled {
		s3Sink, err := publish.NewS3Sink(ctx, cfg.Publish.S3, cfg.App.Version)
		if err != nil {
			return nil, fmt.Errorf("s3 sink: %w", err)
		}
		sinks = append(sinks, s3Sink)
	} else {
		log.WithComponent("main").Info("S3 publishing disabled")
	}
	return sinks, nil
}

func printJSON(log *logger.Log, w io.Writer, v any) int {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.WithError(err).Error("failed to encode output")
		return 1
	}
	return 0
}
