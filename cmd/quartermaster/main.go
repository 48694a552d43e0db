package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/quartermaster/internal/common"
	"github.com/ternarybob/quartermaster/internal/compare"
	"github.com/ternarybob/quartermaster/internal/extract"
	"github.com/ternarybob/quartermaster/internal/nse"
	"github.com/ternarybob/quartermaster/internal/pdftext"
	"github.com/ternarybob/quartermaster/internal/pipeline"
	"github.com/ternarybob/quartermaster/internal/storage/badger"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles  configPaths
	runOnce      = flag.Bool("once", false, "Run a single ingestion pass and exit")
	showVersion  = flag.Bool("version", false, "Print version information")
	showVersionV = flag.Bool("v", false, "Print version information (shorthand)")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()

	if *showVersion || *showVersionV {
		fmt.Printf("Quartermaster version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	// Local .env is optional; environment wins over config files either way.
	_ = godotenv.Load()

	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("quartermaster.toml"); err == nil {
			configFiles = append(configFiles, "quartermaster.toml")
		}
	}

	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	logger := common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	logger.Info().
		Strs("config_files", configFiles).
		Str("environment", config.Environment).
		Str("storage_path", config.Storage.Badger.Path).
		Int("lookback_days", config.Pipeline.LookbackDays).
		Msg("Configuration loaded")

	store, err := badger.NewManager(logger, &config.Storage.Badger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open storage")
		os.Exit(1)
	}
	defer store.Close()

	client := nse.NewClient(config.NSE, nse.WithLogger(logger))

	orchestrator := pipeline.NewOrchestrator(
		client,
		client,
		store,
		extract.NewRegistry(logger),
		extract.NewXBRLExtractor(logger),
		pdftext.NewConverter(logger),
		compare.NewEngine(store, logger),
		config.Pipeline,
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *runOnce {
		stored, err := orchestrator.RunIngestionPass(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("Ingestion pass failed")
			os.Exit(1)
		}
		logger.Info().Int("stored", stored).Msg("Single pass finished")
		return
	}

	scheduler := cron.New()
	_, err = scheduler.AddFunc(config.Pipeline.Schedule, func() {
		if _, err := orchestrator.RunIngestionPass(ctx); err != nil {
			logger.Error().Err(err).Msg("Scheduled ingestion pass failed")
		}
	})
	if err != nil {
		logger.Fatal().Err(err).Str("schedule", config.Pipeline.Schedule).Msg("Invalid pipeline schedule")
		os.Exit(1)
	}

	scheduler.Start()
	logger.Info().Str("schedule", config.Pipeline.Schedule).Msg("Scheduler started")

	// Run an immediate pass on startup so a fresh deployment is not idle
	// until the first cron tick.
	if _, err := orchestrator.RunIngestionPass(ctx); err != nil {
		logger.Error().Err(err).Msg("Startup ingestion pass failed")
	}

	<-ctx.Done()
	logger.Info().Msg("Shutdown signal received")

	cronCtx := scheduler.Stop()
	<-cronCtx.Done()
	logger.Info().Msg("Scheduler stopped")
}
