// Command promocoach runs one interactive promotion-coaching session from the
// terminal: it loads the engineer's documents, drives the analysis workflow,
// and persists the resulting outputs.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/promocoach/promocoach/coach"
	"github.com/promocoach/promocoach/config"
	"github.com/promocoach/promocoach/internal/metrics"
	"github.com/promocoach/promocoach/internal/store"
	"github.com/promocoach/promocoach/llm"
	"github.com/promocoach/promocoach/progress"
	"github.com/promocoach/promocoach/state"
	"github.com/promocoach/promocoach/tools"
	"github.com/promocoach/promocoach/tools/coursesearch"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "promocoach:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath   = flag.String("config", "promocoach.yaml", "path to the configuration file")
		name         = flag.String("name", "", "engineer name (required)")
		currentLevel = flag.String("current-level", "", "current level, e.g. L4")
		targetLevel  = flag.String("target-level", "", "target level, e.g. L5")
		discipline   = flag.String("discipline", "software engineering", "engineering discipline")
	)
	flag.Parse()

	if *name == "" || *currentLevel == "" || *targetLevel == "" {
		flag.Usage()
		return fmt.Errorf("name, current-level, and target-level are required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logger, err := buildLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	outputs, err := store.Open(cfg.Store.Path, logger)
	if err != nil {
		return err
	}

	var cache coursesearch.Cache
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		cache = coursesearch.NewRedisCache(rdb)
	}

	registry := tools.NewRegistry(logger)
	registry.Register(coursesearch.NewTool(coursesearch.NewClient(coursesearch.Config{
		Endpoint:          cfg.Search.Endpoint,
		APIKey:            cfg.Search.APIKey,
		RequestsPerMinute: cfg.Search.RequestsPerMinute,
		CacheTTL:          cfg.Search.CacheTTL,
	}, cache, logger)))

	provider := llm.NewOpenAIProvider(llm.OpenAIConfig{
		APIKey:       cfg.LLM.APIKey,
		BaseURL:      cfg.LLM.BaseURL,
		DefaultModel: cfg.LLM.Model,
		Timeout:      cfg.LLM.Timeout,
	}, logger)

	documents, err := coach.LoadDocuments(cfg.Coach.DataDir, logger)
	if err != nil {
		return err
	}

	terminal := newTerminal(os.Stdin, os.Stdout)
	printer := progress.NewPrinter(os.Stdout)
	stepMetrics := metrics.NewStepMetrics("promocoach", prometheus.DefaultRegisterer)

	runner := coach.NewRunner(coach.Dependencies{
		Provider:    provider,
		Registry:    registry,
		Reviewer:    terminal,
		Preferences: terminal,
		Store:       outputs,
		Logger:      logger,
		Config: coach.Config{
			Model:          cfg.LLM.Model,
			Temperature:    cfg.Coach.Temperature,
			MaxFieldTokens: cfg.Coach.MaxFieldTokens,
		},
	}, printer.Observe, stepMetrics.Observe)

	profile := state.Profile{
		Name:         *name,
		CurrentLevel: *currentLevel,
		TargetLevel:  *targetLevel,
		Discipline:   *discipline,
	}
	printer.Seed(state.State{Profile: profile, Documents: documents})

	final, err := runner.Run(ctx, profile, documents)
	if err != nil {
		// Step failures are reported but outputs that did complete are kept.
		logger.Warn("session finished with errors", zap.Error(err))
	}

	terminal.PrintSummary(final)
	return nil
}

func buildLogger(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	var zc zap.Config
	if cfg.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	// Keep step notices and log lines apart: logs go to stderr.
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}
