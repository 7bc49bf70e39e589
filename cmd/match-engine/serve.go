package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/job-matcher/internal/cache"
	"github.com/jonathan/job-matcher/internal/config"
	"github.com/jonathan/job-matcher/internal/corpus"
	"github.com/jonathan/job-matcher/internal/fusion"
	"github.com/jonathan/job-matcher/internal/logger"
	"github.com/jonathan/job-matcher/internal/matching"
	"github.com/jonathan/job-matcher/internal/server"
	"github.com/jonathan/job-matcher/internal/types"
)

var serveCommand = &cobra.Command{
	Use:   "serve",
	Short: "Run the matching HTTP API server",
	Long: `Starts the REST API serving POST /api/match against the job corpus.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runServeCmd,
}

var (
	serveConfigPath  string
	serveAddr        string
	serveDatabaseURL string
	serveRateLimit   int
	serveVerbose     bool
	serveJSONLogs    bool
)

func init() {
	serveCommand.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	serveCommand.Flags().StringVar(&serveAddr, "addr", "", "HTTP listen address (defaults to :8080)")
	serveCommand.Flags().StringVar(&serveDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	serveCommand.Flags().IntVar(&serveRateLimit, "rate-limit", 0, "Match requests per minute per client (0 disables)")
	serveCommand.Flags().BoolVarP(&serveVerbose, "verbose", "v", false, "Print detailed debug information")
	serveCommand.Flags().BoolVar(&serveJSONLogs, "json-logs", false, "Emit JSON-encoded logs")

	rootCmd.AddCommand(serveCommand)
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadServiceConfig(cmd, serveConfigPath)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.JSONLogs, cfg.Verbose)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	engine, err := buildEngine(cfg, log)
	if err != nil {
		return err
	}

	provider, closeProvider, err := buildProvider(cfg, log)
	if err != nil {
		return err
	}
	defer closeProvider()

	results := cache.New(cache.Config{
		TTL:      time.Duration(cfg.CacheTTLMinutes) * time.Minute,
		Capacity: cfg.CacheCapacity,
	}, log)

	srv := server.New(server.Config{
		Addr:               cfg.Addr,
		RateLimitPerMinute: serveRateLimit,
		Weights:            weightsOverride(cfg),
	}, engine, provider, results, log)

	return srv.Start()
}

// loadServiceConfig merges config file, CLI flags, environment and
// defaults, in that priority order.
func loadServiceConfig(cmd *cobra.Command, path string) (config.Config, error) {
	var cfg config.Config
	if path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	if cmd.Flags().Changed("addr") {
		cfg.Addr = serveAddr
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = serveDatabaseURL
	}
	if serveVerbose {
		cfg.Verbose = true
	}
	if serveJSONLogs {
		cfg.JSONLogs = true
	}

	cfg.ApplyEnv()
	cfg = cfg.MergeWithDefaults(config.DefaultConfig())

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// buildEngine maps service config onto the pipeline config.
func buildEngine(cfg config.Config, log *zap.Logger) (*matching.Engine, error) {
	engineCfg := matching.DefaultConfig()
	engineCfg.MaxJobs = cfg.MaxJobs
	engineCfg.Dispatch.MaxConcurrent = cfg.MaxConcurrent
	engineCfg.Dispatch.Timeout = time.Duration(cfg.TimeoutSecs) * time.Second

	engine, err := matching.New(engineCfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to build matching engine: %w", err)
	}
	return engine, nil
}

// buildProvider picks the corpus backend: PostgreSQL when configured,
// otherwise an empty in-memory corpus for callers supplying jobs inline.
func buildProvider(cfg config.Config, log *zap.Logger) (corpus.Provider, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Warn("no database configured, serving an empty in-memory corpus")
		return corpus.NewMemory(nil), func() {}, nil
	}

	store, err := corpus.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	log.Info("connected to corpus database")
	return store, store.Close, nil
}

// weightsOverride converts config weight overrides into fusion weights.
func weightsOverride(cfg config.Config) *types.Weights {
	s, l, k, ok := cfg.Weights()
	if !ok {
		return nil
	}
	w := fusion.NormalizeWeights(types.Weights{Semantic: s, Lexical: l, Skill: k})
	return &w
}
