package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"taming/internal/config"
	"taming/internal/generation"
	"taming/internal/protocol"
	"taming/internal/store"
)

var (
	// Global flags
	verbose    bool
	configPath string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "taming",
	Short: "The Taming Theory - four-phase judgment-anchored content pipeline",
	Long: `taming drives a four-phase creative pipeline: a structural Judgment is
confirmed as the semantic anchor, then Copy, Visual and Coach phases build on
it. Every run is validated for drift against the anchor and recorded in
history.

Set TAMING_MOCK=1 to work offline with deterministic fixtures.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// app bundles the wired components every command needs.
type app struct {
	cfg      *config.Config
	store    *store.SnapshotStore
	session  *protocol.Session
	pipeline *generation.Pipeline

	// generator is the live source, nil in mock mode. Translation is a live
	// service capability and has no offline fixture.
	generator *generation.Generator
}

func (a *app) Close() {
	if a.store != nil {
		_ = a.store.Close()
	}
}

// newApp loads config, opens the snapshot store and restores the session.
func newApp() (*app, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	snap, err := store.Open(cfg.SnapshotPath(), logger)
	if err != nil {
		return nil, err
	}

	state, err := snap.Load()
	if err != nil {
		snap.Close()
		return nil, err
	}
	session := protocol.NewSession(state, snap, logger)

	var source generation.PhaseSource
	var generator *generation.Generator
	if cfg.Mock {
		logger.Info("mock mode enabled, serving offline fixtures")
		source = generation.NewMockSource()
	} else {
		if cfg.APIKey == "" {
			snap.Close()
			return nil, fmt.Errorf("no API key configured: set GEMINI_API_KEY or api_key in %s (or TAMING_MOCK=1 for offline fixtures)", path)
		}
		clientCfg := generation.DefaultGeminiConfig(cfg.APIKey)
		clientCfg.Model = cfg.Model
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = cfg.BaseURL
		}
		clientCfg.Timeout = cfg.Timeout()
		client := generation.NewGeminiClient(clientCfg, logger)

		retry := generation.DefaultRetryConfig()
		retry.MaxRetries = cfg.MaxRetries
		generator = generation.NewGenerator(client, retry, logger, nil)
		source = generator
	}

	return &app{
		cfg:       cfg,
		store:     snap,
		session:   session,
		pipeline:  generation.NewPipeline(source, logger),
		generator: generator,
	}, nil
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default .taming/config.json)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(sceneCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(translateCmd)
	rootCmd.AddCommand(resetCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
