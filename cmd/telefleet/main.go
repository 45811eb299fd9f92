package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danhigham/telefleet/internal/config"
	"github.com/danhigham/telefleet/internal/store"
	"github.com/danhigham/telefleet/internal/telegram"
)

var (
	version = "dev"

	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "telefleet",
	Short: "Manage a fleet of Telegram accounts from a bot",
	Long: `telefleet keeps a set of Telegram user accounts and drives them from a
Telegram bot: log accounts in, inspect and edit their profiles, manage
their sessions and run bulk actions (send a message, join a channel, react
to a post) across all of them.

Quick Start:
  telefleet login          # add an account from the terminal
  telefleet accounts       # list stored accounts
  telefleet serve          # start the bot`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c",
		filepath.Join(config.Dir(), "config.yaml"), "path to the YAML config file")
	rootCmd.AddCommand(serveCmd, loginCmd, accountsCmd, deleteCmd)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// env is what every command needs: config, logger, store and platform.
type env struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    store.Store
	platform *telegram.GotdPlatform
}

// setup loads the config and opens the store. Logs always go to a file next
// to the config; console also writes them to stderr.
func setup(console bool) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config from %s: %w", configPath, err)
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel, filepath.Join(dir, "telefleet.log"), console)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("open store: %w", err)
	}
	logger.Debug("store opened",
		zap.String("driver", cfg.Storage.Driver),
		zap.String("path", cfg.Storage.Path),
	)

	return &env{
		cfg:      cfg,
		logger:   logger,
		store:    st,
		platform: telegram.NewGotdPlatform(cfg.Device, logger),
	}, nil
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		e.logger.Error("close store", zap.Error(err))
	}
	_ = e.logger.Sync()
}

func newLogger(level, path string, console bool) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	logCfg := zap.NewDevelopmentConfig()
	logCfg.Level = lvl
	logCfg.OutputPaths = []string{path}
	logCfg.ErrorOutputPaths = []string{path}
	if console {
		logCfg.OutputPaths = append(logCfg.OutputPaths, "stderr")
		logCfg.ErrorOutputPaths = append(logCfg.ErrorOutputPaths, "stderr")
	}

	logger, err := logCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return logger, nil
}
