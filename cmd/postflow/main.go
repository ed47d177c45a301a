package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rpggio/postflow/internal/app"
	"github.com/rpggio/postflow/internal/config"
	"github.com/rpggio/postflow/internal/sqlite"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "postflow",
	Short: "postflow - post-production tracking for a video studio",
	Long: `postflow tracks projects through recording, editing and client revision
cycles, estimates delivery milestones and serves a REST API and MCP tools.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(serveCmd(), estimateCmd(), planCmd(), keysCmd())
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads config and builds the logger. Logs go to stderr in stdio mode
// to keep stdout clean for JSON-RPC, and to the log file when one is set.
func setup(stdio bool) (config.Config, *slog.Logger, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("config error: %w", err)
	}
	if stdio {
		cfg.Transport.Mode = "stdio"
	}

	cleanup := func() {}
	logWriter := io.Writer(os.Stdout)
	if cfg.Transport.Mode == "stdio" {
		logWriter = os.Stderr
	}
	if cfg.Log.Path != "" {
		fileWriter, file, err := newLogFileWriter(cfg.Log.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			cleanup = func() { _ = file.Close() }
			logWriter = fileWriter
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))
	return cfg, logger, cleanup, nil
}

// openApp opens and migrates the database and assembles the stack.
func openApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app.App, error) {
	if err := ensureDBDir(cfg.DB.Path); err != nil {
		return nil, fmt.Errorf("prepare database path: %w", err)
	}
	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.RunMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	a, err := app.New(ctx, cfg, db, logger, app.Options{})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return a, nil
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
