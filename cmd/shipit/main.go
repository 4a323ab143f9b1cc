// Package main provides the shipit binary entry point. Shipit tracks
// release records and build events, derives shipping status, and renders
// the JSON version and l10n exports downstream consumers poll.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/spf13/cobra"

	"github.com/relenghq/shipit/config"
	"github.com/relenghq/shipit/server"
	"github.com/relenghq/shipit/store"
)

const (
	Version = "0.1.0"
	appName = "shipit"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// options are the global flags shared by every subcommand.
type options struct {
	configPath   string
	snapshotPath string
	logLevel     string
}

func rootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Release version and shipping status engine",
		Long: `Shipit tracks release records and build automation events, derives
per-release shipping status, and renders the version, history and l10n
JSON exports.

Release records and events live in NATS JetStream KV; a YAML snapshot
file can stand in for the store for offline export runs.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&opts.snapshotPath, "snapshot", "", "Read data from a snapshot file instead of NATS")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(serveCmd(opts))
	cmd.AddCommand(exportCmd(opts))
	cmd.AddCommand(statusCmd(opts))
	cmd.AddCommand(dumpCmd(opts))
	cmd.AddCommand(configCmd(opts))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", appName, Version)
		},
	})

	return cmd
}

// setupLogging configures the default slog logger and returns it.
func setupLogging(logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// loadConfig resolves the configuration: an explicit --config path wins,
// otherwise the layered user and project config lookup applies.
func loadConfig(opts *options, logger *slog.Logger) (*config.Config, error) {
	if opts.configPath != "" {
		cfg, err := config.LoadFromFile(opts.configPath)
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		return cfg, nil
	}
	return config.NewLoader(logger).Load()
}

// snapshotPath resolves the snapshot file to use: the --snapshot flag wins,
// then the store.snapshot config field. Empty means read from NATS.
func snapshotPath(opts *options, cfg *config.Config) string {
	if opts.snapshotPath != "" {
		return opts.snapshotPath
	}
	return cfg.Store.SnapshotPath
}

// openSource builds the data source for read-only commands: a snapshot file
// when requested, the NATS store otherwise. The returned cleanup closes the
// NATS connection when one was opened.
func openSource(ctx context.Context, opts *options, cfg *config.Config) (server.Source, func(), error) {
	if path := snapshotPath(opts, cfg); path != "" {
		snap, err := store.LoadSnapshot(path)
		if err != nil {
			return nil, nil, err
		}
		return server.SnapshotSource{Snapshot: snap}, func() {}, nil
	}

	nc, js, err := connectNATS(cfg)
	if err != nil {
		return nil, nil, err
	}
	st, err := store.New(ctx, js)
	if err != nil {
		nc.Close()
		return nil, nil, err
	}
	return st, nc.Close, nil
}

func connectNATS(cfg *config.Config) (*nats.Conn, jetstream.JetStream, error) {
	nc, err := nats.Connect(cfg.NATS.URL, nats.Name(appName))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to NATS at %s: %w", cfg.NATS.URL, err)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("create jetstream context: %w", err)
	}
	return nc, js, nil
}
