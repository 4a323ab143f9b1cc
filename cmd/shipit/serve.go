package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/relenghq/shipit/intake"
	"github.com/relenghq/shipit/server"
	"github.com/relenghq/shipit/store"
)

func serveCmd(opts *options) *cobra.Command {
	var noIntake bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON exports and consume build events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, noIntake)
		},
	}

	cmd.Flags().BoolVar(&noIntake, "no-intake", false, "Serve exports without consuming events from NATS")
	return cmd
}

func runServe(opts *options, noIntake bool) error {
	logger := setupLogging(opts.logLevel)

	cfg, err := loadConfig(opts, logger)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var source server.Source
	if path := snapshotPath(opts, cfg); path != "" {
		snap, err := store.LoadSnapshot(path)
		if err != nil {
			return err
		}
		source = server.SnapshotSource{Snapshot: snap}
		noIntake = true
	} else {
		nc, js, err := connectNATS(cfg)
		if err != nil {
			return err
		}
		defer nc.Close()

		st, err := store.New(ctx, js)
		if err != nil {
			return err
		}
		source = st

		if !noIntake {
			consumer := intake.NewConsumer(intake.Config{Subject: cfg.NATS.EventSubject}, js, st, logger)
			if err := consumer.Start(ctx); err != nil {
				return fmt.Errorf("start intake: %w", err)
			}
			defer consumer.Stop()
		}
	}

	srv := server.New(cfg, source, logger)
	mux := http.NewServeMux()
	srv.RegisterHTTPHandlers(mux)

	if opts.configPath != "" {
		watcher, err := server.NewConfigWatcher(opts.configPath, srv, logger)
		if err != nil {
			return fmt.Errorf("create config watcher: %w", err)
		}
		if err := watcher.Start(ctx); err != nil {
			return fmt.Errorf("start config watcher: %w", err)
		}
		defer watcher.Stop()
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", cfg.HTTP.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
