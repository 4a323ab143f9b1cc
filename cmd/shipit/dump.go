package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relenghq/shipit/store"
)

func dumpCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "Dump the store contents to a snapshot file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(opts, args[0])
		},
	}
	return cmd
}

func runDump(opts *options, path string) error {
	logger := setupLogging(opts.logLevel)

	cfg, err := loadConfig(opts, logger)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()
	nc, js, err := connectNATS(cfg)
	if err != nil {
		return err
	}
	defer nc.Close()

	st, err := store.New(ctx, js)
	if err != nil {
		return err
	}

	snap, err := st.Dump(ctx)
	if err != nil {
		return err
	}
	if err := store.SaveSnapshot(path, snap); err != nil {
		return err
	}

	logger.Info("Snapshot written",
		"path", path,
		"releases", len(snap.Releases),
		"events", len(snap.Events))
	return nil
}
