package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/relenghq/shipit/export"
)

func statusCmd(opts *options) *cobra.Command {
	var withEvents bool

	cmd := &cobra.Command{
		Use:   "status <releaseName>",
		Short: "Render a release's shipping status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(opts, args[0], withEvents)
		},
	}

	cmd.Flags().BoolVar(&withEvents, "with-events", false, "Attach the raw event rows")
	return cmd
}

func runStatus(opts *options, releaseName string, withEvents bool) error {
	logger := setupLogging(opts.logLevel)

	cfg, err := loadConfig(opts, logger)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()
	source, cleanup, err := openSource(ctx, opts, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	releases, err := source.ListReleases(ctx)
	if err != nil {
		return err
	}
	events, err := source.ListEvents(ctx)
	if err != nil {
		return err
	}

	var expectedPlatforms []string
	for _, r := range releases {
		if r.Name == releaseName {
			expectedPlatforms = r.PlatformList()
			break
		}
	}

	doc := export.New(cfg).Status(releaseName, events, expectedPlatforms, withEvents)
	data, err := export.MarshalSortedByKeys(doc)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, string(data))
	return nil
}
