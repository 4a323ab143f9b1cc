package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/relenghq/shipit/classify"
	"github.com/relenghq/shipit/export"
	"github.com/relenghq/shipit/model"
)

func exportCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render an export document to stdout",
	}

	cmd.AddCommand(&cobra.Command{
		Use:       "versions <firefox|mobile|thunderbird>",
		Short:     "Render a product's version map",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"firefox", "mobile", "thunderbird"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withExporter(opts, func(e *export.Exporter, releases []model.Release) ([]byte, error) {
				var versions map[string]string
				var err error
				switch args[0] {
				case "firefox":
					versions, err = e.FirefoxVersions(releases)
				case "mobile":
					versions, err = e.MobileVersions(releases)
				case "thunderbird":
					versions, err = e.ThunderbirdVersions(releases)
				default:
					return nil, fmt.Errorf("unknown product %q", args[0])
				}
				if err != nil {
					return nil, err
				}
				return export.MarshalSortedByKeys(versions)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "history <product> <major|stability|development|esr>",
		Short: "Render a product's release history for one channel",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, ok := parseCategory(args[1])
			if !ok {
				return fmt.Errorf("unknown category %q", args[1])
			}
			return withExporter(opts, func(e *export.Exporter, releases []model.Release) ([]byte, error) {
				pairs, err := e.History(releases, args[0], category)
				if err != nil {
					return nil, err
				}
				byVersion := make(map[string]string, len(pairs))
				for _, pair := range pairs {
					byVersion[pair[0]] = pair[1]
				}
				return export.MarshalSortedByValues(byVersion)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "primary-builds <product>",
		Short: "Render a product's per-locale version list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withExporter(opts, func(e *export.Exporter, releases []model.Release) ([]byte, error) {
				builds, err := e.PrimaryBuilds(releases, args[0])
				if err != nil {
					return nil, err
				}
				return export.MarshalSortedByKeys(builds)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "l10n <releaseName>",
		Short: "Render a release's locale changeset document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withExporter(opts, func(e *export.Exporter, releases []model.Release) ([]byte, error) {
				doc, err := e.LocaleExport(releases, args[0])
				if err != nil {
					return nil, err
				}
				return export.MarshalSortedByKeys(doc)
			})
		},
	})

	return cmd
}

func parseCategory(name string) (classify.Category, bool) {
	switch name {
	case "major":
		return classify.CategoryMajor, true
	case "stability":
		return classify.CategoryStability, true
	case "development", "dev":
		return classify.CategoryDev, true
	case "esr":
		return classify.CategoryESR, true
	default:
		return "", false
	}
}

// withExporter loads the config and data source, runs the render function,
// and writes its document to stdout.
func withExporter(opts *options, render func(*export.Exporter, []model.Release) ([]byte, error)) error {
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

	data, err := render(export.New(cfg), releases)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, string(data))
	return nil
}
