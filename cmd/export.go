package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/jobs-observatory/internal/csvexport"
	"github.com/JakeFAU/jobs-observatory/internal/snapshot"
)

// newExportCmd creates the 'export' subcommand.
func newExportCmd() *cobra.Command {
	var datasets []string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Writes CSV snapshots of the datasets to the blob store",
		Long: `Renders the same CSV files the /download routes serve and uploads them to
the configured blob backend (local directory or GCS bucket). When pubsub.topic
is set, each snapshot is announced with its URI, row count, and columns.
Empty datasets are skipped.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kinds := make([]csvexport.Kind, 0, len(datasets))
			for _, d := range datasets {
				kind, err := csvexport.ParseKind(d)
				if err != nil {
					return err
				}
				kinds = append(kinds, kind)
			}
			return runExport(cmd, kinds)
		},
	}
	cmd.Flags().StringSliceVar(&datasets, "dataset", nil, "dataset to export (stats, d3); repeat or comma-separate, default all")
	return cmd
}

func runExport(cmd *cobra.Command, kinds []csvexport.Kind) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	cfg := appInstance.Config()

	blobs, err := appInstance.BlobStore(ctx)
	if err != nil {
		return err
	}
	pub, err := appInstance.Publisher(ctx)
	if err != nil {
		return err
	}
	exporter, err := snapshot.NewExporter(
		appInstance.Service(),
		blobs,
		pub,
		snapshot.Config{
			Prefix:     cfg.Export.Prefix,
			Topic:      cfg.PubSub.Topic,
			HeaderMode: cfg.HeaderMode(),
		},
		appInstance.Logger().Named("snapshot"),
	)
	if err != nil {
		return err
	}

	events, err := exporter.Run(ctx, kinds...)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	appInstance.Logger().Info("export finished", zap.Int("snapshots", len(events)))

	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, ev := range events {
		if err := enc.Encode(ev); err != nil {
			return fmt.Errorf("write event: %w", err)
		}
	}
	return nil
}
