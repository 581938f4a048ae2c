package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/piiscan/internal/database"
	"github.com/dbsmedya/piiscan/internal/report"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Estimate scan cost from catalog metadata",
	Long: `Preview reads only catalog metadata (row counts and column types) and
estimates the size and time of a scan for every table. No table data is
sampled, so a preview is safe to run repeatedly against production.

The preview shows:
  - Scannable, empty and unreadable tables
  - Estimated sample memory and scan time
  - Large (1M+ rows) and slow tables worth reviewing
  - Recommendations before running a full scan

Example:
  piiscan preview --config piiscan.yaml --sample-size 200`,
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	sess, err := setup(context.Background())
	if err != nil {
		return err
	}
	defer sess.Close()
	cfg, eng, log := sess.cfg, sess.eng, sess.log

	ctx := database.SetupSignalHandler()

	log.Infow("Starting preview",
		"config", GetConfigFile(),
		"engine", cfg.Source.Engine,
	)

	result, err := eng.Preview(ctx, cfg.Scan.Containers)
	if err != nil {
		return fmt.Errorf("preview failed: %w", err)
	}

	path, err := report.NewWriter(cfg.Output).WritePreview(result)
	if err != nil {
		return err
	}

	report.NewConsole(outputWriter, useColor()).PreviewSummary(result)
	fmt.Fprintf(outputWriter, "\nAnalysis document: %s\n", path)
	return nil
}
