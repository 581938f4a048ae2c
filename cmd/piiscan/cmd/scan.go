package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/piiscan/internal/config"
	"github.com/dbsmedya/piiscan/internal/database"
	"github.com/dbsmedya/piiscan/internal/engine"
	"github.com/dbsmedya/piiscan/internal/lock"
	"github.com/dbsmedya/piiscan/internal/report"
)

var (
	scanForce       bool
	scanLockTimeout time.Duration
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Sample tables and scan them for personal data",
	Long: `Scan samples every table of the selected databases/schemas, matches the
sampled text values against the privacy pattern library and scores each table.

For each table the scan:
  1. Reads the row count and column layout from the catalog
  2. Samples up to --sample-size rows (full, random limit or block sample)
  3. Matches text columns against the pattern library
  4. Scores the table and assigns a HIGH, MEDIUM, LOW, EMPTY or ERROR risk level

On MySQL the scan holds a server-wide named lock so two scans never sample
the same server at once. Use --force to skip the lock.

Interrupting a scan (Ctrl+C) lets tables in progress finish and writes the
partial result.

Example:
  piiscan scan --config piiscan.yaml --container shop --workers 4`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().BoolVar(&scanForce, "force", false,
		"Scan without taking the server-wide scan lock")
	scanCmd.Flags().DurationVar(&scanLockTimeout, "lock-timeout", 0,
		"How long to wait for a running scan to release the lock")
}

func runScan(cmd *cobra.Command, args []string) error {
	sess, err := setup(context.Background())
	if err != nil {
		return err
	}
	defer sess.Close()
	cfg, eng, log := sess.cfg, sess.eng, sess.log

	// Handle graceful shutdown
	ctx := database.SetupSignalHandlerWithCallback(func(sig os.Signal) {
		log.Warnw("Received shutdown signal - finishing tables in progress...", "signal", sig.String())
	})

	if cfg.Source.Engine == config.EngineMySQL && !scanForce {
		scanLock, err := lock.NewAdvisoryLock(sess.db, lock.ScanLockName)
		if err != nil {
			return err
		}
		if err := scanLock.Acquire(ctx, scanLockTimeout); err != nil {
			if errors.Is(err, lock.ErrLockHeld) {
				return fmt.Errorf("another scan is already running against this server (use --force to override)")
			}
			return fmt.Errorf("failed to acquire scan lock: %w", err)
		}
		defer func() {
			releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := scanLock.Release(releaseCtx); err != nil {
				log.Warnf("Failed to release scan lock: %v", err)
			}
		}()
		log.Debugw("Acquired scan lock", "lock", scanLock.Name())
	}

	log.Infow("Starting scan",
		"config", GetConfigFile(),
		"engine", cfg.Source.Engine,
		"sample_size", eng.SampleSize(),
	)

	progress := func(container, table string, phase engine.Phase, percent float64) {
		log.Debugw("Progress",
			"container", container,
			"table", table,
			"phase", string(phase),
			"percent", percent,
		)
	}

	result, err := eng.Scan(ctx, cfg.Scan.Containers, progress)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	path, err := report.NewWriter(cfg.Output).WriteScan(result)
	if err != nil {
		return err
	}

	report.NewConsole(outputWriter, useColor()).ScanSummary(result)
	fmt.Fprintf(outputWriter, "\nScan document: %s\n", path)

	if result.Cancelled {
		log.Warn("Scan cancelled by user, partial result written")
	}
	return nil
}
