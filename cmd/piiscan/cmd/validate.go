package cmd

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/piiscan/internal/config"
	"github.com/dbsmedya/piiscan/internal/database"
	"github.com/dbsmedya/piiscan/internal/engine"
	"github.com/dbsmedya/piiscan/internal/logger"
)

var validateSkipConnect bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and check connectivity",
	Long: `Validate checks the configuration file and, unless --skip-connect is
given, connects to the server to make sure a scan can run.

Checks performed:
  - Configuration syntax and required fields
  - Sample size, workers and timeouts
  - Extra pattern regular expressions and keywords
  - Database connectivity, with a diagnosis on failure
  - Containers visible to the scan user

Example:
  piiscan validate --config piiscan.yaml`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateSkipConnect, "skip-connect", false,
		"Only check the configuration file")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ApplyOverrides(GetCLIOverrides())

	fmt.Fprintf(outputWriter, "\n=== Configuration Validation ===\n")
	fmt.Fprintf(outputWriter, "Config file: %s\n", configFile)
	fmt.Fprintf(outputWriter, "Engine: %s\n", cfg.EngineLabel())
	fmt.Fprintf(outputWriter, "Target: %s\n\n", database.RedactedDSN(&cfg.Source))

	if err := cfg.Validate(); err != nil {
		var verrs config.ValidationErrors
		if errors.As(err, &verrs) {
			for _, v := range verrs {
				fmt.Fprintf(outputWriter, "❌ %s\n", v.Error())
			}
		}
		return fmt.Errorf("configuration is invalid")
	}
	fmt.Fprintln(outputWriter, "✅ Configuration is valid")

	if validateSkipConnect {
		fmt.Fprintln(outputWriter, "=== Validation Complete (connectivity not checked) ===")
		return nil
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	db, closeDB, err := openDatabase(ctx, cfg, log)
	if err != nil {
		var ce *database.ConnectivityError
		if errors.As(err, &ce) {
			fmt.Fprintf(outputWriter, "❌ Connection failed: %s\n", ce.Kind)
		}
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() { _ = closeDB() }()
	fmt.Fprintln(outputWriter, "✅ Connected")

	eng, err := engine.Build(cfg, db, log)
	if err != nil {
		return fmt.Errorf("failed to build engine: %w", err)
	}

	user, system, err := eng.ListContainers(ctx)
	if err != nil {
		fmt.Fprintf(outputWriter, "❌ Cannot list containers: %v\n", err)
		return fmt.Errorf("validation failed")
	}
	fmt.Fprintf(outputWriter, "✅ %d user containers visible (%d system skipped)\n", len(user), len(system))

	for _, want := range cfg.Scan.Containers {
		match := func(n string) bool { return strings.EqualFold(n, want) }
		if !slices.ContainsFunc(user, match) && !slices.ContainsFunc(system, match) {
			fmt.Fprintf(outputWriter, "⚠️  Container %q not found\n", want)
		}
	}

	fmt.Fprintln(outputWriter, "=== Validation Complete ===")
	return nil
}
