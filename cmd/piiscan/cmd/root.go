package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/piiscan/internal/config"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// CLI flags that override config file values
var (
	cfgFile    string
	logLevel   string
	logFormat  string
	sampleSize int
	workers    int
	containers []string
	outputDir  string
	noColor    bool
)

var rootCmd = &cobra.Command{
	Use:   "piiscan",
	Short: "Privacy scanner for MySQL and Oracle",
	Long: `A CLI tool that finds personal data in MySQL and Oracle databases by
sampling rows and matching them against a library of privacy patterns.

Features:
  - Read-only catalog preview with cost estimates before any data is sampled
  - Per-table sampling (full, random limit or block sample)
  - Masked sample values only, raw matches never leave the scanner
  - Per-table privacy score and HIGH/MEDIUM/LOW risk level
  - JSON scan documents for dashboards and reports`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "piiscan.yaml",
		"Path to configuration file")

	// Logging overrides
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")

	// Scan overrides
	rootCmd.PersistentFlags().IntVar(&sampleSize, "sample-size", 0,
		"Override rows sampled per table (10-1000)")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0,
		"Override tables scanned concurrently per container")
	rootCmd.PersistentFlags().StringSliceVar(&containers, "container", nil,
		"Limit the run to these databases/schemas (repeatable or comma separated)")

	// Output overrides
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "",
		"Override directory for JSON documents")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false,
		"Disable colored console output")
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// GetCLIOverrides returns the CLI flag override values
func GetCLIOverrides() config.Overrides {
	return config.Overrides{
		LogLevel:   logLevel,
		LogFormat:  logFormat,
		SampleSize: sampleSize,
		Workers:    workers,
		Containers: containers,
		OutputDir:  outputDir,
	}
}
