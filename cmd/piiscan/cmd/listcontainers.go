package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/piiscan/internal/report"
)

var listContainersCmd = &cobra.Command{
	Use:     "list-containers",
	Aliases: []string{"ls"},
	Short:   "List databases/schemas visible to the scan user",
	Long: `List-containers shows the databases (MySQL) or schemas (Oracle) visible
to the configured user, split into user containers, which are scanned by
default, and system containers, which are skipped unless named explicitly
with --container.

Example:
  piiscan list-containers --config piiscan.yaml`,
	RunE: runListContainers,
}

func init() {
	rootCmd.AddCommand(listContainersCmd)
}

func runListContainers(cmd *cobra.Command, args []string) error {
	sess, err := setup(context.Background())
	if err != nil {
		return err
	}
	defer sess.Close()

	user, system, err := sess.eng.ListContainers(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list containers: %w", err)
	}

	report.NewConsole(outputWriter, useColor()).Containers(user, system)
	return nil
}
