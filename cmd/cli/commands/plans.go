package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tripmesh/concierge/internal/db/repos"
	"github.com/tripmesh/concierge/internal/services"
)

// GetPlansCmd returns the command group for trip plan operations
func GetPlansCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "Operate on trip plans",
	}
	cmd.AddCommand(getPlansRestoreCmd())
	return cmd
}

func getPlansRestoreCmd() *cobra.Command {
	var (
		planID          uint
		revisionID      uint
		expectedVersion int
		actor           string
	)

	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Restore a trip plan from a revision snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if planID == 0 || revisionID == 0 {
				return fmt.Errorf("--plan and --revision are required")
			}

			var expected *int
			if cmd.Flags().Changed("expected-version") {
				expected = &expectedVersion
			}

			planService := services.NewPlanService(repos.NewTripPlanRepository(database))
			result, err := planService.Restore(cmd.Context(), planID, revisionID, expected, actor)
			if err != nil {
				return fmt.Errorf("failed to restore plan: %w", err)
			}

			fmt.Printf("restored plan %d from version %d to version %d\n",
				planID, result.RestoredFromVersion, result.RestoredVersion)
			return nil
		},
	}

	cmd.Flags().UintVar(&planID, "plan", 0, "Plan ID")
	cmd.Flags().UintVar(&revisionID, "revision", 0, "Revision ID to restore from")
	cmd.Flags().IntVar(&expectedVersion, "expected-version", 0, "Expected current version (optional)")
	cmd.Flags().StringVar(&actor, "actor", "ops-cli", "Actor recorded on the revision")
	return cmd
}
