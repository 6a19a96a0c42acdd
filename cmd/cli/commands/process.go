package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tripmesh/concierge/config"
	"github.com/tripmesh/concierge/internal/db/repos"
	"github.com/tripmesh/concierge/internal/services"
)

// GetProcessCmd returns the command that processes due reply jobs once
func GetProcessCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Claim and process due reply jobs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			queue := services.NewReplyQueueService(
				config.SettingsFromEnv(),
				repos.NewReplyJobRepository(database),
				repos.NewBookingRepository(database),
				repos.NewHostRepository(database),
				repos.NewMessageRepository(database),
			)

			stats, err := queue.ProcessDue(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("failed to process due jobs: %w", err)
			}

			fmt.Printf("claimed=%d done=%d failed=%d cancelled=%d\n",
				stats.Claimed, stats.Done, stats.Failed, stats.Cancelled)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 10, "Maximum number of jobs to process")
	return cmd
}
