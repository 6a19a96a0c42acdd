package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tripmesh/concierge/internal/db/models"
	"github.com/tripmesh/concierge/internal/db/repos"
)

// GetJobsCmd returns the command group for inspecting reply jobs
func GetJobsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect reply jobs",
	}
	cmd.AddCommand(getJobsListCmd())
	return cmd
}

func getJobsListCmd() *cobra.Command {
	var (
		status           string
		limit            int
		includeCancelled bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reply jobs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var statusFilter models.ReplyJobStatus
			if status != "" {
				parsed, err := models.ParseReplyJobStatus(status)
				if err != nil {
					return err
				}
				statusFilter = parsed
			}

			repo := repos.NewReplyJobRepository(database)
			jobs, err := repo.List(cmd.Context(), statusFilter, &models.ListOptions{
				Limit:            limit,
				IncludeCancelled: includeCancelled,
			})
			if err != nil {
				return fmt.Errorf("failed to list reply jobs: %w", err)
			}

			out, err := json.MarshalIndent(jobs, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "Filter by status (pending, processing, done, failed, cancelled)")
	cmd.Flags().IntVarP(&limit, "limit", "l", models.DefaultLimit, "Maximum number of jobs to list")
	cmd.Flags().BoolVar(&includeCancelled, "include-cancelled", false, "Include cancelled jobs")
	return cmd
}
