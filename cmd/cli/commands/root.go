package commands

import (
	"strconv"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/tripmesh/concierge/config"
	"github.com/tripmesh/concierge/internal/db"
)

// database is the shared connection used by all subcommands. The
// PersistentPreRunE opens it once per invocation.
var database *gorm.DB

func init() {
	RootCmd.AddCommand(GetProcessCmd())
	RootCmd.AddCommand(GetJobsCmd())
	RootCmd.AddCommand(GetPlansCmd())
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "concierge",
	Short: "Concierge CLI - operational commands for the reply subsystem",
	Long: `Concierge CLI runs operational commands for the synthetic reply
subsystem directly against the database: processing due jobs, inspecting
job state, and restoring trip plans.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		dbPort, _ := strconv.Atoi(config.GetEnv("DB_PORT", "5432"))
		var err error
		database, err = db.New(db.Options{
			Host:     config.GetEnv("DB_HOST", ""),
			User:     config.GetEnv("DB_USER", ""),
			Password: config.GetEnv("DB_PASSWORD", ""),
			DBName:   config.GetEnv("DB_NAME", ""),
			Port:     dbPort,
		})
		return err
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}
