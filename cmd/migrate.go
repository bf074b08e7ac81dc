package cmd

import (
	"timesheet/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	db, err := openDatabase(cmd)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.SeedAdmin(cmd.Context(), db, cfg.Seed.AdminPassword, logger); err != nil {
		return err
	}
	logger.WithField("driver", cfg.Database.Driver).Info("schema is up to date")
	return nil
}
