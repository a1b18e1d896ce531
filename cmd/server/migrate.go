package main

import (
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/database"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer closeDB(db)

		if err := database.Migrate(db); err != nil {
			return err
		}
		slog.Info("migration complete")
		return nil
	},
}
