package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/logging"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "vtour",
	Short: "Virtual tour backend",
	Long: `vtour serves the REST API for building 360° virtual tours: tours,
panoramas, hotspots and image uploads.

Running without a subcommand starts the HTTP server.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if configPath != "" {
			os.Setenv("CONFIG_PATH", configPath)
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file (overrides CONFIG_PATH)")
	rootCmd.AddCommand(serveCmd, migrateCmd, createAdminCmd)
}

// bootstrap loads the configuration, sets up stdout logging and opens the
// database.
func bootstrap() (*config.Config, *gorm.DB, error) {
	logging.Setup("info")

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logging.Setup(cfg.Logging.Level)

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}
	slog.Info("database connected", "driver", cfg.Database.Driver)
	return cfg, db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}
}
