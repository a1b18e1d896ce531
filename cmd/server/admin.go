package main

import (
	"fmt"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/vtour-backend/internal/storage"
	"github.com/spf13/cobra"
)

var (
	adminName     string
	adminEmail    string
	adminPassword string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator or promote an existing user",
	Long: `Create an administrator account. If a user with the email already
exists it is promoted to admin, reactivated and given the new password.

Flags fall back to ADMIN_NAME, ADMIN_EMAIL and ADMIN_PASSWORD.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer closeDB(db)

		if err := database.Migrate(db); err != nil {
			return err
		}

		name, email, password := adminName, adminEmail, adminPassword
		if name == "" {
			name = cfg.Admin.Name
		}
		if email == "" {
			email = cfg.Admin.Email
		}
		if password == "" {
			password = cfg.Admin.Password
		}
		if email == "" || password == "" {
			return fmt.Errorf("admin email and password are required")
		}

		store, err := storage.NewLocalStore(cfg.Upload.Dir)
		if err != nil {
			return err
		}
		tokens := services.NewTokenService(cfg.JWT)
		authService := services.NewAuthService(db, tokens, services.NewAssets(store, cfg.Upload.PublicPath))

		user, err := authService.CreateAdmin(name, email, password)
		if err != nil {
			return err
		}
		slog.Info("admin ready", "user_id", user.ID.String(), "email", user.Email)
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminName, "name", "", "Display name")
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "Email address")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "Password (at least 8 characters)")
}
