package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/azenia/website/internal/config"
	"github.com/azenia/website/internal/db"
	"github.com/azenia/website/internal/server"
	"github.com/azenia/website/internal/types"
)

var (
	adminEmail    string
	adminPassword string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account",
	Long:  `Create an account that can sign in to the admin panel and manage jobs and client logos.`,
	RunE:  runCreateAdmin,
}

func init() {
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "Admin email address (required)")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "Admin password, at least 8 characters (required)")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(createAdminCmd)
}

func runCreateAdmin(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx := cmd.Context()
	database, err := db.Connect(ctx, cfg.DB.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	admins := server.NewAdminService(database, cfg.Auth)
	admin, err := admins.Create(ctx, &types.CreateAdminRequest{Email: adminEmail, Password: adminPassword})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created admin %s (%s)\n", admin.Email, admin.ID)
	return nil
}
