package main

import (
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/azenia/website/internal/config"
	"github.com/azenia/website/internal/db"
	"github.com/azenia/website/internal/email"
	"github.com/azenia/website/internal/logger"
	"github.com/azenia/website/internal/relay"
	"github.com/azenia/website/internal/server"
	"github.com/azenia/website/internal/storage"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long:  `Start the HTTP server that renders the site pages and exposes the JSON API.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
	}

	if err := logger.Setup(cfg.Logger); err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer logger.Cleanup()

	ctx := cmd.Context()
	database, err := db.Connect(ctx, cfg.DB.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	uploads := storage.NewClient(cfg.Store.URL, cfg.Store.ServiceRoleKey, &http.Client{Timeout: 30 * time.Second})

	var mailer relay.Mailer
	if cfg.Email.Enabled() {
		mailer = email.NewClient(cfg.Email.APIKey, email.WithBaseURL(cfg.Email.BaseURL))
	} else {
		log.Warn("RESEND_API_KEY not set, notification emails are disabled")
	}

	srv, err := server.New(server.Deps{
		Config:   cfg,
		Store:    database,
		Uploader: uploads,
		Mailer:   mailer,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(ctx)
}
