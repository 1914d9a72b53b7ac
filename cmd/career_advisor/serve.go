package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/career-advisor/internal/server"
)

var (
	servePort      int
	servePublicURL string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long:  `Start an HTTP server that serves the advisor page and the JSON API for analyses and share links.`,
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config and PORT)")
	serveCmd.Flags().StringVar(&servePublicURL, "public-url", "", "Base URL used in share links (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	if servePublicURL != "" {
		cfg.Server.PublicBaseURL = servePublicURL
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	analyzer, closeAnalyzer, err := analyzerFactory(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer closeAnalyzer()

	srv, err := server.New(server.Config{
		Settings: cfg.Server,
		Analyzer: analyzer,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(cmd.Context())
}
