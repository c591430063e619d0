// Package main provides the main entry point for the feedback service admin CLI tool.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"feedbackapp/cmd/adm/commands"
	"feedbackapp/internal/config"
	"feedbackapp/internal/database"
	"feedbackapp/internal/observability"
	"feedbackapp/internal/services"
	"feedbackapp/internal/version"

	"github.com/spf13/cobra"
)

const adminServiceName = "feedback-admin"

func main() {
	ctx := context.Background()

	// Set default config file if not already set
	if os.Getenv(config.ConfigFileEnv) == "" {
		for _, path := range []string{"../config.yaml", "../../config.yaml", "config.yaml"} {
			if _, err := os.Stat(path); err == nil {
				if err := os.Setenv(config.ConfigFileEnv, path); err != nil {
					fmt.Fprintf(os.Stderr, "Failed to set %s environment variable: %v\n", config.ConfigFileEnv, err)
					os.Exit(1)
				}
				break
			}
		}
	}

	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Disable all OpenTelemetry features for admin CLI to avoid connection errors
	cfg.OpenTelemetry.EnableTracing = false
	cfg.OpenTelemetry.EnableMetrics = false
	cfg.OpenTelemetry.EnableLogging = false

	_, _, logger, err := observability.SetupObservabilityWithLevel(&cfg.OpenTelemetry, adminServiceName, "error")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize observability: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	// No migrations for the admin tool
	db, err := database.NewManager(logger).InitDBWithoutMigrations(ctx, cfg.Database)
	if err != nil {
		logger.Error(ctx, "Failed to connect to database", err)
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn(ctx, "Warning: failed to close database connection", map[string]interface{}{"error": err.Error()})
		}
	}()

	rootCmd := newRootCommand(db, cfg, logger)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// newRootCommand wires the admin commands to services backed by db.
func newRootCommand(db *sql.DB, cfg *config.Config, logger *observability.Logger) *cobra.Command {
	userService := services.NewUserService(db, logger)
	productService := services.NewProductService(db, logger)
	feedbackStore := services.NewFeedbackService(db, logger)

	rootCmd := &cobra.Command{
		Use:   "adm",
		Short: "Feedback Service Administration Tool",
		Long: `Feedback Service Administration Tool

Manages user accounts, seeds the product catalog and inspects submitted feedback
directly against the database.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, _ []string) {
			if err := cmd.Help(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error showing help: %v\n", err)
			}
		},
	}

	rootCmd.AddCommand(commands.UserCommands(userService, logger, commands.TerminalPasswordReader))
	rootCmd.AddCommand(commands.ProductCommands(productService, logger))
	rootCmd.AddCommand(commands.FeedbackCommands(feedbackStore, logger))
	rootCmd.AddCommand(commands.DatabaseCommands(userService, logger, db, cfg))
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Info(adminServiceName))
		},
	})

	return rootCmd
}
