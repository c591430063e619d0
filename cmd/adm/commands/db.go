// Package commands provides CLI commands for the admin tool
package commands

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"feedbackapp/internal/config"
	"feedbackapp/internal/observability"
	"feedbackapp/internal/serviceinterfaces"
	contextutils "feedbackapp/internal/utils"

	"github.com/spf13/cobra"
)

// countedTables are reported by "db stats" in this order.
var countedTables = []string{"users", "products", "feedback"}

// DatabaseCommands returns the database management commands
func DatabaseCommands(userService serviceinterfaces.UserServiceInterface, logger *observability.Logger, db *sql.DB, cfg *config.Config) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
		Long: `Database management commands for the feedback service.

Available commands:
  stats     - Show database statistics
  reset     - Delete all users, products and feedback`,
	}

	dbCmd.AddCommand(statsCmd(logger, db, cfg.Database.URL))
	dbCmd.AddCommand(resetCmd(userService, logger, db, cfg))

	return dbCmd
}

func statsCmd(logger *observability.Logger, db *sql.DB, databaseURL string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Long:  `Show the connected database and row counts for users, products and feedback.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if db == nil {
				return contextutils.WrapErrorf(contextutils.ErrDatabaseConnection, "database connection not available")
			}

			logger.Info(ctx, "Diagnostic info", map[string]interface{}{"config_file": configFile(), "database_url": maskDatabaseURL(databaseURL)})

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Database: %s\n", getDatabaseInfo(ctx, db))
			fmt.Fprintf(out, "URL:      %s\n", maskDatabaseURL(databaseURL))

			counts := make(map[string]interface{}, len(countedTables))
			for _, table := range countedTables {
				n, err := countRows(ctx, db, table)
				if err != nil {
					logger.Error(ctx, "Failed to count rows", err, map[string]interface{}{"table": table})
					return err
				}
				counts[table] = n
				fmt.Fprintf(out, "%-9s %d\n", table+":", n)
			}

			logger.Info(ctx, "Database statistics", counts)
			return nil
		},
	}
}

// countRows counts the rows of one of countedTables.
func countRows(ctx context.Context, db *sql.DB, table string) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, contextutils.NewStorageError("failed to count "+table, err)
	}
	return n, nil
}

func resetCmd(userService serviceinterfaces.UserServiceInterface, logger *observability.Logger, db *sql.DB, cfg *config.Config) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all data",
		Long: `Permanently delete all users, products and feedback.

The configured manager account is recreated afterwards. Intended for local
development and testing only.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if db == nil {
				return contextutils.WrapErrorf(contextutils.ErrDatabaseConnection, "database connection not available")
			}

			fmt.Fprintln(out, "This will PERMANENTLY DELETE ALL DATA in the database!")
			fmt.Fprintf(out, "URL: %s\n", maskDatabaseURL(cfg.Database.URL))
			if !yes && !confirmReset(cmd.InOrStdin(), out) {
				fmt.Fprintln(out, "Reset cancelled.")
				return nil
			}

			logger.Info(ctx, "Resetting database", map[string]interface{}{"database_url": maskDatabaseURL(cfg.Database.URL)})
			if _, err := db.ExecContext(ctx, `TRUNCATE TABLE feedback, products, users RESTART IDENTITY CASCADE`); err != nil {
				logger.Error(ctx, "Failed to reset database", err)
				return contextutils.NewStorageError("failed to truncate tables", err)
			}
			fmt.Fprintln(out, "All tables emptied.")

			if cfg.Server.ManagerEmail != "" {
				if err := userService.EnsureManagerUser(ctx, cfg.Server.ManagerName, cfg.Server.ManagerEmail, cfg.Server.ManagerPassword); err != nil {
					logger.Error(ctx, "Failed to recreate manager user", err, map[string]interface{}{"email": cfg.Server.ManagerEmail})
					return err
				}
				fmt.Fprintf(out, "Manager user %s recreated.\n", cfg.Server.ManagerEmail)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")
	return cmd
}

// confirmReset asks until the answer is yes or no. Anything but "yes" cancels at end of input.
func confirmReset(in io.Reader, out io.Writer) bool {
	reader := bufio.NewReader(in)
	for {
		fmt.Fprint(out, "Are you sure you want to reset the database? (type 'yes' to confirm): ")
		response, err := reader.ReadString('\n')
		response = strings.TrimSpace(strings.ToLower(response))

		switch {
		case response == "yes":
			return true
		case response == "no" || response == "" || err != nil:
			return false
		default:
			fmt.Fprintln(out, "Please type 'yes' to confirm or 'no' to cancel.")
		}
	}
}
