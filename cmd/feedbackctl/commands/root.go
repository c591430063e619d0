// Package commands implements the feedbackctl subcommands on top of the API client.
package commands

import (
	"context"
	"fmt"

	"feedbackapp/internal/models"
	"feedbackapp/internal/version"

	"github.com/spf13/cobra"
)

// ServiceName identifies the command line client in version output and telemetry.
const ServiceName = "feedbackctl"

// API is the part of client.Client the commands use.
type API interface {
	Register(ctx context.Context, req models.RegisterRequest) (string, error)
	Login(ctx context.Context, email, password string) (*models.UserSummary, error)
	Logout(ctx context.Context) error
	Products(ctx context.Context) []models.ProductSummary
	Submit(ctx context.Context, req models.SubmissionRequest) (*models.Feedback, error)
	History(ctx context.Context) ([]models.Feedback, error)
	Triage(ctx context.Context, status, search string) ([]models.Feedback, error)
	Stats(ctx context.Context) (models.FeedbackStats, error)
	SetStatus(ctx context.Context, id, status string) (*models.Feedback, error)
	Profile(ctx context.Context) (*models.UserProfile, error)
	Version(ctx context.Context) (version.BuildInfo, error)
}

// Prompter asks the user for input the flags did not supply.
type Prompter struct {
	// Line reads one line of visible input.
	Line func(prompt string) (string, error)
	// Password reads one line without echo.
	Password func(prompt string) (string, error)
}

// NewRootCommand builds the feedbackctl command tree.
func NewRootCommand(api API, prompt Prompter) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   ServiceName,
		Short: "Customer feedback command line client",
		Long: `Customer feedback command line client

Customers sign in to rate products and review their own feedback history.
Managers sign in to triage all feedback and move it through the review workflow.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, _ []string) {
			if err := cmd.Help(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error showing help: %v\n", err)
			}
		},
	}

	rootCmd.AddCommand(
		registerCmd(api, prompt),
		loginCmd(api, prompt),
		logoutCmd(api),
		whoamiCmd(api),
		productsCmd(api),
		submitCmd(api),
		historyCmd(api),
		triageCmd(api),
		statsCmd(api),
		setStatusCmd(api),
		versionCmd(api),
	)

	return rootCmd
}

func versionCmd(api API) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print client and server version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, version.Info(ServiceName))

			server, err := api.Version(cmd.Context())
			if err != nil {
				fmt.Fprintf(out, "server: unavailable (%v)\n", err)
				return nil
			}
			fmt.Fprintln(out, server)
			return nil
		},
	}
}
