package commands

import (
	"fmt"
	"strings"

	"feedbackapp/internal/models"
	contextutils "feedbackapp/internal/utils"

	"github.com/spf13/cobra"
)

func registerCmd(api API, prompt Prompter) *cobra.Command {
	var req models.RegisterRequest
	var role string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req.Role = models.Role(strings.ToLower(strings.TrimSpace(role)))

			password, err := prompt.Password("Password: ")
			if err != nil {
				return err
			}
			confirm, err := prompt.Password("Confirm password: ")
			if err != nil {
				return err
			}
			if password != confirm {
				return contextutils.NewValidationError("Passwords do not match", "")
			}
			req.Password = password

			msg, err := api.Register(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&role, "role", string(models.RoleCustomer), "Account role (customer or manager)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func loginCmd(api API, prompt Prompter) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if email == "" {
				if email, err = prompt.Line("Email: "); err != nil {
					return err
				}
			}
			password, err := prompt.Password("Password: ")
			if err != nil {
				return err
			}

			user, err := api.Login(cmd.Context(), strings.TrimSpace(email), password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s <%s> (%s)\n", user.Name, user.Email, user.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (prompted when omitted)")
	return cmd
}

func logoutCmd(api API) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := api.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func whoamiCmd(api API) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			profile, err := api.Profile(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\nRole: %s\nID: %d\n", profile.Name, profile.Email, profile.Role, profile.ID)
			return nil
		},
	}
}
