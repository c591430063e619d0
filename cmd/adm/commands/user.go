package commands

import (
	"fmt"
	"strings"

	"feedbackapp/internal/models"
	"feedbackapp/internal/observability"
	"feedbackapp/internal/serviceinterfaces"
	contextutils "feedbackapp/internal/utils"
	"feedbackapp/internal/views"

	"github.com/spf13/cobra"
)

// UserCommands returns the user management commands
func UserCommands(userService serviceinterfaces.UserServiceInterface, logger *observability.Logger, readPassword PasswordReader) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "User management commands",
		Long: `User management commands for the feedback service.

Available commands:
  list     - List all users
  create   - Create a customer or manager account`,
	}

	userCmd.AddCommand(listUsersCmd(userService, logger))
	userCmd.AddCommand(createUserCmd(userService, logger, readPassword))

	return userCmd
}

func listUsersCmd(userService serviceinterfaces.UserServiceInterface, logger *observability.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all users",
		Long:  `List all user accounts with their role and creation date.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			logger.Info(ctx, "Admin command diagnostics", map[string]interface{}{"config_file": configFile()})

			users, err := userService.ListUsers(ctx)
			if err != nil {
				logger.Error(ctx, "Failed to get users", err)
				return contextutils.WrapError(err, "failed to get users")
			}

			logger.Info(ctx, "Listed users", map[string]interface{}{"total": len(users)})
			return views.Users(cmd.OutOrStdout(), users)
		},
	}
}

func createUserCmd(userService serviceinterfaces.UserServiceInterface, logger *observability.Logger, readPassword PasswordReader) *cobra.Command {
	var name, email, role, password string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Long: `Create a customer or manager account.

The password is prompted for unless --password is given.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			r := models.Role(strings.ToLower(strings.TrimSpace(role)))
			if !r.IsValid() {
				return contextutils.NewValidationError("Invalid role", fmt.Sprintf("role must be %q or %q", models.RoleCustomer, models.RoleManager))
			}

			if password == "" {
				var err error
				password, err = promptNewPassword(readPassword, cmd.ErrOrStderr())
				if err != nil {
					return err
				}
			}

			user, err := userService.CreateUser(ctx, name, email, password, r)
			if err != nil {
				logger.Error(ctx, "Failed to create user", err, map[string]interface{}{"email": email, "role": string(r)})
				return err
			}

			logger.Info(ctx, "Created user", map[string]interface{}{"user_id": user.ID, "role": string(user.Role)})
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s <%s> (ID: %d)\n", user.Role, user.Name, user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email address used to sign in")
	cmd.Flags().StringVar(&role, "role", string(models.RoleCustomer), "Account role (customer or manager)")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
