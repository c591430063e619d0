package commands

import (
	"feedbackapp/internal/observability"
	"feedbackapp/internal/serviceinterfaces"
	"feedbackapp/internal/triage"
	contextutils "feedbackapp/internal/utils"
	"feedbackapp/internal/views"

	"github.com/spf13/cobra"
)

// FeedbackCommands returns the feedback inspection commands. They read the store
// directly and are not subject to role checks.
func FeedbackCommands(store serviceinterfaces.FeedbackStore, logger *observability.Logger) *cobra.Command {
	feedbackCmd := &cobra.Command{
		Use:   "feedback",
		Short: "Feedback inspection commands",
	}

	var status, search string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all feedback",
		Long: `List all feedback, newest first, with per-status counts.

--status narrows to one status (or "all"); --search matches the message or
customer name, case-insensitively.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			filter, err := triage.ParseStatusFilter(status)
			if err != nil {
				return err
			}

			all, err := store.ListAllFeedback(ctx)
			if err != nil {
				logger.Error(ctx, "Failed to list feedback", err)
				return contextutils.WrapError(err, "failed to list feedback")
			}

			filtered := triage.Apply(all, triage.Query{Status: filter, Search: search})
			logger.Info(ctx, "Listed feedback", map[string]interface{}{
				"total":   len(all),
				"matched": len(filtered),
			})
			return views.Triage(cmd.OutOrStdout(), filtered, triage.ComputeStats(all))
		},
	}
	listCmd.Flags().StringVar(&status, "status", "", "Only show feedback with this status (pending, reviewed, resolved, rejected, all)")
	listCmd.Flags().StringVar(&search, "search", "", "Case-insensitive text search")

	feedbackCmd.AddCommand(listCmd)
	return feedbackCmd
}
