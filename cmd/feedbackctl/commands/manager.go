package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"feedbackapp/internal/models"
	"feedbackapp/internal/triage"
	contextutils "feedbackapp/internal/utils"
	"feedbackapp/internal/views"

	"github.com/spf13/cobra"
)

func triageCmd(api API) *cobra.Command {
	var status, search string
	var interactive bool

	cmd := &cobra.Command{
		Use:   "triage",
		Short: "List all feedback with per-status counts (managers)",
		Long: `List all feedback with per-status counts (managers).

With --interactive the list stays open and reads commands from stdin:
  status <pending|reviewed|resolved|rejected|all>   change the status filter
  search [text]                                     change or clear the search
  set <id> <status>                                 move feedback to a new status
  reload                                            fetch the collection again
  quit`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			filter, err := triage.ParseStatusFilter(status)
			if err != nil {
				return err
			}
			q := triage.Query{Status: filter, Search: search}

			all, err := api.Triage(ctx, "", "")
			if err != nil {
				return err
			}
			view := triage.NewView(all)

			if !interactive {
				return views.Triage(cmd.OutOrStdout(), view.Apply(q), view.Stats())
			}
			return runTriageConsole(ctx, api, view, q, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Only show one status (pending, reviewed, resolved, rejected, all)")
	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive text in the message or customer name")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Keep the list open and read triage commands from stdin")
	return cmd
}

// runTriageConsole renders the view, then applies one command per input line until quit
// or end of input. Command errors are reported and the console keeps running.
func runTriageConsole(ctx context.Context, api API, view *triage.View, q triage.Query, in io.Reader, out io.Writer) error {
	render := func() error {
		if err := views.Triage(out, view.Apply(q), view.Stats()); err != nil {
			return err
		}
		_, err := fmt.Fprint(out, "> ")
		return err
	}
	if err := render(); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		var err error
		switch strings.ToLower(fields[0]) {
		case "quit", "exit", "q":
			return nil
		case "status":
			var filter triage.StatusFilter
			if filter, err = triage.ParseStatusFilter(strings.Join(fields[1:], " ")); err == nil {
				q.Status = filter
			}
		case "search":
			q.Search = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(scanner.Text()), fields[0]))
		case "set":
			if len(fields) != 3 {
				err = contextutils.NewValidationError("Usage: set <id> <status>", "")
				break
			}
			var fb *models.Feedback
			if fb, err = api.SetStatus(ctx, resolveFeedbackID(view, fields[1]), fields[2]); err == nil {
				view.Upsert(*fb)
			}
		case "reload":
			var all []models.Feedback
			if all, err = api.Triage(ctx, "", ""); err == nil {
				view.Replace(all)
			}
		default:
			err = contextutils.NewValidationError("Unknown command", fields[0])
		}

		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
		}
		if err := render(); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// resolveFeedbackID expands the short id shown in the table to the full id. Input that is
// not a unique prefix is returned unchanged.
func resolveFeedbackID(view *triage.View, id string) string {
	match := ""
	for _, fb := range view.Snapshot() {
		if fb.ID == id {
			return id
		}
		if strings.HasPrefix(fb.ID, id) {
			if match != "" {
				return id
			}
			match = fb.ID
		}
	}
	if match == "" {
		return id
	}
	return match
}

func statsCmd(api API) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show per-status feedback counts (managers)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := api.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return views.Stats(cmd.OutOrStdout(), stats)
		},
	}
}

func setStatusCmd(api API) *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <id> <status>",
		Short: "Move feedback to pending, reviewed, resolved or rejected (managers)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fb, err := api.SetStatus(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Status updated successfully: %s is now %s\n", fb.ID, fb.Status)
			return nil
		},
	}
}
