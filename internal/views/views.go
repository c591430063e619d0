// Package views renders feedback, products and users as plain text for the command-line tools.
package views

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"feedbackapp/internal/models"
)

// Empty-state messages
const (
	NoHistoryMessage  = "You haven't submitted any feedback yet."
	NoMatchesMessage  = "No feedback matches your filters."
	NoProductsMessage = "No products available"
	NoUsersMessage    = "No users found"
)

// DateFormat is used for submission dates in listings.
const DateFormat = "2006-01-02"

const messageWidth = 48

// Stars renders rating as filled and empty stars, clamped to the rating bounds.
func Stars(rating int) string {
	filled := rating
	if filled < 0 {
		filled = 0
	}
	if filled > models.MaxRating {
		filled = models.MaxRating
	}
	return strings.Repeat("★", filled) + strings.Repeat("☆", models.MaxRating-filled)
}

// Truncate shortens s to at most width runes, marking the cut with an ellipsis.
// Newlines are folded to spaces so table rows stay on one line.
func Truncate(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	if width <= 0 || utf8.RuneCountInString(s) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	runes := []rune(s)
	return string(runes[:width-1]) + "…"
}

// ShortID returns the first block of a UUID for compact tables.
func ShortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

// History renders a customer's own submissions, newest first as given.
func History(w io.Writer, list []models.Feedback) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, NoHistoryMessage)
		return err
	}

	for i := range list {
		fb := &list[i]
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		lines := []string{
			fmt.Sprintf("%s (%d/5)  %s  %s", Stars(fb.Rating), fb.Rating, formatDate(fb.SubmittedAt), fb.DisplayProduct()),
			"Type: " + string(fb.FeedbackType),
			fb.Message,
		}
		if fb.Suggestions != "" {
			lines = append(lines, "Suggestions: "+fb.Suggestions)
		}
		lines = append(lines, "Status: "+string(fb.Status), "ID: "+fb.ID)
		for _, line := range lines {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

// Stats renders the per-status counts on one line.
func Stats(w io.Writer, stats models.FeedbackStats) error {
	_, err := fmt.Fprintf(w, "Total: %d  Pending: %d  Reviewed: %d  Resolved: %d  Rejected: %d\n",
		stats.Total, stats.Pending, stats.Reviewed, stats.Resolved, stats.Rejected)
	return err
}

// Triage renders the manager view: counts over the whole collection, then the filtered rows.
func Triage(w io.Writer, filtered []models.Feedback, stats models.FeedbackStats) error {
	if err := Stats(w, stats); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return FeedbackTable(w, filtered)
}

// FeedbackTable renders feedback as an aligned table.
func FeedbackTable(w io.Writer, list []models.Feedback) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, NoMatchesMessage)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSUBMITTED\tCUSTOMER\tPRODUCT\tRATING\tTYPE\tSTATUS\tMESSAGE")
	for i := range list {
		fb := &list[i]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			ShortID(fb.ID),
			formatDate(fb.SubmittedAt),
			fb.CustomerName,
			fb.DisplayProduct(),
			Stars(fb.Rating),
			fb.FeedbackType,
			fb.Status,
			Truncate(fb.Message, messageWidth),
		)
	}
	return tw.Flush()
}

// Products renders the product picker list.
func Products(w io.Writer, products []models.ProductSummary) error {
	if len(products) == 0 {
		_, err := fmt.Fprintln(w, NoProductsMessage)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, p := range products {
		fmt.Fprintf(tw, "%s\t%s\n", p.ID, p.Name)
	}
	return tw.Flush()
}

// Users renders user accounts for the admin tool.
func Users(w io.Writer, users []models.User) error {
	if len(users) == 0 {
		_, err := fmt.Fprintln(w, NoUsersMessage)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE\tCREATED")
	for _, u := range users {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Role, formatDate(u.CreatedAt))
	}
	return tw.Flush()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(DateFormat)
}
