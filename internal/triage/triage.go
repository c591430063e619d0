// Package triage filters, searches and counts feedback for the manager triage view.
//
// Everything here is a pure projection over an already loaded collection; nothing
// touches storage.
package triage

import (
	"sort"
	"strings"

	"feedbackapp/internal/models"
	contextutils "feedbackapp/internal/utils"
)

// StatusFilter selects feedback by status. StatusAll selects everything.
type StatusFilter string

// StatusAll is the identity filter.
const StatusAll StatusFilter = "all"

// ParseStatusFilter accepts "all", an empty string (same as "all") or one of the feedback statuses.
func ParseStatusFilter(s string) (StatusFilter, error) {
	switch {
	case s == "" || s == string(StatusAll):
		return StatusAll, nil
	case models.FeedbackStatus(s).IsValid():
		return StatusFilter(s), nil
	}
	return "", contextutils.NewValidationError("Invalid status filter", s)
}

// Matches reports whether fb passes the filter.
func (f StatusFilter) Matches(fb *models.Feedback) bool {
	return f == "" || f == StatusAll || string(fb.Status) == string(f)
}

// Query is a status filter combined with a free-text search.
type Query struct {
	Status StatusFilter
	Search string
}

// matchesSearch is a case-insensitive substring test over message and customer name.
// Blank search text matches everything; other text is used untrimmed.
func matchesSearch(fb *models.Feedback, search string) bool {
	if strings.TrimSpace(search) == "" {
		return true
	}
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(fb.Message), needle) ||
		strings.Contains(strings.ToLower(fb.CustomerName), needle)
}

// Apply returns the feedback in collection matching both the status filter and the
// search, newest first. Records submitted at the same instant keep their input order.
// The input slice is not modified.
func Apply(collection []models.Feedback, q Query) []models.Feedback {
	out := make([]models.Feedback, 0, len(collection))
	for i := range collection {
		fb := &collection[i]
		if q.Status.Matches(fb) && matchesSearch(fb, q.Search) {
			out = append(out, *fb)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out
}

// ComputeStats counts the unfiltered collection per status.
func ComputeStats(collection []models.Feedback) models.FeedbackStats {
	stats := models.FeedbackStats{Total: len(collection)}
	for i := range collection {
		switch collection[i].Status {
		case models.FeedbackStatusPending:
			stats.Pending++
		case models.FeedbackStatusReviewed:
			stats.Reviewed++
		case models.FeedbackStatusResolved:
			stats.Resolved++
		case models.FeedbackStatusRejected:
			stats.Rejected++
		}
	}
	return stats
}
