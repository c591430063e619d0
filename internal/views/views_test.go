package views

import (
	"bytes"
	"database/sql"
	"strings"
	"testing"
	"time"

	"feedbackapp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feedbackFixture() []models.Feedback {
	submitted := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	return []models.Feedback{
		{
			ID:           "0b3e9f52-54a4-4b0e-9a59-6f6a3f0c9d11",
			CustomerName: "Alice",
			Email:        "alice@example.com",
			ProductName:  sql.NullString{String: "Mobile App", Valid: true},
			Rating:       4,
			FeedbackType: models.FeedbackTypeSuggestion,
			Message:      "Please add\ndark mode",
			Suggestions:  "Follow the system theme",
			Status:       models.FeedbackStatusReviewed,
			SubmittedAt:  submitted,
		},
		{
			ID:           "9a1c4d2e-0000-4000-8000-000000000002",
			CustomerName: "Bob",
			Email:        "bob@example.com",
			Rating:       1,
			FeedbackType: models.FeedbackTypeComplaint,
			Message:      "Too slow",
			Status:       models.FeedbackStatusPending,
			SubmittedAt:  submitted.Add(-24 * time.Hour),
		},
	}
}

func TestStars(t *testing.T) {
	assert.Equal(t, "★★★☆☆", Stars(3))
	assert.Equal(t, "★★★★★", Stars(5))
	assert.Equal(t, "☆☆☆☆☆", Stars(-2))
	assert.Equal(t, "★★★★★", Stars(9))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"cut", "hello world", 8, "hello w…"},
		{"folds whitespace", "a\n b\t c", 10, "a b c"},
		{"runes", "héllo wörld", 4, "hél…"},
		{"width one", "hello", 1, "…"},
		{"no limit", "hello", 0, "hello"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.width))
		})
	}
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "0b3e9f52", ShortID("0b3e9f52-54a4-4b0e-9a59-6f6a3f0c9d11"))
	assert.Equal(t, "plain", ShortID("plain"))
}

func TestHistory(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, History(&buf, nil))
		assert.Equal(t, NoHistoryMessage+"\n", buf.String())
	})

	t.Run("items", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, History(&buf, feedbackFixture()))
		out := buf.String()

		assert.Contains(t, out, "★★★★☆ (4/5)  2026-03-01  Mobile App")
		assert.Contains(t, out, "Type: suggestion")
		assert.Contains(t, out, "Suggestions: Follow the system theme")
		assert.Contains(t, out, "Status: reviewed")
		assert.Contains(t, out, "★☆☆☆☆ (1/5)  2026-02-28  General")
		assert.Equal(t, 1, strings.Count(out, "Suggestions:"), "suggestions line only when present")
		assert.Less(t, strings.Index(out, "Mobile App"), strings.Index(out, "General"), "order is preserved")
	})
}

func TestTriage(t *testing.T) {
	stats := models.FeedbackStats{Total: 5, Pending: 2, Reviewed: 1, Resolved: 1, Rejected: 1}

	t.Run("no matches", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Triage(&buf, []models.Feedback{}, stats))
		assert.Equal(t,
			"Total: 5  Pending: 2  Reviewed: 1  Resolved: 1  Rejected: 1\n\n"+NoMatchesMessage+"\n",
			buf.String())
	})

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Triage(&buf, feedbackFixture(), stats))
		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		require.Len(t, lines, 5)

		assert.True(t, strings.HasPrefix(lines[2], "ID"))
		assert.Contains(t, lines[3], "0b3e9f52")
		assert.Contains(t, lines[3], "Please add dark mode")
		assert.Contains(t, lines[3], "reviewed")
		assert.Contains(t, lines[4], "General")
		assert.Contains(t, lines[4], "complaint")
	})
}

func TestProducts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Products(&buf, nil))
	assert.Equal(t, NoProductsMessage+"\n", buf.String())

	buf.Reset()
	require.NoError(t, Products(&buf, []models.ProductSummary{{ID: "p1", Name: "Mobile App"}}))
	assert.Equal(t, "ID  NAME\np1  Mobile App\n", buf.String())
}

func TestUsers(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Users(&buf, nil))
	assert.Equal(t, NoUsersMessage+"\n", buf.String())

	buf.Reset()
	users := []models.User{{
		ID: 1, Name: "Morgan", Email: "morgan@example.com", Role: models.RoleManager,
		CreatedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
	}}
	require.NoError(t, Users(&buf, users))
	assert.Contains(t, buf.String(), "morgan@example.com")
	assert.Contains(t, buf.String(), "manager")
	assert.Contains(t, buf.String(), "2026-01-02")
}
