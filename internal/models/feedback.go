package models

import (
	"database/sql"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// FeedbackType classifies what kind of feedback a customer is giving.
type FeedbackType string

// Feedback types
const (
	FeedbackTypeGeneral    FeedbackType = "general"
	FeedbackTypeComplaint  FeedbackType = "complaint"
	FeedbackTypeSuggestion FeedbackType = "suggestion"
	FeedbackTypeCompliment FeedbackType = "compliment"
	FeedbackTypeBugReport  FeedbackType = "bug-report"
)

// AllFeedbackTypes lists the feedback types in display order.
var AllFeedbackTypes = []FeedbackType{
	FeedbackTypeGeneral,
	FeedbackTypeComplaint,
	FeedbackTypeSuggestion,
	FeedbackTypeCompliment,
	FeedbackTypeBugReport,
}

// IsValid reports whether t is one of the enumerated feedback types.
func (t FeedbackType) IsValid() bool {
	for _, v := range AllFeedbackTypes {
		if v == t {
			return true
		}
	}
	return false
}

// FeedbackStatus is the triage state of a feedback record. Any status may move to any other.
type FeedbackStatus string

// Feedback statuses
const (
	FeedbackStatusPending  FeedbackStatus = "pending"
	FeedbackStatusReviewed FeedbackStatus = "reviewed"
	FeedbackStatusResolved FeedbackStatus = "resolved"
	FeedbackStatusRejected FeedbackStatus = "rejected"
)

// AllFeedbackStatuses lists the statuses in workflow order.
var AllFeedbackStatuses = []FeedbackStatus{
	FeedbackStatusPending,
	FeedbackStatusReviewed,
	FeedbackStatusResolved,
	FeedbackStatusRejected,
}

// IsValid reports whether s is one of the enumerated statuses.
func (s FeedbackStatus) IsValid() bool {
	for _, v := range AllFeedbackStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Rating bounds, inclusive
const (
	MinRating = 1
	MaxRating = 5
)

// Feedback is a single rated piece of customer feedback.
//
// CustomerName and Email are copied from the submitting user when the record is created
// and are never re-synced. Email is the ownership key for a customer's history.
// ProductName is not stored; it is resolved from the catalog when the record is read.
type Feedback struct {
	ID           string         `json:"id"`
	CustomerName string         `json:"customerName"`
	Email        string         `json:"email"`
	ProductID    sql.NullString `json:"productId"`
	ProductName  sql.NullString `json:"productName"`
	Rating       int            `json:"rating"`
	FeedbackType FeedbackType   `json:"feedbackType"`
	Message      string         `json:"message"`
	Suggestions  string         `json:"suggestions"`
	Status       FeedbackStatus `json:"status"`
	SubmittedAt  time.Time      `json:"submittedAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

type feedbackJSON struct {
	ID           string         `json:"id"`
	CustomerName string         `json:"customerName"`
	Email        string         `json:"email"`
	ProductID    *string        `json:"productId"`
	ProductName  *string        `json:"productName"`
	Rating       int            `json:"rating"`
	FeedbackType FeedbackType   `json:"feedbackType"`
	Message      string         `json:"message"`
	Suggestions  string         `json:"suggestions"`
	Status       FeedbackStatus `json:"status"`
	SubmittedAt  time.Time      `json:"submittedAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// MarshalJSON customizes JSON marshaling for Feedback to render sql.NullString as null
func (f Feedback) MarshalJSON() ([]byte, error) {
	return json.Marshal(feedbackJSON{
		ID:           f.ID,
		CustomerName: f.CustomerName,
		Email:        f.Email,
		ProductID:    nullStringToPointer(f.ProductID),
		ProductName:  nullStringToPointer(f.ProductName),
		Rating:       f.Rating,
		FeedbackType: f.FeedbackType,
		Message:      f.Message,
		Suggestions:  f.Suggestions,
		Status:       f.Status,
		SubmittedAt:  f.SubmittedAt,
		UpdatedAt:    f.UpdatedAt,
	})
}

// UnmarshalJSON is the inverse of MarshalJSON; the CLI client decodes API responses with it.
func (f *Feedback) UnmarshalJSON(data []byte) error {
	var raw feedbackJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*f = Feedback{
		ID:           raw.ID,
		CustomerName: raw.CustomerName,
		Email:        raw.Email,
		ProductID:    pointerToNullString(raw.ProductID),
		ProductName:  pointerToNullString(raw.ProductName),
		Rating:       raw.Rating,
		FeedbackType: raw.FeedbackType,
		Message:      raw.Message,
		Suggestions:  raw.Suggestions,
		Status:       raw.Status,
		SubmittedAt:  raw.SubmittedAt,
		UpdatedAt:    raw.UpdatedAt,
	}
	return nil
}

// DisplayProduct returns the product name, or "General" for feedback with no resolvable product.
func (f *Feedback) DisplayProduct() string {
	if f.ProductName.Valid && f.ProductName.String != "" {
		return f.ProductName.String
	}
	return "General"
}

// FeedbackStats are the per-status counts shown above the triage list.
type FeedbackStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Reviewed int `json:"reviewed"`
	Resolved int `json:"resolved"`
	Rejected int `json:"rejected"`
}

// SubmissionRequest is the body of POST /api/customer/feedback.
type SubmissionRequest struct {
	ProductID    string      `json:"productId,omitempty"`
	Rating       RatingInput `json:"rating"`
	FeedbackType string      `json:"feedbackType,omitempty"`
	Message      string      `json:"message"`
	Suggestions  string      `json:"suggestions,omitempty"`
}

// StatusUpdateRequest is the body of PATCH /api/manager/feedback/{id}/status.
type StatusUpdateRequest struct {
	Status string `json:"status"`
}

// SubmissionResponse acknowledges a stored submission or a status change.
type SubmissionResponse struct {
	Message  string    `json:"message"`
	Feedback *Feedback `json:"feedback"`
}

// RatingInput holds a rating exactly as the client sent it. Browser forms send the
// rating as a string, API clients as a number; both are accepted.
type RatingInput struct {
	raw      string
	isString bool
	set      bool
}

// NewRatingInput returns a RatingInput for an integer rating.
func NewRatingInput(n int) RatingInput {
	return RatingInput{raw: strconv.Itoa(n), set: true}
}

// NewRatingInputString returns a RatingInput for a rating sent as text.
func NewRatingInputString(s string) RatingInput {
	return RatingInput{raw: s, isString: true, set: true}
}

// UnmarshalJSON accepts a JSON number, a JSON string or null.
func (r *RatingInput) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case trimmed == "null":
		*r = RatingInput{}
	case strings.HasPrefix(trimmed, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = NewRatingInputString(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*r = RatingInput{raw: n.String(), set: true}
	}
	return nil
}

// MarshalJSON writes the rating back in the form it was given.
func (r RatingInput) MarshalJSON() ([]byte, error) {
	if !r.set {
		return []byte("null"), nil
	}
	if r.isString {
		return json.Marshal(r.raw)
	}
	return []byte(r.raw), nil
}

// Missing reports whether no usable rating was supplied: absent, null, empty text or the number 0.
func (r RatingInput) Missing() bool {
	if !r.set || r.raw == "" {
		return true
	}
	if !r.isString {
		f, err := strconv.ParseFloat(r.raw, 64)
		return err == nil && f == 0
	}
	return false
}

// Int coerces the rating to an integer. Numbers are truncated toward zero; text is read
// as an optional sign followed by leading decimal digits, ignoring anything after them.
// The boolean is false when no integer can be read.
func (r RatingInput) Int() (int, bool) {
	if !r.set {
		return 0, false
	}
	if !r.isString {
		f, err := strconv.ParseFloat(r.raw, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
			return 0, false
		}
		return int(f), true
	}
	return parseLeadingInt(r.raw)
}

func parseLeadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
