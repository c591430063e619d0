package triage

import (
	"sync"

	"feedbackapp/internal/models"
)

// View holds a feedback collection and memoizes the last projection over it. The memo is
// keyed on the collection version and the query, so repeated renders with unchanged
// inputs reuse the previous result. A View is safe for concurrent use.
type View struct {
	mu         sync.Mutex
	collection []models.Feedback
	version    uint64

	memoValid   bool
	memoVersion uint64
	memoQuery   Query
	memoResult  []models.Feedback
	memoStats   *models.FeedbackStats
	statsOf     uint64
}

// NewView returns a View over collection.
func NewView(collection []models.Feedback) *View {
	v := &View{}
	v.Replace(collection)
	return v
}

// Replace swaps in a freshly loaded collection and invalidates the memo.
func (v *View) Replace(collection []models.Feedback) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.collection = append([]models.Feedback(nil), collection...)
	v.version++
	v.memoValid = false
	v.memoStats = nil
}

// Upsert replaces the record with the same id, or appends fb if none exists. It is how a
// status change is reflected without reloading the collection.
func (v *View) Upsert(fb models.Feedback) {
	v.mu.Lock()
	defer v.mu.Unlock()
	replaced := false
	for i := range v.collection {
		if v.collection[i].ID == fb.ID {
			v.collection[i] = fb
			replaced = true
			break
		}
	}
	if !replaced {
		v.collection = append(v.collection, fb)
	}
	v.version++
	v.memoValid = false
	v.memoStats = nil
}

// Snapshot returns a copy of the full collection without touching the memo.
func (v *View) Snapshot() []models.Feedback {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]models.Feedback(nil), v.collection...)
}

// Version increases whenever the collection changes.
func (v *View) Version() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.version
}

// Apply returns the projection for q. The returned slice is shared with the memo and must
// not be modified.
func (v *View) Apply(q Query) []models.Feedback {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.memoValid && v.memoVersion == v.version && v.memoQuery == q {
		return v.memoResult
	}
	v.memoResult = Apply(v.collection, q)
	v.memoQuery = q
	v.memoVersion = v.version
	v.memoValid = true
	return v.memoResult
}

// Stats returns per-status counts over the whole collection, ignoring any query.
func (v *View) Stats() models.FeedbackStats {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.memoStats == nil || v.statsOf != v.version {
		s := ComputeStats(v.collection)
		v.memoStats = &s
		v.statsOf = v.version
	}
	return *v.memoStats
}
