package repository

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("repository: not found")

// Submission outcomes.
const (
	OutcomePending = "pending"
	OutcomeSuccess = "success"
	OutcomeEmpty   = "empty"
	OutcomeFailed  = "failed"
)

// Submission is one request sent to the recommendation backend.
type Submission struct {
	ID          string
	City        string
	PriceRange  string
	Cuisines    []string
	MinRating   float64
	Outcome     string
	ResultCount int
	Message     string
	CreatedAt   time.Time
	FinishedAt  *time.Time
}

// SavedFilter is a named set of criteria the user can re-apply.
type SavedFilter struct {
	ID         string
	Name       string
	City       string
	PriceRange string
	Cuisines   []string
	MinRating  float64
	UseCount   int
	LastUsedAt *time.Time
	CreatedAt  time.Time
}

// Feedback is a rating the user gave one recommended restaurant.
type Feedback struct {
	ID             string
	SubmissionID   *string
	RestaurantName string
	Rating         int
	Comment        string
	Delivered      bool
	Error          string
	CreatedAt      time.Time
}

func encodeList(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func decodeList(raw string) ([]string, error) {
	var out []string
	if raw == "" {
		return nil, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}
