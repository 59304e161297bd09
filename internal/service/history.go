package service

import (
	"context"
	"fmt"

	"github.com/jask/restopick/internal/database/repository"
)

// HistoryEntry is one past submission with the ratings given to its
// results.
type HistoryEntry struct {
	Submission repository.Submission
	Ratings    []repository.Feedback
}

// HistoryService reads back submission history.
type HistoryService struct {
	Submissions *repository.SubmissionRepo
	Feedback    *repository.FeedbackRepo
}

// Recent returns the latest submissions, newest first. limit <= 0 uses the
// repository default.
func (s *HistoryService) Recent(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if s.Submissions == nil {
		return nil, fmt.Errorf("history: submissions not configured")
	}
	subs, err := s.Submissions.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("recent submissions: %w", err)
	}
	out := make([]HistoryEntry, 0, len(subs))
	for _, sub := range subs {
		entry := HistoryEntry{Submission: sub}
		if s.Feedback != nil {
			entry.Ratings, err = s.Feedback.ForSubmission(ctx, sub.ID)
			if err != nil {
				return nil, fmt.Errorf("ratings for %s: %w", sub.ID, err)
			}
		}
		out = append(out, entry)
	}
	return out, nil
}
