package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// FeedbackRepo keeps a local record of every rating, delivered or not.
type FeedbackRepo struct {
	db *sql.DB
}

func NewFeedbackRepo(db *sql.DB) *FeedbackRepo { return &FeedbackRepo{db: db} }

func (r *FeedbackRepo) Record(ctx context.Context, f Feedback) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO feedback(id, submission_id, restaurant_name, rating, comment, delivered, error, created_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?);
	`, f.ID, f.SubmissionID, f.RestaurantName, f.Rating, f.Comment, boolToInt(f.Delivered), f.Error, f.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

// ForSubmission lists feedback given on one result set, oldest first.
func (r *FeedbackRepo) ForSubmission(ctx context.Context, submissionID string) ([]Feedback, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, submission_id, restaurant_name, rating, comment, delivered, error, created_at
	FROM feedback WHERE submission_id = ? ORDER BY created_at, rowid`, submissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Feedback
	for rows.Next() {
		var (
			f         Feedback
			sub       sql.NullString
			delivered int
		)
		if err := rows.Scan(&f.ID, &sub, &f.RestaurantName, &f.Rating, &f.Comment, &delivered, &f.Error, &f.CreatedAt); err != nil {
			return nil, err
		}
		if sub.Valid {
			s := sub.String
			f.SubmissionID = &s
		}
		f.Delivered = delivered != 0
		out = append(out, f)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
