package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SubmissionRepo records submission history.
type SubmissionRepo struct {
	db *sql.DB
}

func NewSubmissionRepo(db *sql.DB) *SubmissionRepo { return &SubmissionRepo{db: db} }

// Start inserts a pending submission.
func (r *SubmissionRepo) Start(ctx context.Context, s Submission) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO submissions(id, city, price_range, cuisines, min_rating, outcome, created_at)
	VALUES(?, ?, ?, ?, ?, ?, ?);
	`, s.ID, s.City, s.PriceRange, encodeList(s.Cuisines), s.MinRating, OutcomePending, s.CreatedAt.UTC())
	return err
}

// Finish stores the terminal outcome of a submission.
func (r *SubmissionRepo) Finish(ctx context.Context, id, outcome string, count int, message string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
	UPDATE submissions SET outcome = ?, result_count = ?, message = ?, finished_at = ?
	WHERE id = ?;
	`, outcome, count, message, at.UTC(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("finish submission %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SubmissionRepo) Get(ctx context.Context, id string) (Submission, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, city, price_range, cuisines, min_rating, outcome, result_count, message, created_at, finished_at
	FROM submissions WHERE id = ?`, id)
	s, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Submission{}, ErrNotFound
	}
	return s, err
}

// Recent lists the newest submissions first.
func (r *SubmissionRepo) Recent(ctx context.Context, limit int) ([]Submission, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, city, price_range, cuisines, min_rating, outcome, result_count, message, created_at, finished_at
	FROM submissions ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (Submission, error) {
	var (
		s        Submission
		cuisines string
		finished sql.NullTime
	)
	if err := row.Scan(&s.ID, &s.City, &s.PriceRange, &cuisines, &s.MinRating, &s.Outcome,
		&s.ResultCount, &s.Message, &s.CreatedAt, &finished); err != nil {
		return Submission{}, err
	}
	list, err := decodeList(cuisines)
	if err != nil {
		return Submission{}, fmt.Errorf("decode cuisines: %w", err)
	}
	s.Cuisines = list
	if finished.Valid {
		t := finished.Time
		s.FinishedAt = &t
	}
	return s, nil
}
