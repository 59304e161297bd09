package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const maxFilterIDLen = 63

// SavedFilterRepo stores named filter presets.
type SavedFilterRepo struct {
	db *sql.DB
}

func NewSavedFilterRepo(db *sql.DB) *SavedFilterRepo { return &SavedFilterRepo{db: db} }

// Save inserts f under a slug derived from its name. The returned filter
// carries the id that was assigned.
func (r *SavedFilterRepo) Save(ctx context.Context, f SavedFilter) (SavedFilter, error) {
	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		return SavedFilter{}, errors.New("saved filter name is required")
	}
	ids, err := r.ids(ctx)
	if err != nil {
		return SavedFilter{}, err
	}
	f.ID = NextFilterID(ids, f.Name)
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	_, err = r.db.ExecContext(ctx, `
	INSERT INTO saved_filters(id, name, city, price_range, cuisines, min_rating, use_count, created_at)
	VALUES(?, ?, ?, ?, ?, ?, 0, ?);
	`, f.ID, f.Name, f.City, f.PriceRange, encodeList(f.Cuisines), f.MinRating, f.CreatedAt.UTC())
	if err != nil {
		return SavedFilter{}, fmt.Errorf("insert saved filter: %w", err)
	}
	return f, nil
}

func (r *SavedFilterRepo) Get(ctx context.Context, id string) (SavedFilter, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, name, city, price_range, cuisines, min_rating, use_count, last_used_at, created_at
	FROM saved_filters WHERE id = ?`, id)
	f, err := scanSavedFilter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return SavedFilter{}, ErrNotFound
	}
	return f, err
}

// List returns the most recently used filters first; never-used filters
// follow in creation order.
func (r *SavedFilterRepo) List(ctx context.Context) ([]SavedFilter, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, name, city, price_range, cuisines, min_rating, use_count, last_used_at, created_at
	FROM saved_filters
	ORDER BY last_used_at IS NULL, last_used_at DESC, created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SavedFilter
	for rows.Next() {
		f, err := scanSavedFilter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Touch bumps the usage counter of a filter that was just applied.
func (r *SavedFilterRepo) Touch(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
	UPDATE saved_filters SET use_count = use_count + 1, last_used_at = ? WHERE id = ?`, at.UTC(), id)
	if err != nil {
		return err
	}
	return requireAffected(res, id)
}

func (r *SavedFilterRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM saved_filters WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res, id)
}

func (r *SavedFilterRepo) ids(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM saved_filters`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func requireAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return nil
}

func scanSavedFilter(row rowScanner) (SavedFilter, error) {
	var (
		f        SavedFilter
		cuisines string
		lastUsed sql.NullTime
	)
	if err := row.Scan(&f.ID, &f.Name, &f.City, &f.PriceRange, &cuisines, &f.MinRating,
		&f.UseCount, &lastUsed, &f.CreatedAt); err != nil {
		return SavedFilter{}, err
	}
	list, err := decodeList(cuisines)
	if err != nil {
		return SavedFilter{}, fmt.Errorf("decode cuisines: %w", err)
	}
	f.Cuisines = list
	if lastUsed.Valid {
		t := lastUsed.Time
		f.LastUsedAt = &t
	}
	return f, nil
}

// SlugifyFilterID turns a display name into a lowercase id of letters,
// digits and single dashes.
func SlugifyFilterID(raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return "filter"
	}
	var b strings.Builder
	b.Grow(len(raw))
	lastDash := false
	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		isAlphaNum := (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9')
		switch {
		case isAlphaNum:
			b.WriteByte(ch)
			lastDash = false
		case ch == '_' || ch == '-':
			if b.Len() > 0 && !lastDash {
				b.WriteByte(ch)
				lastDash = true
			}
		default:
			if b.Len() > 0 && !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	id := strings.Trim(b.String(), "-_")
	if id == "" {
		id = "filter"
	}
	if len(id) > maxFilterIDLen {
		id = id[:maxFilterIDLen]
	}
	return id
}

// NextFilterID returns the slug for base, suffixed with -2, -3, ... until it
// does not collide with existing.
func NextFilterID(existing []string, base string) string {
	candidate := SlugifyFilterID(base)
	seen := make(map[string]bool, len(existing))
	for _, id := range existing {
		seen[strings.ToLower(strings.TrimSpace(id))] = true
	}
	if !seen[candidate] {
		return candidate
	}
	for i := 2; i < 10000; i++ {
		suffix := fmt.Sprintf("-%d", i)
		next := candidate + suffix
		if len(next) > maxFilterIDLen {
			next = candidate[:maxFilterIDLen-len(suffix)] + suffix
		}
		if !seen[next] {
			return next
		}
	}
	return candidate
}
