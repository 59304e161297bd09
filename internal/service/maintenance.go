package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jask/restopick/internal/database"
)

// MaintenanceService houses destructive actions exposed on the command line.
type MaintenanceService struct {
	DB *sql.DB
}

// ClearHistory wipes submission history and local feedback. Saved filters
// are kept.
func (s *MaintenanceService) ClearHistory(ctx context.Context) error {
	if s.DB == nil {
		return fmt.Errorf("maintenance: db not configured")
	}
	if err := database.WithTx(s.DB, func(tx *sql.Tx) error {
		for _, t := range []string{"feedback", "submissions"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
				return fmt.Errorf("clear table %s: %w", t, err)
			}
		}
		return nil
	}); err != nil {
		return err
	}
	_, _ = s.DB.ExecContext(ctx, "VACUUM")
	return nil
}
