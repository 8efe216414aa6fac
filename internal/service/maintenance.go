package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jask/triage/internal/database"
)

// MaintenanceService houses destructive/ops actions surfaced through the CLI.
type MaintenanceService struct {
	DB *sql.DB
}

// Reset wipes the deck and its journal. It keeps the schema intact so the
// app can reseed on the next start.
func (s *MaintenanceService) Reset(ctx context.Context) error {
	if s.DB == nil {
		return fmt.Errorf("maintenance: db not configured")
	}
	if err := database.WithTx(s.DB, func(tx *sql.Tx) error {
		for _, t := range []string{"action_journal", "cards"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
				return fmt.Errorf("reset table %s: %w", t, err)
			}
		}
		return nil
	}); err != nil {
		return err
	}
	_, _ = s.DB.ExecContext(ctx, "VACUUM")
	return nil
}
