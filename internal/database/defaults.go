package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jask/triage/internal/cards"
	"github.com/jask/triage/internal/database/repository"
)

// SeedIfEmpty inserts deck when the cards table is empty. It is idempotent
// and safe to run on every startup; the bool reports whether it seeded.
func SeedIfEmpty(ctx context.Context, db *sql.DB, deck []cards.Card) (bool, error) {
	repo := repository.NewCardRepo(db)
	n, err := repo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count cards: %w", err)
	}
	if n > 0 || len(deck) == 0 {
		return false, nil
	}
	for _, c := range deck {
		if err := c.Validate(); err != nil {
			return false, err
		}
		if err := repo.Upsert(ctx, c); err != nil {
			return false, fmt.Errorf("seed card %s: %w", c.ID, err)
		}
	}
	return true, nil
}
