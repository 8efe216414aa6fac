package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/triage/internal/cards"
	"github.com/jask/triage/internal/database/repository"
)

func openTestDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "triage.db")
	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())
	require.NoError(t, RunMigrations(path))
	return path
}

func TestRunMigrationsIsRepeatable(t *testing.T) {
	path := openTestDB(t)
	require.NoError(t, RunMigrations(path))

	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('cards','action_journal')`).Scan(&n))
	require.Equal(t, 2, n)
}

func TestSeedIfEmpty(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := Open(openTestDB(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	deck := []cards.Card{
		{ID: "a", Category: cards.CategoryCaregiver, Metadata: cards.Metadata{Attrs: map[string]string{"kid": "Emma"}}},
		{ID: "b", Category: cards.CategorySalesHunter},
	}
	seeded, err := SeedIfEmpty(ctx, db, deck)
	require.NoError(t, err)
	require.True(t, seeded)

	seeded, err = SeedIfEmpty(ctx, db, []cards.Card{{ID: "c", Category: cards.CategoryDealStacker}})
	require.NoError(t, err)
	require.False(t, seeded)

	got, err := repository.NewCardRepo(db).List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "a", got[0].ID)
	require.Equal(t, cards.StateUnseen, got[0].State)
	require.Equal(t, "Emma", got[0].Metadata.Attrs["kid"])
}

func TestWithTxRollsBack(t *testing.T) {
	db, err := Open(openTestDB(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	err = WithTx(db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO cards(id, position, category) VALUES ('x', 1, 'caregiver')`); err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.EqualError(t, err, "boom")

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM cards`).Scan(&n))
	require.Zero(t, n)
}
