package repository

import (
	"context"
	"database/sql"

	"github.com/jask/triage/internal/cards"
)

// JournalRepo handles the append-only action journal.
type JournalRepo struct {
	db *sql.DB
}

func NewJournalRepo(db *sql.DB) *JournalRepo { return &JournalRepo{db: db} }

func (r *JournalRepo) Append(ctx context.Context, e JournalEntry) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO action_journal(id, card_id, category, label, from_state, to_state, snooze_until, undone, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.CardID, string(e.Category), e.Label, string(e.FromState), string(e.ToState),
		nullTime(e.SnoozeUntil), e.Undone, e.CreatedAt.UTC())
	return err
}

// MarkLatestUndone flags the most recent live entry for cardID as undone.
// It reports whether an entry was found.
func (r *JournalRepo) MarkLatestUndone(ctx context.Context, cardID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
	UPDATE action_journal SET undone = 1
	WHERE id = (
		SELECT id FROM action_journal
		WHERE card_id = ? AND undone = 0
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1
	)`, cardID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Recent returns up to limit entries, newest first.
func (r *JournalRepo) Recent(ctx context.Context, limit int) ([]JournalEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, card_id, category, label, from_state, to_state, snooze_until, undone, created_at
	FROM action_journal
	ORDER BY created_at DESC, rowid DESC
	LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []JournalEntry
	for rows.Next() {
		var (
			e                  JournalEntry
			category, from, to string
			snooze             sql.NullTime
		)
		if err := rows.Scan(&e.ID, &e.CardID, &category, &e.Label, &from, &to, &snooze, &e.Undone, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Category = cards.Category(category)
		e.FromState = cards.State(from)
		e.ToState = cards.State(to)
		if snooze.Valid {
			t := snooze.Time.UTC()
			e.SnoozeUntil = &t
		}
		e.CreatedAt = e.CreatedAt.UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}
