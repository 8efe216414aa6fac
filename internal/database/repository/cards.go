package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jask/triage/internal/cards"
)

// CardRepo persists the deck. Cards keep the order they were first inserted in.
type CardRepo struct {
	db *sql.DB
}

func NewCardRepo(db *sql.DB) *CardRepo { return &CardRepo{db: db} }

// Upsert inserts c at the end of the deck, or refreshes its content when the
// id already exists. The stored state of an existing card is left alone.
func (r *CardRepo) Upsert(ctx context.Context, c cards.Card) error {
	attrs, err := encodeAttrs(c.Metadata.Attrs)
	if err != nil {
		return err
	}
	state := c.State
	if state == "" {
		state = cards.StateUnseen
	}
	_, err = r.db.ExecContext(ctx, `
	INSERT INTO cards(id, position, category, priority, state, snooze_until, sender, subject, summary, action, attrs)
	VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM cards), ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		category=excluded.category,
		priority=excluded.priority,
		sender=excluded.sender,
		subject=excluded.subject,
		summary=excluded.summary,
		action=excluded.action,
		attrs=excluded.attrs,
		updated_at=CURRENT_TIMESTAMP;
	`, c.ID, string(c.Category), string(c.Priority), string(state), nullTime(c.SnoozeUntil),
		c.Metadata.From, c.Metadata.Subject, c.Metadata.Summary, c.Metadata.Action, attrs)
	return err
}

func (r *CardRepo) Exists(ctx context.Context, id string) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards WHERE id = ?`, id).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *CardRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards`).Scan(&n)
	return n, err
}

// List returns every card in deck order.
func (r *CardRepo) List(ctx context.Context) ([]cards.Card, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, category, priority, state, snooze_until, sender, subject, summary, action, attrs
	FROM cards ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []cards.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateState records a card's triage state. snoozeUntil must be set exactly
// when state is snoozed; the caller enforces that.
func (r *CardRepo) UpdateState(ctx context.Context, id string, state cards.State, snoozeUntil *time.Time) error {
	res, err := r.db.ExecContext(ctx, `
	UPDATE cards SET state = ?, snooze_until = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		string(state), nullTime(snoozeUntil), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &cards.NotFoundError{ID: id}
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCard(s scanner) (cards.Card, error) {
	var (
		c                  cards.Card
		category, priority string
		state, attrs       string
		snooze             sql.NullTime
	)
	if err := s.Scan(&c.ID, &category, &priority, &state, &snooze,
		&c.Metadata.From, &c.Metadata.Subject, &c.Metadata.Summary, &c.Metadata.Action, &attrs); err != nil {
		return cards.Card{}, err
	}
	c.Category = cards.Category(category)
	c.Priority = cards.Priority(priority)
	c.State = cards.State(state)
	if snooze.Valid {
		t := snooze.Time.UTC()
		c.SnoozeUntil = &t
	}
	if attrs != "" && attrs != "{}" {
		if err := json.Unmarshal([]byte(attrs), &c.Metadata.Attrs); err != nil {
			return cards.Card{}, fmt.Errorf("card %q attrs: %w", c.ID, err)
		}
	}
	return c, nil
}

func encodeAttrs(attrs map[string]string) (string, error) {
	if len(attrs) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(attrs)
	if err != nil {
		return "", fmt.Errorf("encode attrs: %w", err)
	}
	return string(b), nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
