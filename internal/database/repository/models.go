package repository

import (
	"time"

	"github.com/jask/triage/internal/cards"
)

// JournalEntry represents one committed action in action_journal.
type JournalEntry struct {
	ID          string
	CardID      string
	Category    cards.Category
	Label       string
	FromState   cards.State
	ToState     cards.State
	SnoozeUntil *time.Time
	Undone      bool
	CreatedAt   time.Time
}
