package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jask/triage/internal/database"
	"github.com/jask/triage/internal/database/repository"
	"github.com/jask/triage/internal/triage"
)

// JournalRecorder persists committed actions and undos. It appends to the
// action journal and writes the card's new state through to the cards
// table, so the next run resumes where this one stopped. It is a
// triage.Observer; failures are logged and never reach the session.
type JournalRecorder struct {
	Cards   *repository.CardRepo
	Journal *repository.JournalRepo
	Logger  *zap.Logger
	Timeout time.Duration
}

func (j *JournalRecorder) Observe(e triage.Event) {
	switch ev := e.(type) {
	case triage.ActionTaken:
		j.recordAction(ev)
	case triage.UndoApplied:
		j.recordUndo(ev)
	}
}

func (j *JournalRecorder) recordAction(ev triage.ActionTaken) {
	ctx, cancel := j.context()
	defer cancel()
	at := ev.At
	if at.IsZero() {
		at = database.Now()
	}
	entry := repository.JournalEntry{
		ID:          uuid.NewString(),
		CardID:      ev.CardID,
		Category:    ev.Category,
		Label:       ev.Label,
		FromState:   ev.From,
		ToState:     ev.To,
		SnoozeUntil: ev.SnoozeUntil,
		CreatedAt:   at,
	}
	if err := j.Journal.Append(ctx, entry); err != nil {
		j.logger().Error("journal append", zap.String("card", ev.CardID), zap.Error(err))
	}
	if err := j.Cards.UpdateState(ctx, ev.CardID, ev.To, ev.SnoozeUntil); err != nil {
		j.logger().Error("persist card state", zap.String("card", ev.CardID), zap.Error(err))
	}
}

func (j *JournalRecorder) recordUndo(ev triage.UndoApplied) {
	ctx, cancel := j.context()
	defer cancel()
	found, err := j.Journal.MarkLatestUndone(ctx, ev.CardID)
	if err != nil {
		j.logger().Error("journal undo", zap.String("card", ev.CardID), zap.Error(err))
	} else if !found {
		j.logger().Warn("undo without journal entry", zap.String("card", ev.CardID))
	}
	if err := j.Cards.UpdateState(ctx, ev.CardID, ev.State, nil); err != nil {
		j.logger().Error("restore card state", zap.String("card", ev.CardID), zap.Error(err))
	}
}

func (j *JournalRecorder) context() (context.Context, context.CancelFunc) {
	timeout := j.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}

func (j *JournalRecorder) logger() *zap.Logger {
	if j.Logger == nil {
		return zap.NewNop()
	}
	return j.Logger
}
