package triage

import (
	"time"

	"go.uber.org/zap"

	"github.com/jask/triage/internal/cards"
)

// Record is the single undoable action.
type Record struct {
	CardID              string
	Category            cards.Category
	PreviousState       cards.State
	PreviousSnoozeUntil *time.Time
	Label               string
}

// Undo is a single-slot undo buffer with a time-boxed window. Recording a new
// action replaces the slot and restarts the window; there is no history and
// no redo.
type Undo struct {
	store  *cards.Store
	timers *Timers
	bus    *bus
	window time.Duration
	logger *zap.Logger

	pending *Record
	timer   TimerID
}

func newUndo(store *cards.Store, timers *Timers, b *bus, window time.Duration, logger *zap.Logger) *Undo {
	return &Undo{store: store, timers: timers, bus: b, window: window, logger: logger}
}

// Record expires any pending entry and arms a fresh expiry timer, so at most
// one is ever pending.
func (u *Undo) Record(r Record) {
	u.Expire()
	u.pending = &r
	u.timer = u.timers.Schedule(TimerUndoExpiry, u.window, r.CardID)
	u.bus.emit(UndoAvailable{CardID: r.CardID, Label: r.Label, Window: u.window})
}

// Pending returns the live record, if any.
func (u *Undo) Pending() (Record, bool) {
	if u.pending == nil {
		return Record{}, false
	}
	return *u.pending, true
}

// Undo reverts the pending action and empties the slot. A second call is a
// no-op until something new is recorded.
func (u *Undo) Undo() (Record, bool) {
	if u.pending == nil {
		return Record{}, false
	}
	r := *u.pending
	u.clear()
	if !u.store.Revert(r.CardID, r.PreviousState, r.PreviousSnoozeUntil) {
		u.logger.Warn("undo target no longer exists", zap.String("card_id", r.CardID))
	}
	return r, true
}

// Expire empties the slot without reverting.
func (u *Undo) Expire() {
	if u.pending == nil {
		return
	}
	id := u.pending.CardID
	u.clear()
	u.bus.emit(UndoExpired{CardID: id})
}

// expireTimer handles a fired expiry timer. Stale timers are ignored.
func (u *Undo) expireTimer(id TimerID) {
	if u.pending == nil || id != u.timer {
		return
	}
	u.timer = 0
	u.Expire()
}

func (u *Undo) clear() {
	u.pending = nil
	if u.timer != 0 {
		u.timers.Cancel(u.timer)
		u.timer = 0
	}
}
