package triage

import "time"

// TimerID identifies one scheduled callback. IDs are never reused.
type TimerID uint64

type TimerKind int

const (
	// TimerAdvance settles the queue position after an exit animation.
	TimerAdvance TimerKind = iota
	// TimerUndoExpiry closes the undo window.
	TimerUndoExpiry
)

func (k TimerKind) String() string {
	if k == TimerUndoExpiry {
		return "undo_expiry"
	}
	return "advance"
}

// Timer is a one-shot deferred callback. The session never sleeps: whoever
// drives it arms a real clock for every Timer taken from the outbox and calls
// Session.FireTimer with the ID once Delay has elapsed.
type Timer struct {
	ID     TimerID
	Kind   TimerKind
	Delay  time.Duration
	CardID string
}

// Timers is a set of cancellable timer handles plus an outbox of timers that
// have been scheduled but not yet handed to a clock.
type Timers struct {
	next    TimerID
	pending map[TimerID]Timer
	outbox  []TimerID
}

func NewTimers() *Timers {
	return &Timers{pending: map[TimerID]Timer{}}
}

// Schedule registers a timer and returns its handle.
func (t *Timers) Schedule(kind TimerKind, delay time.Duration, cardID string) TimerID {
	t.next++
	tm := Timer{ID: t.next, Kind: kind, Delay: delay, CardID: cardID}
	t.pending[tm.ID] = tm
	t.outbox = append(t.outbox, tm.ID)
	return tm.ID
}

// Cancel drops a pending timer. A later Fire for it does nothing.
func (t *Timers) Cancel(id TimerID) bool {
	if _, ok := t.pending[id]; !ok {
		return false
	}
	delete(t.pending, id)
	return true
}

// CancelAll drops every pending timer.
func (t *Timers) CancelAll() {
	t.pending = map[TimerID]Timer{}
	t.outbox = nil
}

// Take drains the outbox. Timers cancelled before being taken are skipped.
func (t *Timers) Take() []Timer {
	var out []Timer
	for _, id := range t.outbox {
		if tm, ok := t.pending[id]; ok {
			out = append(out, tm)
		}
	}
	t.outbox = nil
	return out
}

// Fire consumes a pending timer. It reports false when the timer was cancelled
// or already fired.
func (t *Timers) Fire(id TimerID) (Timer, bool) {
	tm, ok := t.pending[id]
	if !ok {
		return Timer{}, false
	}
	delete(t.pending, id)
	return tm, true
}

// Pending counts live timers of kind.
func (t *Timers) Pending(kind TimerKind) int {
	n := 0
	for _, tm := range t.pending {
		if tm.Kind == kind {
			n++
		}
	}
	return n
}
