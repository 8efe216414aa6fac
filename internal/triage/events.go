package triage

import (
	"time"

	"go.uber.org/zap"

	"github.com/jask/triage/internal/cards"
	"github.com/jask/triage/internal/gesture"
)

// Event is something the session tells its observers about. Observers are
// called synchronously, in subscription order, on the session's goroutine.
type Event interface {
	Name() string
}

type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }

// CardsChanged means the active queue or position may have changed.
type CardsChanged struct {
	Category cards.Category
}

// ActionTaken is emitted for every committed state change.
type ActionTaken struct {
	CardID      string
	Category    cards.Category
	Label       string
	From        cards.State
	To          cards.State
	SnoozeUntil *time.Time
	At          time.Time
}

type CategoryExhausted struct {
	Category cards.Category
}

type UndoAvailable struct {
	CardID string
	Label  string
	Window time.Duration
}

type UndoExpired struct {
	CardID string
}

type UndoApplied struct {
	CardID   string
	Category cards.Category
	Label    string
	State    cards.State
	At       time.Time
}

type ComposeRequested struct {
	CardID   string
	Category cards.Category
}

type PurchaseRequested struct {
	CardID   string
	Category cards.Category
}

type SnoozePickerRequested struct {
	CardID       string
	DefaultHours float64
	Options      []float64
}

type UnsubscribeSuggested struct {
	CardID    string
	Domain    string
	SkipCount int
}

// UnsubscribeRequested asks an external collaborator to unsubscribe from a
// sender.
type UnsubscribeRequested struct {
	CardID string
	Domain string
}

// SenderHidden asks an external collaborator to hide a sender for Days days.
type SenderHidden struct {
	CardID string
	Domain string
	Days   int
}

type FlowCancelled struct {
	CardID string
	Flow   FlowKind
}

type Navigated struct {
	Position int
}

type CategoryChanged struct {
	Category cards.Category
}

type GestureClassified struct {
	Classification gesture.Classification
}

func (CardsChanged) Name() string          { return "cards_changed" }
func (ActionTaken) Name() string           { return "action_taken" }
func (CategoryExhausted) Name() string     { return "category_exhausted" }
func (UndoAvailable) Name() string         { return "undo_available" }
func (UndoExpired) Name() string           { return "undo_expired" }
func (UndoApplied) Name() string           { return "undo_applied" }
func (ComposeRequested) Name() string      { return "compose_requested" }
func (PurchaseRequested) Name() string     { return "purchase_requested" }
func (SnoozePickerRequested) Name() string { return "snooze_picker_requested" }
func (UnsubscribeSuggested) Name() string  { return "unsubscribe_suggested" }
func (UnsubscribeRequested) Name() string  { return "unsubscribe_requested" }
func (SenderHidden) Name() string          { return "sender_hidden" }
func (FlowCancelled) Name() string         { return "flow_cancelled" }
func (Navigated) Name() string             { return "navigated" }
func (CategoryChanged) Name() string       { return "category_changed" }
func (GestureClassified) Name() string     { return "gesture_classified" }

type bus struct {
	observers []Observer
	logger    *zap.Logger
}

func (b *bus) subscribe(o Observer) {
	if o != nil {
		b.observers = append(b.observers, o)
	}
}

func (b *bus) emit(e Event) {
	b.logger.Debug("triage event", zap.String("event", e.Name()))
	for _, o := range b.observers {
		o.Observe(e)
	}
}
