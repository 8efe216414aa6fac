package triage

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/jask/triage/internal/cards"
	"github.com/jask/triage/internal/gesture"
)

var (
	// ErrFlowPending is returned when a triage action arrives while a
	// composite flow still waits for its outcome.
	ErrFlowPending = errors.New("a composite action is awaiting completion")
	// ErrNoFlow is returned by completion callbacks when no matching flow is
	// open.
	ErrNoFlow          = errors.New("no composite action is open")
	ErrInvalidDuration = errors.New("snooze duration must be a positive number of hours")
)

// HideDays is how long a hidden sender stays hidden.
const HideDays = 30

// FlowKind names a composite action.
type FlowKind int

const (
	FlowNone FlowKind = iota
	FlowCompose
	FlowPurchase
	FlowSnoozePicker
	FlowUnsubscribe
)

func (k FlowKind) String() string {
	switch k {
	case FlowCompose:
		return "compose"
	case FlowPurchase:
		return "purchase"
	case FlowSnoozePicker:
		return "snooze_picker"
	case FlowUnsubscribe:
		return "unsubscribe"
	}
	return "none"
}

// Flow is an open composite action. The card's state is untouched until the
// flow completes; cancelling it changes nothing.
type Flow struct {
	Kind         FlowKind
	CardID       string
	Category     cards.Category
	Domain       string
	SkipCount    int
	DefaultHours float64
}

// CompositeFlow is the flow a long-right swipe opens for category.
func CompositeFlow(c cards.Category) FlowKind {
	switch c {
	case cards.CategoryDealStacker, cards.CategoryStatusSeeker:
		return FlowPurchase
	case cards.CategoryCaregiver,
		cards.CategoryTransactionalLeader,
		cards.CategorySalesHunter,
		cards.CategoryProjectCoordinator,
		cards.CategoryEnterpriseInnovator,
		cards.CategoryIdentityManager:
		return FlowCompose
	}
	return FlowNone
}

// SnoozeOptions are the durations offered by the snooze picker, in hours.
func SnoozeOptions() []float64 {
	out := make([]float64, 0, 24)
	for h := 1; h <= 24; h++ {
		out = append(out, float64(h)/2)
	}
	return out
}

// SnoozeLabel renders a snooze duration the way action labels show it.
func SnoozeLabel(hours float64) string {
	if hours < 1 {
		return "Snoozed for " + strconv.FormatFloat(hours*60, 'f', -1, 64) + " min"
	}
	return "Snoozed for " + strconv.FormatFloat(hours, 'f', -1, 64) + "h"
}

const (
	labelSeen      = "Marked as Seen"
	labelDismissed = "Dismissed"
	labelReplied   = "Replied"
	labelConverted = "Purchase completed"
)

// Dispatcher is the triage decision table. It turns a classification of the
// active card into a committed state change or an open flow.
type Dispatcher struct {
	store       *cards.Store
	undo        *Undo
	progression *Progression
	timers      *Timers
	bus         *bus
	skips       *SkipTracker
	promo       *PromoDetector
	clock       func() time.Time
	logger      *zap.Logger

	advanceDelay  time.Duration
	skipThreshold int

	snoozeHours    float64
	snoozeRemember bool
	flow           *Flow
}

// Dispatch applies a horizontal classification to card. A nil card is an
// empty queue and does nothing.
func (d *Dispatcher) Dispatch(cls gesture.Classification, card *cards.Card) error {
	if cls.Kind != gesture.KindTriage {
		return nil
	}
	if card == nil {
		d.logger.Debug("dispatch on empty queue", zap.Stringer("classification", cls))
		return nil
	}
	if d.flow != nil {
		return ErrFlowPending
	}

	switch {
	case cls.Direction == gesture.DirectionRight && cls.Intensity == gesture.IntensityShort:
		return d.commit(*card, cards.StateSeen, nil, labelSeen)

	case cls.Direction == gesture.DirectionRight && cls.Intensity == gesture.IntensityLong:
		kind := CompositeFlow(card.Category)
		if kind == FlowNone {
			return fmt.Errorf("no composite action for category %q", card.Category)
		}
		d.open(Flow{Kind: kind, CardID: card.ID, Category: card.Category})
		return nil

	case cls.Direction == gesture.DirectionLeft && cls.Intensity == gesture.IntensityShort:
		if !d.snoozeRemember {
			d.open(Flow{Kind: FlowSnoozePicker, CardID: card.ID, Category: card.Category, DefaultHours: d.snoozeHours})
			return nil
		}
		return d.snooze(*card, d.snoozeHours)

	case cls.Direction == gesture.DirectionLeft && cls.Intensity == gesture.IntensityLong:
		if domain := card.SenderDomain(); domain != "" {
			count := d.skips.Increment(domain)
			if count >= d.skipThreshold && d.promo.IsPromotional(domain) {
				d.open(Flow{Kind: FlowUnsubscribe, CardID: card.ID, Category: card.Category, Domain: domain, SkipCount: count})
				return nil
			}
		}
		return d.commit(*card, cards.StateDismissed, nil, labelDismissed)
	}
	return fmt.Errorf("unhandled classification %s", cls)
}

// Flow returns the open composite action.
func (d *Dispatcher) Flow() (Flow, bool) {
	if d.flow == nil {
		return Flow{}, false
	}
	return *d.flow, true
}

func (d *Dispatcher) open(f Flow) {
	d.flow = &f
	d.logger.Debug("flow opened", zap.Stringer("flow", f.Kind), zap.String("card_id", f.CardID))
	switch f.Kind {
	case FlowCompose:
		d.bus.emit(ComposeRequested{CardID: f.CardID, Category: f.Category})
	case FlowPurchase:
		d.bus.emit(PurchaseRequested{CardID: f.CardID, Category: f.Category})
	case FlowSnoozePicker:
		d.bus.emit(SnoozePickerRequested{CardID: f.CardID, DefaultHours: f.DefaultHours, Options: SnoozeOptions()})
	case FlowUnsubscribe:
		d.bus.emit(UnsubscribeSuggested{CardID: f.CardID, Domain: f.Domain, SkipCount: f.SkipCount})
	}
}

// take closes the open flow when it is of kind and returns its card.
func (d *Dispatcher) take(kind FlowKind) (Flow, cards.Card, error) {
	if d.flow == nil || d.flow.Kind != kind {
		return Flow{}, cards.Card{}, fmt.Errorf("%s: %w", kind, ErrNoFlow)
	}
	f := *d.flow
	card, ok := d.store.Get(f.CardID)
	if !ok {
		return Flow{}, cards.Card{}, fmt.Errorf("complete %s: %w", kind, &cards.NotFoundError{ID: f.CardID})
	}
	d.flow = nil
	return f, card, nil
}

// Replied completes a compose flow.
func (d *Dispatcher) Replied() error {
	_, card, err := d.take(FlowCompose)
	if err != nil {
		return err
	}
	return d.commit(card, cards.StateReplied, nil, labelReplied)
}

// Converted completes a purchase flow.
func (d *Dispatcher) Converted() error {
	_, card, err := d.take(FlowPurchase)
	if err != nil {
		return err
	}
	return d.commit(card, cards.StateConverted, nil, labelConverted)
}

// ConfirmSnooze completes the snooze picker. The chosen duration becomes the
// default for the rest of the session; remember stops the picker from
// opening again.
func (d *Dispatcher) ConfirmSnooze(hours float64, remember bool) error {
	if d.flow == nil || d.flow.Kind != FlowSnoozePicker {
		return fmt.Errorf("%s: %w", FlowSnoozePicker, ErrNoFlow)
	}
	if hours <= 0 || math.IsNaN(hours) || math.IsInf(hours, 0) {
		return fmt.Errorf("snooze %v hours: %w", hours, ErrInvalidDuration)
	}
	_, card, err := d.take(FlowSnoozePicker)
	if err != nil {
		return err
	}
	d.snoozeHours = hours
	if remember {
		d.snoozeRemember = true
	}
	return d.snooze(card, hours)
}

// Unsubscribed commits the suspended dismissal and asks for an unsubscribe.
func (d *Dispatcher) Unsubscribed() error {
	f, card, err := d.take(FlowUnsubscribe)
	if err != nil {
		return err
	}
	if err := d.commit(card, cards.StateDismissed, nil, "Unsubscribed from "+f.Domain); err != nil {
		return err
	}
	d.bus.emit(UnsubscribeRequested{CardID: card.ID, Domain: f.Domain})
	return nil
}

// Hidden commits the suspended dismissal and hides the sender.
func (d *Dispatcher) Hidden() error {
	f, card, err := d.take(FlowUnsubscribe)
	if err != nil {
		return err
	}
	if err := d.commit(card, cards.StateDismissed, nil, "Hid "+f.Domain); err != nil {
		return err
	}
	d.bus.emit(SenderHidden{CardID: card.ID, Domain: f.Domain, Days: HideDays})
	return nil
}

// Kept commits the suspended dismissal and keeps the subscription.
func (d *Dispatcher) Kept() error {
	_, card, err := d.take(FlowUnsubscribe)
	if err != nil {
		return err
	}
	return d.commit(card, cards.StateDismissed, nil, labelDismissed)
}

// Cancel closes any open flow without touching the card.
func (d *Dispatcher) Cancel() error {
	if d.flow == nil {
		return ErrNoFlow
	}
	f := *d.flow
	d.flow = nil
	d.logger.Info("flow cancelled", zap.Stringer("flow", f.Kind), zap.String("card_id", f.CardID))
	d.bus.emit(FlowCancelled{CardID: f.CardID, Flow: f.Kind})
	return nil
}

func (d *Dispatcher) snooze(card cards.Card, hours float64) error {
	until := d.clock().Add(time.Duration(hours * float64(time.Hour)))
	return d.commit(card, cards.StateSnoozed, &until, SnoozeLabel(hours))
}

// commit runs the side effects of a state change in order: mutate the store,
// record undo, notify, check progression, then schedule the advance.
func (d *Dispatcher) commit(card cards.Card, to cards.State, snoozeUntil *time.Time, label string) error {
	prev, err := d.store.Transition(card.ID, to, snoozeUntil)
	if err != nil {
		d.logger.Error("commit failed", zap.String("card_id", card.ID), zap.String("to", string(to)), zap.Error(err))
		return fmt.Errorf("commit %s: %w", label, err)
	}
	d.undo.Record(Record{
		CardID:              card.ID,
		Category:            card.Category,
		PreviousState:       prev.State,
		PreviousSnoozeUntil: prev.SnoozeUntil,
		Label:               label,
	})
	d.logger.Info("action committed",
		zap.String("card_id", card.ID),
		zap.String("from", string(prev.State)),
		zap.String("to", string(to)),
		zap.String("label", label),
	)
	d.bus.emit(ActionTaken{
		CardID:      card.ID,
		Category:    card.Category,
		Label:       label,
		From:        prev.State,
		To:          to,
		SnoozeUntil: snoozeUntil,
		At:          d.clock(),
	})
	d.bus.emit(CardsChanged{Category: d.progression.Category()})
	d.progression.Check()
	d.timers.Schedule(TimerAdvance, d.advanceDelay, card.ID)
	return nil
}
