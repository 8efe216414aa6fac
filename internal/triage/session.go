// Package triage is the triage loop: it routes classified gestures to card
// state changes, keeps a one-step undo, and tracks category progression.
//
// A Session is the explicit context every part of the loop hangs off. It is
// not safe for concurrent use; the presentation layer drives it from a single
// event loop and arms real clocks for the timers it hands out.
package triage

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jask/triage/internal/cards"
	"github.com/jask/triage/internal/gesture"
	"github.com/jask/triage/internal/haptics"
)

// Durations are the session's deferred-callback delays.
type Durations struct {
	UndoWindow   time.Duration
	AdvanceDelay time.Duration
}

func DefaultDurations() Durations {
	return Durations{UndoWindow: 3 * time.Second, AdvanceDelay: 300 * time.Millisecond}
}

const (
	DefaultSkipThreshold    = 3
	DefaultSnoozeHours      = 1.0
	DefaultPromoMaxDistance = 1
)

type Options struct {
	Store      *cards.Store
	Classifier *gesture.Classifier
	Clock      func() time.Time
	Logger     *zap.Logger
	Durations  Durations
	// SkipThreshold is the dismissal count that triggers an unsubscribe
	// suggestion for a promotional sender.
	SkipThreshold      int
	Promo              *PromoDetector
	SnoozeDefaultHours float64
	// Order is the category rotation. Empty means cards.Categories.
	Order []cards.Category
}

// Session is one user's triage session.
type Session struct {
	store       *cards.Store
	classifier  *gesture.Classifier
	clock       func() time.Time
	logger      *zap.Logger
	bus         *bus
	timers      *Timers
	undo        *Undo
	progression *Progression
	dispatcher  *Dispatcher

	drag *gesture.Session
}

func NewSession(opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Store == nil {
		opts.Store = cards.NewStore()
	}
	if opts.Classifier == nil {
		opts.Classifier = gesture.NewClassifier(gesture.DefaultThresholds(), haptics.Nop{}, opts.Logger)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	def := DefaultDurations()
	if opts.Durations.UndoWindow <= 0 {
		opts.Durations.UndoWindow = def.UndoWindow
	}
	if opts.Durations.AdvanceDelay <= 0 {
		opts.Durations.AdvanceDelay = def.AdvanceDelay
	}
	if opts.SkipThreshold <= 0 {
		opts.SkipThreshold = DefaultSkipThreshold
	}
	if opts.Promo == nil {
		opts.Promo = NewPromoDetector(DefaultPromoKeywords(), DefaultPromoMaxDistance)
	}
	if opts.SnoozeDefaultHours <= 0 {
		opts.SnoozeDefaultHours = DefaultSnoozeHours
	}
	if len(opts.Order) == 0 {
		opts.Order = cards.Categories
	}

	b := &bus{logger: opts.Logger}
	timers := NewTimers()
	undo := newUndo(opts.Store, timers, b, opts.Durations.UndoWindow, opts.Logger)
	prog := newProgression(opts.Store, b, append([]cards.Category(nil), opts.Order...), opts.Logger)
	return &Session{
		store:       opts.Store,
		classifier:  opts.Classifier,
		clock:       opts.Clock,
		logger:      opts.Logger,
		bus:         b,
		timers:      timers,
		undo:        undo,
		progression: prog,
		dispatcher: &Dispatcher{
			store:         opts.Store,
			undo:          undo,
			progression:   prog,
			timers:        timers,
			bus:           b,
			skips:         NewSkipTracker(),
			promo:         opts.Promo,
			clock:         opts.Clock,
			logger:        opts.Logger,
			advanceDelay:  opts.Durations.AdvanceDelay,
			skipThreshold: opts.SkipThreshold,
			snoozeHours:   opts.SnoozeDefaultHours,
		},
	}
}

// Subscribe adds an observer for session events.
func (s *Session) Subscribe(o Observer) { s.bus.subscribe(o) }

// LoadCards replaces the deck. Undo, open flows, pending timers, the splay
// filter and completion marks are all dropped. Skip counts survive.
func (s *Session) LoadCards(list []cards.Card) error {
	if err := s.store.Load(list); err != nil {
		return fmt.Errorf("load cards: %w", err)
	}
	s.timers.CancelAll()
	s.undo.clear()
	s.dispatcher.flow = nil
	s.drag = nil
	s.progression.reset()
	s.logger.Info("cards loaded", zap.Int("count", len(list)))
	s.bus.emit(CardsChanged{Category: s.progression.Category()})
	s.progression.Check()
	return nil
}

func (s *Session) Store() *cards.Store { return s.store }

// Queue is the active queue.
func (s *Session) Queue() []cards.Card { return s.progression.Queue() }

// Active is the card under the pointer, if the queue is not empty.
func (s *Session) Active() (cards.Card, bool) { return s.progression.Active() }

func (s *Session) Position() int { return s.progression.Position() }

func (s *Session) Category() cards.Category { return s.progression.Category() }

// BeginDrag starts a gesture at p, discarding any gesture still in flight.
func (s *Session) BeginDrag(p gesture.Point) {
	s.drag = s.classifier.Begin(p)
}

// Dragging reports whether a gesture is in flight.
func (s *Session) Dragging() bool { return s.drag != nil && s.drag.Active }

// DragTo moves the gesture and returns the effective offset.
func (s *Session) DragTo(p gesture.Point) gesture.Point {
	if s.drag == nil {
		return gesture.Point{}
	}
	return s.classifier.Update(s.drag, p)
}

// Preview is what the swipe overlay shows while dragging.
type Preview struct {
	gesture.Feedback
	Label string
}

// Preview describes the action a release would trigger right now.
func (s *Session) Preview() Preview {
	if s.drag == nil {
		return Preview{}
	}
	fb := s.classifier.Feedback(s.drag)
	return Preview{Feedback: fb, Label: previewLabel(fb)}
}

func previewLabel(fb gesture.Feedback) string {
	switch {
	case fb.Direction == gesture.DirectionRight && fb.Intensity == gesture.IntensityShort:
		return "Seen"
	case fb.Direction == gesture.DirectionRight && fb.Intensity == gesture.IntensityLong:
		return "Action"
	case fb.Direction == gesture.DirectionLeft && fb.Intensity == gesture.IntensityShort:
		return "Snooze"
	case fb.Direction == gesture.DirectionLeft && fb.Intensity == gesture.IntensityLong:
		return "Skip"
	case fb.Direction == gesture.DirectionNext:
		return "Next"
	case fb.Direction == gesture.DirectionPrevious:
		return "Previous"
	}
	return ""
}

// EndDrag releases the gesture and applies its classification.
func (s *Session) EndDrag() (gesture.Classification, error) {
	if s.drag == nil {
		return gesture.Classification{}, nil
	}
	cls := s.classifier.End(s.drag)
	s.drag = nil
	s.bus.emit(GestureClassified{Classification: cls})
	return cls, s.Apply(cls)
}

// Apply executes a classification, whether it came from a gesture or a key.
func (s *Session) Apply(cls gesture.Classification) error {
	switch cls.Kind {
	case gesture.KindNavigate:
		return s.Navigate(cls.Direction)
	case gesture.KindTriage:
		if s.dispatcher.flow != nil {
			return ErrFlowPending
		}
		card, ok := s.Active()
		if !ok {
			return s.dispatcher.Dispatch(cls, nil)
		}
		return s.dispatcher.Dispatch(cls, &card)
	}
	return nil
}

// Navigate moves within the queue without touching any card.
func (s *Session) Navigate(dir gesture.Direction) error {
	if s.dispatcher.flow != nil {
		return ErrFlowPending
	}
	switch dir {
	case gesture.DirectionNext:
		s.progression.Step(1)
	case gesture.DirectionPrevious:
		s.progression.Step(-1)
	default:
		return fmt.Errorf("navigate %s: not a vertical direction", dir)
	}
	return nil
}

// Undo reverts the last committed action if its window is still open.
func (s *Session) Undo() bool {
	r, ok := s.undo.Undo()
	if !ok {
		return false
	}
	restored, _ := s.store.Get(r.CardID)
	if r.Category == s.progression.Category() {
		s.progression.focus(r.CardID)
	}
	s.logger.Info("undo applied", zap.String("card_id", r.CardID), zap.String("label", r.Label))
	s.bus.emit(UndoApplied{CardID: r.CardID, Category: r.Category, Label: r.Label, State: restored.State, At: s.clock()})
	s.bus.emit(CardsChanged{Category: s.progression.Category()})
	return true
}

// UndoPending returns the record an Undo would revert.
func (s *Session) UndoPending() (Record, bool) { return s.undo.Pending() }

// TakeTimers hands newly scheduled timers to the caller, who must call
// FireTimer with each ID after its delay.
func (s *Session) TakeTimers() []Timer { return s.timers.Take() }

// FireTimer runs a timer's callback. Cancelled or unknown timers are ignored.
func (s *Session) FireTimer(id TimerID) {
	t, ok := s.timers.Fire(id)
	if !ok {
		return
	}
	switch t.Kind {
	case TimerAdvance:
		s.progression.settle()
	case TimerUndoExpiry:
		s.undo.expireTimer(id)
	}
}

func (s *Session) SelectCategory(c cards.Category) error { return s.progression.Select(c) }

// AdvanceCategory moves to the next category, for the completion screen.
func (s *Session) AdvanceCategory() { s.progression.Advance() }

func (s *Session) PreviousCategory() { s.progression.Previous() }

func (s *Session) SplayGroups() []cards.Group { return s.progression.Groups() }

func (s *Session) SelectGroup(id string) error { return s.progression.SelectGroup(id) }

func (s *Session) ClearGroup() { s.progression.ClearGroup() }

// Group returns the active splay group.
func (s *Session) Group() (cards.Group, bool) { return s.progression.Group() }

// Completed reports whether category was exhausted in this session.
func (s *Session) Completed(c cards.Category) bool { return s.progression.Completed(c) }

// ProgressInfo is the counter shown above the card.
type ProgressInfo struct {
	Category  cards.Category
	Title     string
	Total     int
	Remaining int
	Processed int
}

func (s *Session) Progress() ProgressInfo {
	c := s.progression.Category()
	p := s.store.Progress(c)
	return ProgressInfo{
		Category:  c,
		Title:     c.Title(),
		Total:     p.Total,
		Remaining: p.Remaining,
		Processed: p.Processed(),
	}
}

// PendingFlow returns the composite action awaiting an outcome.
func (s *Session) PendingFlow() (Flow, bool) { return s.dispatcher.Flow() }

func (s *Session) Replied() error    { return s.dispatcher.Replied() }
func (s *Session) Converted() error  { return s.dispatcher.Converted() }
func (s *Session) CancelFlow() error { return s.dispatcher.Cancel() }

func (s *Session) ConfirmSnooze(hours float64, remember bool) error {
	return s.dispatcher.ConfirmSnooze(hours, remember)
}

func (s *Session) Unsubscribed() error { return s.dispatcher.Unsubscribed() }
func (s *Session) Hidden() error       { return s.dispatcher.Hidden() }
func (s *Session) Kept() error         { return s.dispatcher.Kept() }

// SnoozeHours is the duration a remembered left-short snooze uses.
func (s *Session) SnoozeHours() float64 { return s.dispatcher.snoozeHours }

// SkipCount is the number of long-left dismissals seen for domain.
func (s *Session) SkipCount(domain string) int { return s.dispatcher.skips.Count(domain) }

// SetPromoDetector swaps the promotional-sender heuristic.
func (s *Session) SetPromoDetector(p *PromoDetector) {
	if p != nil {
		s.dispatcher.promo = p
	}
}
