package cards

import (
	"fmt"
	"time"
)

// Predicate narrows a category queue.
type Predicate func(Card) bool

// Progress summarises one category.
type Progress struct {
	Total     int
	Remaining int
}

// Processed is the number of cards that already left the queue.
func (p Progress) Processed() int { return p.Total - p.Remaining }

// Store holds every card of the session in insertion order. It is not safe
// for concurrent use; the session's event loop is its only caller.
type Store struct {
	cards []Card
	index map[string]int
}

func NewStore() *Store {
	return &Store{index: map[string]int{}}
}

// Load replaces the store contents. The list is validated as a whole; on
// error the store keeps its previous contents. Cards without a state start
// unseen.
func (s *Store) Load(list []Card) error {
	next := make([]Card, 0, len(list))
	index := make(map[string]int, len(list))
	for _, c := range list {
		if err := c.Validate(); err != nil {
			return err
		}
		if _, dup := index[c.ID]; dup {
			return fmt.Errorf("card %q: %w", c.ID, ErrDuplicateID)
		}
		c = c.clone()
		c.State = c.effectiveState()
		index[c.ID] = len(next)
		next = append(next, c)
	}
	s.cards = next
	s.index = index
	return nil
}

func (s *Store) Len() int { return len(s.cards) }

// Get returns a copy of the card with id.
func (s *Store) Get(id string) (Card, bool) {
	i, ok := s.index[id]
	if !ok {
		return Card{}, false
	}
	return s.cards[i].clone(), true
}

// All returns copies of every card in insertion order.
func (s *Store) All() []Card {
	out := make([]Card, len(s.cards))
	for i, c := range s.cards {
		out[i] = c.clone()
	}
	return out
}

// Query returns the pending cards of category in insertion order, narrowed by
// filter when it is non-nil.
func (s *Store) Query(category Category, filter Predicate) []Card {
	var out []Card
	for _, c := range s.cards {
		if c.Category != category || !c.State.Pending() {
			continue
		}
		if filter != nil && !filter(c) {
			continue
		}
		out = append(out, c.clone())
	}
	return out
}

// Progress counts all and pending cards of category.
func (s *Store) Progress(category Category) Progress {
	var p Progress
	for _, c := range s.cards {
		if c.Category != category {
			continue
		}
		p.Total++
		if c.State.Pending() {
			p.Remaining++
		}
	}
	return p
}

// Transition moves a card to a new state and returns the card as it was
// before. snoozeUntil is required for StateSnoozed and ignored otherwise.
// Unseen is not a transition target; only Revert goes back.
func (s *Store) Transition(id string, to State, snoozeUntil *time.Time) (Card, error) {
	i, ok := s.index[id]
	if !ok {
		return Card{}, &NotFoundError{ID: id}
	}
	if !to.Valid() || to == StateUnseen {
		return Card{}, fmt.Errorf("transition %q to %q: %w", id, to, ErrInvalidState)
	}
	if to == StateSnoozed && snoozeUntil == nil {
		return Card{}, fmt.Errorf("transition %q: %w", id, ErrSnoozeUntilRequired)
	}
	prev := s.cards[i].clone()
	s.cards[i].State = to
	s.cards[i].SnoozeUntil = nil
	if to == StateSnoozed {
		t := *snoozeUntil
		s.cards[i].SnoozeUntil = &t
	}
	return prev, nil
}

// Revert restores a card's state and snooze timestamp. It reports false when
// the card is unknown.
func (s *Store) Revert(id string, state State, snoozeUntil *time.Time) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.cards[i].State = state
	s.cards[i].SnoozeUntil = nil
	if state == StateSnoozed && snoozeUntil != nil {
		t := *snoozeUntil
		s.cards[i].SnoozeUntil = &t
	}
	return true
}
