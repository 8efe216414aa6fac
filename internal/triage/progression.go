package triage

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/jask/triage/internal/cards"
)

// Progression owns the active category, the splay filter, the queue position
// and the per-session completion marks.
type Progression struct {
	store  *cards.Store
	bus    *bus
	logger *zap.Logger

	order     []cards.Category
	active    int
	group     *cards.Group
	position  int
	completed map[cards.Category]bool
}

func newProgression(store *cards.Store, b *bus, order []cards.Category, logger *zap.Logger) *Progression {
	return &Progression{
		store:     store,
		bus:       b,
		logger:    logger,
		order:     order,
		completed: map[cards.Category]bool{},
	}
}

func (p *Progression) Category() cards.Category { return p.order[p.active] }

// Group returns the selected splay group.
func (p *Progression) Group() (cards.Group, bool) {
	if p.group == nil {
		return cards.Group{}, false
	}
	return *p.group, true
}

// Queue is the active category's pending cards narrowed by the splay group.
func (p *Progression) Queue() []cards.Card {
	var filter cards.Predicate
	if p.group != nil {
		filter = p.group.Predicate()
	}
	return p.store.Query(p.Category(), filter)
}

// Position is the index of the active card within Queue, clamped to its
// bounds.
func (p *Progression) Position() int {
	n := len(p.Queue())
	if n == 0 {
		return 0
	}
	if p.position >= n {
		return n - 1
	}
	return p.position
}

// Active returns the card at Position.
func (p *Progression) Active() (cards.Card, bool) {
	q := p.Queue()
	if len(q) == 0 {
		return cards.Card{}, false
	}
	pos := p.position
	if pos >= len(q) {
		pos = len(q) - 1
	}
	return q[pos], true
}

// Completed reports whether category was exhausted earlier in the session.
func (p *Progression) Completed(c cards.Category) bool { return p.completed[c] }

// Check raises CategoryExhausted the first time the active category runs out
// of pending cards. Later checks of the same category stay silent.
func (p *Progression) Check() bool {
	c := p.Category()
	if p.completed[c] || p.store.Len() == 0 {
		return false
	}
	if len(p.store.Query(c, nil)) > 0 {
		return false
	}
	p.completed[c] = true
	p.logger.Info("category exhausted", zap.String("category", string(c)))
	p.bus.emit(CategoryExhausted{Category: c})
	return true
}

// Advance moves to the next category, wrapping around.
func (p *Progression) Advance() {
	p.setActive((p.active + 1) % len(p.order))
}

// Previous moves to the previous category, wrapping around.
func (p *Progression) Previous() {
	p.setActive((p.active - 1 + len(p.order)) % len(p.order))
}

// Select jumps to category c.
func (p *Progression) Select(c cards.Category) error {
	for i, o := range p.order {
		if o == c {
			p.setActive(i)
			return nil
		}
	}
	return fmt.Errorf("select category %q: not in rotation", c)
}

func (p *Progression) setActive(i int) {
	p.active = i
	p.group = nil
	p.position = 0
	p.bus.emit(CategoryChanged{Category: p.Category()})
	p.bus.emit(CardsChanged{Category: p.Category()})
	p.Check()
}

// Groups lists the splay groups of the active category.
func (p *Progression) Groups() []cards.Group {
	return cards.GroupsFor(p.Category(), p.store.Query(p.Category(), nil))
}

// SelectGroup narrows the queue to the group with id and rewinds the
// position.
func (p *Progression) SelectGroup(id string) error {
	for _, g := range p.Groups() {
		if g.ID == id {
			p.group = &g
			p.position = 0
			p.bus.emit(CardsChanged{Category: p.Category()})
			return nil
		}
	}
	return fmt.Errorf("select group %q: no such group in %s", id, p.Category())
}

func (p *Progression) ClearGroup() {
	if p.group == nil {
		return
	}
	p.group = nil
	p.position = 0
	p.bus.emit(CardsChanged{Category: p.Category()})
}

// Step moves the position by delta within the queue bounds. It reports
// whether the position changed.
func (p *Progression) Step(delta int) bool {
	n := len(p.Queue())
	if n == 0 {
		return false
	}
	cur := p.Position()
	next := cur + delta
	if next < 0 {
		next = 0
	}
	if next > n-1 {
		next = n - 1
	}
	p.position = next
	if next == cur {
		return false
	}
	p.bus.emit(Navigated{Position: next})
	return true
}

// settle clamps the stored position after the active card left the queue.
// An emptied splay group falls back to the whole category.
func (p *Progression) settle() {
	if p.group != nil && len(p.Queue()) == 0 && len(p.store.Query(p.Category(), nil)) > 0 {
		p.group = nil
		p.position = 0
	}
	p.position = p.Position()
	p.bus.emit(CardsChanged{Category: p.Category()})
}

// focus puts the position on card id when it is in the current queue.
func (p *Progression) focus(id string) {
	for i, c := range p.Queue() {
		if c.ID == id {
			p.position = i
			return
		}
	}
}

func (p *Progression) reset() {
	p.group = nil
	p.position = 0
	p.completed = map[cards.Category]bool{}
}
