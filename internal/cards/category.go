package cards

import (
	"fmt"
	"strings"
)

// Category is the archetype a card belongs to. The set is closed.
type Category string

const (
	CategoryCaregiver           Category = "caregiver"
	CategoryTransactionalLeader Category = "transactional_leader"
	CategorySalesHunter         Category = "sales_hunter"
	CategoryProjectCoordinator  Category = "project_coordinator"
	CategoryEnterpriseInnovator Category = "enterprise_innovator"
	CategoryDealStacker         Category = "deal_stacker"
	CategoryStatusSeeker        Category = "status_seeker"
	CategoryIdentityManager     Category = "identity_manager"
)

// Categories lists every category in the cyclic order used for progression.
var Categories = []Category{
	CategoryCaregiver,
	CategoryTransactionalLeader,
	CategorySalesHunter,
	CategoryProjectCoordinator,
	CategoryEnterpriseInnovator,
	CategoryDealStacker,
	CategoryStatusSeeker,
	CategoryIdentityManager,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, k := range Categories {
		if k == c {
			return true
		}
	}
	return false
}

// Title is the short display name.
func (c Category) Title() string {
	switch c {
	case CategoryCaregiver:
		return "Family"
	case CategoryTransactionalLeader:
		return "Executive"
	case CategorySalesHunter:
		return "Sales"
	case CategoryProjectCoordinator:
		return "Projects"
	case CategoryEnterpriseInnovator:
		return "Learning"
	case CategoryDealStacker:
		return "Deals"
	case CategoryStatusSeeker:
		return "Travel"
	case CategoryIdentityManager:
		return "Security"
	}
	return string(c)
}

// ParseCategory accepts a category id or its display title, case-insensitively.
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range Categories {
		if string(c) == s || strings.ToLower(c.Title()) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Priority is informational only.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// State is a card's lifecycle position.
type State string

const (
	StateUnseen    State = "unseen"
	StateSeen      State = "seen"
	StateDismissed State = "dismissed"
	StateSnoozed   State = "snoozed"
	StateReplied   State = "replied"
	StateConverted State = "converted"
	StateArchived  State = "archived"
	StateDeleted   State = "deleted"
)

var states = []State{
	StateUnseen, StateSeen, StateDismissed, StateSnoozed,
	StateReplied, StateConverted, StateArchived, StateDeleted,
}

// Valid reports whether s is a known triage state.
func (s State) Valid() bool {
	for _, k := range states {
		if k == s {
			return true
		}
	}
	return false
}

// Pending reports whether a card in this state belongs in a category queue.
func (s State) Pending() bool { return s == StateUnseen }
