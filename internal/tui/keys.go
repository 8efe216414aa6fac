package tui

import (
	"slices"

	tea "github.com/charmbracelet/bubbletea"
)

// Scopes a binding can apply to. A binding without scopes applies everywhere.
const (
	scopeDeck        = "deck"
	scopeCompose     = "modal:compose"
	scopePurchase    = "modal:purchase"
	scopeSnooze      = "modal:snooze"
	scopeUnsubscribe = "modal:unsubscribe"
	scopeCompletion  = "modal:completion"
	scopeSplay       = "modal:splay"
)

type KeyBinding struct {
	Keys        []string
	Action      string
	Description string
	Scopes      []string
}

type KeyRegistry struct {
	bindings []KeyBinding
}

func NewKeyRegistry(bindings []KeyBinding) *KeyRegistry {
	return &KeyRegistry{bindings: slices.Clone(bindings)}
}

func (r *KeyRegistry) BindingsForScope(scope string) []KeyBinding {
	out := make([]KeyBinding, 0, len(r.bindings))
	for _, b := range r.bindings {
		if scopeMatch(scope, b.Scopes) {
			out = append(out, b)
		}
	}
	return out
}

// Action returns the action bound to msg in scope, or "". Keys are case
// sensitive: "l" and "L" are different swipes.
func (r *KeyRegistry) Action(msg tea.KeyMsg, scope string) string {
	pressed := msg.String()
	for _, b := range r.bindings {
		if !scopeMatch(scope, b.Scopes) {
			continue
		}
		for _, k := range b.Keys {
			if k == pressed {
				return b.Action
			}
		}
	}
	return ""
}

func scopeMatch(scope string, scopes []string) bool {
	if len(scopes) == 0 {
		return true
	}
	for _, s := range scopes {
		if s == "*" || s == scope {
			return true
		}
	}
	return false
}

const (
	actionQuit         = "quit"
	actionSeen         = "seen"
	actionAct          = "act"
	actionSnooze       = "snooze"
	actionSkip         = "skip"
	actionNext         = "next"
	actionPrev         = "prev"
	actionUndo         = "undo"
	actionNextCategory = "next-category"
	actionPrevCategory = "prev-category"
	actionSplay        = "splay"
	actionClearGroup   = "clear-group"
	actionConfirm      = "confirm"
	actionCancel       = "cancel"
	actionUp           = "up"
	actionDown         = "down"
	actionRemember     = "remember"
	actionUnsubscribe  = "unsubscribe"
	actionHide         = "hide"
	actionKeep         = "keep"
)

func DefaultKeyBindings() []KeyBinding {
	deck := []string{scopeDeck}
	return []KeyBinding{
		{Keys: []string{"ctrl+c"}, Action: actionQuit, Description: "quit", Scopes: []string{"*"}},
		{Keys: []string{"q"}, Action: actionQuit, Description: "quit", Scopes: deck},
		{Keys: []string{"l", "right"}, Action: actionSeen, Description: "seen", Scopes: deck},
		{Keys: []string{"L", "shift+right"}, Action: actionAct, Description: "action", Scopes: deck},
		{Keys: []string{"h", "left"}, Action: actionSnooze, Description: "snooze", Scopes: deck},
		{Keys: []string{"H", "shift+left"}, Action: actionSkip, Description: "skip", Scopes: deck},
		{Keys: []string{"j", "down"}, Action: actionNext, Description: "next", Scopes: deck},
		{Keys: []string{"k", "up"}, Action: actionPrev, Description: "prev", Scopes: deck},
		{Keys: []string{"u"}, Action: actionUndo, Description: "undo", Scopes: deck},
		{Keys: []string{"]", "tab"}, Action: actionNextCategory, Description: "next category", Scopes: deck},
		{Keys: []string{"[", "shift+tab"}, Action: actionPrevCategory, Description: "prev category", Scopes: deck},
		{Keys: []string{"g"}, Action: actionSplay, Description: "groups", Scopes: deck},
		{Keys: []string{"G"}, Action: actionClearGroup, Description: "all cards", Scopes: deck},

		{Keys: []string{"enter"}, Action: actionConfirm, Description: "done", Scopes: []string{scopeCompose, scopePurchase}},
		{Keys: []string{"enter"}, Action: actionConfirm, Description: "snooze", Scopes: []string{scopeSnooze}},
		{Keys: []string{"j", "down"}, Action: actionDown, Description: "shorter", Scopes: []string{scopeSnooze}},
		{Keys: []string{"k", "up"}, Action: actionUp, Description: "longer", Scopes: []string{scopeSnooze}},
		{Keys: []string{" ", "r"}, Action: actionRemember, Description: "remember", Scopes: []string{scopeSnooze}},
		{Keys: []string{"u"}, Action: actionUnsubscribe, Description: "unsubscribe", Scopes: []string{scopeUnsubscribe}},
		{Keys: []string{"x"}, Action: actionHide, Description: "hide 30d", Scopes: []string{scopeUnsubscribe}},
		{Keys: []string{"enter", "k"}, Action: actionKeep, Description: "keep", Scopes: []string{scopeUnsubscribe}},
		{Keys: []string{"enter", "]"}, Action: actionNextCategory, Description: "next category", Scopes: []string{scopeCompletion}},
		{Keys: []string{"j", "down"}, Action: actionDown, Description: "down", Scopes: []string{scopeSplay}},
		{Keys: []string{"k", "up"}, Action: actionUp, Description: "up", Scopes: []string{scopeSplay}},
		{Keys: []string{"enter"}, Action: actionConfirm, Description: "select", Scopes: []string{scopeSplay}},
		{Keys: []string{"esc"}, Action: actionCancel, Description: "cancel", Scopes: []string{scopeCompose, scopePurchase, scopeSnooze, scopeUnsubscribe}},
		{Keys: []string{"esc"}, Action: actionCancel, Description: "close", Scopes: []string{scopeCompletion, scopeSplay}},
	}
}
