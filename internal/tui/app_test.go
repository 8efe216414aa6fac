package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/jask/triage/internal/cards"
	"github.com/jask/triage/internal/config"
	"github.com/jask/triage/internal/haptics"
	"github.com/jask/triage/internal/prefs"
	"github.com/jask/triage/internal/triage"
)

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type harness struct {
	app     *App
	session *triage.Session
	saved   prefs.Prefs
	haptics *haptics.Switch
}

func newHarness(t *testing.T, deck []cards.Card) *harness {
	t.Helper()
	h := &harness{haptics: &haptics.Switch{Enabled: true, Next: haptics.Nop{}}}
	h.session = triage.NewSession(triage.Options{Clock: func() time.Time { return testNow }})
	require.NoError(t, h.session.LoadCards(deck))
	h.app = New(Options{
		Session:   h.session,
		Haptics:   h.haptics,
		SavePrefs: func(fn func(*prefs.Prefs)) error { fn(&h.saved); return nil },
	})
	return h
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	_, cmd := h.app.Update(msg)
	return cmd
}

func (h *harness) press(keys ...string) {
	for _, k := range keys {
		switch k {
		case "enter":
			h.send(tea.KeyMsg{Type: tea.KeyEnter})
		case "esc":
			h.send(tea.KeyMsg{Type: tea.KeyEscape})
		default:
			h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
		}
	}
}

func (h *harness) state(t *testing.T, id string) cards.State {
	t.Helper()
	c, ok := h.session.Store().Get(id)
	require.True(t, ok)
	return c.State
}

func family(ids ...string) []cards.Card {
	out := make([]cards.Card, 0, len(ids))
	for i, id := range ids {
		kid := "Sophie"
		if i%2 == 1 {
			kid = "Max"
		}
		out = append(out, cards.Card{
			ID:       id,
			Category: cards.CategoryCaregiver,
			Priority: cards.PriorityHigh,
			Metadata: cards.Metadata{
				From:    "Mrs. Anderson <anderson@riverside-elem.edu>",
				Subject: "Subject " + id,
				Attrs:   map[string]string{"kid": kid},
			},
		})
	}
	return out
}

func TestKeySwipeMarksSeenAndSchedulesTimers(t *testing.T) {
	h := newHarness(t, family("a", "b"))
	cmd := h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("l")})

	require.NotNil(t, cmd)
	require.Equal(t, cards.StateSeen, h.state(t, "a"))
	require.Equal(t, "Marked as Seen", h.app.status)
	require.Equal(t, "Marked as Seen", h.app.undoLabel)
	require.Contains(t, h.app.View(), "[u] Undo")

	h.press("u")
	require.Equal(t, cards.StateUnseen, h.state(t, "a"))
	require.Empty(t, h.app.undoLabel)
}

func TestUppercaseIsLongSwipe(t *testing.T) {
	h := newHarness(t, family("a", "b"))
	h.press("L")
	require.Equal(t, modalCompose, h.app.modal)
	require.Equal(t, cards.StateUnseen, h.state(t, "a"))

	// Deck keys are inert while the flow is open.
	h.press("l")
	require.Equal(t, cards.StateUnseen, h.state(t, "a"))

	h.press("enter")
	require.Equal(t, modalNone, h.app.modal)
	require.Equal(t, cards.StateReplied, h.state(t, "a"))
}

func TestComposeCancel(t *testing.T) {
	h := newHarness(t, family("a"))
	h.press("L", "esc")
	require.Equal(t, modalNone, h.app.modal)
	require.Equal(t, "Cancelled", h.app.status)
	require.Equal(t, cards.StateUnseen, h.state(t, "a"))
}

func TestSnoozePickerSavesChoice(t *testing.T) {
	h := newHarness(t, family("a", "b"))
	h.press("h")
	require.Equal(t, modalSnooze, h.app.modal)
	require.Equal(t, 1.0, h.app.snoozeOptions[h.app.snoozeCursor])

	h.press("k", " ", "enter")
	require.Equal(t, modalNone, h.app.modal)
	require.Equal(t, cards.StateSnoozed, h.state(t, "a"))
	require.Equal(t, 1.5, h.saved.SnoozeHours)
	require.Equal(t, 1.5, h.session.SnoozeHours())

	// Remembered: the next snooze skips the picker.
	h.press("h")
	require.Equal(t, modalNone, h.app.modal)
	require.Equal(t, cards.StateSnoozed, h.state(t, "b"))
}

func TestMouseDragSwipes(t *testing.T) {
	h := newHarness(t, family("a", "b"))
	h.send(tea.MouseMsg{X: 10, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	h.send(tea.MouseMsg{X: 22, Y: 5, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	require.True(t, h.session.Dragging())
	require.Equal(t, "Seen", h.session.Preview().Label)

	h.send(tea.MouseMsg{X: 23, Y: 5, Action: tea.MouseActionRelease})
	require.False(t, h.session.Dragging())
	require.Equal(t, cards.StateSeen, h.state(t, "a"))
}

func TestMouseDragBelowThresholdDoesNothing(t *testing.T) {
	h := newHarness(t, family("a"))
	h.send(tea.MouseMsg{X: 10, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	h.send(tea.MouseMsg{X: 15, Y: 5, Action: tea.MouseActionRelease})
	require.Equal(t, cards.StateUnseen, h.state(t, "a"))
}

func TestCompletionAdvancesCategory(t *testing.T) {
	deck := append(family("a"), cards.Card{ID: "t1", Category: cards.CategoryTransactionalLeader})
	h := newHarness(t, deck)

	h.press("l")
	require.Equal(t, modalCompletion, h.app.modal)
	require.Contains(t, h.app.View(), "All caught up in Family")

	h.press("enter")
	require.Equal(t, modalNone, h.app.modal)
	require.Equal(t, cards.CategoryTransactionalLeader, h.session.Category())
	require.Equal(t, string(cards.CategoryTransactionalLeader), h.saved.LastCategory)
}

func TestStartsOnCompletionWhenFirstCategoryIsEmpty(t *testing.T) {
	h := newHarness(t, []cards.Card{{ID: "t1", Category: cards.CategoryTransactionalLeader}})
	require.Equal(t, modalCompletion, h.app.modal)
	require.Contains(t, h.app.View(), "All caught up in Family")

	h.press("enter")
	require.Equal(t, modalNone, h.app.modal)
	require.Equal(t, cards.CategoryTransactionalLeader, h.session.Category())
}

func TestSplayPicker(t *testing.T) {
	h := newHarness(t, family("a", "b", "c"))
	h.press("g")
	require.Equal(t, modalSplay, h.app.modal)
	require.Len(t, h.app.groups, 2)

	h.press("j", "enter")
	g, ok := h.session.Group()
	require.True(t, ok)
	require.Equal(t, "Max", g.Name)
	require.Len(t, h.session.Queue(), 1)

	h.press("G")
	_, ok = h.session.Group()
	require.False(t, ok)
}

func TestUnsubscribePrompt(t *testing.T) {
	var deck []cards.Card
	for _, id := range []string{"d1", "d2", "d3", "d4"} {
		deck = append(deck, cards.Card{
			ID:       id,
			Category: cards.CategoryCaregiver,
			Metadata: cards.Metadata{From: "news@techmart-deals.com"},
		})
	}
	h := newHarness(t, deck)
	h.press("H", "H", "H")
	require.Equal(t, modalUnsubscribe, h.app.modal)
	require.Contains(t, h.app.View(), "skipped 3 emails from techmart-deals.com")

	h.press("x")
	require.Equal(t, modalNone, h.app.modal)
	require.Equal(t, cards.StateDismissed, h.state(t, "d3"))
	require.Equal(t, "Hid techmart-deals.com", h.app.status)
}

func TestConfigReloadAppliesLiveSettings(t *testing.T) {
	h := newHarness(t, family("a"))
	cfg := config.Config{}
	cfg.Haptics.Enabled = false
	cfg.Triage.PromoKeywords = []string{"riverside"}
	cfg.Triage.PromoMaxDistance = 0
	h.send(ConfigMsg{Config: cfg})

	require.False(t, h.haptics.Enabled)
	require.Equal(t, "Config reloaded", h.app.status)
}

func TestViewShowsActiveCard(t *testing.T) {
	h := newHarness(t, family("a", "b"))
	h.send(tea.WindowSizeMsg{Width: 200, Height: 40})
	out := h.app.View()
	require.Contains(t, out, "Triage - Family")
	require.Contains(t, out, "Subject a")
	require.Contains(t, out, "card 1 of 2")

	h.press("j")
	require.Contains(t, h.app.View(), "Subject b")
}

func TestKeyRegistryIsCaseSensitive(t *testing.T) {
	r := NewKeyRegistry(DefaultKeyBindings())
	require.Equal(t, actionSeen, r.Action(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("l")}, scopeDeck))
	require.Equal(t, actionAct, r.Action(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("L")}, scopeDeck))
	require.Equal(t, actionQuit, r.Action(tea.KeyMsg{Type: tea.KeyCtrlC}, scopeSnooze))
	require.Empty(t, r.Action(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}, scopeSnooze))
}
