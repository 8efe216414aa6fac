// Package tui is the terminal front end of a triage session. Mouse drags
// become swipe gestures; keys are shortcuts for the same classifications.
package tui

import (
	"errors"
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jask/triage/internal/cards"
	"github.com/jask/triage/internal/config"
	"github.com/jask/triage/internal/gesture"
	"github.com/jask/triage/internal/haptics"
	"github.com/jask/triage/internal/prefs"
	"github.com/jask/triage/internal/triage"
)

type modalState string

const (
	modalNone        modalState = ""
	modalCompose     modalState = "compose"
	modalPurchase    modalState = "purchase"
	modalSnooze      modalState = "snooze"
	modalUnsubscribe modalState = "unsubscribe"
	modalCompletion  modalState = "completion"
	modalSplay       modalState = "splay"
)

// Options configures an App. Session is required.
type Options struct {
	Session *triage.Session
	Keys    *KeyRegistry
	// Haptics is toggled when the config file changes. May be nil.
	Haptics    *haptics.Switch
	Logger     *zap.Logger
	CellWidth  float64
	CellHeight float64
	// SavePrefs persists remembered choices. Nil disables saving.
	SavePrefs func(func(*prefs.Prefs)) error
}

// App is the bubbletea model.
type App struct {
	session   *triage.Session
	keys      *KeyRegistry
	haptics   *haptics.Switch
	logger    *zap.Logger
	savePrefs func(func(*prefs.Prefs)) error
	cellW     float64
	cellH     float64

	width  int
	height int

	modal     modalState
	status    string
	statusErr bool
	undoLabel string

	// snooze picker
	snoozeOptions  []float64
	snoozeCursor   int
	snoozeRemember bool

	// unsubscribe prompt
	unsubDomain string
	unsubCount  int

	// splay picker
	groups      []cards.Group
	groupCursor int

	exhausted cards.Category
}

func New(opts Options) *App {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Keys == nil {
		opts.Keys = NewKeyRegistry(DefaultKeyBindings())
	}
	if opts.CellWidth <= 0 {
		opts.CellWidth = 10
	}
	if opts.CellHeight <= 0 {
		opts.CellHeight = 20
	}
	a := &App{
		session:   opts.Session,
		keys:      opts.Keys,
		haptics:   opts.Haptics,
		logger:    opts.Logger,
		savePrefs: opts.SavePrefs,
		cellW:     opts.CellWidth,
		cellH:     opts.CellHeight,
	}
	a.session.Subscribe(a)
	// The session may have exhausted its starting category before we subscribed.
	if c := a.session.Category(); a.session.Completed(c) {
		a.modal = modalCompletion
		a.exhausted = c
	}
	return a
}

// timerMsg fires a session timer whose delay has elapsed.
type timerMsg struct{ id triage.TimerID }

// ConfigMsg delivers a reloaded configuration. Only the promotional sender
// heuristic and haptics apply live; everything else needs a restart.
type ConfigMsg struct{ Config config.Config }

func (a *App) Init() tea.Cmd {
	return a.timerCmds()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
	case tea.KeyMsg:
		cmd = a.handleKey(m)
	case tea.MouseMsg:
		a.handleMouse(m)
	case timerMsg:
		a.session.FireTimer(m.id)
	case ConfigMsg:
		a.applyConfig(m.Config)
	}
	return a, tea.Batch(cmd, a.timerCmds())
}

// timerCmds turns newly scheduled session timers into ticks.
func (a *App) timerCmds() tea.Cmd {
	timers := a.session.TakeTimers()
	if len(timers) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(timers))
	for _, t := range timers {
		id := t.ID
		cmds = append(cmds, tea.Tick(t.Delay, func(_ time.Time) tea.Msg { return timerMsg{id: id} }))
	}
	return tea.Batch(cmds...)
}

func (a *App) scope() string {
	switch a.modal {
	case modalCompose:
		return scopeCompose
	case modalPurchase:
		return scopePurchase
	case modalSnooze:
		return scopeSnooze
	case modalUnsubscribe:
		return scopeUnsubscribe
	case modalCompletion:
		return scopeCompletion
	case modalSplay:
		return scopeSplay
	}
	return scopeDeck
}

func (a *App) handleKey(m tea.KeyMsg) tea.Cmd {
	action := a.keys.Action(m, a.scope())
	if action == actionQuit {
		return tea.Quit
	}
	if action == "" {
		return nil
	}
	if a.modal != modalNone {
		a.handleModalAction(action)
		return nil
	}
	a.clearStatus()
	switch action {
	case actionSeen:
		a.apply(gesture.Triage(gesture.DirectionRight, gesture.IntensityShort))
	case actionAct:
		a.apply(gesture.Triage(gesture.DirectionRight, gesture.IntensityLong))
	case actionSnooze:
		a.apply(gesture.Triage(gesture.DirectionLeft, gesture.IntensityShort))
	case actionSkip:
		a.apply(gesture.Triage(gesture.DirectionLeft, gesture.IntensityLong))
	case actionNext:
		a.report(a.session.Navigate(gesture.DirectionNext))
	case actionPrev:
		a.report(a.session.Navigate(gesture.DirectionPrevious))
	case actionUndo:
		if !a.session.Undo() {
			a.setStatus("Nothing to undo")
		}
	case actionNextCategory:
		a.session.AdvanceCategory()
	case actionPrevCategory:
		a.session.PreviousCategory()
	case actionSplay:
		groups := a.session.SplayGroups()
		if len(groups) == 0 {
			a.setStatus("No groups to show")
			return nil
		}
		a.groups = groups
		a.groupCursor = 0
		a.modal = modalSplay
	case actionClearGroup:
		a.session.ClearGroup()
	}
	return nil
}

func (a *App) handleModalAction(action string) {
	switch a.modal {
	case modalCompose, modalPurchase:
		switch action {
		case actionConfirm:
			if a.modal == modalCompose {
				a.report(a.session.Replied())
			} else {
				a.report(a.session.Converted())
			}
		case actionCancel:
			a.report(a.session.CancelFlow())
		}
	case modalSnooze:
		switch action {
		case actionUp:
			if a.snoozeCursor < len(a.snoozeOptions)-1 {
				a.snoozeCursor++
			}
		case actionDown:
			if a.snoozeCursor > 0 {
				a.snoozeCursor--
			}
		case actionRemember:
			a.snoozeRemember = !a.snoozeRemember
		case actionConfirm:
			if len(a.snoozeOptions) == 0 {
				return
			}
			hours := a.snoozeOptions[a.snoozeCursor]
			if err := a.session.ConfirmSnooze(hours, a.snoozeRemember); err != nil {
				a.report(err)
				return
			}
			a.persist(func(p *prefs.Prefs) { p.SnoozeHours = hours })
		case actionCancel:
			a.report(a.session.CancelFlow())
		}
	case modalUnsubscribe:
		switch action {
		case actionUnsubscribe:
			a.report(a.session.Unsubscribed())
		case actionHide:
			a.report(a.session.Hidden())
		case actionKeep:
			a.report(a.session.Kept())
		case actionCancel:
			a.report(a.session.CancelFlow())
		}
	case modalCompletion:
		switch action {
		case actionNextCategory:
			a.modal = modalNone
			a.session.AdvanceCategory()
		case actionCancel:
			a.modal = modalNone
		}
	case modalSplay:
		switch action {
		case actionUp:
			if a.groupCursor > 0 {
				a.groupCursor--
			}
		case actionDown:
			if a.groupCursor < len(a.groups)-1 {
				a.groupCursor++
			}
		case actionConfirm:
			a.modal = modalNone
			if a.groupCursor < len(a.groups) {
				a.report(a.session.SelectGroup(a.groups[a.groupCursor].ID))
			}
		case actionCancel:
			a.modal = modalNone
		}
	}
}

func (a *App) handleMouse(m tea.MouseMsg) {
	if a.modal != modalNone {
		return
	}
	p := a.point(m.X, m.Y)
	switch m.Action {
	case tea.MouseActionPress:
		if m.Button == tea.MouseButtonLeft {
			a.clearStatus()
			a.session.BeginDrag(p)
		}
	case tea.MouseActionMotion:
		if a.session.Dragging() {
			a.session.DragTo(p)
		}
	case tea.MouseActionRelease:
		if a.session.Dragging() {
			a.session.DragTo(p)
			_, err := a.session.EndDrag()
			a.report(err)
		}
	}
}

// point converts a terminal cell to gesture pixels.
func (a *App) point(x, y int) gesture.Point {
	return gesture.Point{X: float64(x) * a.cellW, Y: float64(y) * a.cellH}
}

func (a *App) apply(cls gesture.Classification) {
	a.report(a.session.Apply(cls))
}

func (a *App) applyConfig(cfg config.Config) {
	a.session.SetPromoDetector(triage.NewPromoDetector(cfg.Triage.PromoKeywords, cfg.Triage.PromoMaxDistance))
	if a.haptics != nil {
		a.haptics.Enabled = cfg.Haptics.Enabled
	}
	a.logger.Info("config reloaded")
	a.setStatus("Config reloaded")
}

// Observe implements triage.Observer. Session events arrive synchronously
// from within Update.
func (a *App) Observe(e triage.Event) {
	switch ev := e.(type) {
	case triage.ActionTaken:
		a.closeFlow()
		a.setStatus(ev.Label)
	case triage.UndoAvailable:
		a.undoLabel = ev.Label
	case triage.UndoExpired:
		a.undoLabel = ""
	case triage.UndoApplied:
		a.undoLabel = ""
		a.setStatus("Undone: " + ev.Label)
	case triage.ComposeRequested:
		a.modal = modalCompose
	case triage.PurchaseRequested:
		a.modal = modalPurchase
	case triage.SnoozePickerRequested:
		a.modal = modalSnooze
		a.snoozeOptions = ev.Options
		a.snoozeCursor = nearest(ev.Options, ev.DefaultHours)
		a.snoozeRemember = false
	case triage.UnsubscribeSuggested:
		a.modal = modalUnsubscribe
		a.unsubDomain = ev.Domain
		a.unsubCount = ev.SkipCount
	case triage.FlowCancelled:
		a.closeFlow()
		a.setStatus("Cancelled")
	case triage.CategoryExhausted:
		a.modal = modalCompletion
		a.exhausted = ev.Category
	case triage.CategoryChanged:
		a.persist(func(p *prefs.Prefs) { p.LastCategory = string(ev.Category) })
	}
}

func (a *App) closeFlow() {
	switch a.modal {
	case modalCompose, modalPurchase, modalSnooze, modalUnsubscribe:
		a.modal = modalNone
	}
}

func (a *App) persist(fn func(*prefs.Prefs)) {
	if a.savePrefs == nil {
		return
	}
	if err := a.savePrefs(fn); err != nil {
		a.logger.Warn("save prefs", zap.Error(err))
	}
}

func (a *App) report(err error) {
	switch {
	case err == nil:
	case errors.Is(err, triage.ErrFlowPending):
		a.setStatus("Finish the open action first")
	case errors.Is(err, triage.ErrInvalidDuration):
		a.setError(errors.New("pick a positive snooze duration"))
	default:
		a.logger.Error("triage", zap.Error(err))
		a.setError(err)
	}
}

func (a *App) setStatus(s string) {
	a.status = s
	a.statusErr = false
}

func (a *App) setError(err error) {
	a.status = "error: " + err.Error()
	a.statusErr = true
}

func (a *App) clearStatus() {
	a.status = ""
	a.statusErr = false
}

func nearest(options []float64, v float64) int {
	best, dist := 0, math.Inf(1)
	for i, o := range options {
		if d := math.Abs(o - v); d < dist {
			best, dist = i, d
		}
	}
	return best
}
