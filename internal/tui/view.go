package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jask/triage/internal/cards"
	"github.com/jask/triage/internal/gesture"
	"github.com/jask/triage/internal/triage"
)

// cardIndent leaves room for the card to slide left while dragging.
const cardIndent = 24

func (a *App) View() string {
	sections := []string{a.renderHeader(), a.renderTabs(), a.renderCard()}
	if a.undoLabel != "" {
		sections = append(sections, undoStyle.Render(a.undoLabel+"  [u] Undo"))
	}
	if a.modal != modalNone {
		sections = append(sections, modalStyle.Render(a.renderModal()))
	}
	if a.status != "" {
		if a.statusErr {
			sections = append(sections, statusErrStyle.Render(a.status))
		} else {
			sections = append(sections, statusStyle.Render(a.status))
		}
	}
	sections = append(sections, a.renderFooter())
	return appStyle.Render(strings.Join(sections, "\n\n"))
}

func (a *App) renderHeader() string {
	p := a.session.Progress()
	title := titleStyle.Render("Triage - " + p.Title)
	if g, ok := a.session.Group(); ok {
		title += mutedStyle.Render("  / " + g.Name)
	}
	return fmt.Sprintf("%s\n%s %d/%d done", title, progressBar(p.Processed, p.Total, 20), p.Processed, p.Total)
}

func progressBar(done, total, width int) string {
	filled := 0
	if total > 0 {
		filled = done * width / total
	}
	return lipgloss.NewStyle().Foreground(colorSuccess).Render(strings.Repeat("█", filled)) +
		mutedStyle.Render(strings.Repeat("░", width-filled))
}

func (a *App) renderTabs() string {
	active := a.session.Category()
	parts := make([]string, 0, len(cards.Categories))
	for _, c := range cards.Categories {
		switch {
		case c == active:
			parts = append(parts, activeTabStyle.Render(c.Title()))
		case a.session.Completed(c):
			parts = append(parts, doneTabStyle.Render("✓ "+c.Title()))
		default:
			parts = append(parts, inactiveTabStyle.Render(c.Title()))
		}
	}
	return a.fit(strings.Join(parts, " "))
}

func (a *App) renderCard() string {
	card, ok := a.session.Active()
	if !ok {
		return mutedStyle.Render(fmt.Sprintf("Nothing left in %s.", a.session.Category().Title()))
	}
	pv := a.session.Preview()

	lines := []string{
		priorityStyle(string(card.Priority)).Render(strings.ToUpper(string(card.Priority))) + "  " + mutedStyle.Render(card.Metadata.From),
		subjectText.Render(card.Metadata.Subject),
	}
	if card.Metadata.Summary != "" {
		lines = append(lines, card.Metadata.Summary)
	}
	if card.Metadata.Action != "" {
		lines = append(lines, keyStyle.Render("→ "+card.Metadata.Action))
	}
	lines = append(lines, mutedStyle.Render(fmt.Sprintf("card %d of %d", a.session.Position()+1, len(a.session.Queue()))))

	style := cardStyle.BorderForeground(previewColor(pv))
	box := style.Render(strings.Join(lines, "\n"))

	shift := cardIndent
	if pv.Axis == gesture.AxisHorizontal {
		shift += int(math.Round(pv.Offset.X / a.cellW))
	}
	shift = max(0, shift)
	box = lipgloss.NewStyle().MarginLeft(shift).Render(box)

	label := ""
	if pv.Label != "" {
		label = lipgloss.NewStyle().MarginLeft(cardIndent).Foreground(previewColor(pv)).Bold(true).
			Render(fmt.Sprintf("%s %s", pv.Label, progressBar(int(pv.Progress*10), 10, 10)))
	}
	return label + "\n" + box
}

func previewColor(pv triage.Preview) lipgloss.Color {
	switch {
	case pv.Intensity == gesture.IntensityNone:
		return colorBorder
	case pv.Direction == gesture.DirectionRight:
		return colorSuccess
	case pv.Direction == gesture.DirectionLeft && pv.Intensity == gesture.IntensityLong:
		return colorError
	case pv.Direction == gesture.DirectionLeft:
		return colorWarning
	}
	return colorAccent
}

func (a *App) renderModal() string {
	card, _ := a.session.Active()
	switch a.modal {
	case modalCompose:
		return titleStyle.Render("Reply") + fmt.Sprintf("\nTo: %s\nRe: %s", card.Metadata.From, card.Metadata.Subject)
	case modalPurchase:
		return titleStyle.Render("Complete purchase") + "\n" + card.Metadata.Subject
	case modalSnooze:
		out := titleStyle.Render("Snooze for") + "\n"
		if len(a.snoozeOptions) > 0 {
			h := a.snoozeOptions[a.snoozeCursor]
			out += fmt.Sprintf("◀ %s ▶", strings.TrimPrefix(triage.SnoozeLabel(h), "Snoozed for "))
		}
		box := "[ ]"
		if a.snoozeRemember {
			box = "[x]"
		}
		return out + "\n" + box + " Use this for every snooze this session"
	case modalUnsubscribe:
		return titleStyle.Render("Unsubscribe?") +
			fmt.Sprintf("\nYou've skipped %d emails from %s.", a.unsubCount, a.unsubDomain)
	case modalCompletion:
		return titleStyle.Render("All caught up in "+a.exhausted.Title()) + "\nOn to the next category?"
	case modalSplay:
		out := titleStyle.Render("Groups") + "\n"
		for i, g := range a.groups {
			marker := " "
			if i == a.groupCursor {
				marker = "▶"
			}
			out += fmt.Sprintf("%s %-24s %d\n", marker, g.Name, g.Count)
		}
		return strings.TrimRight(out, "\n")
	}
	return ""
}

func (a *App) renderFooter() string {
	bindings := a.keys.BindingsForScope(a.scope())
	parts := make([]string, 0, len(bindings))
	seen := map[string]bool{}
	for _, b := range bindings {
		if len(b.Keys) == 0 || seen[b.Action] {
			continue
		}
		seen[b.Action] = true
		k := b.Keys[0]
		if k == " " {
			k = "space"
		}
		parts = append(parts, keyStyle.Render(k)+" "+helpDescStyle.Render(b.Description))
	}
	return a.fit(strings.Join(parts, "  "))
}

func (a *App) fit(line string) string {
	if a.width <= 0 {
		return line
	}
	return ansi.Truncate(line, a.width, "…")
}
