package cards

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/go-playground/validator/v10"
)

var (
	ErrSnoozeUntilRequired = errors.New("snooze_until required for snoozed state")
	ErrInvalidState        = errors.New("invalid state")
	ErrDuplicateID         = errors.New("duplicate card id")
)

// NotFoundError is returned when an operation names a card the store does not
// hold. The dispatcher only acts on cards drawn from a query, so seeing this
// means a caller bug.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("card %q not found", e.ID)
}

// Card is one triageable item.
type Card struct {
	ID          string     `json:"id" yaml:"id" validate:"required"`
	Category    Category   `json:"category" yaml:"category" validate:"required,category"`
	Priority    Priority   `json:"priority,omitempty" yaml:"priority,omitempty" validate:"omitempty,oneof=critical high medium low"`
	State       State      `json:"state,omitempty" yaml:"state,omitempty" validate:"omitempty,card_state"`
	SnoozeUntil *time.Time `json:"snooze_until,omitempty" yaml:"snooze_until,omitempty"`
	Metadata    Metadata   `json:"metadata" yaml:"metadata"`
}

// Metadata is presentation payload. The engine reads nothing from it except
// the sender address (for skip tracking) and Attrs (for splay groups).
type Metadata struct {
	From    string            `json:"from,omitempty" yaml:"from,omitempty"`
	Subject string            `json:"subject,omitempty" yaml:"subject,omitempty"`
	Summary string            `json:"summary,omitempty" yaml:"summary,omitempty"`
	Action  string            `json:"action,omitempty" yaml:"action,omitempty"`
	Attrs   map[string]string `json:"attrs,omitempty" yaml:"attrs,omitempty"`
}

// SenderDomain is the lower-cased domain of the From address, or "" when
// there is none.
func (c Card) SenderDomain() string {
	return DomainOf(c.Metadata.From)
}

// DomainOf extracts the domain from an RFC 5322 address such as
// "Mrs. Anderson <anderson@riverside-elem.edu>" or a bare "deals@techmart.com".
func DomainOf(from string) string {
	from = strings.TrimSpace(from)
	if from == "" {
		return ""
	}
	addr := from
	if parsed, err := mail.ParseAddress(from); err == nil {
		addr = parsed.Address
	}
	at := strings.LastIndex(addr, "@")
	if at < 0 || at == len(addr)-1 {
		return ""
	}
	domain := strings.TrimRight(addr[at+1:], "> \t")
	return strings.ToLower(domain)
}

func (c Card) clone() Card {
	if c.SnoozeUntil != nil {
		t := *c.SnoozeUntil
		c.SnoozeUntil = &t
	}
	return c
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return Category(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("card_state", func(fl validator.FieldLevel) bool {
		return State(fl.Field().String()).Valid()
	})
	return v
}

// Validate checks the fields the engine depends on and the snooze invariant.
func (c Card) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(c.ID, err)
	}
	snoozed := c.State == StateSnoozed
	if snoozed && c.SnoozeUntil == nil {
		return fmt.Errorf("card %q: %w", c.ID, ErrSnoozeUntilRequired)
	}
	if !snoozed && c.SnoozeUntil != nil {
		return fmt.Errorf("card %q: snooze_until set on %s card: %w", c.ID, c.effectiveState(), ErrInvalidState)
	}
	return nil
}

func (c Card) effectiveState() State {
	if c.State == "" {
		return StateUnseen
	}
	return c.State
}

func formatValidationError(id string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", field, e.Param()))
		case "category":
			msgs = append(msgs, fmt.Sprintf("unknown category %q", e.Value()))
		case "card_state":
			msgs = append(msgs, fmt.Sprintf("unknown state %q", e.Value()))
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	if id == "" {
		return errors.New("card: " + strings.Join(msgs, "; "))
	}
	return fmt.Errorf("card %q: %s", id, strings.Join(msgs, "; "))
}

// ReadmitElapsed returns a copy of list where snoozed cards whose snooze has
// elapsed by now are unseen again, along with how many were readmitted.
// Snoozes are only re-queued when a deck is loaded, never mid-session.
func ReadmitElapsed(list []Card, now time.Time) ([]Card, int) {
	out := make([]Card, len(list))
	n := 0
	for i, c := range list {
		c = c.clone()
		if c.State == StateSnoozed && c.SnoozeUntil != nil && !c.SnoozeUntil.After(now) {
			c.State = StateUnseen
			c.SnoozeUntil = nil
			n++
		}
		out[i] = c
	}
	return out, n
}
