// Package haptics is the tactile feedback port used by the gesture classifier
// and the triage session. Pulses are fire-and-forget: no implementation may
// surface a failure to its caller.
package haptics

import (
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
)

// Pattern is a vibration pattern.
type Pattern int

const (
	ShortSingle Pattern = iota
	DoublePulse
	TriplePulse
)

func (p Pattern) String() string {
	switch p {
	case ShortSingle:
		return "short_single"
	case DoublePulse:
		return "double_pulse"
	case TriplePulse:
		return "triple_pulse"
	}
	return fmt.Sprintf("pattern(%d)", int(p))
}

// Timings returns alternating vibrate/pause durations for the pattern.
func (p Pattern) Timings() []time.Duration {
	switch p {
	case DoublePulse:
		return []time.Duration{15 * time.Millisecond, 10 * time.Millisecond, 15 * time.Millisecond}
	case TriplePulse:
		return []time.Duration{
			20 * time.Millisecond, 10 * time.Millisecond,
			20 * time.Millisecond, 10 * time.Millisecond,
			20 * time.Millisecond,
		}
	default:
		return []time.Duration{10 * time.Millisecond}
	}
}

// Port delivers a pulse. Implementations must not panic or block for long.
type Port interface {
	Pulse(p Pattern)
}

// Nop drops every pulse.
type Nop struct{}

func (Nop) Pulse(Pattern) {}

// Bell rings the terminal bell once per vibration segment of the pattern.
type Bell struct {
	W      io.Writer
	Logger *zap.Logger
}

func (b Bell) Pulse(p Pattern) {
	if b.W == nil {
		return
	}
	rings := (len(p.Timings()) + 1) / 2
	for i := 0; i < rings; i++ {
		if _, err := io.WriteString(b.W, "\a"); err != nil {
			if b.Logger != nil {
				b.Logger.Debug("haptics: bell write failed", zap.Stringer("pattern", p), zap.Error(err))
			}
			return
		}
	}
}

// Recorder keeps every pulse in order. Useful for tests and for replaying
// feedback in a headless session.
type Recorder struct {
	Pulses []Pattern
}

func (r *Recorder) Pulse(p Pattern) {
	r.Pulses = append(r.Pulses, p)
}

// Reset forgets recorded pulses.
func (r *Recorder) Reset() {
	r.Pulses = nil
}

// Safe wraps a port so a panicking implementation cannot leak into the
// caller. A nil port becomes Nop.
func Safe(p Port, logger *zap.Logger) Port {
	if p == nil {
		return Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return safePort{next: p, logger: logger}
}

type safePort struct {
	next   Port
	logger *zap.Logger
}

func (s safePort) Pulse(p Pattern) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Debug("haptics: pulse suppressed", zap.Stringer("pattern", p), zap.Any("panic", r))
		}
	}()
	s.next.Pulse(p)
}

// Switch forwards pulses to Next only while Enabled is true. The TUI flips it
// when the haptics settings are reloaded.
type Switch struct {
	Enabled bool
	Next    Port
}

func (s *Switch) Pulse(p Pattern) {
	if s == nil || !s.Enabled || s.Next == nil {
		return
	}
	s.Next.Pulse(p)
}
