// Package gesture turns pointer motion into swipe classifications.
//
// A Session tracks one drag from press to release. The Classifier applies
// magnetic snapping around the long-swipe threshold while the drag moves,
// emits edge-triggered haptic pulses, and classifies the final offset on
// release. Sessions are single use.
package gesture

import (
	"math"

	"go.uber.org/zap"

	"github.com/jask/triage/internal/haptics"
)

// Thresholds are the gesture distances in pixels.
type Thresholds struct {
	Short         float64
	Long          float64
	SnapZone      float64
	SnapOvershoot float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{Short: 100, Long: 200, SnapZone: 20, SnapOvershoot: 10}
}

func (t Thresholds) inSnapZone(abs float64) bool {
	return abs > t.Long-t.SnapZone && abs < t.Long+t.SnapZone
}

// Session is one in-progress drag.
type Session struct {
	Origin Point
	Offset Point
	Active bool

	lastAbsX float64
	snapped  bool
}

// Snapped reports whether the current offset is clamped by the snap zone.
func (s *Session) Snapped() bool { return s != nil && s.snapped }

// Feedback is the continuous state of a drag, for rendering.
type Feedback struct {
	Offset    Point
	Axis      Axis
	Direction Direction
	Intensity Intensity
	// Progress runs from 0 at rest to 1 at the long threshold.
	Progress float64
	Snapped  bool
}

type Classifier struct {
	th      Thresholds
	haptics haptics.Port
	logger  *zap.Logger
}

func NewClassifier(th Thresholds, port haptics.Port, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{th: th, haptics: haptics.Safe(port, logger), logger: logger}
}

func (c *Classifier) Thresholds() Thresholds { return c.th }

// Begin starts a drag at p.
func (c *Classifier) Begin(p Point) *Session {
	return &Session{Origin: p, Active: true}
}

// Update moves the drag to p and returns the effective offset after snapping.
func (c *Classifier) Update(s *Session, p Point) Point {
	if s == nil || !s.Active {
		return Point{}
	}
	raw := p.Sub(s.Origin)
	abs := math.Abs(raw.X)
	prev := s.lastAbsX

	off := raw
	inZone := c.th.inSnapZone(abs)
	if inZone {
		off.X = (c.th.Long + c.th.SnapOvershoot) * sign(raw.X)
		if !c.th.inSnapZone(prev) {
			c.haptics.Pulse(haptics.ShortSingle)
		}
	}
	if abs > c.th.Short && prev <= c.th.Short {
		c.haptics.Pulse(haptics.ShortSingle)
	}
	if abs > c.th.Long && prev <= c.th.Long {
		c.haptics.Pulse(haptics.DoublePulse)
	}

	s.lastAbsX = abs
	s.snapped = inZone
	s.Offset = off
	return off
}

// Feedback describes what releasing now would do. It has no side effects.
func (c *Classifier) Feedback(s *Session) Feedback {
	if s == nil {
		return Feedback{}
	}
	cls := c.classify(s.Offset)
	progress := math.Abs(s.Offset.X) / c.th.Long
	if progress > 1 {
		progress = 1
	}
	return Feedback{
		Offset:    s.Offset,
		Axis:      cls.Axis,
		Direction: cls.Direction,
		Intensity: cls.Intensity,
		Progress:  progress,
		Snapped:   s.snapped,
	}
}

// End releases the drag and classifies it. The session is reset and must not
// be reused.
func (c *Classifier) End(s *Session) Classification {
	if s == nil || !s.Active {
		return Classification{}
	}
	cls := c.classify(s.Offset)
	if cls.Kind == KindTriage {
		if cls.Intensity == IntensityLong {
			c.haptics.Pulse(haptics.TriplePulse)
		} else {
			c.haptics.Pulse(haptics.DoublePulse)
		}
	}
	c.logger.Debug("gesture released",
		zap.Stringer("classification", cls),
		zap.Float64("dx", cls.Offset.X),
		zap.Float64("dy", cls.Offset.Y),
	)
	s.Active = false
	s.Offset = Point{}
	s.snapped = false
	s.lastAbsX = 0
	return cls
}

func (c *Classifier) classify(off Point) Classification {
	ax, ay := math.Abs(off.X), math.Abs(off.Y)
	if ax > ay {
		if ax <= c.th.Short {
			return Classification{Axis: AxisHorizontal, Offset: off}
		}
		dir := DirectionLeft
		if off.X > 0 {
			dir = DirectionRight
		}
		in := IntensityShort
		if ax > c.th.Long {
			in = IntensityLong
		}
		return Classification{Kind: KindTriage, Axis: AxisHorizontal, Direction: dir, Intensity: in, Offset: off}
	}
	if ay <= c.th.Short {
		return Classification{Axis: AxisVertical, Offset: off}
	}
	dir := DirectionPrevious
	if off.Y < 0 {
		dir = DirectionNext
	}
	return Classification{Kind: KindNavigate, Axis: AxisVertical, Direction: dir, Offset: off}
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
