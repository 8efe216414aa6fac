package gesture

import "fmt"

// Point is a pointer position or displacement in pixels.
type Point struct {
	X, Y float64
}

func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Axis is the dominant direction of a drag.
type Axis int

const (
	AxisHorizontal Axis = iota
	AxisVertical
)

func (a Axis) String() string {
	if a == AxisVertical {
		return "vertical"
	}
	return "horizontal"
}

// Direction is where a released gesture points.
type Direction int

const (
	DirectionNone Direction = iota
	DirectionRight
	DirectionLeft
	DirectionNext
	DirectionPrevious
)

func (d Direction) String() string {
	switch d {
	case DirectionRight:
		return "right"
	case DirectionLeft:
		return "left"
	case DirectionNext:
		return "next"
	case DirectionPrevious:
		return "previous"
	}
	return "none"
}

// Intensity separates short swipes from long ones.
type Intensity int

const (
	IntensityNone Intensity = iota
	IntensityShort
	IntensityLong
)

func (i Intensity) String() string {
	switch i {
	case IntensityShort:
		return "short"
	case IntensityLong:
		return "long"
	}
	return "none"
}

// Kind says what a release means.
type Kind int

const (
	// KindNone is a cancelled gesture: the card snaps back.
	KindNone Kind = iota
	KindTriage
	KindNavigate
)

func (k Kind) String() string {
	switch k {
	case KindTriage:
		return "triage"
	case KindNavigate:
		return "navigate"
	}
	return "none"
}

// Classification is the discrete result of a gesture.
type Classification struct {
	Kind      Kind
	Axis      Axis
	Direction Direction
	Intensity Intensity
	Offset    Point
}

func (c Classification) String() string {
	switch c.Kind {
	case KindTriage:
		return fmt.Sprintf("%s %s %s", c.Axis, c.Direction, c.Intensity)
	case KindNavigate:
		return fmt.Sprintf("%s %s", c.Axis, c.Direction)
	}
	return "none"
}

// Triage builds a horizontal triage classification without a gesture, for
// keyboard input.
func Triage(dir Direction, in Intensity) Classification {
	return Classification{Kind: KindTriage, Axis: AxisHorizontal, Direction: dir, Intensity: in}
}

// Navigate builds a vertical navigation classification without a gesture.
func Navigate(dir Direction) Classification {
	return Classification{Kind: KindNavigate, Axis: AxisVertical, Direction: dir}
}
