package gesture

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jask/triage/internal/haptics"
)

func newTestClassifier() (*Classifier, *haptics.Recorder) {
	rec := &haptics.Recorder{}
	return NewClassifier(DefaultThresholds(), rec, nil), rec
}

func drag(c *Classifier, points ...Point) Classification {
	s := c.Begin(Point{})
	for _, p := range points {
		c.Update(s, p)
	}
	return c.End(s)
}

func TestSnapZoneClampsOffset(t *testing.T) {
	c, _ := newTestClassifier()
	s := c.Begin(Point{X: 40, Y: 40})

	off := c.Update(s, Point{X: 235, Y: 40})
	require.Equal(t, 210.0, off.X)
	require.True(t, s.Snapped())

	off = c.Update(s, Point{X: 190, Y: 40})
	require.Equal(t, 150.0, off.X)
	require.False(t, s.Snapped())

	off = c.Update(s, Point{X: -165, Y: 40})
	require.Equal(t, -210.0, off.X)
}

func TestSnappedReleaseIsLong(t *testing.T) {
	c, rec := newTestClassifier()
	cls := drag(c, Point{X: 195})
	require.Equal(t, KindTriage, cls.Kind)
	require.Equal(t, DirectionRight, cls.Direction)
	require.Equal(t, IntensityLong, cls.Intensity)
	require.Equal(t, 210.0, cls.Offset.X)
	require.Equal(t, haptics.TriplePulse, rec.Pulses[len(rec.Pulses)-1])
}

func TestClassification(t *testing.T) {
	cases := []struct {
		name string
		to   Point
		want Classification
	}{
		{"short right", Point{X: 120, Y: 10}, Triage(DirectionRight, IntensityShort)},
		{"long left", Point{X: -250, Y: 5}, Triage(DirectionLeft, IntensityLong)},
		{"short left", Point{X: -150, Y: 30}, Triage(DirectionLeft, IntensityShort)},
		{"swipe up", Point{X: 20, Y: -150}, Navigate(DirectionNext)},
		{"swipe down", Point{X: 0, Y: 150}, Navigate(DirectionPrevious)},
		{"tie is vertical", Point{X: 120, Y: 120}, Navigate(DirectionPrevious)},
		{"below threshold", Point{X: 50, Y: 10}, Classification{Axis: AxisHorizontal}},
		{"exactly short", Point{X: 100}, Classification{Axis: AxisHorizontal}},
		{"vertical below threshold", Point{X: 5, Y: -80}, Classification{Axis: AxisVertical}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestClassifier()
			got := drag(c, tc.to)
			got.Offset = Point{}
			require.Equal(t, tc.want, got)
		})
	}
}

func TestCancelledGestureIsSilent(t *testing.T) {
	c, rec := newTestClassifier()
	cls := drag(c, Point{X: 30}, Point{X: 50, Y: 10})
	require.Equal(t, KindNone, cls.Kind)
	require.Empty(t, rec.Pulses)
}

func TestPulsesAreEdgeTriggered(t *testing.T) {
	c, rec := newTestClassifier()
	s := c.Begin(Point{})
	for _, x := range []float64{50, 120, 130, 185, 190, 205, 230, 240} {
		c.Update(s, Point{X: x})
	}
	require.Equal(t, []haptics.Pattern{
		haptics.ShortSingle, // crossed short
		haptics.ShortSingle, // entered snap zone
		haptics.DoublePulse, // crossed long
	}, rec.Pulses)

	c.End(s)
	require.Equal(t, haptics.TriplePulse, rec.Pulses[len(rec.Pulses)-1])
}

func TestRecrossingFiresAgain(t *testing.T) {
	c, rec := newTestClassifier()
	s := c.Begin(Point{})
	c.Update(s, Point{X: 120})
	c.Update(s, Point{X: 80})
	c.Update(s, Point{X: 120})
	require.Equal(t, []haptics.Pattern{haptics.ShortSingle, haptics.ShortSingle}, rec.Pulses)

	rec.Reset()
	c.End(s)
	require.Equal(t, []haptics.Pattern{haptics.DoublePulse}, rec.Pulses)
}

func TestFeedback(t *testing.T) {
	c, rec := newTestClassifier()
	s := c.Begin(Point{})
	c.Update(s, Point{X: -150, Y: 4})
	n := len(rec.Pulses)

	fb := c.Feedback(s)
	require.Equal(t, AxisHorizontal, fb.Axis)
	require.Equal(t, DirectionLeft, fb.Direction)
	require.Equal(t, IntensityShort, fb.Intensity)
	require.InDelta(t, 0.75, fb.Progress, 1e-9)
	require.False(t, fb.Snapped)
	require.Len(t, rec.Pulses, n, "feedback must not pulse")

	c.Update(s, Point{X: -400})
	require.Equal(t, 1.0, c.Feedback(s).Progress)
}

func TestSessionIsSingleUse(t *testing.T) {
	c, _ := newTestClassifier()
	s := c.Begin(Point{})
	c.Update(s, Point{X: 150})
	require.Equal(t, KindTriage, c.End(s).Kind)

	require.False(t, s.Active)
	require.Equal(t, Point{}, s.Offset)
	require.Equal(t, Point{}, c.Update(s, Point{X: 300}))
	require.Equal(t, Classification{}, c.End(s))
	require.Equal(t, Classification{}, c.End(nil))
}

type panicPort struct{}

func (panicPort) Pulse(haptics.Pattern) { panic("motor offline") }

func TestHapticFailureDoesNotAffectClassification(t *testing.T) {
	c := NewClassifier(DefaultThresholds(), panicPort{}, nil)
	require.NotPanics(t, func() {
		cls := drag(c, Point{X: 120}, Point{X: 250})
		require.Equal(t, Triage(DirectionRight, IntensityLong).Intensity, cls.Intensity)
	})
}
