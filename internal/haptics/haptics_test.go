package haptics

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type panicPort struct{}

func (panicPort) Pulse(Pattern) { panic("no vibration motor") }

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestSafeSwallowsPanics(t *testing.T) {
	p := Safe(panicPort{}, nil)
	require.NotPanics(t, func() { p.Pulse(TriplePulse) })
}

func TestSafeNilIsNop(t *testing.T) {
	p := Safe(nil, nil)
	require.NotPanics(t, func() { p.Pulse(ShortSingle) })
}

func TestBellRingsPerSegment(t *testing.T) {
	var buf bytes.Buffer
	b := Bell{W: &buf}
	b.Pulse(ShortSingle)
	require.Equal(t, "\a", buf.String())
	buf.Reset()
	b.Pulse(DoublePulse)
	require.Equal(t, "\a\a", buf.String())
	buf.Reset()
	b.Pulse(TriplePulse)
	require.Equal(t, "\a\a\a", buf.String())
}

func TestBellWriteFailureIsSilent(t *testing.T) {
	b := Bell{W: failWriter{}}
	require.NotPanics(t, func() { b.Pulse(DoublePulse) })
}

func TestSwitch(t *testing.T) {
	rec := &Recorder{}
	s := &Switch{Enabled: false, Next: rec}
	s.Pulse(ShortSingle)
	require.Empty(t, rec.Pulses)
	s.Enabled = true
	s.Pulse(DoublePulse)
	require.Equal(t, []Pattern{DoublePulse}, rec.Pulses)
}
