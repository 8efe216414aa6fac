package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/jask/triage/internal/cards"
	"github.com/jask/triage/internal/gesture"
	"github.com/jask/triage/internal/triage"
)

func TestCollectorCountsSessionEvents(t *testing.T) {
	c := NewCollector("triage")
	s := triage.NewSession(triage.Options{})
	s.Subscribe(c)
	require.NoError(t, s.LoadCards([]cards.Card{
		{ID: "c1", Category: cards.CategoryCaregiver},
		{ID: "c2", Category: cards.CategoryCaregiver},
	}))

	require.NoError(t, s.Apply(gesture.Triage(gesture.DirectionRight, gesture.IntensityShort)))
	require.True(t, s.Undo())
	require.NoError(t, s.Apply(gesture.Triage(gesture.DirectionRight, gesture.IntensityLong)))
	require.Equal(t, 1.0, testutil.ToFloat64(c.OpenFlow))
	require.NoError(t, s.CancelFlow())

	s.BeginDrag(gesture.Point{})
	s.DragTo(gesture.Point{X: 130})
	_, err := s.EndDrag()
	require.NoError(t, err)
	require.NoError(t, s.Apply(gesture.Triage(gesture.DirectionRight, gesture.IntensityShort)))

	require.Equal(t, 3.0, testutil.ToFloat64(c.Actions.WithLabelValues("caregiver", "seen")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.Undo.WithLabelValues("applied")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.FlowsOpened.WithLabelValues("compose")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.FlowsCancelled.WithLabelValues("compose")))
	require.Equal(t, 0.0, testutil.ToFloat64(c.OpenFlow))
	require.Equal(t, 1.0, testutil.ToFloat64(c.Gestures.WithLabelValues("triage")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.CategoriesDone.WithLabelValues("caregiver")))
}

func TestRouter(t *testing.T) {
	c := NewCollector("triage")
	c.Observe(triage.ActionTaken{CardID: "c1", Category: cards.CategoryDealStacker, To: cards.StateConverted})

	srv := httptest.NewServer(Router(c))
	defer srv.Close()

	res, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	res.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Contains(t, string(body), `triage_actions_total{category="deal_stacker",state="converted"} 1`)

	res, err = http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
}
