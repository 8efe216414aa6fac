// Package observability exposes triage session metrics to Prometheus.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jask/triage/internal/triage"
)

// Collector holds the Prometheus metrics of one triage session and updates
// them from session events. Each Collector has its own registry.
type Collector struct {
	registry *prometheus.Registry

	Actions            *prometheus.CounterVec
	Gestures           *prometheus.CounterVec
	CategoriesDone     *prometheus.CounterVec
	Undo               *prometheus.CounterVec
	FlowsOpened        *prometheus.CounterVec
	FlowsCancelled     *prometheus.CounterVec
	UnsubscribeActions *prometheus.CounterVec
	OpenFlow           prometheus.Gauge
}

func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		Actions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "actions_total",
				Help:      "Committed triage actions by category and resulting state",
			},
			[]string{"category", "state"},
		),
		Gestures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "gestures_total",
				Help:      "Released gestures by classification kind",
			},
			[]string{"kind"},
		),
		CategoriesDone: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "categories_exhausted_total",
				Help:      "Categories whose queue ran out",
			},
			[]string{"category"},
		),
		Undo: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "undo_total",
				Help:      "Undo records by outcome",
			},
			[]string{"outcome"},
		),
		FlowsOpened: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "flows_opened_total",
				Help:      "Composite actions opened",
			},
			[]string{"flow"},
		),
		FlowsCancelled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "flows_cancelled_total",
				Help:      "Composite actions cancelled",
			},
			[]string{"flow"},
		),
		UnsubscribeActions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sender_actions_total",
				Help:      "Unsubscribe and hide requests raised for senders",
			},
			[]string{"action"},
		),
		OpenFlow: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "open_flow",
				Help:      "1 while a composite action awaits completion",
			},
		),
	}
	c.registry.MustRegister(
		c.Actions,
		c.Gestures,
		c.CategoriesDone,
		c.Undo,
		c.FlowsOpened,
		c.FlowsCancelled,
		c.UnsubscribeActions,
		c.OpenFlow,
	)
	return c
}

// Registry returns the registry the metrics are registered with.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Observe implements triage.Observer.
func (c *Collector) Observe(e triage.Event) {
	switch ev := e.(type) {
	case triage.ActionTaken:
		c.Actions.WithLabelValues(string(ev.Category), string(ev.To)).Inc()
		c.OpenFlow.Set(0)
	case triage.GestureClassified:
		c.Gestures.WithLabelValues(ev.Classification.Kind.String()).Inc()
	case triage.CategoryExhausted:
		c.CategoriesDone.WithLabelValues(string(ev.Category)).Inc()
	case triage.UndoApplied:
		c.Undo.WithLabelValues("applied").Inc()
	case triage.UndoExpired:
		c.Undo.WithLabelValues("expired").Inc()
	case triage.ComposeRequested:
		c.flowOpened(triage.FlowCompose)
	case triage.PurchaseRequested:
		c.flowOpened(triage.FlowPurchase)
	case triage.SnoozePickerRequested:
		c.flowOpened(triage.FlowSnoozePicker)
	case triage.UnsubscribeSuggested:
		c.flowOpened(triage.FlowUnsubscribe)
	case triage.FlowCancelled:
		c.FlowsCancelled.WithLabelValues(ev.Flow.String()).Inc()
		c.OpenFlow.Set(0)
	case triage.UnsubscribeRequested:
		c.UnsubscribeActions.WithLabelValues("unsubscribe").Inc()
	case triage.SenderHidden:
		c.UnsubscribeActions.WithLabelValues("hide").Inc()
	}
}

func (c *Collector) flowOpened(k triage.FlowKind) {
	c.FlowsOpened.WithLabelValues(k.String()).Inc()
	c.OpenFlow.Set(1)
}
