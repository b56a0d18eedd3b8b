package admob

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/echoface/admob-adapter/internal/mediation"
)

const resultSuccess = "success"

// Metrics counts adapter lifecycle outcomes.
type Metrics struct {
	setups  *prometheus.CounterVec
	loads   *prometheus.CounterVec
	shows   *prometheus.CounterVec
	events  *prometheus.CounterVec
	dropped *prometheus.CounterVec
}

// NewMetrics creates the adapter collectors and registers them on reg.
// A nil reg yields working but unregistered collectors.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		setups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "setup_total",
			Help:      "Partner SDK set-up attempts by result",
		}, []string{"result"}),
		loads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "load_total",
			Help:      "Ad loads by format and result",
		}, []string{"format", "result"}),
		shows: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "show_total",
			Help:      "Ad shows by format and result",
		}, []string{"format", "result"}),
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ad_events_total",
			Help:      "Partner ad events forwarded to the mediation delegate",
		}, []string{"format", "event"}),
		dropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_callbacks_total",
			Help:      "Partner callbacks that found no pending completion or delegate",
		}, []string{"format", "reason"}),
	}
}

func resultLabel(err error) string {
	if err == nil {
		return resultSuccess
	}
	if code, ok := mediation.CodeOf(err); ok {
		return code.String()
	}
	return "error"
}

func (m *Metrics) observeSetUp(err error) {
	m.setups.WithLabelValues(resultLabel(err)).Inc()
}

func (m *Metrics) observeLoad(format mediation.AdFormat, err error) {
	m.loads.WithLabelValues(string(format), resultLabel(err)).Inc()
}

func (m *Metrics) observeShow(format mediation.AdFormat, err error) {
	m.shows.WithLabelValues(string(format), resultLabel(err)).Inc()
}

func (m *Metrics) observeEvent(format mediation.AdFormat, event string) {
	m.events.WithLabelValues(string(format), event).Inc()
}

func (m *Metrics) observeDropped(format mediation.AdFormat, reason string) {
	m.dropped.WithLabelValues(string(format), reason).Inc()
}
