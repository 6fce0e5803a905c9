package ircclient

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the engine's Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	LinesReceived   prometheus.Counter
	CommandsSent    prometheus.Counter
	PingsAnswered   prometheus.Counter
	MalformedRows   prometheus.Counter
	ConnectFailures *prometheus.CounterVec
	Connected       prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		LinesReceived:   f.NewCounter(prometheus.CounterOpts{Name: "ircline_lines_received_total", Help: "Number of inbound protocol lines"}),
		CommandsSent:    f.NewCounter(prometheus.CounterOpts{Name: "ircline_commands_sent_total", Help: "Number of outbound commands written"}),
		PingsAnswered:   f.NewCounter(prometheus.CounterOpts{Name: "ircline_pings_answered_total", Help: "Number of keepalive probes answered"}),
		MalformedRows:   f.NewCounter(prometheus.CounterOpts{Name: "ircline_malformed_rows_total", Help: "Number of list rows skipped as malformed"}),
		ConnectFailures: f.NewCounterVec(prometheus.CounterOpts{Name: "ircline_connect_failures_total", Help: "Number of failed connects by kind"}, []string{"kind"}),
		Connected:       f.NewGauge(prometheus.GaugeOpts{Name: "ircline_connected", Help: "1 while a connection is active"}),
	}
}

func (m *Metrics) lineReceived() {
	if m != nil {
		m.LinesReceived.Inc()
	}
}

func (m *Metrics) commandSent() {
	if m != nil {
		m.CommandsSent.Inc()
	}
}

func (m *Metrics) pingAnswered() {
	if m != nil {
		m.PingsAnswered.Inc()
	}
}

func (m *Metrics) malformedRow() {
	if m != nil {
		m.MalformedRows.Inc()
	}
}

func (m *Metrics) connectFailed(err error) {
	if m == nil {
		return
	}
	kind := "other"
	switch {
	case errors.Is(err, ErrUnreachableHost):
		kind = "unreachable_host"
	case errors.Is(err, ErrConnectionRefused):
		kind = "refused"
	case errors.Is(err, ErrTimeout):
		kind = "timeout"
	}
	m.ConnectFailures.WithLabelValues(kind).Inc()
}

func (m *Metrics) setConnected(up bool) {
	if m == nil {
		return
	}
	if up {
		m.Connected.Set(1)
	} else {
		m.Connected.Set(0)
	}
}
