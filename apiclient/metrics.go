package apiclient

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts client traffic. A nil *Metrics records nothing.
type Metrics struct {
	Requests      *prometheus.CounterVec
	Refreshes     *prometheus.CounterVec
	ForcedLogouts prometheus.Counter
}

// NewMetrics creates the client collectors and registers them with reg when it is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "condo",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "API requests by method and response status (\"error\" when no response arrived).",
		}, []string{"method", "status"}),
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "condo",
			Subsystem: "client",
			Name:      "token_refresh_total",
			Help:      "Access token refresh attempts by result.",
		}, []string{"result"}),
		ForcedLogouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "condo",
			Subsystem: "client",
			Name:      "forced_logouts_total",
			Help:      "Sessions ended because the access token could not be refreshed.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Requests, m.Refreshes, m.ForcedLogouts)
	}
	return m
}

func (m *Metrics) request(method string, status int) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.Requests.WithLabelValues(method, label).Inc()
}

func (m *Metrics) refresh(result string) {
	if m == nil {
		return
	}
	m.Refreshes.WithLabelValues(result).Inc()
}

func (m *Metrics) forcedLogout() {
	if m == nil {
		return
	}
	m.ForcedLogouts.Inc()
}
