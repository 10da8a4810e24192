// Package metrics exposes prometheus instrumentation for the notification sweeps.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Sweeps records notification outcomes. A nil *Sweeps is valid and records nothing.
type Sweeps struct {
	outcomes *prometheus.CounterVec
	duration *prometheus.HistogramVec
	smsFails prometheus.Counter
}

func NewSweeps(reg prometheus.Registerer) *Sweeps {
	s := &Sweeps{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stock_notifier",
			Name:      "notification_outcomes_total",
			Help:      "Notification decisions by kind (expiry, expired, reorder) and status (sent, skipped, failed).",
		}, []string{"kind", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "stock_notifier",
			Name:      "sweep_duration_seconds",
			Help:      "Duration of notification sweeps.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"sweep"}),
		smsFails: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stock_notifier",
			Name:      "sms_failures_total",
			Help:      "SMS sends rejected by the provider or not attempted for lack of configuration.",
		}),
	}
	reg.MustRegister(s.outcomes, s.duration, s.smsFails)
	return s
}

func (s *Sweeps) Outcome(kind, status string) {
	if s == nil {
		return
	}
	s.outcomes.WithLabelValues(kind, status).Inc()
}

func (s *Sweeps) SMSFailed() {
	if s == nil {
		return
	}
	s.smsFails.Inc()
}

// ObserveSweep is meant to be deferred: defer m.ObserveSweep("expiry", time.Now()).
func (s *Sweeps) ObserveSweep(sweep string, started time.Time) {
	if s == nil {
		return
	}
	s.duration.WithLabelValues(sweep).Observe(time.Since(started).Seconds())
}
