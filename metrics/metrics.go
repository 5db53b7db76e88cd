// Package metrics exports account activity as prometheus counters.
package metrics

import (
	"context"

	accounts "github.com/goliatone/go-accounts"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "accounts"

// ActivitySink counts activity events by type.
type ActivitySink struct {
	events *prometheus.CounterVec
}

var _ accounts.ActivitySink = (*ActivitySink)(nil)

// NewActivitySink creates the counters and registers them with reg. A nil
// reg skips registration.
func NewActivitySink(reg prometheus.Registerer) (*ActivitySink, error) {
	s := &ActivitySink{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activity_events_total",
			Help:      "Account activity events by type.",
		}, []string{"event"}),
	}

	if reg != nil {
		if err := reg.Register(s.events); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *ActivitySink) Record(_ context.Context, event accounts.ActivityEvent) error {
	s.events.WithLabelValues(string(event.EventType)).Inc()
	return nil
}

// Events exposes the underlying counter vector.
func (s *ActivitySink) Events() *prometheus.CounterVec {
	return s.events
}
