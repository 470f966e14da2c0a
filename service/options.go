package service

import (
	"time"

	"github.com/layer-3/tutorauth/internal/metrics"
	"github.com/layer-3/tutorauth/ports"
)

type options struct {
	now       func() time.Time
	metrics   *metrics.Metrics
	publisher ports.EventPublisher
}

// Option configures a service
type Option func(*options)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithMetrics records outcomes into m
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithPublisher announces successful mutations through p
func WithPublisher(p ports.EventPublisher) Option {
	return func(o *options) { o.publisher = p }
}

func newOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
