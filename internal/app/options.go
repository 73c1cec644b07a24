package service

import (
	"time"

	repository "github.com/okian/triagem/internal/adapters/repository"
	"github.com/okian/triagem/internal/adapters/reflection"
	"github.com/okian/triagem/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of check-in workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the check-in queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many check-in IDs are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets the attendee store. The service takes ownership and closes it on Stop.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithReflector sets the generator behind Reflection.
func WithReflector(g reflection.Generator) Option {
	return func(s *Service) {
		if g != nil {
			s.reflector = g
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithReflectionTimeout bounds a single reflection request.
func WithReflectionTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.reflectionTimeout = d
		}
	}
}

// WithMetricsInterval sets how often system gauges are refreshed.
func WithMetricsInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.metricsInterval = d
		}
	}
}
