// Package circuit implements an in-memory circuit breaker for fragile
// external calls shared across concurrent callers in one process.
package circuit

import (
	"sync"
	"time"

	"github.com/Abraxas-365/cvscreen/pkg/logx"
)

// Defaults: open after 5 consecutive failures, try again after 60s.
const (
	DefaultFailureThreshold = 5
	DefaultRecoveryTimeout  = 60 * time.Second
)

type state int

const (
	stateClosed state = iota
	stateOpen
	stateHalfOpen
)

// Breaker is a thread-safe circuit breaker.
// State: closed -> (failures) -> open -> (timeout) -> half-open -> closed.
// Construct one instance per protected dependency and inject it; there is no
// package-level singleton.
type Breaker struct {
	name             string
	failureThreshold int
	recoveryTimeout  time.Duration

	mu          sync.Mutex
	st          state
	failures    int
	lastFailure time.Time
	now         func() time.Time
}

// Option configures a Breaker.
type Option func(*Breaker)

// WithFailureThreshold overrides the consecutive-failure count that opens the breaker.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) { b.failureThreshold = n }
}

// WithRecoveryTimeout overrides the open->half-open recovery window.
func WithRecoveryTimeout(d time.Duration) Option {
	return func(b *Breaker) { b.recoveryTimeout = d }
}

// WithClock overrides the time source. Tests only.
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) { b.now = now }
}

// NewBreaker creates a breaker named after the dependency it protects.
func NewBreaker(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:             name,
		failureThreshold: DefaultFailureThreshold,
		recoveryTimeout:  DefaultRecoveryTimeout,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// IsOpen reports whether calls must be rejected. Evaluating it is also a
// transition point: once the recovery timeout has elapsed it moves the
// breaker from open to half-open and admits a single trial call.
func (b *Breaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.st {
	case stateClosed:
		return false
	case stateOpen:
		if !b.lastFailure.IsZero() && b.now().Sub(b.lastFailure) >= b.recoveryTimeout {
			b.st = stateHalfOpen
			logx.Infof("Circuit %s: half-open (trial)", b.name)
			return false
		}
		return true
	default:
		// half-open: allow one call
		return false
	}
}

// RecordSuccess resets the breaker after a successful call.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.st {
	case stateHalfOpen:
		b.st = stateClosed
		b.failures = 0
		logx.Infof("Circuit %s: closed (recovered)", b.name)
	case stateClosed:
		b.failures = 0
	}
}

// RecordFailure counts a failed call and opens the breaker at the threshold.
// A failure during the half-open trial reopens it and restarts the timeout.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	b.lastFailure = b.now()

	switch {
	case b.st == stateHalfOpen:
		b.st = stateOpen
		logx.Warnf("Circuit %s: open again (trial failed)", b.name)
	case b.st == stateClosed && b.failures >= b.failureThreshold:
		b.st = stateOpen
		logx.Warnf("Circuit %s: open after %d failures", b.name, b.failures)
	}
}
