package college

// limiter.go bounds how many college loads run at once.
//
// Each load holds a slot from a buffered-channel semaphore for its whole
// duration. When every slot is taken a caller waits up to maxWait and then
// fails with ErrTooManyLoads. WaitForDrain lets shutdown wait for loads
// already in flight.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManyLoads is returned when every load slot stays occupied for the
// whole wait. Clients should retry after a short delay.
var ErrTooManyLoads = errors.New("too many concurrent loads, please try again later")

const (
	// DefaultMaxParallelLoads is used when a non-positive limit is given.
	DefaultMaxParallelLoads = 4

	// DefaultMaxWait is how long to wait for a slot before rejecting.
	DefaultMaxWait = 30 * time.Second
)

// Limiter is a counting semaphore over college loads.
type Limiter struct {
	slots   chan struct{}
	maxWait time.Duration

	mu     sync.RWMutex
	active int
}

// NewLimiter allows at most maxParallel simultaneous loads. Callers that
// cannot get a slot within maxWait receive ErrTooManyLoads.
func NewLimiter(maxParallel int, maxWait time.Duration) *Limiter {
	if maxParallel <= 0 {
		maxParallel = DefaultMaxParallelLoads
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWait
	}

	return &Limiter{
		slots:   make(chan struct{}, maxParallel),
		maxWait: maxWait,
	}
}

// Acquire takes a slot, waiting up to maxWait. The caller must Release
// the slot once the load finishes.
func (l *Limiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.slots <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil

	case <-waitCtx.Done():
		// The caller's own cancellation wins over our timeout.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyLoads
	}
}

// Release returns a slot taken by Acquire.
func (l *Limiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()

	<-l.slots
}

// ActiveCount returns the number of loads holding a slot.
func (l *Limiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// WaitForDrain blocks until no load holds a slot or ctx is done.
func (l *Limiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// LimiterStatus is a point-in-time view of the limiter.
type LimiterStatus struct {
	Active      int `json:"active"`
	Available   int `json:"available"`
	MaxParallel int `json:"max_parallel"`
}

// Status reports current slot usage for health checks.
func (l *Limiter) Status() LimiterStatus {
	l.mu.RLock()
	active := l.active
	l.mu.RUnlock()

	return LimiterStatus{
		Active:      active,
		Available:   cap(l.slots) - len(l.slots),
		MaxParallel: cap(l.slots),
	}
}
