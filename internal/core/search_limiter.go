package core

// search_limiter.go bounds the number of searches in flight.
//
// A search holds a slot for its upstream call and CSV write. With every slot
// taken, a new search waits up to maxWait and then fails with
// ErrTooManySearches. Shutdown uses WaitForDrain to let held slots finish.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManySearches is returned when no slot frees up within the wait timeout.
var ErrTooManySearches = errors.New("too many concurrent searches, please try again later")

const (
	// DefaultMaxConcurrentSearches applies when the configured limit is not positive.
	DefaultMaxConcurrentSearches = 4

	// DefaultMaxWaitTime applies when the configured wait is not positive.
	DefaultMaxWaitTime = 10 * time.Second
)

// SearchLimiter is a counting semaphore over in-flight searches.
type SearchLimiter struct {
	slots   chan struct{}
	maxWait time.Duration

	mu     sync.Mutex
	active int
	// idle is closed whenever active is zero and replaced when it leaves zero.
	idle chan struct{}
}

// NewSearchLimiter creates a limiter that allows at most maxConcurrent searches.
func NewSearchLimiter(maxConcurrent int, maxWait time.Duration) *SearchLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentSearches
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	idle := make(chan struct{})
	close(idle)
	return &SearchLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
		idle:    idle,
	}
}

// Acquire takes a slot, waiting at most maxWait. A cancelled ctx returns
// ctx.Err(); running out of wait returns ErrTooManySearches. Every nil
// return must be paired with Release.
func (l *SearchLimiter) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrTooManySearches
	}

	l.mu.Lock()
	if l.active == 0 {
		l.idle = make(chan struct{})
	}
	l.active++
	l.mu.Unlock()
	return nil
}

// Release returns a slot taken by Acquire.
func (l *SearchLimiter) Release() {
	l.mu.Lock()
	l.active--
	if l.active == 0 {
		close(l.idle)
	}
	l.mu.Unlock()

	<-l.slots
}

// ActiveCount returns the number of searches holding a slot.
func (l *SearchLimiter) ActiveCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// Available returns the number of free slots.
func (l *SearchLimiter) Available() int {
	return cap(l.slots) - len(l.slots)
}

// WaitForDrain blocks until no search holds a slot or ctx is done.
func (l *SearchLimiter) WaitForDrain(ctx context.Context) error {
	l.mu.Lock()
	idle := l.idle
	l.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SearchLimiterStatus is a snapshot of the limiter for /healthz.
type SearchLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state.
func (l *SearchLimiter) Status() SearchLimiterStatus {
	return SearchLimiterStatus{
		Active:        l.ActiveCount(),
		Available:     l.Available(),
		MaxConcurrent: cap(l.slots),
	}
}
