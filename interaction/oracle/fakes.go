package oracle

import (
	"context"
	"sync"
	"time"

	"github.com/example/faultloc-lite/interaction/domain"
)

// FakeVerifier is a test double for Verifier.
// It delegates to an inner Verifier and records every call.
type FakeVerifier struct {
	mu sync.RWMutex

	// Inner answers the calls. A nil Inner passes everything.
	Inner Verifier

	// Calls tracks every configuration that was tested.
	Calls []domain.Assignment

	// FailAfter makes Test return Err once this many calls succeeded.
	// 0 disables the failure.
	FailAfter int

	// Err is returned when FailAfter triggers.
	Err error

	// Delay adds artificial delay to Test calls.
	Delay time.Duration
}

// NewFakeVerifier creates a FakeVerifier around inner.
func NewFakeVerifier(inner Verifier) *FakeVerifier {
	return &FakeVerifier{Inner: inner}
}

// WithError makes the verifier fail after n successful calls.
func (v *FakeVerifier) WithError(n int, err error) *FakeVerifier {
	v.FailAfter = n
	v.Err = err
	return v
}

// WithDelay sets an artificial delay for every call.
func (v *FakeVerifier) WithDelay(delay time.Duration) *FakeVerifier {
	v.Delay = delay
	return v
}

// Test implements Verifier.
func (v *FakeVerifier) Test(ctx context.Context, config domain.Assignment) (int, error) {
	if v.Delay > 0 {
		select {
		case <-time.After(v.Delay):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}

	v.mu.Lock()
	if v.Err != nil && len(v.Calls) >= v.FailAfter {
		v.mu.Unlock()
		return 0, v.Err
	}
	v.Calls = append(v.Calls, config)
	v.mu.Unlock()

	if v.Inner == nil {
		return 0, nil
	}
	return v.Inner.Test(ctx, config)
}

// CallCount returns the number of recorded calls.
func (v *FakeVerifier) CallCount() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.Calls)
}

// Reset clears recorded calls.
func (v *FakeVerifier) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Calls = nil
}
