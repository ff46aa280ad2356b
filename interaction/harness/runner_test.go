package harness

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/faultloc-lite/interaction/completer"
	"github.com/example/faultloc-lite/interaction/domain"
	"github.com/example/faultloc-lite/interaction/finder"
	"github.com/example/faultloc-lite/interaction/oracle"
)

var faulty = domain.MustAssignment(2, -4)

func samplePool() []domain.Assignment {
	return []domain.Assignment{
		domain.MustAssignment(1, 2, 3, -4, 5),
		domain.MustAssignment(-1, -2, -3, -4, -5),
		domain.MustAssignment(1, -2, 3, 4, 5),
		domain.MustAssignment(-1, 2, -3, 4, -5),
	}
}

func newRequest(t *testing.T, v oracle.Verifier) *Request {
	t.Helper()
	model, err := completer.NewModel(5, nil)
	require.NoError(t, err)
	return &Request{
		Finder:    finder.NewRandom(),
		Verifier:  v,
		Completer: completer.NewSATCompleter(model, 42),
		Sample:    samplePool(),
		T:         2,
	}
}

func TestRunWithTimeoutConverges(t *testing.T) {
	req := newRequest(t, oracle.NewNoisyOracle(faulty))
	req.Timeout = time.Minute

	rec, err := RunWithTimeout(context.Background(), req)
	require.NoError(t, err)

	assert.False(t, rec.TimedOut)
	assert.False(t, rec.Errored)
	require.NotNil(t, rec.Result)
	assert.Equal(t, domain.OutcomeConverged, rec.Result.Outcome)
	assert.Equal(t, "CONVERGED", rec.Status())
	assert.Equal(t, rec.Result.VerifyCount, rec.VerifyCount, "labeling is not counted")
	assert.Equal(t, rec.Result.CreationCount, rec.CreationCount)
	assert.NotEmpty(t, rec.Statistics)
	require.NotNil(t, rec.MergedUpdated)
	assert.True(t, rec.MergedUpdated.Equal(faulty))
	assert.Equal(t, "random", rec.Algorithm)
}

func TestRunWithTimeoutDropsResultOnTimeout(t *testing.T) {
	slow := oracle.NewFakeVerifier(oracle.NewNoisyOracle(faulty)).WithDelay(200 * time.Millisecond)
	req := newRequest(t, slow)
	req.Timeout = 20 * time.Millisecond

	rec, err := RunWithTimeout(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, rec.TimedOut)
	assert.False(t, rec.Errored)
	assert.Nil(t, rec.Result)
	assert.Nil(t, rec.Statistics)
	assert.Equal(t, -1, rec.CreationCount)
	assert.Equal(t, "TIMEOUT", rec.Status())
	assert.Less(t, rec.Elapsed, 200*time.Millisecond)
}

func TestRunWithTimeoutRecordsFinderErrors(t *testing.T) {
	boom := errors.New("oracle crashed")
	// The four sample configurations label fine, the first probe fails.
	v := oracle.NewFakeVerifier(oracle.NewNoisyOracle(faulty)).WithError(4, boom)

	rec, err := RunWithTimeout(context.Background(), newRequest(t, v))
	require.NoError(t, err)

	assert.True(t, rec.Errored)
	assert.ErrorIs(t, rec.Err, boom)
	assert.Nil(t, rec.Result)
	assert.Equal(t, 1, rec.VerifyCount)
	assert.Equal(t, "ERROR", rec.Status())
}

func TestRunWithTimeoutReturnsParentCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunWithTimeout(ctx, newRequest(t, oracle.NewNoisyOracle(faulty)))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRequestValidate(t *testing.T) {
	req := newRequest(t, oracle.NewNoisyOracle(faulty))
	require.NoError(t, req.Validate())

	tests := []struct {
		name   string
		mutate func(r *Request)
	}{
		{"no finder", func(r *Request) { r.Finder = nil }},
		{"no verifier", func(r *Request) { r.Verifier = nil }},
		{"t too small", func(r *Request) { r.T = 0 }},
		{"t too large", func(r *Request) { r.T = domain.MaxT + 1 }},
		{"negative timeout", func(r *Request) { r.Timeout = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRequest(t, oracle.NewNoisyOracle(faulty))
			tt.mutate(r)
			assert.ErrorIs(t, r.Validate(), domain.ErrInvalidConfig)
		})
	}
}
