package oracle

import (
	"context"
	"errors"
	"testing"

	"github.com/example/faultloc-lite/interaction/domain"
)

// allConfigs enumerates every configuration over n variables.
func allConfigs(n int) []domain.Assignment {
	var out []domain.Assignment
	for mask := 0; mask < 1<<n; mask++ {
		lits := make([]domain.Literal, n)
		for v := 1; v <= n; v++ {
			if mask&(1<<(v-1)) != 0 {
				lits[v-1] = domain.Literal(v)
			} else {
				lits[v-1] = domain.Literal(-v)
			}
		}
		out = append(out, domain.MustAssignment(lits...))
	}
	return out
}

func TestNoisyOracleNoiseless(t *testing.T) {
	o := NewNoisyOracle(
		domain.MustAssignment(2, -4),
		domain.MustAssignment(1, 3),
	)
	ctx := context.Background()

	tests := []struct {
		config domain.Assignment
		want   int
	}{
		{domain.MustAssignment(-1, 2, -3, -4, 5), 1},
		{domain.MustAssignment(1, 2, 3, -4, 5), 1}, // first match wins
		{domain.MustAssignment(1, -2, 3, 4, 5), 2},
		{domain.MustAssignment(-1, 2, -3, 4, 5), 0},
	}
	for _, tt := range tests {
		got, err := o.Test(ctx, tt.config)
		if err != nil {
			t.Fatalf("Test failed: %v", err)
		}
		if got != tt.want {
			t.Errorf("Test(%v) = %d, want %d", tt.config, got, tt.want)
		}
	}
}

func TestNoisyOracleIsDeterministic(t *testing.T) {
	o := NewNoisyOracle(domain.MustAssignment(2, -4)).
		WithFalsePositiveRate(0.5).
		WithFalseNegativeRate(0.5).
		WithSeed(7)
	ctx := context.Background()

	for _, c := range allConfigs(5) {
		first, _ := o.Test(ctx, c)
		for i := 0; i < 3; i++ {
			again, _ := o.Test(ctx, c)
			if again != first {
				t.Fatalf("Test(%v) = %d then %d", c, first, again)
			}
		}
	}
}

func TestNoisyOracleNoiseRates(t *testing.T) {
	ctx := context.Background()
	configs := allConfigs(10)
	faulty := domain.MustAssignment(1)

	hidden := NewNoisyOracle(faulty).WithFalsePositiveRate(1)
	spurious := NewNoisyOracle(faulty).WithFalseNegativeRate(1)
	partial := NewNoisyOracle(faulty).WithFalseNegativeRate(0.2).WithSeed(3)

	flipped := 0
	passing := 0
	for _, c := range configs {
		if got, _ := hidden.Test(ctx, c); got != 0 {
			t.Fatalf("rate 1 false positives should hide %v, got %d", c, got)
		}
		if got, _ := spurious.Test(ctx, c); got != 1 {
			t.Fatalf("rate 1 false negatives should fail %v, got %d", c, got)
		}
		if !c.Contains(1) {
			passing++
			if got, _ := partial.Test(ctx, c); got != 0 {
				flipped++
			}
		}
	}

	rate := float64(flipped) / float64(passing)
	if rate < 0.1 || rate > 0.3 {
		t.Errorf("observed false negative rate %.2f, want about 0.2", rate)
	}
}

func TestNoisyOracleHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewNoisyOracle().Test(ctx, domain.MustAssignment(1))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestLabel(t *testing.T) {
	o := NewNoisyOracle(domain.MustAssignment(1, 2))
	passing, failing, err := Label(context.Background(), o, allConfigs(3))
	if err != nil {
		t.Fatalf("Label failed: %v", err)
	}
	if len(failing) != 2 || len(passing) != 6 {
		t.Errorf("got %d passing, %d failing, want 6 and 2", len(passing), len(failing))
	}
}

func TestFakeVerifierError(t *testing.T) {
	boom := errors.New("boom")
	v := NewFakeVerifier(nil).WithError(2, boom)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := v.Test(ctx, domain.MustAssignment(1)); err != nil {
			t.Fatalf("call %d failed: %v", i, err)
		}
	}
	if _, err := v.Test(ctx, domain.MustAssignment(1)); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
	if v.CallCount() != 2 {
		t.Errorf("CallCount = %d, want 2", v.CallCount())
	}
}
