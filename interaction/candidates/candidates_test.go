package candidates

import (
	"errors"
	"testing"

	"github.com/example/faultloc-lite/interaction/domain"
)

func keys(list []domain.Assignment) map[string]bool {
	out := make(map[string]bool, len(list))
	for _, a := range list {
		out[a.Key()] = true
	}
	return out
}

func TestGenerateFromFailingConfiguration(t *testing.T) {
	pool := &Pool{}
	pool.Add(domain.MustAssignment(1, 2, 3, -4, 5), true)

	got, err := Generate(pool, domain.Assignment{}, 2, 0)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(got) != 10 {
		t.Errorf("len = %d, want 10", len(got))
	}
	for _, c := range got {
		if c.Len() != 2 {
			t.Errorf("candidate %v has size %d, want 2", c, c.Len())
		}
	}
}

func TestGenerateDropsPassingSubsets(t *testing.T) {
	pool := &Pool{}
	pool.Add(domain.MustAssignment(1, 2, 3, -4, 5), true)
	pool.Add(domain.MustAssignment(1, 2, 3, 4, 5), false)

	got, err := Generate(pool, domain.Assignment{}, 2, 0)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	want := keys([]domain.Assignment{
		domain.MustAssignment(1, -4),
		domain.MustAssignment(2, -4),
		domain.MustAssignment(3, -4),
		domain.MustAssignment(-4, 5),
	})
	if len(got) != len(want) {
		t.Fatalf("got %v, want %d candidates", got, len(want))
	}
	for _, c := range got {
		if !want[c.Key()] {
			t.Errorf("unexpected candidate %v", c)
		}
	}
}

func TestGenerateSkipsCoreAndDeduplicates(t *testing.T) {
	pool := &Pool{}
	pool.Add(domain.MustAssignment(1, 2, 3, -4), true)
	pool.Add(domain.MustAssignment(1, 2, 3, 4), true)

	got, err := Generate(pool, domain.MustAssignment(1), 2, 0)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	// {2,3,-4} and {2,3,4} share [2, 3].
	if len(got) != 5 {
		t.Errorf("len = %d, want 5: %v", len(got), got)
	}
	for _, c := range got {
		if c.ContainsVariable(1) {
			t.Errorf("candidate %v contains a core variable", c)
		}
	}
}

func TestGenerateEdgeCases(t *testing.T) {
	pool := &Pool{}
	pool.Add(domain.MustAssignment(1, 2, 3), true)

	got, err := Generate(pool, domain.Assignment{}, 4, 0)
	if err != nil || len(got) != 0 {
		t.Errorf("t larger than the literals: got %v, %v", got, err)
	}

	got, err = Generate(&Pool{Passing: pool.Failing}, domain.Assignment{}, 1, 0)
	if err != nil || len(got) != 0 {
		t.Errorf("no failing configuration: got %v, %v", got, err)
	}

	if _, err := Generate(pool, domain.Assignment{}, 1, 2); !errors.Is(err, domain.ErrTooManyCandidates) {
		t.Errorf("err = %v, want ErrTooManyCandidates", err)
	}

	if _, err := Generate(pool, domain.Assignment{}, 0, 0); !errors.Is(err, domain.ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig", err)
	}
}

func TestSetApply(t *testing.T) {
	a := domain.MustAssignment(1, 2)
	b := domain.MustAssignment(2, -3)
	c := domain.MustAssignment(-1, 3)

	tests := []struct {
		name   string
		config domain.Assignment
		failed bool
		want   []domain.Assignment
	}{
		{"fail keeps included", domain.MustAssignment(1, 2, -3), true, []domain.Assignment{a, b}},
		{"pass drops included", domain.MustAssignment(1, 2, -3), false, []domain.Assignment{c}},
		{"fail with nothing included empties", domain.MustAssignment(-1, -2, -3), true, nil},
		{"pass with nothing included keeps all", domain.MustAssignment(-1, -2, -3), false, []domain.Assignment{a, b, c}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSet([]domain.Assignment{a, b, c, a})
			removed := s.Apply(tt.config, tt.failed)
			got := s.Items()
			if len(got) != len(tt.want) {
				t.Fatalf("Items = %v, want %v", got, tt.want)
			}
			for i := range got {
				if !got[i].Equal(tt.want[i]) {
					t.Errorf("Items[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
			if removed != 3-len(tt.want) {
				t.Errorf("removed = %d, want %d", removed, 3-len(tt.want))
			}
		})
	}
}

func TestSetLiterals(t *testing.T) {
	s := NewSet([]domain.Assignment{
		domain.MustAssignment(1, -4),
		domain.MustAssignment(2, -4),
		domain.MustAssignment(-4, 5),
	})

	freq := s.Frequencies()
	if freq[0].Literal != -4 || freq[0].Count != 3 {
		t.Errorf("most frequent = %+v, want -4 x3", freq[0])
	}
	if freq[1].Literal != 1 {
		t.Errorf("tie should break by variable, got %+v", freq[1])
	}

	lits := s.Literals()
	want := []domain.Literal{1, 2, -4, 5}
	if len(lits) != len(want) {
		t.Fatalf("Literals = %v, want %v", lits, want)
	}
	for i := range want {
		if lits[i] != want[i] {
			t.Errorf("Literals[%d] = %d, want %d", i, lits[i], want[i])
		}
	}
}
