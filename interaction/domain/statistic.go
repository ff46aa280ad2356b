package domain

// Statistic is a snapshot of a search, taken once after candidate
// generation (Iteration 0) and once after every probe.
type Statistic struct {
	// T is the interaction size of the level.
	T int

	// Iteration counts probes within the level.
	Iteration int

	// Candidates is the number of remaining candidate interactions.
	Candidates int

	// VerifyCount is the cumulative number of oracle calls.
	VerifyCount int

	// CreationCount is the cumulative number of completed configurations.
	CreationCount int
}

// Statistics is the ordered list of snapshots for one invocation.
type Statistics []Statistic

// Last returns the most recent snapshot, or the zero value if there is none.
func (s Statistics) Last() Statistic {
	if len(s) == 0 {
		return Statistic{}
	}
	return s[len(s)-1]
}
