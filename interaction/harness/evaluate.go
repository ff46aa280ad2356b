package harness

import (
	"github.com/samber/lo"

	"github.com/example/faultloc-lite/interaction/domain"
)

// Flag is a three valued comparison result.
type Flag int

const (
	FlagNone  Flag = iota // Nothing to compare
	FlagTrue              // Comparison holds
	FlagFalse             // Comparison fails
)

// String returns the CSV form: N, T or F.
func (f Flag) String() string {
	switch f {
	case FlagTrue:
		return "T"
	case FlagFalse:
		return "F"
	default:
		return "N"
	}
}

func flagOf(b bool) Flag {
	if b {
		return FlagTrue
	}
	return FlagFalse
}

// Evaluation compares a run's answer with the first faulty interaction.
// Flags are FlagNone and literal counts are -1 when the run found nothing
// to compare, including runs without a result.
type Evaluation struct {
	FoundCount int

	// Comparisons of the merged answer closed under the model.
	FaultyUpdatedIsSubsetFoundMergedUpdated Flag
	FoundMergedUpdatedIsSubsetFaultyUpdated Flag

	// Comparisons of the raw merged answer.
	FaultyIsSubsetFoundMerged Flag
	FoundMergedIsSubsetFaulty Flag

	// Comparisons against the individual found interactions: some found
	// interaction contains the faulty one, or is contained in it.
	FaultyIsSubsetFound Flag
	FoundIsSubsetFaulty Flag

	FoundLiteralsCount            int
	CorrectlyFoundLiteralsCount   int
	MissedLiteralsCount           int
	IncorrectlyFoundLiteralsCount int
}

// missingEvaluation is the evaluation of a run that found nothing. A run
// without a result counts as one.
func missingEvaluation() Evaluation {
	return Evaluation{
		CorrectlyFoundLiteralsCount:   -1,
		MissedLiteralsCount:           -1,
		IncorrectlyFoundLiteralsCount: -1,
	}
}

// Evaluate compares found against the first faulty interaction. merged and
// mergedUpdated may be nil: when the found interactions contradict each
// other, every merged comparison is FlagFalse and the literal counts are -1.
func Evaluate(faulty, faultyUpdated domain.Assignment, found []domain.Assignment,
	merged, mergedUpdated *domain.Assignment, hasResult bool) Evaluation {
	if !hasResult || len(found) == 0 {
		return missingEvaluation()
	}

	e := Evaluation{FoundCount: len(found)}
	e.FaultyIsSubsetFound = flagOf(lo.SomeBy(found, func(a domain.Assignment) bool { return a.ContainsAll(faulty) }))
	e.FoundIsSubsetFaulty = flagOf(lo.SomeBy(found, func(a domain.Assignment) bool { return faulty.ContainsAll(a) }))

	if merged == nil {
		e.FaultyUpdatedIsSubsetFoundMergedUpdated = FlagFalse
		e.FoundMergedUpdatedIsSubsetFaultyUpdated = FlagFalse
		e.FaultyIsSubsetFoundMerged = FlagFalse
		e.FoundMergedIsSubsetFaulty = FlagFalse
		e.CorrectlyFoundLiteralsCount = -1
		e.MissedLiteralsCount = -1
		e.IncorrectlyFoundLiteralsCount = -1
		return e
	}

	e.FaultyIsSubsetFoundMerged = flagOf(merged.ContainsAll(faulty))
	e.FoundMergedIsSubsetFaulty = flagOf(faulty.ContainsAll(*merged))

	updated := *merged
	if mergedUpdated != nil {
		updated = *mergedUpdated
	}
	e.FaultyUpdatedIsSubsetFoundMergedUpdated = flagOf(updated.ContainsAll(faultyUpdated))
	e.FoundMergedUpdatedIsSubsetFaultyUpdated = flagOf(faultyUpdated.ContainsAll(updated))
	e.FoundLiteralsCount = updated.Len()
	e.CorrectlyFoundLiteralsCount = faultyUpdated.Retain(updated).Len()
	e.MissedLiteralsCount = faultyUpdated.Remove(updated).Len()
	e.IncorrectlyFoundLiteralsCount = updated.Remove(faultyUpdated).Len()
	return e
}

// EvaluateRecord fills record.Evaluation from its fields.
func EvaluateRecord(record *RunRecord) {
	var faulty, faultyUpdated domain.Assignment
	if len(record.Faulty) > 0 {
		faulty = record.Faulty[0]
	}
	if len(record.FaultyUpdated) > 0 {
		faultyUpdated = record.FaultyUpdated[0]
	} else {
		faultyUpdated = faulty
	}

	var merged *domain.Assignment
	if record.Result != nil {
		merged = record.Result.Merged
	}
	record.Evaluation = Evaluate(faulty, faultyUpdated, record.Found(), merged,
		record.MergedUpdated, record.Result != nil)
}
