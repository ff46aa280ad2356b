package harness

import (
	"encoding/csv"
	"io"
	"strconv"
)

// Separator is the CSV field separator of the exported files.
const Separator = ';'

var runHeader = []string{
	"RunID", "System", "Scenario", "Algorithm", "AlgorithmIt", "T", "fpNoise", "fnNoise",
	"Status", "NInteractionsFound",
	"FoundContainsFaulty", "FaultyContainsFound",
	"FoundMergedContainsFaulty", "FaultyContainsFoundMerged",
	"AnyFoundContainsFaulty", "FaultyContainsAnyFound",
	"NFoundLiterals", "NSameLiterals", "NNonFoundLiterals", "NWrongLiteralsFound",
	"NVerifications", "NCreations", "TimeMS", "Timeout", "Error",
}

// WriteRunsCSV writes one row per run.
func WriteRunsCSV(w io.Writer, records []*RunRecord) error {
	cw := csv.NewWriter(w)
	cw.Comma = Separator
	if err := cw.Write(runHeader); err != nil {
		return err
	}
	for _, r := range records {
		e := r.Evaluation
		err := cw.Write([]string{
			r.ID,
			r.System,
			strconv.Itoa(r.Scenario),
			r.Algorithm,
			strconv.Itoa(r.Iteration),
			strconv.Itoa(r.T),
			formatFloat(r.FalsePositiveRate),
			formatFloat(r.FalseNegativeRate),
			r.Status(),
			strconv.Itoa(e.FoundCount),
			e.FaultyUpdatedIsSubsetFoundMergedUpdated.String(),
			e.FoundMergedUpdatedIsSubsetFaultyUpdated.String(),
			e.FaultyIsSubsetFoundMerged.String(),
			e.FoundMergedIsSubsetFaulty.String(),
			e.FaultyIsSubsetFound.String(),
			e.FoundIsSubsetFaulty.String(),
			strconv.Itoa(e.FoundLiteralsCount),
			strconv.Itoa(e.CorrectlyFoundLiteralsCount),
			strconv.Itoa(e.MissedLiteralsCount),
			strconv.Itoa(e.IncorrectlyFoundLiteralsCount),
			strconv.Itoa(r.VerifyCount),
			strconv.Itoa(r.CreationCount),
			strconv.FormatInt(r.Elapsed.Milliseconds(), 10),
			formatBool(r.TimedOut),
			formatBool(r.Errored),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteStatisticsCSV writes one row per recorded statistic of every run.
func WriteStatisticsCSV(w io.Writer, records []*RunRecord) error {
	cw := csv.NewWriter(w)
	cw.Comma = Separator
	if err := cw.Write([]string{"RunID", "T", "Iteration", "NCandidates", "NVerifications", "NCreations"}); err != nil {
		return err
	}
	for _, r := range records {
		for _, s := range r.Statistics {
			err := cw.Write([]string{
				r.ID,
				strconv.Itoa(s.T),
				strconv.Itoa(s.Iteration),
				strconv.Itoa(s.Candidates),
				strconv.Itoa(s.VerifyCount),
				strconv.Itoa(s.CreationCount),
			})
			if err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatBool(b bool) string {
	if b {
		return "T"
	}
	return "F"
}
