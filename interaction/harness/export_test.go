package harness

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/faultloc-lite/interaction/domain"
)

func exportRecords() []*RunRecord {
	ok := &RunRecord{
		ID:            "r1",
		System:        "toy",
		Algorithm:     "random",
		T:             2,
		Faulty:        []domain.Assignment{faulty},
		Result:        domain.NewFindResult(2, []domain.Assignment{faulty}, domain.StateConverged),
		VerifyCount:   5,
		CreationCount: 5,
		Elapsed:       1200 * time.Millisecond,
		Statistics: domain.Statistics{
			{T: 2, Iteration: 0, Candidates: 7},
			{T: 2, Iteration: 1, Candidates: 1, VerifyCount: 1, CreationCount: 1},
		},
	}
	timedOut := &RunRecord{
		ID:                "r2",
		System:            "toy",
		Algorithm:         "single",
		T:                 2,
		FalseNegativeRate: 0.1,
		Faulty:            []domain.Assignment{faulty},
		CreationCount:     -1,
		TimedOut:          true,
	}
	EvaluateRecord(ok)
	EvaluateRecord(timedOut)
	return []*RunRecord{ok, timedOut}
}

func TestWriteRunsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRunsCSV(&buf, exportRecords()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "RunID;System;Scenario;Algorithm"))
	assert.Equal(t, "r1;toy;0;random;0;2;0;0;CONVERGED;1;T;T;T;T;T;T;2;2;0;0;5;5;1200;F;F", lines[1])
	assert.Equal(t, "r2;toy;0;single;0;2;0;0.1;TIMEOUT;0;N;N;N;N;N;N;0;-1;-1;-1;0;-1;0;T;F", lines[2])
}

func TestWriteStatisticsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteStatisticsCSV(&buf, exportRecords()))

	assert.Equal(t,
		"RunID;T;Iteration;NCandidates;NVerifications;NCreations\n"+
			"r1;2;0;7;0;0\n"+
			"r1;2;1;1;1;1\n",
		buf.String())
}
