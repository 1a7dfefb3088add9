package tracing

import (
	"sync"

	"github.com/sarchlab/pagesim/datarecording"
	"github.com/sarchlab/pagesim/id"
	"github.com/sarchlab/pagesim/replacement"
	"github.com/sarchlab/pagesim/report"
)

// Names of the tables a DBTracer writes.
const (
	RunTable     = "replay_runs"
	StepTable    = "replay_steps"
	RankingTable = "replay_rankings"
)

// RunEntry is a row of the run table, one per replay.
type RunEntry struct {
	RunID         string
	File          string
	Policy        string
	Capacity      int
	NumReferences int
	Faults        int
}

// StepEntry is a row of the step table, one per reference.
type StepEntry struct {
	RunID   string
	Seq     int
	Page    int
	Outcome string
	Frame   int
	Symbol  string
}

// RankingEntry is a row of the ranking table.
type RankingEntry struct {
	File     string
	Position int
	Policy   string
	Faults   int
}

// DBTracer stores replays into a data recorder. It can be shared by runners
// that replay on different goroutines.
type DBTracer struct {
	mu          sync.Mutex
	backend     datarecording.DataRecorder
	idGenerator id.IDGenerator
	runIDs      map[string]string
}

// NewDBTracer creates a DBTracer and the tables it writes to.
func NewDBTracer(
	backend datarecording.DataRecorder,
	idGenerator id.IDGenerator,
) *DBTracer {
	t := &DBTracer{
		backend:     backend,
		idGenerator: idGenerator,
		runIDs:      make(map[string]string),
	}

	t.backend.CreateTable(RunTable, RunEntry{})
	t.backend.CreateTable(StepTable, StepEntry{})
	t.backend.CreateTable(RankingTable, RankingEntry{})

	return t
}

// StartReplay assigns an ID to the replay.
func (t *DBTracer) StartReplay(info replacement.ReplayInfo) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.runIDs[info.ID] = t.idGenerator.Generate()
}

func (t *DBTracer) runID(info replacement.ReplayInfo) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	runID, ok := t.runIDs[info.ID]

	return runID, ok
}

// Step records a reference.
func (t *DBTracer) Step(info replacement.ReplayInfo, step replacement.Step) {
	runID, ok := t.runID(info)
	if !ok {
		return
	}

	t.backend.InsertData(StepTable, StepEntry{
		RunID:   runID,
		Seq:     step.Index,
		Page:    int(step.Page),
		Outcome: step.Annotation.Kind.String(),
		Frame:   frameOf(step.Annotation),
		Symbol:  report.Symbol(step.Annotation),
	})
}

// EndReplay records the replay summary.
func (t *DBTracer) EndReplay(
	info replacement.ReplayInfo,
	trace replacement.Trace,
) {
	t.mu.Lock()
	runID, ok := t.runIDs[info.ID]
	delete(t.runIDs, info.ID)
	t.mu.Unlock()

	if !ok {
		return
	}

	t.backend.InsertData(RunTable, RunEntry{
		RunID:         runID,
		File:          info.Name,
		Policy:        info.Kind.String(),
		Capacity:      info.Capacity,
		NumReferences: len(info.References),
		Faults:        trace.Faults(),
	})
}

// RecordRanking stores the comparison of the policies for a file.
func (t *DBTracer) RecordRanking(file string, rankings []replacement.Ranking) {
	for i, r := range rankings {
		t.backend.InsertData(RankingTable, RankingEntry{
			File:     file,
			Position: i + 1,
			Policy:   r.Kind.String(),
			Faults:   r.Faults,
		})
	}
}

// frameOf returns the 0-based frame of a fault, or -1 for a hit.
func frameOf(a replacement.Annotation) int {
	if !a.IsFault() {
		return -1
	}

	return int(a.Frame)
}
