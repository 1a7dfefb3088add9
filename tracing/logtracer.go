package tracing

import (
	"log"

	"github.com/sarchlab/pagesim/replacement"
	"github.com/sarchlab/pagesim/report"
)

// LogTracer writes every replay event as a line into a logger.
type LogTracer struct {
	*log.Logger

	steps bool
}

// NewLogTracer returns a LogTracer that writes into the logger. If steps is
// false, only the start and the end of each replay are logged.
func NewLogTracer(logger *log.Logger, steps bool) *LogTracer {
	return &LogTracer{Logger: logger, steps: steps}
}

// StartReplay logs the start of a replay.
func (t *LogTracer) StartReplay(info replacement.ReplayInfo) {
	t.Printf("start,%s,%s,%d,%d\n",
		info.Name, info.Kind, info.Capacity, len(info.References))
}

// TracesSteps tells whether references are logged.
func (t *LogTracer) TracesSteps() bool {
	return t.steps
}

// Step logs a single reference.
func (t *LogTracer) Step(info replacement.ReplayInfo, step replacement.Step) {
	t.Printf("step,%s,%s,%d,%d,%s\n",
		info.Name, info.Kind, step.Index, step.Page,
		report.Symbol(step.Annotation))
}

// EndReplay logs the number of faults of the replay.
func (t *LogTracer) EndReplay(
	info replacement.ReplayInfo,
	trace replacement.Trace,
) {
	t.Printf("end,%s,%s,%d\n", info.Name, info.Kind, trace.Faults())
}
