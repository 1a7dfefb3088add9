package simulation

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/rs/xid"

	"github.com/sarchlab/pagesim/datarecording"
	"github.com/sarchlab/pagesim/id"
	"github.com/sarchlab/pagesim/monitoring"
	"github.com/sarchlab/pagesim/replacement"
	"github.com/sarchlab/pagesim/tracing"
)

// Builder can be used to build a simulation.
type Builder struct {
	kinds            []replacement.Kind
	parallel         bool
	logDir           string
	logWriter        io.Writer
	logSteps         bool
	output           io.Writer
	dbPath           string
	recorder         datarecording.DataRecorder
	tracePath        string
	traceCompression tracing.Compression
	monitor          *monitoring.Monitor
	now              func() time.Time
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		kinds:  replacement.AllKinds(),
		logDir: "logs",
		output: os.Stdout,
		now:    time.Now,
	}
}

// WithPolicies restricts the replay to the given policies. The comparison
// keeps the given order for ties.
func (b Builder) WithPolicies(kinds ...replacement.Kind) Builder {
	b.kinds = kinds
	return b
}

// WithParallel replays the files on separate goroutines.
func (b Builder) WithParallel() Builder {
	b.parallel = true
	return b
}

// WithLogDir sets the directory of the timestamped log file.
func (b Builder) WithLogDir(dir string) Builder {
	b.logDir = dir
	return b
}

// WithLogWriter sends the log to w instead of a timestamped log file.
func (b Builder) WithLogWriter(w io.Writer) Builder {
	b.logWriter = w
	return b
}

// WithStepLogging writes every reference into the log.
func (b Builder) WithStepLogging() Builder {
	b.logSteps = true
	return b
}

// WithOutput sets where the reports are written. Nil discards them.
func (b Builder) WithOutput(w io.Writer) Builder {
	if w == nil {
		w = io.Discard
	}

	b.output = w

	return b
}

// WithDatabase records the replays into <path>.sqlite3. An empty path picks
// a unique name.
func (b Builder) WithDatabase(path string) Builder {
	if path == "" {
		path = "pagesim_" + xid.New().String()
	}

	b.dbPath = path

	return b
}

// WithRecorder records the replays with the given recorder.
func (b Builder) WithRecorder(r datarecording.DataRecorder) Builder {
	b.recorder = r
	return b
}

// WithTraceFile writes every reference into a CSV file.
func (b Builder) WithTraceFile(path string, c tracing.Compression) Builder {
	b.tracePath = path
	b.traceCompression = c

	return b
}

// WithMonitor reports the replays to a monitor.
func (b Builder) WithMonitor(m *monitoring.Monitor) Builder {
	b.monitor = m
	return b
}

// WithClock sets the clock used to name the log file.
func (b Builder) WithClock(now func() time.Time) Builder {
	b.now = now
	return b
}

func (b Builder) parametersMustBeValid() {
	if len(b.kinds) == 0 {
		panic("at least one policy is required")
	}

	if b.dbPath != "" && b.recorder != nil {
		panic("database path cannot be set together with a recorder")
	}
}

// Build builds the simulation.
func (b Builder) Build() (*Simulation, error) {
	b.parametersMustBeValid()

	s := &Simulation{
		id:         xid.New().String(),
		kinds:      b.kinds,
		parallel:   b.parallel,
		output:     b.output,
		faultCount: tracing.NewFaultCountTracer(),
		monitor:    b.monitor,
	}

	logWriter := b.logWriter
	if logWriter == nil {
		f, err := NewLogFile(b.logDir, b.now())
		if err != nil {
			return nil, err
		}

		s.logFile = f
		logWriter = f
	}

	s.logger = log.New(logWriter, "", 0)
	s.tracers = append(s.tracers, s.faultCount)

	if b.logSteps {
		s.tracers = append(s.tracers, tracing.NewLogTracer(s.logger, true))
	}

	s.recorder = b.recorder
	if b.dbPath != "" {
		s.recorder = datarecording.New(b.dbPath)
	}

	if s.recorder != nil {
		s.dbTracer = tracing.NewDBTracer(s.recorder, id.NewXIDGenerator())
		s.tracers = append(s.tracers, s.dbTracer)
	}

	if b.tracePath != "" {
		s.traceWriter = tracing.NewCSVTraceWriter(b.tracePath, b.traceCompression)
		s.traceWriter.Init()
		s.tracers = append(s.tracers, s.traceWriter)
	}

	if s.monitor != nil {
		s.monitor.RegisterFaultCounter(s.faultCount)
	}

	return s, nil
}
