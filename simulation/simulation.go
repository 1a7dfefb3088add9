// Package simulation replays batches of request files with every policy and
// reports how the policies compare.
package simulation

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/sarchlab/pagesim/datarecording"
	"github.com/sarchlab/pagesim/monitoring"
	"github.com/sarchlab/pagesim/replacement"
	"github.com/sarchlab/pagesim/report"
	"github.com/sarchlab/pagesim/requestfile"
	"github.com/sarchlab/pagesim/tracing"
)

// A FileResult is the outcome of a single request file.
type FileResult struct {
	Path     string
	Request  *requestfile.Request
	Traces   []replacement.Trace
	Rankings []replacement.Ranking

	// Err is set if the file could not be replayed. Nothing else but Path
	// is set then.
	Err error
}

// Replay converts a successful result into what gets reported.
func (r FileResult) Replay() report.Replay {
	return report.Replay{
		Name:        r.Path,
		ProcessSize: r.Request.ProcessSize,
		MemorySize:  r.Request.MemorySize,
		References:  r.Request.References,
		Dropped:     r.Request.Dropped,
		Traces:      r.Traces,
		Rankings:    r.Rankings,
	}
}

// A Simulation replays request files.
type Simulation struct {
	id       string
	kinds    []replacement.Kind
	parallel bool

	outputLock sync.Mutex
	output     io.Writer

	logger  *log.Logger
	logFile *os.File

	tracers     []tracing.Tracer
	faultCount  *tracing.FaultCountTracer
	recorder    datarecording.DataRecorder
	dbTracer    *tracing.DBTracer
	traceWriter *tracing.CSVTraceWriter
	monitor     *monitoring.Monitor
}

// ID returns the unique ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// Logger returns the logger failures are written to.
func (s *Simulation) Logger() *log.Logger {
	return s.logger
}

// LogFile returns the log file, or nil if the log goes elsewhere.
func (s *Simulation) LogFile() *os.File {
	return s.logFile
}

// FaultCount returns the tally of every policy over all replays so far.
func (s *Simulation) FaultCount() *tracing.FaultCountTracer {
	return s.faultCount
}

// GetDataRecorder returns the data recorder, or nil if not recording.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.recorder
}

// GetTraceWriter returns the CSV trace writer, or nil if not tracing.
func (s *Simulation) GetTraceWriter() *tracing.CSVTraceWriter {
	return s.traceWriter
}

// Run replays every file and returns the results in the order of paths. A
// file that fails does not stop the others.
func (s *Simulation) Run(paths []string) []FileResult {
	results := make([]FileResult, len(paths))

	var bar *monitoring.ProgressBar
	if s.monitor != nil {
		bar = s.monitor.CreateProgressBar("Request files", uint64(len(paths)))
		defer s.monitor.CompleteProgressBar(bar)
	}

	if !s.parallel {
		for i, path := range paths {
			results[i] = s.runFile(path, bar)
			s.writeReport(results[i])
		}

		return results
	}

	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)

		go func() {
			defer wg.Done()

			results[i] = s.runFile(path, bar)
		}()
	}
	wg.Wait()

	for _, r := range results {
		s.writeReport(r)
	}

	return results
}

func (s *Simulation) runFile(
	path string,
	bar *monitoring.ProgressBar,
) FileResult {
	if bar != nil {
		bar.IncrementInProgress(1)
	}

	result := s.replayFile(path)

	if result.Err != nil {
		s.logger.Printf("%s:%v", path, result.Err)
	}

	if bar != nil {
		if result.Err != nil {
			bar.MoveInProgressToFailed(1)
		} else {
			bar.MoveInProgressToFinished(1)
		}
	}

	if s.monitor != nil {
		if result.Err != nil {
			s.monitor.RegisterFailure(path, result.Err)
		} else {
			s.monitor.RegisterReplay(result.Replay())
		}
	}

	return result
}

func (s *Simulation) replayFile(path string) FileResult {
	result := FileResult{Path: path}

	req, err := requestfile.ReadFile(path)
	if err != nil {
		result.Err = err
		return result
	}

	if len(req.Dropped) > 0 {
		s.logger.Printf("%s: dropped %d out-of-bound references %v",
			path, len(req.Dropped), req.Dropped)
	}

	runner := replacement.NewRunner(path)
	for _, t := range s.tracers {
		tracing.CollectTrace(runner, t)
	}

	traces := make([]replacement.Trace, 0, len(s.kinds))
	for _, kind := range s.kinds {
		trace, err := runner.Run(kind, req.MemorySize, req.References)
		if err != nil {
			result.Err = err
			return result
		}

		traces = append(traces, trace)
	}

	rankings := replacement.Rank(traces)

	s.faultCount.RecordRanking(rankings)
	if s.dbTracer != nil {
		s.dbTracer.RecordRanking(path, rankings)
	}

	result.Request = req
	result.Traces = traces
	result.Rankings = rankings

	return result
}

func (s *Simulation) writeReport(r FileResult) {
	s.outputLock.Lock()
	defer s.outputLock.Unlock()

	if r.Err != nil {
		fmt.Fprintf(s.output, "%s: %v\n\n", r.Path, r.Err)
		return
	}

	err := report.WriteReplay(s.output, r.Replay())
	if err == nil {
		_, err = fmt.Fprintln(s.output)
	}

	if err != nil {
		s.logger.Printf("%s:write report: %v", r.Path, err)
	}
}

// Terminate flushes everything recorded and closes the files the simulation
// opened.
func (s *Simulation) Terminate() error {
	var errs []error

	if s.traceWriter != nil {
		errs = append(errs, s.traceWriter.Close())
	}

	if s.recorder != nil {
		errs = append(errs, s.recorder.Close())
	}

	if s.logFile != nil {
		errs = append(errs, s.logFile.Close())
	}

	return errors.Join(errs...)
}
