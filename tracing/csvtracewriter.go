package tracing

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/pagesim/replacement"
	"github.com/sarchlab/pagesim/report"
)

// CSVTraceWriter is a tracer that stores every reference into a CSV file,
// optionally compressed.
type CSVTraceWriter struct {
	path        string
	compression Compression

	mu         sync.Mutex
	file       *os.File
	compressor io.WriteCloser
	csv        *csv.Writer
	rows       [][]string
	bufferSize int
	closed     bool
}

// NewCSVTraceWriter creates a new CSVTraceWriter. The file is named
// path + ".csv" plus the extension of the compression.
func NewCSVTraceWriter(path string, c Compression) *CSVTraceWriter {
	return &CSVTraceWriter{
		path:        path,
		compression: c,
		bufferSize:  1000,
	}
}

// Filename returns the name of the file the trace is written to.
func (t *CSVTraceWriter) Filename() string {
	return t.path + ".csv" + t.compression.Extension()
}

// Init creates the trace file. It panics if the file already exists.
func (t *CSVTraceWriter) Init() {
	if t.path == "" {
		t.path = "pagesim_trace_" + xid.New().String()
	}

	filename := t.Filename()

	_, err := os.Stat(filename)
	if err == nil {
		panic(fmt.Errorf("file %s already exists", filename))
	}

	file, err := os.Create(filename)
	if err != nil {
		panic(err)
	}

	t.file = file
	t.compressor = NewCompressedWriter(file, t.compression)
	t.csv = csv.NewWriter(t.compressor)

	t.rows = append(t.rows, []string{
		"File", "Policy", "Seq", "Page", "Outcome", "Frame", "Symbol",
	})

	atexit.Register(func() {
		err := t.Close()
		if err != nil {
			panic(err)
		}
	})
}

// StartReplay does nothing.
func (t *CSVTraceWriter) StartReplay(replacement.ReplayInfo) {}

// Step buffers a row for the reference.
func (t *CSVTraceWriter) Step(info replacement.ReplayInfo, step replacement.Step) {
	row := []string{
		info.Name,
		info.Kind.String(),
		strconv.Itoa(step.Index),
		strconv.Itoa(int(step.Page)),
		step.Annotation.Kind.String(),
		strconv.Itoa(frameOf(step.Annotation)),
		report.Symbol(step.Annotation),
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.rows = append(t.rows, row)
	if len(t.rows) >= t.bufferSize {
		t.flush()
	}
}

// EndReplay does nothing.
func (t *CSVTraceWriter) EndReplay(replacement.ReplayInfo, replacement.Trace) {}

// Flush writes the buffered rows to the file.
func (t *CSVTraceWriter) Flush() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.flush()
}

func (t *CSVTraceWriter) flush() {
	if t.closed {
		return
	}

	err := t.csv.WriteAll(t.rows)
	if err != nil {
		panic(err)
	}

	t.rows = nil
}

// Close flushes the rows and closes the file. Calling Close more than once
// is harmless.
func (t *CSVTraceWriter) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed || t.file == nil {
		return nil
	}

	t.flush()
	t.closed = true

	if err := t.compressor.Close(); err != nil {
		return err
	}

	return t.file.Close()
}
