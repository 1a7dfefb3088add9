// Package monitoring serves the results of a batch replay over HTTP.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/pagesim/id"
	"github.com/sarchlab/pagesim/monitoring/web"
	"github.com/sarchlab/pagesim/replacement"
	"github.com/sarchlab/pagesim/report"
	"github.com/sarchlab/pagesim/tracing"
)

// A Run is what the monitor knows about a request file.
type Run struct {
	Name   string
	Error  string
	Replay *report.Replay
}

// Succeeded tells whether the file was replayed.
func (r *Run) Succeeded() bool {
	return r.Replay != nil
}

// Monitor turns a batch replay into a server that can be inspected while and
// after the files are replayed.
type Monitor struct {
	portNumber  int
	idGenerator id.IDGenerator
	faultCount  *tracing.FaultCountTracer

	runsLock sync.Mutex
	runs     []*Run

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar

	listener net.Listener
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{
		idGenerator: id.NewIDGenerator(),
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterFaultCounter sets the tracer whose tallies are served.
func (m *Monitor) RegisterFaultCounter(t *tracing.FaultCountTracer) {
	m.faultCount = t
}

// RegisterReplay records a file that was replayed.
func (m *Monitor) RegisterReplay(r report.Replay) {
	m.addRun(&Run{Name: r.Name, Replay: &r})
}

// RegisterFailure records a file that could not be replayed.
func (m *Monitor) RegisterFailure(name string, err error) {
	m.addRun(&Run{Name: name, Error: err.Error()})
}

func (m *Monitor) addRun(r *Run) {
	m.runsLock.Lock()
	defer m.runsLock.Unlock()

	m.runs = append(m.runs, r)
}

// Runs returns the runs registered so far.
func (m *Monitor) Runs() []*Run {
	m.runsLock.Lock()
	defer m.runsLock.Unlock()

	runs := make([]*Run, len(m.runs))
	copy(runs, m.runs)

	return runs
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{ProgressBarStatus: ProgressBarStatus{
		ID:        m.idGenerator.Generate(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// ProgressBars returns a copy of every bar that is not completed, each taken
// under the lock of the bar.
func (m *Monitor) ProgressBars() []ProgressBarStatus {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	statuses := make([]ProgressBarStatus, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		statuses = append(statuses, b.Status())
	}

	return statuses
}

// Handler returns the router that serves the monitor API and pages.
func (m *Monitor) Handler() http.Handler {
	r := mux.NewRouter().SkipClean(true)

	fs := web.GetAssets()
	fServer := http.FileServer(fs)
	r.HandleFunc("/api/runs", m.listRuns)
	r.HandleFunc("/api/run/{name:.+}", m.runDetails)
	r.HandleFunc("/api/field/{json:.+}", m.listFieldValue)
	r.HandleFunc("/api/counts", m.listCounts)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/").Handler(fServer)

	return r
}

// StartServer starts the monitor as a web server and returns its URL.
func (m *Monitor) StartServer() string {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	m.listener = listener

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring replays with %s\n", url)

	handler := m.Handler()
	go func() {
		_ = http.Serve(listener, handler)
	}()

	return url
}

// StopServer stops accepting connections.
func (m *Monitor) StopServer() error {
	if m.listener == nil {
		return nil
	}

	return m.listener.Close()
}

// OpenInBrowser opens url with the default browser of the system.
func OpenInBrowser(url string) error {
	return browser.OpenURL(url)
}

type runSummaryRsp struct {
	Name     string         `json:"name"`
	Error    string         `json:"error,omitempty"`
	Faults   map[string]int `json:"faults,omitempty"`
	Best     []string       `json:"best,omitempty"`
	NumRefs  int            `json:"num_refs"`
	NumFrame int            `json:"num_frames"`
}

func summarize(r *Run) runSummaryRsp {
	rsp := runSummaryRsp{Name: r.Name, Error: r.Error}
	if !r.Succeeded() {
		return rsp
	}

	rsp.NumRefs = len(r.Replay.References)
	rsp.NumFrame = r.Replay.MemorySize
	rsp.Faults = make(map[string]int)

	for _, t := range r.Replay.Traces {
		rsp.Faults[t.Kind.String()] = t.Faults()
	}

	for _, rank := range r.Replay.Rankings {
		if rank.Faults != r.Replay.Rankings[0].Faults {
			break
		}

		rsp.Best = append(rsp.Best, rank.Kind.String())
	}

	return rsp
}

func (m *Monitor) listRuns(w http.ResponseWriter, _ *http.Request) {
	runs := m.Runs()

	rsp := make([]runSummaryRsp, 0, len(runs))
	for _, r := range runs {
		rsp = append(rsp, summarize(r))
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) runDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	run := m.findRunOr404(w, name)
	if run == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(run)
	serializer.SetMaxDepth(3)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type fieldReq struct {
	RunName   string `json:"run_name,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	jsonString := mux.Vars(r)["json"]
	req := fieldReq{}

	err := json.Unmarshal([]byte(jsonString), &req)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	run := m.findRunOr404(w, req.RunName)
	if run == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(run)
	serializer.SetMaxDepth(1)

	err = serializer.SetEntryPoint(strings.Split(req.FieldName, "."))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	err = serializer.Serialize(w)
	dieOnErr(err)
}

func (m *Monitor) findRunOr404(w http.ResponseWriter, name string) *Run {
	for _, r := range m.Runs() {
		if r.Name == name {
			return r
		}
	}

	w.WriteHeader(http.StatusNotFound)
	_, err := w.Write([]byte("Run not found"))
	dieOnErr(err)

	return nil
}

func (m *Monitor) listCounts(w http.ResponseWriter, _ *http.Request) {
	counts := make(map[string]tracing.FaultCount)

	if m.faultCount != nil {
		for _, kind := range replacement.AllKinds() {
			counts[kind.String()] = m.faultCount.Count(kind)
		}
	}

	bytes, err := json.Marshal(counts)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	bytes, err := json.Marshal(m.ProgressBars())
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	bytes, err := json.Marshal(prof)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
