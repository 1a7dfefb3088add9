package simulation

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pagesim/datarecording"
	"github.com/sarchlab/pagesim/monitoring"
	"github.com/sarchlab/pagesim/replacement"
	"github.com/sarchlab/pagesim/requestfile"
	"github.com/sarchlab/pagesim/tracing"
)

const beladyFile = "5\n3\n1 2 3 4 1 2 5 1 2 3 4 5\n"

func writeFile(dir, name, content string) string {
	path := filepath.Join(dir, name)
	Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())

	return path
}

func faultsOf(r FileResult) []int {
	faults := make([]int, len(r.Traces))
	for i, t := range r.Traces {
		faults[i] = t.Faults()
	}

	return faults
}

var _ = Describe("Simulation", func() {
	var (
		dir    string
		logBuf *bytes.Buffer
		out    *bytes.Buffer
		s      *Simulation
	)

	build := func(b Builder) *Simulation {
		sim, err := b.WithLogWriter(logBuf).WithOutput(out).Build()
		Expect(err).NotTo(HaveOccurred())

		return sim
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		logBuf = new(bytes.Buffer)
		out = new(bytes.Buffer)
		s = nil
	})

	AfterEach(func() {
		if s != nil {
			Expect(s.Terminate()).To(Succeed())
		}
	})

	It("should replay a file with every policy", func() {
		s = build(MakeBuilder())
		path := writeFile(dir, "belady.txt", beladyFile)

		results := s.Run([]string{path})

		Expect(results).To(HaveLen(1))
		Expect(results[0].Err).NotTo(HaveOccurred())
		Expect(faultsOf(results[0])).To(Equal([]int{9, 10, 7}))
		Expect(results[0].Rankings).To(Equal([]replacement.Ranking{
			{Faults: 7, Kind: replacement.OPT},
			{Faults: 9, Kind: replacement.FIFO},
			{Faults: 10, Kind: replacement.LRU},
		}))

		Expect(out.String()).To(HavePrefix(
			path + ": process size 5, 3 frames, 12 references\n"))
		Expect(out.String()).To(ContainSubstring("1. OPT 7 faults\n"))
		Expect(logBuf.String()).To(BeEmpty())
	})

	It("should only replay the selected policies", func() {
		s = build(MakeBuilder().WithPolicies(replacement.LRU, replacement.FIFO))
		path := writeFile(dir, "belady.txt", beladyFile)

		results := s.Run([]string{path})

		Expect(results[0].Traces).To(HaveLen(2))
		Expect(results[0].Traces[0].Kind).To(Equal(replacement.LRU))
		Expect(results[0].Rankings[0].Kind).To(Equal(replacement.FIFO))
	})

	It("should keep going after a malformed file", func() {
		s = build(MakeBuilder())
		bad := writeFile(dir, "bad.txt", "5\nthree\n1 2\n")
		good := writeFile(dir, "good.txt", beladyFile)
		missing := filepath.Join(dir, "missing.txt")

		results := s.Run([]string{bad, good, missing})

		Expect(results).To(HaveLen(3))
		Expect(results[0].Err).To(MatchError(requestfile.ErrMalformedInput))
		Expect(results[0].Request).To(BeNil())
		Expect(results[1].Err).NotTo(HaveOccurred())
		Expect(results[2].Err).To(MatchError(os.ErrNotExist))

		log := logBuf.String()
		lines := strings.Split(strings.TrimSpace(log), "\n")
		Expect(lines).To(HaveLen(2))
		Expect(lines[0]).To(HavePrefix(bad + ":"))
		Expect(lines[1]).To(Equal(missing + ":" + results[2].Err.Error()))
		Expect(log).To(ContainSubstring(missing + ":"))
		Expect(log).NotTo(ContainSubstring(good + ":"))

		Expect(out.String()).To(ContainSubstring(bad + ": "))
		Expect(out.String()).To(ContainSubstring("1. OPT 7 faults"))
	})

	It("should report a memory without frames", func() {
		s = build(MakeBuilder())
		path := writeFile(dir, "empty.txt", "5\n0\n1 2 3\n")

		results := s.Run([]string{path})

		Expect(results[0].Err).To(MatchError(replacement.ErrInvalidCapacity))
		Expect(logBuf.String()).To(ContainSubstring(path + ":FIFO"))
	})

	It("should warn about dropped references", func() {
		s = build(MakeBuilder())
		path := writeFile(dir, "oob.txt", "3\n2\n1 9 2 0 3\n")

		results := s.Run([]string{path})

		Expect(results[0].Err).NotTo(HaveOccurred())
		Expect(results[0].Request.References).To(
			Equal([]replacement.Page{1, 2, 3}))
		Expect(strings.Count(logBuf.String(), "out-of-bound")).To(Equal(1))
		Expect(out.String()).To(
			ContainSubstring("dropped out-of-bound references: [9 0]"))
	})

	It("should keep the input order in parallel", func() {
		s = build(MakeBuilder().WithParallel())

		var paths []string
		for i := 0; i < 8; i++ {
			name := string(rune('a'+i)) + ".txt"
			content := beladyFile
			if i%3 == 0 {
				content = "bad"
			}

			paths = append(paths, writeFile(dir, name, content))
		}

		results := s.Run(paths)

		Expect(results).To(HaveLen(8))
		for i, r := range results {
			Expect(r.Path).To(Equal(paths[i]))
			Expect(r.Err != nil).To(Equal(i%3 == 0))
		}

		Expect(strings.Index(out.String(), paths[1])).To(
			BeNumerically("<", strings.Index(out.String(), paths[2])))
		Expect(s.FaultCount().Count(replacement.OPT).FewestFaultIn).
			To(Equal(uint64(5)))
	})

	It("should record the replays into a database", func() {
		dbPath := filepath.Join(dir, "runs")
		s = build(MakeBuilder().WithDatabase(dbPath))
		path := writeFile(dir, "belady.txt", beladyFile)

		s.Run([]string{path})
		Expect(s.Terminate()).To(Succeed())
		s = nil

		reader := datarecording.NewReader(dbPath + ".sqlite3")
		defer reader.Close()

		reader.MapTable(tracing.RankingTable, tracing.RankingEntry{})
		reader.MapTable(tracing.StepTable, tracing.StepEntry{})

		rankings, total, err := reader.Query(context.Background(),
			tracing.RankingTable,
			datarecording.QueryParams{OrderBy: "Position"})
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(3))
		Expect(rankings[0]).To(Equal(&tracing.RankingEntry{
			File: path, Position: 1, Policy: "OPT", Faults: 7,
		}))

		_, total, err = reader.Query(context.Background(),
			tracing.StepTable,
			datarecording.QueryParams{Limit: 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(36))

		reader.MapTable(tracing.RunTable, tracing.RunEntry{})
		runs, _, err := reader.Query(context.Background(),
			tracing.RunTable,
			datarecording.QueryParams{Where: "Policy = ?", Args: []any{"OPT"}})
		Expect(err).NotTo(HaveOccurred())
		Expect(runs).To(HaveLen(1))
		Expect(runs[0].(*tracing.RunEntry).NumReferences).To(Equal(12))
		Expect(runs[0].(*tracing.RunEntry).Faults).To(Equal(7))
	})

	It("should record every replay of a file listed twice in parallel", func() {
		dbPath := filepath.Join(dir, "twice")
		s = build(MakeBuilder().WithParallel().WithDatabase(dbPath))
		path := writeFile(dir, "belady.txt", beladyFile)

		s.Run([]string{path, path})
		Expect(s.Terminate()).To(Succeed())
		s = nil

		reader := datarecording.NewReader(dbPath + ".sqlite3")
		defer reader.Close()

		reader.MapTable(tracing.RunTable, tracing.RunEntry{})
		reader.MapTable(tracing.StepTable, tracing.StepEntry{})

		runs, total, err := reader.Query(context.Background(),
			tracing.RunTable, datarecording.QueryParams{})
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(6))

		for _, r := range runs {
			run := r.(*tracing.RunEntry)

			_, steps, err := reader.Query(context.Background(),
				tracing.StepTable,
				datarecording.QueryParams{
					Where: "RunID = ?",
					Args:  []any{run.RunID},
					Limit: 1,
				})
			Expect(err).NotTo(HaveOccurred())
			Expect(steps).To(Equal(12))
		}
	})

	It("should write a trace file", func() {
		tracePath := filepath.Join(dir, "trace")
		s = build(MakeBuilder().
			WithTraceFile(tracePath, tracing.CompressionSnappy))
		path := writeFile(dir, "belady.txt", beladyFile)

		s.Run([]string{path})

		Expect(s.GetTraceWriter().Filename()).To(Equal(tracePath + ".csv.sz"))
		Expect(s.Terminate()).To(Succeed())
		s = nil

		info, err := os.Stat(tracePath + ".csv.sz")
		Expect(err).NotTo(HaveOccurred())
		Expect(info.Size()).To(BeNumerically(">", 0))
	})

	It("should log every reference when asked", func() {
		s = build(MakeBuilder().WithStepLogging().
			WithPolicies(replacement.FIFO))
		path := writeFile(dir, "short.txt", "2\n1\n1 2\n")

		s.Run([]string{path})

		Expect(logBuf.String()).To(ContainSubstring("step," + path + ",FIFO,1,2,1"))
	})

	It("should report to the monitor", func() {
		m := monitoring.NewMonitor()
		s = build(MakeBuilder().WithMonitor(m))
		good := writeFile(dir, "good.txt", beladyFile)
		bad := writeFile(dir, "bad.txt", "1\n")

		s.Run([]string{good, bad})

		runs := m.Runs()
		Expect(runs).To(HaveLen(2))
		Expect(runs[0].Succeeded()).To(BeTrue())
		Expect(runs[0].Replay.Rankings[0].Kind).To(Equal(replacement.OPT))
		Expect(runs[1].Succeeded()).To(BeFalse())
		Expect(runs[1].Name).To(Equal(bad))
	})

	It("should write the log into a timestamped file", func() {
		logDir := filepath.Join(dir, "logs")
		now := time.Date(2024, 6, 11, 9, 30, 5, 0, time.Local)

		sim, err := MakeBuilder().
			WithLogDir(logDir).
			WithClock(func() time.Time { return now }).
			WithOutput(nil).
			Build()
		Expect(err).NotTo(HaveOccurred())
		s = sim

		bad := writeFile(dir, "bad.txt", "x\n")
		s.Run([]string{bad})

		Expect(s.LogFile().Name()).To(
			Equal(filepath.Join(logDir, "2024-06-11 09:30:05.log")))
		Expect(s.Terminate()).To(Succeed())
		s = nil

		content, err := os.ReadFile(filepath.Join(logDir, "2024-06-11 09:30:05.log"))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(content)).To(ContainSubstring(bad + ":"))
	})
})

var _ = Describe("Builder", func() {
	It("should require a policy", func() {
		Expect(func() {
			_, _ = MakeBuilder().WithPolicies().Build()
		}).To(Panic())
	})

	It("should not take both a database path and a recorder", func() {
		Expect(func() {
			_, _ = MakeBuilder().
				WithDatabase("x").
				WithRecorder(datarecording.NewWithDB(nil)).
				Build()
		}).To(Panic())
	})

	It("should fail if the log directory cannot be created", func() {
		dir := GinkgoT().TempDir()
		blocker := filepath.Join(dir, "file")
		Expect(os.WriteFile(blocker, nil, 0o644)).To(Succeed())

		_, err := MakeBuilder().WithLogDir(filepath.Join(blocker, "logs")).Build()

		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("LogFileName", func() {
	It("should name the file after the start time", func() {
		now := time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)

		Expect(LogFileName("logs", now)).To(Equal("logs/2023-01-02 03:04:05.log"))
	})
})
