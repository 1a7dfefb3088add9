package monitoring

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pagesim/replacement"
	"github.com/sarchlab/pagesim/report"
	"github.com/sarchlab/pagesim/tracing"
)

func sampleReplay() report.Replay {
	refs := []replacement.Page{1, 2, 3, 4, 1, 2, 5, 1, 2, 3, 4, 5}

	runner := replacement.NewRunner("belady.txt")
	traces, err := runner.RunAll(3, refs)
	Expect(err).NotTo(HaveOccurred())

	return report.Replay{
		Name:        "belady.txt",
		ProcessSize: 5,
		MemorySize:  3,
		References:  refs,
		Traces:      traces,
		Rankings:    replacement.Rank(traces),
	}
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	return rec
}

var _ = Describe("Monitor", func() {
	var (
		m *Monitor
		h http.Handler
	)

	BeforeEach(func() {
		m = NewMonitor()
		h = m.Handler()
	})

	It("should ignore low port numbers", func() {
		m.WithPortNumber(80)
		Expect(m.portNumber).To(Equal(0))

		m.WithPortNumber(8080)
		Expect(m.portNumber).To(Equal(8080))
	})

	It("should list runs in registration order", func() {
		m.RegisterReplay(sampleReplay())
		m.RegisterFailure("bad.txt", errors.New("malformed"))

		rec := get(h, "/api/runs")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var runs []runSummaryRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &runs)).To(Succeed())

		Expect(runs).To(Equal([]runSummaryRsp{
			{
				Name:     "belady.txt",
				Faults:   map[string]int{"FIFO": 9, "LRU": 10, "OPT": 7},
				Best:     []string{"OPT"},
				NumRefs:  12,
				NumFrame: 3,
			},
			{
				Name:  "bad.txt",
				Error: "malformed",
			},
		}))
	})

	It("should list every policy tied for the fewest faults", func() {
		run := &Run{Name: "x", Replay: &report.Replay{
			Rankings: []replacement.Ranking{
				{Faults: 1, Kind: replacement.FIFO},
				{Faults: 1, Kind: replacement.LRU},
				{Faults: 2, Kind: replacement.OPT},
			},
		}}

		Expect(summarize(run).Best).To(Equal([]string{"FIFO", "LRU"}))
	})

	It("should serve the details of a run", func() {
		m.RegisterReplay(sampleReplay())

		rec := get(h, "/api/run/belady.txt")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("belady.txt"))
	})

	DescribeTable("should find runs of files in directories",
		func(name, path string) {
			r := sampleReplay()
			r.Name = name
			m.RegisterReplay(r)

			rec := get(h, path)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring(name))
		},
		Entry("relative path", "data/belady.txt", "/api/run/data/belady.txt"),
		Entry("escaped slash", "data/belady.txt", "/api/run/data%2Fbelady.txt"),
		Entry("absolute path", "/data/belady.txt", "/api/run//data/belady.txt"),
	)

	It("should serve a field of a run in a directory", func() {
		r := sampleReplay()
		r.Name = "data/belady.txt"
		m.RegisterReplay(r)

		req := url.PathEscape(`{"run_name":"data/belady.txt","field_name":"Name"}`)
		rec := get(h, "/api/field/"+req)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("data/belady.txt"))
	})

	It("should serve a field of a run", func() {
		m.RegisterReplay(sampleReplay())

		req := url.PathEscape(`{"run_name":"belady.txt","field_name":"Name"}`)
		rec := get(h, "/api/field/"+req)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("belady.txt"))
	})

	It("should reject malformed field requests", func() {
		rec := get(h, "/api/field/"+url.PathEscape("{not json"))

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should return 404 for unknown runs", func() {
		rec := get(h, "/api/run/missing.txt")

		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("should serve the fault counts", func() {
		counter := tracing.NewFaultCountTracer()
		m.RegisterFaultCounter(counter)

		runner := replacement.NewRunner("a")
		tracing.CollectTrace(runner, counter)
		_, err := runner.Run(replacement.LRU, 1, []replacement.Page{1, 1, 2})
		Expect(err).NotTo(HaveOccurred())

		rec := get(h, "/api/counts")
		Expect(rec.Code).To(Equal(http.StatusOK))

		var counts map[string]tracing.FaultCount
		Expect(json.Unmarshal(rec.Body.Bytes(), &counts)).To(Succeed())
		Expect(counts).To(HaveLen(3))
		Expect(counts["LRU"]).To(Equal(tracing.FaultCount{
			Replays:      1,
			References:   3,
			Hits:         1,
			EmptyFrame:   1,
			WithEviction: 1,
		}))
		Expect(counts["FIFO"]).To(BeZero())
	})

	It("should serve progress bars until completed", func() {
		bar := m.CreateProgressBar("files", 2)
		Expect(bar.ID).To(Equal("1"))

		rec := get(h, "/api/progress")
		Expect(rec.Body.String()).To(ContainSubstring(`"name":"files"`))

		m.CompleteProgressBar(bar)

		rec = get(h, "/api/progress")
		Expect(rec.Body.String()).To(Equal("[]"))
	})

	It("should serve resource usage", func() {
		rec := get(h, "/api/resource")

		Expect(rec.Code).To(Equal(http.StatusOK))

		var rsp resourceRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.MemorySize).To(BeNumerically(">", 0))
	})

	It("should serve the page", func() {
		rec := get(h, "/")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(HavePrefix("<!DOCTYPE html>"))
	})

	It("should start and stop a server", func() {
		addr := m.StartServer()

		Expect(addr).To(HavePrefix("http://localhost:"))
		Expect(m.StopServer()).To(Succeed())
	})
})

var _ = Describe("ProgressBar", func() {
	It("should serve consistent snapshots while bars are updated", func() {
		m := NewMonitor()
		h := m.Handler()
		bar := m.CreateProgressBar("files", 1000)

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)

			go func() {
				defer wg.Done()

				for j := 0; j < 250; j++ {
					bar.IncrementInProgress(1)
					bar.MoveInProgressToFinished(1)
				}
			}()
		}

		for i := 0; i < 20; i++ {
			var statuses []ProgressBarStatus
			rec := get(h, "/api/progress")
			Expect(json.Unmarshal(rec.Body.Bytes(), &statuses)).To(Succeed())
			Expect(statuses).To(HaveLen(1))
			Expect(statuses[0].Finished).To(BeNumerically("<=", 1000))
		}

		wg.Wait()

		Expect(m.ProgressBars()).To(Equal([]ProgressBarStatus{bar.Status()}))
		Expect(bar.Status().Finished).To(Equal(uint64(1000)))
	})

	It("should count finished and failed items", func() {
		bar := &ProgressBar{ProgressBarStatus: ProgressBarStatus{Total: 3}}

		bar.IncrementInProgress(3)
		bar.MoveInProgressToFinished(2)
		Expect(bar.Done()).To(BeFalse())

		bar.MoveInProgressToFailed(1)
		Expect(bar.Done()).To(BeTrue())
		Expect(bar.InProgress).To(BeZero())
		Expect(bar.Finished).To(Equal(uint64(3)))
		Expect(bar.Failed).To(Equal(uint64(1)))
	})
})
