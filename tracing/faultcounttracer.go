package tracing

import (
	"sync"

	"github.com/sarchlab/pagesim/replacement"
)

// FaultCount is the tally of a policy over all the replays a
// FaultCountTracer has seen.
type FaultCount struct {
	Replays       uint64 `json:"replays"`
	References    uint64 `json:"references"`
	Hits          uint64 `json:"hits"`
	EmptyFrame    uint64 `json:"empty_frame_faults"`
	WithEviction  uint64 `json:"eviction_faults"`
	FewestFaultIn uint64 `json:"fewest_faults_in"`
}

// Faults returns the number of faults of both kinds.
func (c FaultCount) Faults() uint64 {
	return c.EmptyFrame + c.WithEviction
}

// FaultCountTracer tallies the outcome of every reference per policy. It can
// be shared by runners that replay on different goroutines.
type FaultCountTracer struct {
	lock   sync.Mutex
	counts map[replacement.Kind]*FaultCount
}

// NewFaultCountTracer creates a new FaultCountTracer.
func NewFaultCountTracer() *FaultCountTracer {
	return &FaultCountTracer{
		counts: make(map[replacement.Kind]*FaultCount),
	}
}

func (t *FaultCountTracer) countOf(kind replacement.Kind) *FaultCount {
	c, ok := t.counts[kind]
	if !ok {
		c = &FaultCount{}
		t.counts[kind] = c
	}

	return c
}

// StartReplay counts the replay.
func (t *FaultCountTracer) StartReplay(info replacement.ReplayInfo) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.countOf(info.Kind).Replays++
}

// Step counts the outcome of the reference.
func (t *FaultCountTracer) Step(
	info replacement.ReplayInfo,
	step replacement.Step,
) {
	t.lock.Lock()
	defer t.lock.Unlock()

	c := t.countOf(info.Kind)
	c.References++

	switch step.Annotation.Kind {
	case replacement.Hit:
		c.Hits++
	case replacement.FaultIntoEmptyFrame:
		c.EmptyFrame++
	case replacement.FaultWithEviction:
		c.WithEviction++
	}
}

// EndReplay does nothing.
func (t *FaultCountTracer) EndReplay(
	replacement.ReplayInfo,
	replacement.Trace,
) {
}

// RecordRanking credits every policy that shares the lowest fault count.
func (t *FaultCountTracer) RecordRanking(rankings []replacement.Ranking) {
	if len(rankings) == 0 {
		return
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	best := rankings[0].Faults
	for _, r := range rankings {
		if r.Faults != best {
			break
		}

		t.countOf(r.Kind).FewestFaultIn++
	}
}

// Count returns the tally of a policy.
func (t *FaultCountTracer) Count(kind replacement.Kind) FaultCount {
	t.lock.Lock()
	defer t.lock.Unlock()

	c, ok := t.counts[kind]
	if !ok {
		return FaultCount{}
	}

	return *c
}
