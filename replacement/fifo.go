package replacement

import "github.com/sarchlab/pagesim/replacement/internal/framing"

// FIFOPolicy evicts the page that has been resident the longest. Reuse does
// not refresh a page.
type FIFOPolicy struct{}

// NewFIFOPolicy returns a FIFO policy.
func NewFIFOPolicy() *FIFOPolicy {
	return &FIFOPolicy{}
}

// Kind returns FIFO.
func (p *FIFOPolicy) Kind() Kind {
	return FIFO
}

// Replay replays refs against an empty pool of capacity frames.
func (p *FIFOPolicy) Replay(capacity int, refs []Page) ([]Annotation, error) {
	return annotate(FIFO, capacity, refs, &arrivalQueue{})
}

// arrivalQueue orders resident entries by arrival, oldest first.
type arrivalQueue struct {
	queue []framing.Residency
}

func (q *arrivalQueue) advance(int) {}

func (q *arrivalQueue) touch(framing.Residency, int) {}

func (q *arrivalQueue) admit(entry framing.Residency, _ int) {
	q.queue = append(q.queue, entry)
}

func (q *arrivalQueue) evict(victim framing.Residency) {
	if len(q.queue) == 0 || q.queue[0] != victim {
		panic("FIFO must evict the head of the queue")
	}

	q.queue = q.queue[1:]
}

func (q *arrivalQueue) FindVictim(framing.FrameTable) (framing.Residency, bool) {
	if len(q.queue) == 0 {
		return framing.Residency{}, false
	}

	return q.queue[0], true
}
