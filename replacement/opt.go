package replacement

import "github.com/sarchlab/pagesim/replacement/internal/framing"

// OPTPolicy evicts the page whose next reference lies furthest in the
// future. It needs the whole reference string up front.
//
// Pages that are never referenced again are evicted first. When several
// such pages are resident, the one with the lowest page number goes.
type OPTPolicy struct{}

// NewOPTPolicy returns an OPT policy.
func NewOPTPolicy() *OPTPolicy {
	return &OPTPolicy{}
}

// Kind returns OPT.
func (p *OPTPolicy) Kind() Kind {
	return OPT
}

// Replay replays refs against an empty pool of capacity frames.
func (p *OPTPolicy) Replay(capacity int, refs []Page) ([]Annotation, error) {
	return annotate(OPT, capacity, refs, newDistanceTable(refs))
}

// NeverDistance returns the distance given to pages with no future
// reference. It is larger than any real distance in refs.
func NeverDistance(refs []Page) int {
	return len(refs) + 10
}

// NextUseDistance returns how many references after index the page is
// referenced again. A page referenced at index+1 has distance 1. If the page
// is never referenced again, it returns NeverDistance(refs) and false.
func NextUseDistance(refs []Page, page Page, index int) (int, bool) {
	for i := index + 1; i < len(refs); i++ {
		if refs[i] == page {
			return i - index, true
		}
	}

	return NeverDistance(refs), false
}

type distance struct {
	value int
	never bool
}

// distanceTable tracks the time to next use of every resident page. The
// distances shrink by one on every reference and are recomputed from the
// remaining references whenever a page is referenced.
type distanceTable struct {
	refs      []Page
	distances map[int]*distance
}

func newDistanceTable(refs []Page) *distanceTable {
	return &distanceTable{
		refs:      refs,
		distances: make(map[int]*distance),
	}
}

func (t *distanceTable) advance(int) {
	for _, d := range t.distances {
		d.value--
	}
}

func (t *distanceTable) touch(entry framing.Residency, index int) {
	t.record(entry.Page, index)
}

func (t *distanceTable) admit(entry framing.Residency, index int) {
	t.record(entry.Page, index)
}

func (t *distanceTable) record(page, index int) {
	value, found := NextUseDistance(t.refs, Page(page), index)
	t.distances[page] = &distance{value: value, never: !found}
}

func (t *distanceTable) evict(victim framing.Residency) {
	delete(t.distances, victim.Page)
}

// FindVictim returns the resident entry used furthest in the future.
func (t *distanceTable) FindVictim(
	table framing.FrameTable,
) (framing.Residency, bool) {
	var victim framing.Residency

	var victimDist *distance

	for _, entry := range table.Resident() {
		d, ok := t.distances[entry.Page]
		if !ok {
			panic("resident page has no next-use distance")
		}

		if victimDist == nil || t.furtherThan(entry, d, victim, victimDist) {
			victim = entry
			victimDist = d
		}
	}

	return victim, victimDist != nil
}

func (t *distanceTable) furtherThan(
	a framing.Residency, da *distance,
	b framing.Residency, db *distance,
) bool {
	switch {
	case da.never && db.never:
		return a.Page < b.Page
	case da.never != db.never:
		return da.never
	default:
		return da.value > db.value
	}
}
