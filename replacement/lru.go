package replacement

import "github.com/sarchlab/pagesim/replacement/internal/framing"

// LRUPolicy evicts the page that has gone the longest without being
// referenced.
//
// Every resident page carries an age. Each reference first ages every
// resident page by one, then resets the referenced page to age 0. Ages are
// therefore unique and the oldest page is the one with the largest age.
type LRUPolicy struct{}

// NewLRUPolicy returns an LRU policy.
func NewLRUPolicy() *LRUPolicy {
	return &LRUPolicy{}
}

// Kind returns LRU.
func (p *LRUPolicy) Kind() Kind {
	return LRU
}

// Replay replays refs against an empty pool of capacity frames.
func (p *LRUPolicy) Replay(capacity int, refs []Page) ([]Annotation, error) {
	return annotate(LRU, capacity, refs, newAgeTable())
}

// ageTable tracks the age since last use of every resident page.
type ageTable struct {
	ages map[int]int
}

func newAgeTable() *ageTable {
	return &ageTable{ages: make(map[int]int)}
}

func (t *ageTable) advance(int) {
	for page := range t.ages {
		t.ages[page]++
	}
}

func (t *ageTable) touch(entry framing.Residency, _ int) {
	t.ages[entry.Page] = 0
}

func (t *ageTable) admit(entry framing.Residency, _ int) {
	t.ages[entry.Page] = 0
}

func (t *ageTable) evict(victim framing.Residency) {
	delete(t.ages, victim.Page)
}

func (t *ageTable) age(page int) (int, bool) {
	age, ok := t.ages[page]
	return age, ok
}

// FindVictim returns the resident entry with the largest age.
func (t *ageTable) FindVictim(table framing.FrameTable) (framing.Residency, bool) {
	var victim framing.Residency

	found := false
	maxAge := -1

	for _, entry := range table.Resident() {
		age, ok := t.ages[entry.Page]
		if !ok {
			panic("resident page has no age")
		}

		if age > maxAge {
			victim = entry
			maxAge = age
			found = true
		}
	}

	return victim, found
}
