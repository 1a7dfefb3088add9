package replacement

import (
	"fmt"

	"github.com/sarchlab/pagesim/replacement/internal/framing"
)

// A tracker holds the policy-specific ordering of the resident pages. The
// annotate loop owns the frame table and tells the tracker what happened.
type tracker interface {
	framing.VictimFinder

	// advance is called once at the start of every reference.
	advance(index int)

	// touch is called when the referenced page is already resident.
	touch(entry framing.Residency, index int)

	// admit is called after the referenced page is placed into a frame.
	admit(entry framing.Residency, index int)

	// evict is called before the victim's frame is handed to a new page.
	evict(victim framing.Residency)
}

// annotate classifies every reference as a hit, a fault into an unused
// frame, or a fault that evicts the victim chosen by the tracker.
func annotate(
	kind Kind,
	capacity int,
	refs []Page,
	t tracker,
) ([]Annotation, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%s: %w (got %d)", kind, ErrInvalidCapacity, capacity)
	}

	table := framing.NewFrameTable(capacity)
	annotations := make([]Annotation, 0, len(refs))

	for i, page := range refs {
		t.advance(i)

		if entry, found := table.Lookup(int(page)); found {
			t.touch(entry, i)
			annotations = append(annotations, HitAnnotation())

			continue
		}

		if !table.IsFull() {
			entry := table.Place(int(page))
			t.admit(entry, i)
			annotations = append(annotations, EmptyFrameFault(Frame(entry.Frame)))

			continue
		}

		victim, ok := t.FindVictim(table)
		if !ok {
			panic("no victim found in a full frame table")
		}

		t.evict(victim)
		entry := table.Replace(victim.Frame, int(page))
		t.admit(entry, i)
		annotations = append(annotations, EvictionFault(Frame(entry.Frame)))
	}

	return annotations, nil
}
