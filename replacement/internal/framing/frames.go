// Package framing keeps track of which page sits in which frame.
package framing

// A Residency records which page a frame holds.
type Residency struct {
	Frame int
	Page  int
}

// FrameTable maps frame indices to the pages resident in them.
type FrameTable interface {
	// Lookup finds the frame that holds the page.
	Lookup(page int) (Residency, bool)

	// Place puts the page into the next unused frame.
	Place(page int) Residency

	// Replace evicts whatever sits in the frame and puts the page there.
	Replace(frame, page int) Residency

	Occupied() int
	Capacity() int
	IsFull() bool

	// Resident returns the resident entries ordered by frame index.
	Resident() []Residency

	Reset()
}

// NewFrameTable creates an empty table with the given number of frames.
func NewFrameTable(numFrames int) FrameTable {
	t := &frameTableImpl{
		NumFrames: numFrames,
	}

	t.Reset()

	return t
}

type frameTableImpl struct {
	NumFrames int
	Frames    []int
	PageIndex map[int]int
}

func (t *frameTableImpl) Lookup(page int) (Residency, bool) {
	frame, ok := t.PageIndex[page]
	if !ok {
		return Residency{}, false
	}

	return Residency{Frame: frame, Page: page}, true
}

func (t *frameTableImpl) Place(page int) Residency {
	if t.IsFull() {
		panic("no unused frame left")
	}

	t.mustNotBeResident(page)

	frame := len(t.Frames)
	t.Frames = append(t.Frames, page)
	t.PageIndex[page] = frame

	return Residency{Frame: frame, Page: page}
}

func (t *frameTableImpl) Replace(frame, page int) Residency {
	if frame < 0 || frame >= len(t.Frames) {
		panic("frame is not occupied")
	}

	t.mustNotBeResident(page)

	delete(t.PageIndex, t.Frames[frame])
	t.Frames[frame] = page
	t.PageIndex[page] = frame

	return Residency{Frame: frame, Page: page}
}

func (t *frameTableImpl) mustNotBeResident(page int) {
	if _, ok := t.PageIndex[page]; ok {
		panic("page is already resident")
	}
}

func (t *frameTableImpl) Occupied() int {
	return len(t.Frames)
}

func (t *frameTableImpl) Capacity() int {
	return t.NumFrames
}

func (t *frameTableImpl) IsFull() bool {
	return len(t.Frames) >= t.NumFrames
}

func (t *frameTableImpl) Resident() []Residency {
	entries := make([]Residency, 0, len(t.Frames))
	for frame, page := range t.Frames {
		entries = append(entries, Residency{Frame: frame, Page: page})
	}

	return entries
}

// Reset marks every frame as unused.
func (t *frameTableImpl) Reset() {
	t.Frames = make([]int, 0, t.NumFrames)
	t.PageIndex = make(map[int]int, t.NumFrames)
}
