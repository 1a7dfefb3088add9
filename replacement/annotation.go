package replacement

import "fmt"

// A Page identifies a page of the process address space. Pages are 1-based.
type Page int

// A Frame is the index of a slot in the frame pool. Frames are 0-based.
type Frame int

// AnnotationKind tells what happened when a page was referenced.
type AnnotationKind int

// A list of all the annotation kinds.
const (
	Hit AnnotationKind = iota
	FaultIntoEmptyFrame
	FaultWithEviction
)

func (k AnnotationKind) String() string {
	switch k {
	case Hit:
		return "hit"
	case FaultIntoEmptyFrame:
		return "fault-into-empty-frame"
	case FaultWithEviction:
		return "fault-with-eviction"
	default:
		return fmt.Sprintf("AnnotationKind(%d)", int(k))
	}
}

// An Annotation is the outcome of a single reference. Frame is the frame that
// now holds the faulted-in page and is only meaningful for faults.
type Annotation struct {
	Kind  AnnotationKind
	Frame Frame
}

// IsFault returns true if the reference was not a hit.
func (a Annotation) IsFault() bool {
	return a.Kind != Hit
}

// HitAnnotation returns the annotation of a hit.
func HitAnnotation() Annotation {
	return Annotation{Kind: Hit}
}

// EmptyFrameFault returns the annotation of a fault that took an unused frame.
func EmptyFrameFault(frame Frame) Annotation {
	return Annotation{Kind: FaultIntoEmptyFrame, Frame: frame}
}

// EvictionFault returns the annotation of a fault that evicted the page held
// by frame.
func EvictionFault(frame Frame) Annotation {
	return Annotation{Kind: FaultWithEviction, Frame: frame}
}

// CountFaults returns the number of references that were not hits.
func CountFaults(annotations []Annotation) int {
	n := 0
	for _, a := range annotations {
		if a.IsFault() {
			n++
		}
	}

	return n
}
