// Package report renders replay results for people to read.
package report

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/sarchlab/pagesim/replacement"
)

// Symbol renders an annotation. A hit is "+", a fault into an unused frame
// is the 1-based frame number followed by "*", and a fault that evicted a
// page is the bare 1-based frame number.
func Symbol(a replacement.Annotation) string {
	switch a.Kind {
	case replacement.Hit:
		return "+"
	case replacement.FaultIntoEmptyFrame:
		return strconv.Itoa(int(a.Frame)+1) + "*"
	case replacement.FaultWithEviction:
		return strconv.Itoa(int(a.Frame) + 1)
	default:
		panic(fmt.Sprintf("unknown annotation kind %d", int(a.Kind)))
	}
}

// Symbols renders every annotation of a trace.
func Symbols(annotations []replacement.Annotation) []string {
	symbols := make([]string, len(annotations))
	for i, a := range annotations {
		symbols[i] = Symbol(a)
	}

	return symbols
}

// A Replay is what gets reported for a single request file.
type Replay struct {
	Name        string
	ProcessSize int
	MemorySize  int
	References  []replacement.Page
	Dropped     []int
	Traces      []replacement.Trace
	Rankings    []replacement.Ranking
}

// WriteReplay writes the header, one row per policy and the ranking.
func WriteReplay(w io.Writer, r Replay) error {
	fmt.Fprintf(w, "%s: process size %d, %d frames, %d references\n",
		r.Name, r.ProcessSize, r.MemorySize, len(r.References))

	if len(r.Dropped) > 0 {
		fmt.Fprintf(w, "dropped out-of-bound references: %v\n", r.Dropped)
	}

	if err := WriteTraces(w, r.References, r.Traces); err != nil {
		return err
	}

	return WriteRanking(w, r.Rankings)
}

// WriteTraces writes the references as a header row followed by one row of
// symbols per policy.
func WriteTraces(
	w io.Writer,
	refs []replacement.Page,
	traces []replacement.Trace,
) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)

	fmt.Fprint(tw, "\t")
	for _, ref := range refs {
		fmt.Fprintf(tw, "%d\t", ref)
	}
	fmt.Fprintln(tw)

	for _, t := range traces {
		fmt.Fprintf(tw, "%s\t", t.Kind)
		for _, s := range Symbols(t.Annotations) {
			fmt.Fprintf(tw, "%s\t", s)
		}
		fmt.Fprintln(tw)
	}

	return tw.Flush()
}

// WriteRanking writes the policies from fewest to most faults.
func WriteRanking(w io.Writer, rankings []replacement.Ranking) error {
	for i, r := range rankings {
		_, err := fmt.Fprintf(w, "%d. %s %d faults\n", i+1, r.Kind, r.Faults)
		if err != nil {
			return err
		}
	}

	return nil
}
