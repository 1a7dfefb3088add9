package replacement

import "sort"

// A Trace is the annotated replay of one policy.
type Trace struct {
	Kind        Kind
	Annotations []Annotation
}

// Faults returns the number of faults in the trace.
func (t Trace) Faults() int {
	return CountFaults(t.Annotations)
}

// A Ranking is one line of a policy comparison.
type Ranking struct {
	Faults int
	Kind   Kind
}

// Rank orders the traces by fault count, fewest first. Traces with the same
// fault count keep their input order.
func Rank(traces []Trace) []Ranking {
	rankings := make([]Ranking, 0, len(traces))
	for _, t := range traces {
		rankings = append(rankings, Ranking{Faults: t.Faults(), Kind: t.Kind})
	}

	sort.SliceStable(rankings, func(i, j int) bool {
		return rankings[i].Faults < rankings[j].Faults
	})

	return rankings
}
