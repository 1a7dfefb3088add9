package replacement

import (
	"github.com/sarchlab/pagesim/hooking"
	"github.com/sarchlab/pagesim/id"
)

// A list of hook positions a Runner invokes hooks at.
var (
	// HookPosReplayStart is reached before the first reference. The item is
	// the ReplayInfo of the replay.
	HookPosReplayStart = &hooking.HookPos{Name: "ReplayStart"}

	// HookPosReference is reached once per reference. The item is a Step.
	HookPosReference = &hooking.HookPos{Name: "Reference"}

	// HookPosReplayEnd is reached after the last reference. The item is the
	// ReplayInfo and the detail is the Trace.
	HookPosReplayEnd = &hooking.HookPos{Name: "ReplayEnd"}
)

// ReplayInfo describes a replay that hooks are being told about.
type ReplayInfo struct {
	// ID tells replays apart, even replays of the same name and policy that
	// run at the same time.
	ID         string
	Name       string
	Kind       Kind
	Capacity   int
	References []Page
}

// A Step is a single annotated reference.
type Step struct {
	Index      int
	Page       Page
	Annotation Annotation
}

// A Runner replays reference strings and reports every step to the hooks
// attached to it. The policies themselves never see the hooks.
type Runner struct {
	hooking.HookableBase

	name        string
	idGenerator id.IDGenerator
}

// NewRunner creates a Runner. The name identifies the reference string, for
// example the file it came from.
func NewRunner(name string) *Runner {
	return &Runner{name: name, idGenerator: id.NewXIDGenerator()}
}

// WithIDGenerator sets how the replays of the runner are identified.
func (r *Runner) WithIDGenerator(g id.IDGenerator) *Runner {
	r.idGenerator = g
	return r
}

// Name returns the name of the runner.
func (r *Runner) Name() string {
	return r.name
}

// Run replays refs with the policy of the given kind. If the replay fails,
// no hook is invoked.
func (r *Runner) Run(kind Kind, capacity int, refs []Page) (Trace, error) {
	annotations, err := Replay(kind, capacity, refs)
	if err != nil {
		return Trace{}, err
	}

	trace := Trace{Kind: kind, Annotations: annotations}

	if r.NumHooks() == 0 {
		return trace, nil
	}

	info := ReplayInfo{
		ID:         r.idGenerator.Generate(),
		Name:       r.name,
		Kind:       kind,
		Capacity:   capacity,
		References: refs,
	}

	r.InvokeHook(hooking.HookCtx{
		Domain: r,
		Pos:    HookPosReplayStart,
		Item:   info,
	})

	for i, a := range annotations {
		r.InvokeHook(hooking.HookCtx{
			Domain: r,
			Pos:    HookPosReference,
			Item:   Step{Index: i, Page: refs[i], Annotation: a},
			Detail: info,
		})
	}

	r.InvokeHook(hooking.HookCtx{
		Domain: r,
		Pos:    HookPosReplayEnd,
		Item:   info,
		Detail: trace,
	})

	return trace, nil
}

// RunAll replays refs with every policy, in comparison order.
func (r *Runner) RunAll(capacity int, refs []Page) ([]Trace, error) {
	traces := make([]Trace, 0, len(AllKinds()))

	for _, kind := range AllKinds() {
		trace, err := r.Run(kind, capacity, refs)
		if err != nil {
			return nil, err
		}

		traces = append(traces, trace)
	}

	return traces, nil
}
