// Package tracing records replays as they are reported by a
// replacement.Runner.
package tracing

import "github.com/sarchlab/pagesim/replacement"

// A Tracer can collect replay traces.
type Tracer interface {
	StartReplay(info replacement.ReplayInfo)
	Step(info replacement.ReplayInfo, step replacement.Step)
	EndReplay(info replacement.ReplayInfo, trace replacement.Trace)
}
