package tracing

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/pagesim/hooking"
	"github.com/sarchlab/pagesim/replacement"
)

// A StepFilter is a Tracer that may not want to hear about every reference.
type StepFilter interface {
	TracesSteps() bool
}

// CollectTrace lets the tracer collect traces from a domain. Tracers that
// implement StepFilter and return false are only told about the start and the
// end of each replay.
func CollectTrace(domain hooking.Hookable, tracer Tracer) {
	if findTraceHook(domain, tracer) != nil {
		panic(fmt.Sprintf("domain already has tracer %s",
			reflect.TypeOf(tracer)))
	}

	positions := []*hooking.HookPos{
		replacement.HookPosReplayStart,
		replacement.HookPosReplayEnd,
	}

	if f, ok := tracer.(StepFilter); !ok || f.TracesSteps() {
		positions = append(positions, replacement.HookPosReference)
	}

	domain.AcceptHookAt(&traceHook{t: tracer}, positions...)
}

// StopTrace detaches the tracer from the domain. It reports whether the
// tracer was collecting from the domain.
func StopTrace(domain hooking.Hookable, tracer Tracer) bool {
	hook := findTraceHook(domain, tracer)
	if hook == nil {
		return false
	}

	return domain.RemoveHook(hook)
}

func findTraceHook(domain hooking.Hookable, tracer Tracer) *traceHook {
	for _, hook := range domain.Hooks() {
		hook, ok := hook.(*traceHook)
		if ok && hook.t == tracer {
			return hook
		}
	}

	return nil
}

// A traceHook is a hook that forwards replay events to a tracer.
type traceHook struct {
	t Tracer
}

// Func calls the tracer interfaces when the hook is triggered
func (h *traceHook) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case replacement.HookPosReplayStart:
		h.t.StartReplay(ctx.Item.(replacement.ReplayInfo))
	case replacement.HookPosReference:
		h.t.Step(
			ctx.Detail.(replacement.ReplayInfo),
			ctx.Item.(replacement.Step),
		)
	case replacement.HookPosReplayEnd:
		h.t.EndReplay(
			ctx.Item.(replacement.ReplayInfo),
			ctx.Detail.(replacement.Trace),
		)
	}
}
