// Package hooking lets observers attach to a replay without the replay
// knowing who is listening.
package hooking

import "sync"

// HookPos names a point of a replay at which hooks are invoked.
type HookPos struct {
	Name string
}

// HookCtx is what a hook is told when it is invoked.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   interface{}
	Detail interface{}
}

// A Hook is invoked by a Hookable at the positions it subscribed to.
type Hook interface {
	Func(ctx HookCtx)
}

// Hookable is implemented by anything hooks can attach to.
type Hookable interface {
	// AcceptHook subscribes a hook to every position.
	AcceptHook(hook Hook)

	// AcceptHookAt subscribes a hook to the given positions only.
	AcceptHookAt(hook Hook, positions ...*HookPos)

	// RemoveHook unsubscribes a hook and reports whether it was subscribed.
	RemoveHook(hook Hook) bool

	NumHooks() int
	Hooks() []Hook
}

type subscription struct {
	hook      Hook
	positions map[*HookPos]bool
}

func (s subscription) wants(pos *HookPos) bool {
	return s.positions == nil || s.positions[pos]
}

// A HookableBase keeps the subscriptions of a Hookable. It is safe to attach
// and remove hooks while hooks are being invoked on another goroutine.
type HookableBase struct {
	mu            sync.RWMutex
	subscriptions []subscription
}

// NumHooks returns the number of subscribed hooks.
func (h *HookableBase) NumHooks() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subscriptions)
}

// Hooks returns the subscribed hooks in subscription order.
func (h *HookableBase) Hooks() []Hook {
	h.mu.RLock()
	defer h.mu.RUnlock()

	hooks := make([]Hook, len(h.subscriptions))
	for i, s := range h.subscriptions {
		hooks[i] = s.hook
	}

	return hooks
}

// AcceptHook subscribes a hook to every position. Subscribing the same hook
// twice panics.
func (h *HookableBase) AcceptHook(hook Hook) {
	h.subscribe(subscription{hook: hook})
}

// AcceptHookAt subscribes a hook to the given positions only.
func (h *HookableBase) AcceptHookAt(hook Hook, positions ...*HookPos) {
	s := subscription{hook: hook, positions: make(map[*HookPos]bool)}
	for _, pos := range positions {
		s.positions[pos] = true
	}

	h.subscribe(s)
}

func (h *HookableBase) subscribe(s subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.indexOf(s.hook) >= 0 {
		panic("duplicated hook")
	}

	h.subscriptions = append(h.subscriptions, s)
}

func (h *HookableBase) indexOf(hook Hook) int {
	for i, s := range h.subscriptions {
		if s.hook == hook {
			return i
		}
	}

	return -1
}

// RemoveHook unsubscribes a hook and reports whether it was subscribed.
func (h *HookableBase) RemoveHook(hook Hook) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	i := h.indexOf(hook)
	if i < 0 {
		return false
	}

	h.subscriptions = append(h.subscriptions[:i:i], h.subscriptions[i+1:]...)

	return true
}

// InvokeHook calls the hooks subscribed to ctx.Pos, in subscription order.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	h.mu.RLock()
	subscriptions := h.subscriptions
	h.mu.RUnlock()

	for _, s := range subscriptions {
		if s.wants(ctx.Pos) {
			s.hook.Func(ctx)
		}
	}
}
