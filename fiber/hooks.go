package fiber

import "slices"

type hookKind uint8

const (
	hookState hookKind = iota + 1
	hookMemo
	hookRef
	hookEffect
)

func (k hookKind) String() string {
	switch k {
	case hookState:
		return "state"
	case hookMemo:
		return "memo"
	case hookRef:
		return "ref"
	case hookEffect:
		return "effect"
	default:
		return "unknown"
	}
}

// instance is the hook storage of one mounted component. Fibers reusing a
// position share it, so records survive from one generation to the next and
// are correlated purely by call order.
type instance struct {
	comp  *Component
	slots []any
	kinds []hookKind
	// rendered is set after the first completed render
	rendered bool
	// fiber is the committed fiber, noFiber until the first commit
	fiber fiberID
	dead  bool
}

func (in *instance) slot(i int) any {
	if i < len(in.slots) {
		return in.slots[i]
	}
	return nil
}

func (in *instance) setSlot(i int, v any) {
	for len(in.slots) <= i {
		in.slots = append(in.slots, nil)
	}
	in.slots[i] = v
}

// Hooks is handed to a component for the duration of one render. Hooks must
// be called in the same order and number on every render of a component.
type Hooks struct {
	root    *Root
	inst    *instance
	next    int
	effects []*effectHook
	kinds   []hookKind
}

func (r *Root) beginHooks(f *fiber) *Hooks {
	if f.inst == nil {
		f.inst = &instance{comp: f.kind.comp}
	}
	return &Hooks{root: r, inst: f.inst}
}

func (h *Hooks) finish() error {
	prev, checked := h.inst.kinds, h.inst.rendered
	h.inst.kinds = h.kinds
	h.inst.rendered = true
	if !h.root.hookCheck || !checked || slices.Equal(prev, h.kinds) {
		return nil
	}
	names := func(kinds []hookKind) []string {
		out := make([]string, len(kinds))
		for i, k := range kinds {
			out[i] = k.String()
		}
		return out
	}
	return &HookOrderError{
		Component: h.inst.comp.name,
		Previous:  names(prev),
		Current:   names(h.kinds),
	}
}

// take claims the next storage slot.
func (h *Hooks) take(kind hookKind) int {
	h.kinds = append(h.kinds, kind)
	i := h.next
	h.next++
	return i
}

// Update returns a trigger that renders this component again.
func (h *Hooks) Update() func() {
	root, inst := h.root, h.inst
	return func() {
		root.requestUpdate(inst)
	}
}

type stateHook struct {
	value  any
	queue  []func(any) any
	setter any
}

func (s *stateHook) fold(v any) any {
	for _, action := range s.queue {
		v = action(v)
	}
	return v
}

// Setter queues state changes. Actions fold into the state, in the order
// they were queued, when the component next renders.
type Setter[T any] struct {
	root *Root
	inst *instance
	hook *stateHook
}

// Set queues a replacement value.
func (s *Setter[T]) Set(v T) {
	s.dispatch(func(any) any { return v })
}

// Update queues an updater applied to the value left by earlier actions.
func (s *Setter[T]) Update(fn func(prev T) T) {
	s.dispatch(func(prev any) any {
		p, _ := prev.(T)
		return fn(p)
	})
}

func (s *Setter[T]) dispatch(action func(any) any) {
	queued := len(s.hook.queue) > 0
	s.hook.queue = append(s.hook.queue, action)
	if Same(s.hook.fold(s.hook.value), s.hook.value) {
		// nothing pending would consume the action
		if !queued {
			s.hook.queue = nil
		}
		return
	}
	s.root.requestUpdate(s.inst)
}

// UseState returns the component's state and a setter that is stable across
// renders. The state starts as initial.
func UseState[T any](h *Hooks, initial T) (T, *Setter[T]) {
	i := h.take(hookState)
	hook, _ := h.inst.slot(i).(*stateHook)
	if hook == nil {
		hook = &stateHook{value: initial}
		h.inst.setSlot(i, hook)
	}
	if len(hook.queue) > 0 {
		hook.value = hook.fold(hook.value)
		hook.queue = nil
	}
	setter, _ := hook.setter.(*Setter[T])
	if setter == nil {
		setter = &Setter[T]{root: h.root, inst: h.inst, hook: hook}
		hook.setter = setter
	}
	v, _ := hook.value.(T)
	return v, setter
}

// UseEffect registers fn to run after the commit that mounts the component,
// and again after any commit in which one of deps changed by identity. With
// no deps it runs only once.
func UseEffect(h *Hooks, fn EffectFunc, deps ...any) {
	h.take(hookEffect)
	h.effects = append(h.effects, &effectHook{deps: deps, callback: fn})
}

type memoHook struct {
	value any
	deps  []any
}

// UseMemo caches factory's result, computing it again only when one of deps
// changed by identity. With no deps it is computed once.
func UseMemo[T any](h *Hooks, factory func() T, deps ...any) T {
	i := h.take(hookMemo)
	hook, _ := h.inst.slot(i).(*memoHook)
	switch {
	case hook == nil:
		hook = &memoHook{value: factory(), deps: deps}
		h.inst.setSlot(i, hook)
	case len(deps) > 0 && !sameDeps(hook.deps, deps):
		hook.value = factory()
		hook.deps = deps
	}
	v, _ := hook.value.(T)
	return v
}

// UseHandler returns a listener with a stable identity that always calls the
// fn from the latest render, so the host binding is never redone.
func UseHandler(h *Hooks, fn func(Event)) *Listener {
	latest := UseRef(h, fn)
	latest.Current = fn
	return UseMemo(h, func() *Listener {
		return Handler(func(e Event) { latest.Current(e) })
	})
}

// Ref is a mutable cell that keeps its identity across renders. Writing
// Current never schedules a render.
type Ref[T any] struct {
	Current T
}

func UseRef[T any](h *Hooks, initial T) *Ref[T] {
	i := h.take(hookRef)
	ref, _ := h.inst.slot(i).(*Ref[T])
	if ref == nil {
		ref = &Ref[T]{Current: initial}
		h.inst.setSlot(i, ref)
	}
	return ref
}
