package fiber

// Cleanup undoes what an effect did. It runs before the effect runs again
// and when the component is removed.
type Cleanup func()

// EffectFunc is an effect body; it may return a Cleanup or nil.
type EffectFunc func() Cleanup

type effectHook struct {
	deps     []any
	callback EffectFunc
	cleanup  Cleanup
	pending  bool
}

// commitEffects decides, hook by hook, which effects of the new tree run.
// An effect runs on first mount, never again when its dependency list is
// empty, and otherwise whenever a dependency changed by identity. Every
// cleanup that has to run does so, in tree order, before the first callback.
// It returns the number of callbacks run.
func (r *Root) commitEffects(root fiberID) int {
	r.arena.walk(root, func(_ fiberID, f *fiber) (bool, error) {
		if !f.kind.IsComponent() {
			return true, nil
		}
		var prev []*effectHook
		if f.alternate != noFiber {
			prev = r.arena.get(f.alternate).effects
		}
		for i, e := range f.effects {
			if i >= len(prev) {
				e.pending = true
				continue
			}
			old := prev[i]
			if len(e.deps) == 0 || sameDeps(old.deps, e.deps) {
				e.cleanup = old.cleanup
				continue
			}
			if old.cleanup != nil {
				old.cleanup()
				old.cleanup = nil
			}
			e.pending = true
		}
		// hooks that disappeared since the last render
		for _, old := range prev[min(len(f.effects), len(prev)):] {
			if old.cleanup != nil {
				old.cleanup()
				old.cleanup = nil
			}
		}
		return true, nil
	})

	ran := 0
	r.arena.walk(root, func(_ fiberID, f *fiber) (bool, error) {
		for _, e := range f.effects {
			if !e.pending {
				continue
			}
			e.pending = false
			if e.callback != nil {
				e.cleanup = e.callback()
			}
			ran++
		}
		return true, nil
	})
	return ran
}

// unmount runs every remaining cleanup of a component being removed and
// detaches its instance, turning its setters into no-ops.
func (r *Root) unmount(f *fiber) {
	for _, e := range f.effects {
		if e.cleanup != nil {
			cleanup := e.cleanup
			e.cleanup = nil
			cleanup()
		}
	}
	if f.inst != nil {
		f.inst.dead = true
		f.inst.fiber = noFiber
	}
}
