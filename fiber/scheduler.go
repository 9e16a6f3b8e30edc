package fiber

import (
	"github.com/delaneyj/fiberparty/idle"
	"go.uber.org/zap"
)

// WorkLoop performs units of work until the generation is built or d runs
// low, then commits a finished generation. It returns the root's fatal
// error, if any; the caller decides when to call again, or the root asks its
// scheduler for another callback.
func (r *Root) WorkLoop(d idle.Deadline) error {
	if r.fatal != nil {
		return r.fatal
	}
	if r.wipRoot == noFiber {
		r.drainDeferred(true)
	}

	units := 0
	shouldYield := false
	for r.next != noFiber && !shouldYield {
		seq := r.seq
		next, err := r.performUnit(r.next)
		if err != nil {
			return r.fail(err)
		}
		units++
		// a request made during the unit has already moved the pointers
		if r.seq == seq {
			r.next = next
		}
		r.drainDeferred(false)
		if r.restarts > r.maxFlush {
			return r.fail(ErrTooManyUpdates)
		}
		shouldYield = d.TimeRemaining() < r.yieldThreshold
	}

	if r.next == noFiber && r.wipRoot != noFiber {
		if err := r.commitRoot(); err != nil {
			return r.fail(err)
		}
		r.restarts = 0
		r.drainDeferred(true)
	} else if r.next != noFiber {
		r.logger.Debug("yielding",
			zap.Uint64("generation", r.seq),
			zap.Int("units", units))
	}
	return nil
}

// performUnit renders one fiber and reconciles its children, returning the
// next fiber in pre-order: first child, else next sibling, else the sibling
// of the nearest ancestor that has one. The walk never leaves the subtree of
// the generation root.
func (r *Root) performUnit(id fiberID) (fiberID, error) {
	f := r.arena.get(id)
	var err error
	switch {
	case f.kind.IsComponent():
		err = r.updateComponent(id, f)
	case f.kind.ownsHostNode():
		err = r.updateHost(id, f)
	default:
		err = ErrUnknownKind
	}
	if err != nil {
		return noFiber, err
	}
	return r.nextUnit(id), nil
}

func (r *Root) nextUnit(id fiberID) fiberID {
	if child := r.arena.get(id).child; child != noFiber {
		return child
	}
	for cur := id; cur != noFiber && cur != r.wipRoot; cur = r.arena.get(cur).parent {
		if sibling := r.arena.get(cur).sibling; sibling != noFiber {
			return sibling
		}
	}
	return noFiber
}

func (r *Root) updateComponent(id fiberID, f *fiber) error {
	h := r.beginHooks(f)
	r.rendering = true
	out := func() any {
		defer func() { r.rendering = false }()
		return f.kind.comp.render(h, f.props)
	}()
	if err := h.finish(); err != nil {
		return err
	}
	f.effects = h.effects
	return r.reconcileChildren(id, appendChild(nil, out))
}

func (r *Root) updateHost(id fiberID, f *fiber) error {
	if f.node == nil {
		var (
			node Node
			err  error
		)
		if f.kind.IsText() {
			node, err = r.host.CreateText()
		} else {
			node, err = r.host.CreateElement(f.kind.tag)
		}
		if err != nil {
			return err
		}
		f.node = node
		if err := r.updateProps(node, nil, f.props); err != nil {
			return err
		}
	}
	return r.reconcileChildren(id, f.props.Children())
}
