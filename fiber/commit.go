package fiber

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"go.uber.org/zap"
)

// commitRoot applies a finished generation: deletions first, then placements
// and attribute updates in tree order, then effects, so every effect sees the
// host tree in its final state. The work-in-progress tree then replaces the
// fiber it was built from in the committed tree.
func (r *Root) commitRoot() error {
	r.committing = true
	defer func() { r.committing = false }()

	stats := CommitStats{Generation: r.seq, Deletions: len(r.deletions)}
	for _, id := range r.deletions {
		stats.Deleted = append(stats.Deleted, r.arena.get(id).kind)
		if err := r.commitDeletion(id); err != nil {
			return err
		}
	}

	err := r.arena.walk(r.wipRoot, func(id fiberID, f *fiber) (bool, error) {
		if id == r.wipRoot {
			return true, nil
		}
		switch f.tag {
		case TagPlacement:
			stats.Placements++
		case TagUpdate:
			stats.Updates++
		}
		stats.Tagged = append(stats.Tagged, Tagged{Kind: f.kind, Tag: f.tag})
		return true, r.commitWork(id, f)
	})
	if err != nil {
		return err
	}

	stats.Effects = r.commitEffects(r.wipRoot)
	r.finalize()

	stats.Duration = time.Since(r.started)
	r.last = stats
	r.commits++
	r.logger.Debug("generation committed",
		zap.Uint64("generation", stats.Generation),
		zap.Int("placements", stats.Placements),
		zap.Int("updates", stats.Updates),
		zap.Int("deletions", stats.Deletions),
		zap.Int("effects", stats.Effects),
		zap.Duration("duration", stats.Duration))
	return nil
}

func (r *Root) commitWork(id fiberID, f *fiber) error {
	switch f.tag {
	case TagPlacement:
		if f.node == nil {
			return nil
		}
		parent, err := r.hostParent(id)
		if err != nil {
			return err
		}
		if before := r.hostSibling(id); before != nil {
			return r.host.InsertBefore(parent, f.node, before)
		}
		return r.host.AppendChild(parent, f.node)
	case TagUpdate:
		if f.node == nil || f.kind.typ == kindRoot {
			return nil
		}
		return r.updateProps(f.node, r.arena.get(f.alternate).props, f.props)
	}
	return nil
}

// commitDeletion runs the unmount cleanups of every component under id, then
// detaches the topmost host nodes of the subtree.
func (r *Root) commitDeletion(id fiberID) error {
	r.arena.walk(id, func(_ fiberID, f *fiber) (bool, error) {
		if f.kind.IsComponent() {
			r.unmount(f)
		}
		return true, nil
	})

	parent, err := r.hostParent(id)
	if err != nil {
		return err
	}
	return r.arena.walk(id, func(_ fiberID, f *fiber) (bool, error) {
		if f.kind.ownsHostNode() && f.node != nil {
			return false, r.host.RemoveChild(parent, f.node)
		}
		return true, nil
	})
}

func (r *Root) hostParent(id fiberID) (Node, error) {
	for p := r.arena.get(id).parent; p != noFiber; p = r.arena.get(p).parent {
		pf := r.arena.get(p)
		if pf.kind.ownsHostNode() && pf.node != nil {
			return pf.node, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNoHostParent, r.arena.get(id).kind)
}

// hostSibling finds the host node that a placed fiber must be inserted
// before: the first host node following it under the same host parent that
// is already attached. Nil means append.
func (r *Root) hostSibling(id fiberID) Node {
	cur := id
search:
	for {
		for r.arena.get(cur).sibling == noFiber {
			p := r.arena.get(cur).parent
			if p == noFiber || r.arena.get(p).kind.ownsHostNode() {
				return nil
			}
			cur = p
		}
		cur = r.arena.get(cur).sibling
		for !r.arena.get(cur).kind.ownsHostNode() {
			f := r.arena.get(cur)
			if f.tag == TagPlacement || f.child == noFiber {
				continue search
			}
			cur = f.child
		}
		if f := r.arena.get(cur); f.tag != TagPlacement && f.node != nil {
			return f.node
		}
	}
}

// updateProps diffs attributes. Keys are visited in sorted order so hosts
// see a deterministic operation sequence.
func (r *Root) updateProps(node Node, prev, next Props) error {
	if prev != nil && Same(prev, next) {
		return nil
	}
	for _, k := range slices.Sorted(maps.Keys(prev)) {
		if k == ChildrenKey {
			continue
		}
		if _, ok := next[k]; ok {
			continue
		}
		var err error
		if event, l, ok := eventProp(k, prev[k]); ok {
			err = r.host.RemoveEventListener(node, event, l)
		} else {
			err = r.host.RemoveAttribute(node, k)
		}
		if err != nil {
			return err
		}
	}

	for _, k := range slices.Sorted(maps.Keys(next)) {
		if k == ChildrenKey {
			continue
		}
		v := next[k]
		old, had := prev[k]
		if had && Same(old, v) {
			continue
		}
		if had {
			if event, l, ok := eventProp(k, old); ok {
				if err := r.host.RemoveEventListener(node, event, l); err != nil {
					return err
				}
			}
		}
		var err error
		if event, l, ok := eventProp(k, v); ok {
			err = r.host.AddEventListener(node, event, l)
		} else {
			err = r.host.SetAttribute(node, k, v)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// finalize splices the work-in-progress root into the committed tree in place
// of the fiber it replaces and releases the replaced generation.
func (r *Root) finalize() {
	newRoot := r.wipRoot
	var garbage []fiberID
	rootGeneration := r.replaces == noFiber || r.replaces == r.current

	switch {
	case r.replaces == noFiber:
		r.current = newRoot
	case r.replaces == r.current:
		garbage = r.arena.collect(r.current)
		r.current = newRoot
	default:
		old := r.arena.get(r.replaces)
		p := r.arena.get(old.parent)
		if p.child == r.replaces {
			p.child = newRoot
		} else {
			s := p.child
			for r.arena.get(s).sibling != r.replaces {
				s = r.arena.get(s).sibling
			}
			r.arena.get(s).sibling = newRoot
		}
		garbage = r.arena.collect(r.replaces)
	}

	r.arena.walk(newRoot, func(id fiberID, f *fiber) (bool, error) {
		f.alternate = noFiber
		f.tag = TagNone
		if f.inst != nil {
			f.inst.fiber = id
		}
		return true, nil
	})
	for _, id := range garbage {
		r.arena.release(id)
	}

	if rootGeneration {
		r.pendingProps = nil
	}
	r.wipFibers = r.wipFibers[:0]
	r.deletions = r.deletions[:0]
	r.deleted.Clear()
	r.wipRoot, r.next, r.replaces = noFiber, noFiber, noFiber
}
