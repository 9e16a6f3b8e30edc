package fiber

// reconcileChildren builds the children of the fiber id from the flattened
// descriptors, pairing each position with the old fiber at the same position
// under the fiber's alternate. A position keeps its old fiber when the kinds
// match; otherwise a new fiber is placed and the old one is deleted. Holes
// consume a position without producing a fiber.
func (r *Root) reconcileChildren(id fiberID, children []*Element) error {
	parent := r.arena.get(id)
	parent.child = noFiber

	var old fiberID
	if parent.alternate != noFiber {
		old = r.arena.get(parent.alternate).child
	}

	var prev fiberID
	for i, el := range children {
		var match fiberID
		for old != noFiber && r.arena.get(old).index < i {
			r.markDeletion(old)
			old = r.arena.get(old).sibling
		}
		if old != noFiber && r.arena.get(old).index == i {
			match = old
			old = r.arena.get(old).sibling
		}

		if el == nil {
			if match != noFiber {
				r.markDeletion(match)
			}
			continue
		}
		if el.Kind.typ == kindNone {
			return ErrUnknownKind
		}

		var nf fiber
		if match != noFiber && r.arena.get(match).kind == el.Kind {
			m := r.arena.get(match)
			nf = fiber{
				kind:      el.Kind,
				props:     el.Props,
				node:      m.node,
				parent:    id,
				index:     i,
				alternate: match,
				tag:       TagUpdate,
				inst:      m.inst,
			}
		} else {
			nf = fiber{
				kind:   el.Kind,
				props:  el.Props,
				parent: id,
				index:  i,
				tag:    TagPlacement,
			}
			if match != noFiber {
				r.markDeletion(match)
			}
		}

		child := r.alloc(nf)
		if prev == noFiber {
			parent.child = child
		} else {
			r.arena.get(prev).sibling = child
		}
		prev = child
	}

	for old != noFiber {
		r.markDeletion(old)
		old = r.arena.get(old).sibling
	}
	return nil
}

func (r *Root) markDeletion(id fiberID) {
	if r.deleted.Add(id) {
		r.deletions = append(r.deletions, id)
	}
}
