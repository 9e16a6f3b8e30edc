package fiber

type fiberID uint32

const noFiber fiberID = 0

// EffectTag is the reconciliation verdict for a fiber, consumed by commit.
type EffectTag uint8

const (
	TagNone EffectTag = iota
	TagPlacement
	TagUpdate
)

func (t EffectTag) String() string {
	switch t {
	case TagPlacement:
		return "placement"
	case TagUpdate:
		return "update"
	default:
		return "none"
	}
}

// fiber is one tree position in one generation. Links are arena indices:
// parent/child/sibling stay within a generation, alternate points at the
// same position in the committed generation and is only read while diffing
// and committing.
type fiber struct {
	kind  Kind
	props Props
	node  Node

	parent  fiberID
	child   fiberID
	sibling fiberID
	// index is the position among the parent's children, holes included.
	index int

	alternate fiberID
	tag       EffectTag

	inst    *instance
	effects []*effectHook
}

// arena stores fibers by stable index. Records are pointers so a *fiber
// stays valid while other fibers are allocated.
type arena struct {
	slots []*fiber
	free  []fiberID
	live  int
}

func newArena() *arena {
	// slot 0 is noFiber
	return &arena{slots: make([]*fiber, 1, 64)}
}

func (a *arena) alloc(f fiber) fiberID {
	a.live++
	if n := len(a.free); n > 0 {
		id := a.free[n-1]
		a.free = a.free[:n-1]
		*a.slots[id] = f
		return id
	}
	rec := f
	a.slots = append(a.slots, &rec)
	return fiberID(len(a.slots) - 1)
}

func (a *arena) get(id fiberID) *fiber {
	return a.slots[id]
}

func (a *arena) release(id fiberID) {
	if id == noFiber {
		return
	}
	*a.slots[id] = fiber{}
	a.free = append(a.free, id)
	a.live--
}

// walk visits the subtree under root in pre-order without recursion. The
// visitor returns false to skip a fiber's descendants.
func (a *arena) walk(root fiberID, visit func(id fiberID, f *fiber) (bool, error)) error {
	if root == noFiber {
		return nil
	}
	id := root
	for {
		f := a.get(id)
		descend, err := visit(id, f)
		if err != nil {
			return err
		}
		if descend && f.child != noFiber {
			id = f.child
			continue
		}
		for id != root && a.get(id).sibling == noFiber {
			id = a.get(id).parent
		}
		if id == root {
			return nil
		}
		id = a.get(id).sibling
	}
}

// collect returns the ids of root's subtree in pre-order.
func (a *arena) collect(root fiberID) []fiberID {
	var ids []fiberID
	a.walk(root, func(id fiberID, _ *fiber) (bool, error) {
		ids = append(ids, id)
		return true, nil
	})
	return ids
}
