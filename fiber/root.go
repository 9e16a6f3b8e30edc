package fiber

import (
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/delaneyj/fiberparty/idle"
	"go.uber.org/zap"
)

const defaultMaxFlush = 1000

// Tagged records one fiber's verdict in a commit, in tree order.
type Tagged struct {
	Kind Kind
	Tag  EffectTag
}

// CommitStats summarises one committed generation.
type CommitStats struct {
	Generation uint64
	Placements int
	Updates    int
	Deletions  int
	Tagged     []Tagged
	Deleted    []Kind
	Effects    int
	Duration   time.Duration
}

// Root owns one host container and everything reconciled into it: the
// committed fiber tree, at most one work-in-progress tree, and the
// scheduling pointers that drive it. A Root is not safe for concurrent use;
// event handlers, setters and idle callbacks must all run on the goroutine
// that owns it.
type Root struct {
	host      Host
	container Node
	scheduler idle.Scheduler
	logger    *zap.Logger
	onError   OnErrorFunc

	yieldThreshold time.Duration
	hookCheck      bool
	maxFlush       int

	arena   *arena
	current fiberID

	// generation in flight
	wipRoot   fiberID
	next      fiberID
	replaces  fiberID
	wipFibers []fiberID
	deletions []fiberID
	deleted   mapset.Set[fiberID]
	seq       uint64
	started   time.Time
	// generations abandoned since the last commit
	restarts int

	// root props from Render awaiting commit
	pendingProps Props

	rendering  bool
	committing bool
	deferred   []*instance
	rootQueued bool

	callbackPending bool
	fatal           error
	last            CommitStats
	commits         uint64
}

// CreateRoot prepares a root rendering into container through host.
func CreateRoot(host Host, container Node, opts ...Option) *Root {
	r := &Root{
		host:           host,
		container:      container,
		logger:         zap.NewNop(),
		yieldThreshold: DefaultYieldThreshold,
		maxFlush:       defaultMaxFlush,
		arena:          newArena(),
		deleted:        mapset.NewThreadUnsafeSet[fiberID](),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render requests a generation whose root has el as its sole child. Calling
// it again diffs the new description against the committed tree.
func (r *Root) Render(el *Element) error {
	if r.fatal != nil {
		return r.fatal
	}
	r.pendingProps = Props{ChildrenKey: []*Element{el}}
	if r.rendering || r.committing {
		r.rootQueued = true
		return nil
	}
	r.request(r.current)
	return nil
}

// Unmount renders nothing into the container, running every cleanup.
func (r *Root) Unmount() error {
	if err := r.Render(nil); err != nil {
		return err
	}
	return r.Flush()
}

// Pending reports whether a generation is waiting to be built or committed.
func (r *Root) Pending() bool {
	return r.wipRoot != noFiber || len(r.deferred) > 0 || r.rootQueued
}

// Err is the fatal error that stopped the root, if any.
func (r *Root) Err() error {
	return r.fatal
}

// LastCommit describes the most recent commit.
func (r *Root) LastCommit() CommitStats {
	return r.last
}

// Commits is the number of generations committed so far.
func (r *Root) Commits() uint64 {
	return r.commits
}

// LiveFibers is the number of fibers currently allocated, committed and in
// flight.
func (r *Root) LiveFibers() int {
	return r.arena.live
}

// Flush runs the loop with an unlimited deadline until no work remains,
// including generations requested by effects.
func (r *Root) Flush() error {
	if r.fatal != nil {
		return r.fatal
	}
	for i := 0; r.Pending(); i++ {
		if i >= r.maxFlush {
			return r.fail(ErrTooManyUpdates)
		}
		if err := r.WorkLoop(idle.Unlimited); err != nil {
			return err
		}
	}
	return nil
}

// requestUpdate asks for the subtree of inst to be rendered again.
func (r *Root) requestUpdate(inst *instance) {
	if r.fatal != nil {
		return
	}
	if r.rendering || r.committing {
		r.deferred = append(r.deferred, inst)
		return
	}
	if inst.dead || inst.fiber == noFiber {
		return
	}
	r.request(inst.fiber)
}

// request replaces the generation in flight with one rooted at target, a
// fiber of the committed tree. An unfinished generation is abandoned; its
// root is folded into the new one so its update is not lost.
func (r *Root) request(target fiberID) {
	if r.wipRoot != noFiber {
		target = r.commonAncestor(r.replaces, target)
		r.logger.Debug("abandoning generation",
			zap.Uint64("generation", r.seq),
			zap.Int("fibers", len(r.wipFibers)))
		r.abandon()
		r.restarts++
	}
	r.begin(target)
}

func (r *Root) begin(target fiberID) {
	var f fiber
	if target == noFiber {
		f = fiber{kind: rootKind, props: r.pendingProps, node: r.container}
	} else {
		old := r.arena.get(target)
		f = fiber{
			kind:      old.kind,
			props:     old.props,
			node:      old.node,
			parent:    old.parent,
			sibling:   old.sibling,
			index:     old.index,
			alternate: target,
			inst:      old.inst,
		}
		if target == r.current && r.pendingProps != nil {
			f.props = r.pendingProps
		}
	}
	id := r.alloc(f)
	r.wipRoot, r.next, r.replaces = id, id, target
	r.seq++
	r.started = time.Now()
	r.logger.Debug("generation started",
		zap.Uint64("generation", r.seq),
		zap.Stringer("root", f.kind))
	r.ensureCallback()
}

// commonAncestor finds the nearest fiber of the committed tree containing
// both a and b.
func (r *Root) commonAncestor(a, b fiberID) fiberID {
	if a == noFiber || b == noFiber {
		return noFiber
	}
	seen := mapset.NewThreadUnsafeSet[fiberID]()
	for id := a; id != noFiber; id = r.arena.get(id).parent {
		seen.Add(id)
	}
	for id := b; id != noFiber; id = r.arena.get(id).parent {
		if seen.Contains(id) {
			return id
		}
	}
	return r.current
}

func (r *Root) alloc(f fiber) fiberID {
	id := r.arena.alloc(f)
	r.wipFibers = append(r.wipFibers, id)
	return id
}

// abandon drops the work-in-progress tree. Nothing has reached the host tree
// yet beyond detached nodes, so there is nothing to undo.
func (r *Root) abandon() {
	for _, id := range r.wipFibers {
		r.arena.release(id)
	}
	r.wipFibers = r.wipFibers[:0]
	r.deletions = r.deletions[:0]
	r.deleted.Clear()
	r.wipRoot, r.next, r.replaces = noFiber, noFiber, noFiber
}

// drainDeferred applies update requests made while rendering or committing.
// Between units, instances that have never been committed stay queued.
func (r *Root) drainDeferred(afterCommit bool) {
	if r.rootQueued {
		r.rootQueued = false
		r.request(r.current)
	}
	if len(r.deferred) == 0 {
		return
	}
	pending := r.deferred
	r.deferred = nil
	for _, inst := range pending {
		switch {
		case inst.dead:
		case inst.fiber == noFiber:
			if !afterCommit {
				r.deferred = append(r.deferred, inst)
			}
		default:
			r.request(inst.fiber)
		}
	}
}

func (r *Root) ensureCallback() {
	if r.scheduler == nil || r.callbackPending || r.wipRoot == noFiber {
		return
	}
	r.callbackPending = true
	r.scheduler.RequestIdleCallback(r.onIdle)
}

func (r *Root) onIdle(d idle.Deadline) {
	r.callbackPending = false
	if err := r.WorkLoop(d); err != nil {
		if r.onError != nil {
			r.onError(err)
		}
		return
	}
	r.ensureCallback()
}

// fail puts the root into its terminal state. The error is kept as is so
// host adapter errors reach the caller unmodified.
func (r *Root) fail(err error) error {
	if r.fatal == nil {
		r.fatal = err
		r.logger.Error("root failed", zap.Error(err))
	}
	r.abandon()
	return r.fatal
}
