package idle

// Manual queues callbacks until they are pumped explicitly. It is the
// scheduler of choice for tests and for hosts that own their frame loop,
// such as a terminal UI that pumps once per input message.
type Manual struct {
	queue []Callback
}

func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) RequestIdleCallback(cb Callback) {
	m.queue = append(m.queue, cb)
}

// Pending is the number of queued callbacks.
func (m *Manual) Pending() int {
	return len(m.queue)
}

// RunOnce runs the callbacks queued before the call with the deadline d.
// Callbacks they request are left for the next pump. It reports whether
// anything ran.
func (m *Manual) RunOnce(d Deadline) bool {
	if len(m.queue) == 0 {
		return false
	}
	queue := m.queue
	m.queue = nil
	for _, cb := range queue {
		cb(d)
	}
	return true
}

// Drain pumps with unlimited deadlines until nothing is queued or limit
// pumps have run, returning the number of pumps.
func (m *Manual) Drain(limit int) int {
	pumps := 0
	for pumps < limit && m.RunOnce(Unlimited) {
		pumps++
	}
	return pumps
}
