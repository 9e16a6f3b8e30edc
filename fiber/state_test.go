package fiber

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// should drop actions that change nothing while the queue is empty
func TestSetterQueueStaysBounded(t *testing.T) {
	r := CreateRoot(nil, nil)
	hook := &stateHook{value: 0}
	set := &Setter[int]{root: r, inst: &instance{}, hook: hook}

	for range 10_000 {
		set.Set(0)
		set.Update(func(n int) int { return n })
	}
	assert.Empty(t, hook.queue)
	assert.False(t, r.Pending())

	// once a change is pending, later actions fold after it
	set.Set(1)
	set.Set(0)
	assert.Len(t, hook.queue, 2)
	assert.Equal(t, 0, hook.fold(hook.value))
}
