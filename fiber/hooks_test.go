package fiber_test

import (
	"errors"
	"testing"

	"github.com/delaneyj/fiberparty/fiber"
	"github.com/delaneyj/fiberparty/memdom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// should fold three queued updaters into +3
func TestCounterTripleUpdate(t *testing.T) {
	var inc func()
	Counter := fiber.NewComponent("Counter", func(h *fiber.Hooks, _ fiber.Props) any {
		c, setC := fiber.UseState(h, 0)
		inc = func() {
			for i := 0; i < 3; i++ {
				setC.Update(func(c int) int { return c + 1 })
			}
		}
		return fiber.H("h1", nil, "Count: ", c)
	})

	d, root := mount(t)
	render(t, root, fiber.C(Counter, nil))
	assert.Equal(t, "<h1>Count: 0</h1>", memdom.InnerHTML(d.Body))

	inc()
	assert.True(t, root.Pending())
	require.NoError(t, root.Flush())
	assert.Equal(t, "<h1>Count: 3</h1>", memdom.InnerHTML(d.Body))

	inc()
	require.NoError(t, root.Flush())
	assert.Equal(t, "<h1>Count: 6</h1>", memdom.InnerHTML(d.Body))
}

// should keep rendering normally after many no-op sets
func TestSetterRepeatedNoOps(t *testing.T) {
	var set *fiber.Setter[int]
	renders := 0
	Comp := fiber.NewComponent("Comp", func(h *fiber.Hooks, _ fiber.Props) any {
		v, s := fiber.UseState(h, 0)
		set = s
		renders++
		return v
	})
	d, root := mount(t)
	render(t, root, fiber.C(Comp, nil))

	for range 50_000 {
		set.Set(0)
	}
	assert.False(t, root.Pending())
	assert.EqualValues(t, 1, root.Commits())

	set.Set(3)
	require.NoError(t, root.Flush())
	assert.Equal(t, "3", memdom.InnerHTML(d.Body))
	assert.Equal(t, 2, renders)
}

// should fold replacement values and updaters in enqueue order
func TestSetterFold(t *testing.T) {
	var set *fiber.Setter[int]
	var seen []int
	Comp := fiber.NewComponent("Comp", func(h *fiber.Hooks, _ fiber.Props) any {
		v, s := fiber.UseState(h, 1)
		set = s
		seen = append(seen, v)
		return nil
	})
	_, root := mount(t)
	render(t, root, fiber.C(Comp, nil))

	set.Update(func(v int) int { return v * 10 })
	set.Set(5)
	set.Update(func(v int) int { return v + 2 })
	set.Update(func(v int) int { return v * 3 })
	require.NoError(t, root.Flush())
	assert.Equal(t, []int{1, 21}, seen)
}

// should not schedule when the folded value is unchanged
func TestSetterSameValue(t *testing.T) {
	var set *fiber.Setter[string]
	renders := 0
	Comp := fiber.NewComponent("Comp", func(h *fiber.Hooks, _ fiber.Props) any {
		_, s := fiber.UseState(h, "a")
		set = s
		renders++
		return nil
	})
	_, root := mount(t)
	render(t, root, fiber.C(Comp, nil))

	set.Set("a")
	assert.False(t, root.Pending())
	require.NoError(t, root.Flush())
	assert.Equal(t, 1, renders)

	set.Set("b")
	assert.True(t, root.Pending())
	require.NoError(t, root.Flush())
	assert.Equal(t, 2, renders)
}

// should keep the setter identity across renders
func TestSetterStable(t *testing.T) {
	var setters []*fiber.Setter[int]
	Comp := fiber.NewComponent("Comp", func(h *fiber.Hooks, _ fiber.Props) any {
		_, s := fiber.UseState(h, 0)
		setters = append(setters, s)
		return nil
	})
	_, root := mount(t)
	render(t, root, fiber.C(Comp, nil))
	render(t, root, fiber.C(Comp, nil))
	require.Len(t, setters, 2)
	assert.Same(t, setters[0], setters[1])
}

// should ignore setters of unmounted components
func TestStaleSetter(t *testing.T) {
	var set *fiber.Setter[int]
	Comp := fiber.NewComponent("Comp", func(h *fiber.Hooks, _ fiber.Props) any {
		_, set = fiber.UseState(h, 0)
		return "x"
	})
	d, root := mount(t)
	render(t, root, fiber.C(Comp, nil))
	require.NoError(t, root.Unmount())

	set.Set(1)
	assert.False(t, root.Pending())
	assert.Empty(t, d.Body.Children())
}

// should re-render through the bound update trigger
func TestUpdateTrigger(t *testing.T) {
	var update func()
	Comp := fiber.NewComponent("Comp", func(h *fiber.Hooks, _ fiber.Props) any {
		renders := fiber.UseRef(h, 0)
		renders.Current++
		update = h.Update()
		return renders.Current
	})
	d, root := mount(t)
	render(t, root, fiber.C(Comp, nil))
	assert.Equal(t, "1", d.Body.TextContent())

	update()
	require.NoError(t, root.Flush())
	assert.Equal(t, "2", d.Body.TextContent())
}

// should keep ref identity and never schedule on writes
func TestUseRef(t *testing.T) {
	var refs []*fiber.Ref[string]
	Comp := fiber.NewComponent("Comp", func(h *fiber.Hooks, _ fiber.Props) any {
		refs = append(refs, fiber.UseRef(h, "init"))
		return nil
	})
	_, root := mount(t)
	render(t, root, fiber.C(Comp, nil))
	refs[0].Current = "changed"
	assert.False(t, root.Pending())

	render(t, root, fiber.C(Comp, nil))
	require.Len(t, refs, 2)
	assert.Same(t, refs[0], refs[1])
	assert.Equal(t, "changed", refs[1].Current)
}

// should recompute memos only when a dependency changes
func TestUseMemo(t *testing.T) {
	computed := map[string]int{}
	Comp := fiber.NewComponent("Comp", func(h *fiber.Hooks, p fiber.Props) any {
		x := fiber.Prop[int](p, "x")
		once := fiber.UseMemo(h, func() int { computed["once"]++; return x })
		tracked := fiber.UseMemo(h, func() int { computed["tracked"]++; return x * 2 }, x)
		return []any{once, " ", tracked}
	})
	d, root := mount(t)

	render(t, root, fiber.C(Comp, fiber.Props{"x": 1}))
	render(t, root, fiber.C(Comp, fiber.Props{"x": 1}))
	assert.Equal(t, map[string]int{"once": 1, "tracked": 1}, computed)
	assert.Equal(t, "1 2", d.Body.TextContent())

	render(t, root, fiber.C(Comp, fiber.Props{"x": 4}))
	assert.Equal(t, map[string]int{"once": 1, "tracked": 2}, computed)
	assert.Equal(t, "1 8", d.Body.TextContent())
}

// should fail fast when the hook order changes with the check enabled
func TestHookOrderCheck(t *testing.T) {
	Flaky := fiber.NewComponent("Flaky", func(h *fiber.Hooks, p fiber.Props) any {
		fiber.UseState(h, 0)
		if fiber.Prop[bool](p, "extra") {
			fiber.UseMemo(h, func() int { return 1 })
		}
		return nil
	})

	_, root := mount(t, fiber.WithHookCheck(true))
	render(t, root, fiber.C(Flaky, nil))

	require.NoError(t, root.Render(fiber.C(Flaky, fiber.Props{"extra": true})))
	err := root.Flush()
	var hookErr *fiber.HookOrderError
	require.True(t, errors.As(err, &hookErr))
	assert.Equal(t, "Flaky", hookErr.Component)
	assert.Equal(t, []string{"state"}, hookErr.Previous)
	assert.Equal(t, []string{"state", "memo"}, hookErr.Current)
	assert.Same(t, hookErr, root.Err())
}

// should tolerate hook order changes without the check
func TestHookOrderUnchecked(t *testing.T) {
	Flaky := fiber.NewComponent("Flaky", func(h *fiber.Hooks, p fiber.Props) any {
		fiber.UseState(h, 0)
		if fiber.Prop[bool](p, "extra") {
			fiber.UseRef(h, 0)
		}
		return nil
	})
	_, root := mount(t)
	render(t, root, fiber.C(Flaky, nil))
	render(t, root, fiber.C(Flaky, fiber.Props{"extra": true}))
	assert.NoError(t, root.Err())
}

// should keep handler identity stable while calling the latest closure
func TestUseHandler(t *testing.T) {
	var got []int
	Comp := fiber.NewComponent("Comp", func(h *fiber.Hooks, p fiber.Props) any {
		n := fiber.Prop[int](p, "n")
		onClick := fiber.UseHandler(h, func(fiber.Event) { got = append(got, n) })
		return fiber.H("button", fiber.Props{"onClick": onClick})
	})
	d, root := mount(t)
	render(t, root, fiber.C(Comp, fiber.Props{"n": 1}))
	button := d.Body.Find(memdom.ByTag("button"))
	require.NotNil(t, button)

	d.ResetOps()
	render(t, root, fiber.C(Comp, fiber.Props{"n": 2}))
	assert.Empty(t, d.Ops())

	d.Dispatch(button, fiber.Event{Type: "click"})
	assert.Equal(t, []int{2}, got)
}

// should drive updates from host events
func TestEventDrivenUpdate(t *testing.T) {
	Clicker := fiber.NewComponent("Clicker", func(h *fiber.Hooks, _ fiber.Props) any {
		n, setN := fiber.UseState(h, 0)
		return fiber.H("button", fiber.Props{
			"onClick": func(fiber.Event) { setN.Update(func(n int) int { return n + 1 }) },
		}, "clicked ", n)
	})
	d, root := mount(t)
	render(t, root, fiber.C(Clicker, nil))
	button := d.Body.Find(memdom.ByTag("button"))
	require.NotNil(t, button)

	for i := 0; i < 3; i++ {
		d.Dispatch(button, fiber.Event{Type: "click"})
		require.NoError(t, root.Flush())
	}
	assert.Equal(t, "clicked 3", button.TextContent())
	assert.Equal(t, 1, button.ListenerCount("click"))
}
