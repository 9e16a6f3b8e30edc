// Package counter is the smallest interactive component: a count with a
// button that adds one and a button that queues three increments at once.
package counter

import "github.com/delaneyj/fiberparty/fiber"

var Counter = fiber.NewComponent("Counter", render)

func render(h *fiber.Hooks, p fiber.Props) any {
	count, setCount := fiber.UseState(h, fiber.Prop[int](p, "start"))

	increment := func(n int) int { return n + 1 }
	onInc := fiber.UseHandler(h, func(fiber.Event) {
		setCount.Update(increment)
	})
	onTriple := fiber.UseHandler(h, func(fiber.Event) {
		for range 3 {
			setCount.Update(increment)
		}
	})

	return fiber.H("div", fiber.Props{"className": "counter"},
		fiber.H("h1", nil, "Count: ", count),
		fiber.H("button", fiber.Props{"id": "inc", "onClick": onInc}, "+1"),
		fiber.H("button", fiber.Props{"id": "triple", "onClick": onTriple}, "+3"),
	)
}

// New describes a counter starting at start.
func New(start int) *fiber.Element {
	return fiber.C(Counter, fiber.Props{"start": start})
}
