// Package oddlist renders a list of numbers that can be filtered down to the
// odd ones and grown five at a time. The visible list is derived state kept
// in sync by an effect.
package oddlist

import (
	"slices"

	"github.com/delaneyj/fiberparty/fiber"
)

var App = fiber.NewComponent("OddList", render)

func render(h *fiber.Hooks, _ fiber.Props) any {
	oddOnly, setOddOnly := fiber.UseState(h, false)
	numbers, setNumbers := fiber.UseState(h, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	visible, setVisible := fiber.UseState(h, []int(nil))
	bar, setBar := fiber.UseState(h, "bar")

	onToggle := fiber.UseHandler(h, func(fiber.Event) {
		setOddOnly.Set(!oddOnly)
	})
	onAdd := fiber.UseHandler(h, func(fiber.Event) {
		setNumbers.Update(addFive)
	})
	onBar := fiber.UseHandler(h, func(fiber.Event) {
		setBar.Set("bar" + bar)
	})

	fiber.UseEffect(h, func() fiber.Cleanup {
		setVisible.Set(filter(numbers, oddOnly))
		return nil
	}, oddOnly, numbers)

	items := make([]*fiber.Element, len(visible))
	for i, n := range visible {
		items[i] = fiber.H("li", nil, n)
	}
	return fiber.H("div", nil,
		fiber.H("button", fiber.Props{"id": "odd", "onClick": onToggle}, "show odd"),
		fiber.H("button", fiber.Props{"id": "add", "onClick": onAdd}, "add 5"),
		fiber.H("button", fiber.Props{"id": "bar", "onClick": onBar}, bar),
		fiber.H("ul", nil, items),
	)
}

// addFive appends the next five numbers after the current maximum.
func addFive(numbers []int) []int {
	next := slices.Clone(numbers)
	top := 0
	if len(next) > 0 {
		top = slices.Max(next)
	}
	for range 5 {
		top++
		next = append(next, top)
	}
	return next
}

func filter(numbers []int, oddOnly bool) []int {
	if !oddOnly {
		return slices.Clone(numbers)
	}
	var out []int
	for _, n := range numbers {
		if n%2 == 1 {
			out = append(out, n)
		}
	}
	return out
}

func New() *fiber.Element {
	return fiber.C(App, nil)
}
