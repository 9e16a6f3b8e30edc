// Package todo is a todo list: items are added from a comma separated input,
// marked done, removed, filtered, and saved to a Storage so they come back
// on the next mount.
package todo

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/delaneyj/fiberparty/fiber"
	"github.com/delaneyj/fiberparty/store"
	"github.com/google/uuid"
)

// StorageKey is where the list is saved.
const StorageKey = "todoList"

type Todo struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// Storage persists JSON documents by key. *store.Store implements it; a
// missing key reports store.ErrNoKey.
type Storage interface {
	GetJSON(key string, v any) error
	SetJSON(key string, v any) error
}

type Filter string

const (
	FilterAll    Filter = "all"
	FilterDone   Filter = "done"
	FilterActive Filter = "active"
)

func (f Filter) keep(t Todo) bool {
	switch f {
	case FilterDone:
		return t.Done
	case FilterActive:
		return !t.Done
	default:
		return true
	}
}

// Options configure a mounted App. Every field is optional.
type Options struct {
	Storage Storage
	Initial []Todo
	// NewID generates item ids, uuid.NewString by default.
	NewID func() string
}

// New describes the app.
func New(opts Options) *fiber.Element {
	return fiber.C(App, fiber.Props{"options": opts})
}

var App = fiber.NewComponent("TodoApp", renderApp)

func renderApp(h *fiber.Hooks, p fiber.Props) any {
	opts := fiber.Prop[Options](p, "options")
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	todos, setTodos := fiber.UseState(h, opts.Initial)
	visible, setVisible := fiber.UseState(h, []Todo(nil))
	draft, setDraft := fiber.UseState(h, "")
	filter, setFilter := fiber.UseState(h, FilterAll)
	status, setStatus := fiber.UseState(h, "")

	add := func() {
		var added []Todo
		for _, text := range strings.Split(draft, ",") {
			if text = strings.TrimSpace(text); text != "" {
				added = append(added, Todo{ID: newID(), Text: text})
			}
		}
		setDraft.Set("")
		if len(added) == 0 {
			return
		}
		setTodos.Update(func(prev []Todo) []Todo {
			return append(slices.Clone(prev), added...)
		})
	}
	onInput := fiber.UseHandler(h, func(e fiber.Event) {
		setDraft.Set(e.Value)
	})
	onKeyDown := fiber.UseHandler(h, func(e fiber.Event) {
		if e.Key == "Enter" {
			add()
		}
	})
	onAdd := fiber.UseHandler(h, func(fiber.Event) {
		add()
	})
	onSave := fiber.UseHandler(h, func(fiber.Event) {
		if opts.Storage == nil {
			setStatus.Set("nowhere to save")
			return
		}
		if err := opts.Storage.SetJSON(StorageKey, todos); err != nil {
			setStatus.Set(err.Error())
			return
		}
		setStatus.Set(fmt.Sprintf("saved %d", len(todos)))
	})

	remove := func(id string) {
		setTodos.Update(func(prev []Todo) []Todo {
			return slices.DeleteFunc(slices.Clone(prev), func(t Todo) bool { return t.ID == id })
		})
	}
	toggle := func(id string) {
		setTodos.Update(func(prev []Todo) []Todo {
			next := slices.Clone(prev)
			if i := slices.IndexFunc(next, func(t Todo) bool { return t.ID == id }); i >= 0 {
				next[i].Done = !next[i].Done
			}
			return next
		})
	}

	fiber.UseEffect(h, func() fiber.Cleanup {
		if opts.Storage == nil {
			return nil
		}
		var saved []Todo
		err := opts.Storage.GetJSON(StorageKey, &saved)
		switch {
		case errors.Is(err, store.ErrNoKey):
		case err != nil:
			setStatus.Set(err.Error())
		case len(saved) > 0:
			setTodos.Set(saved)
		}
		return nil
	})

	fiber.UseEffect(h, func() fiber.Cleanup {
		var out []Todo
		for _, t := range todos {
			if filter.keep(t) {
				out = append(out, t)
			}
		}
		setVisible.Set(out)
		return nil
	}, filter, todos)

	var banner any
	if status != "" {
		banner = fiber.H("p", fiber.Props{"className": "status"}, status)
	}

	options := make([]*fiber.Element, 0, 3)
	for _, f := range []Filter{FilterAll, FilterDone, FilterActive} {
		options = append(options, fiber.C(FilterOption, fiber.Props{
			"value":    f,
			"checked":  f == filter,
			"onSelect": setFilter,
		}))
	}

	items := make([]*fiber.Element, len(visible))
	for i, t := range visible {
		items[i] = fiber.C(Item, fiber.Props{"todo": t, "onRemove": remove, "onToggle": toggle})
	}

	return fiber.H("div", fiber.Props{"id": "app"},
		fiber.H("h1", nil, "TODOS"),
		fiber.H("div", nil,
			fiber.H("input", fiber.Props{
				"id":        "draft",
				"value":     draft,
				"onChange":  onInput,
				"onKeyDown": onKeyDown,
			}),
			fiber.H("button", fiber.Props{"id": "add", "onClick": onAdd}, "add"),
		),
		fiber.H("button", fiber.Props{"id": "save", "onClick": onSave}, "save"),
		banner,
		fiber.H("div", fiber.Props{"className": "radio-group"}, options),
		fiber.H("ul", nil, items),
	)
}

var filterLabels = map[Filter]string{
	FilterAll:    "All",
	FilterDone:   "Done",
	FilterActive: "Active",
}

// FilterOption is one radio button of the filter group.
var FilterOption = fiber.NewComponent("FilterOption", func(h *fiber.Hooks, p fiber.Props) any {
	value := fiber.Prop[Filter](p, "value")
	onSelect := fiber.Prop[*fiber.Setter[Filter]](p, "onSelect")
	onChange := fiber.UseHandler(h, func(fiber.Event) {
		onSelect.Set(value)
	})
	return fiber.H("div", nil,
		fiber.H("input", fiber.Props{
			"type":     "radio",
			"id":       string(value),
			"name":     "status",
			"checked":  fiber.Prop[bool](p, "checked"),
			"onChange": onChange,
		}),
		fiber.H("label", fiber.Props{"htmlFor": string(value)}, filterLabels[value]),
	)
})

// Item renders one todo with its remove and done buttons.
var Item = fiber.NewComponent("TodoItem", func(h *fiber.Hooks, p fiber.Props) any {
	t := fiber.Prop[Todo](p, "todo")
	onRemove := fiber.UseHandler(h, func(fiber.Event) {
		fiber.Prop[func(string)](p, "onRemove")(t.ID)
	})
	onToggle := fiber.UseHandler(h, func(fiber.Event) {
		fiber.Prop[func(string)](p, "onToggle")(t.ID)
	})

	class, action := "", "done"
	if t.Done {
		class, action = "done", "cancel"
	}
	return fiber.H("li", nil,
		fiber.H("label", fiber.Props{"className": class}, t.Text),
		fiber.H("button", fiber.Props{"id": "remove-" + t.ID, "onClick": onRemove}, "remove"),
		fiber.H("button", fiber.Props{"id": "toggle-" + t.ID, "onClick": onToggle}, action),
	)
})
