// Package fiber implements an incremental tree reconciler: element
// descriptors are diffed against a persistent host tree one fiber at a time,
// the work can yield between fibers, and the resulting mutations are applied
// in a single commit followed by component effects.
package fiber

import (
	"fmt"
	"reflect"
	"strings"
)

const (
	// ChildrenKey is the reserved prop holding an element's child descriptors.
	ChildrenKey = "children"
	// NodeValueKey carries the content of text elements.
	NodeValueKey = "nodeValue"
)

type kindType uint8

const (
	kindNone kindType = iota
	kindHost
	kindText
	kindComponent
	kindRoot
)

// Kind identifies what a descriptor or fiber renders to. It is a comparable
// tagged variant: a host element tag, the text leaf, or a component.
type Kind struct {
	typ  kindType
	tag  string
	comp *Component
}

// TextKind is the kind of text leaves.
var TextKind = Kind{typ: kindText}

var rootKind = Kind{typ: kindRoot}

// Tag returns the kind for a host element such as "div".
func Tag(tag string) Kind {
	return Kind{typ: kindHost, tag: tag}
}

func (k Kind) IsHost() bool      { return k.typ == kindHost }
func (k Kind) IsText() bool      { return k.typ == kindText }
func (k Kind) IsComponent() bool { return k.typ == kindComponent }

// TagName is the host tag, empty for anything but host elements.
func (k Kind) TagName() string { return k.tag }

// Component returns the component for component kinds, nil otherwise.
func (k Kind) Component() *Component { return k.comp }

func (k Kind) String() string {
	switch k.typ {
	case kindHost:
		return k.tag
	case kindText:
		return "#text"
	case kindComponent:
		return "<" + k.comp.name + ">"
	case kindRoot:
		return "#root"
	default:
		return "#none"
	}
}

// ownsHostNode reports whether fibers of this kind carry a host node.
func (k Kind) ownsHostNode() bool {
	return k.typ == kindHost || k.typ == kindText || k.typ == kindRoot
}

// RenderFunc renders a component. The returned value is normalised like the
// children of CreateElement: elements, strings, numbers, nested slices, and
// nil/bool holes are all accepted.
type RenderFunc func(h *Hooks, props Props) any

// Component is a function component. Its pointer is its identity, so
// components are declared once and reused:
//
//	var Counter = fiber.NewComponent("Counter", func(h *fiber.Hooks, p fiber.Props) any { ... })
type Component struct {
	name   string
	render RenderFunc
}

func NewComponent(name string, render RenderFunc) *Component {
	return &Component{name: name, render: render}
}

func (c *Component) Name() string { return c.name }

func (c *Component) Kind() Kind {
	return Kind{typ: kindComponent, comp: c}
}

// Props are an element's attributes. Values are compared by identity
// between generations, see Same.
type Props map[string]any

// Children returns the child descriptors stored under ChildrenKey.
func (p Props) Children() []*Element {
	children, _ := p[ChildrenKey].([]*Element)
	return children
}

// Prop reads a typed prop, returning the zero value when it is missing or of
// another type.
func Prop[T any](p Props, key string) T {
	v, _ := p[key].(T)
	return v
}

// Element is an immutable descriptor of one node and its children.
type Element struct {
	Kind  Kind
	Props Props
}

func (e *Element) Children() []*Element {
	if e == nil {
		return nil
	}
	return e.Props.Children()
}

func (e *Element) String() string {
	if e == nil {
		return "<nil>"
	}
	if e.Kind.IsText() {
		return fmt.Sprint(e.Props[NodeValueKey])
	}
	return e.Kind.String()
}

// Event is delivered to listeners by the host.
type Event struct {
	Type    string
	Target  Node
	Value   string
	Key     string
	Checked bool
}

// Listener wraps an event handler so it has a stable identity across
// renders. Hold one in UseMemo or UseRef to avoid re-binding every commit.
type Listener struct {
	fn func(Event)
}

func Handler(fn func(Event)) *Listener {
	return &Listener{fn: fn}
}

func (l *Listener) Handle(e Event) {
	if l == nil || l.fn == nil {
		return
	}
	l.fn(e)
}

// CreateElement builds a descriptor. The props map is copied. Children may be
// elements, strings and numbers (wrapped as text), nested slices (flattened),
// or nil/bool values, which keep their position as holes. Plain func(Event)
// values under "on*" props are wrapped into a *Listener.
func CreateElement(kind Kind, props Props, children ...any) *Element {
	p := make(Props, len(props)+1)
	for k, v := range props {
		if k == ChildrenKey {
			continue
		}
		if fn, ok := v.(func(Event)); ok && isEventName(k) {
			v = Handler(fn)
		}
		p[k] = v
	}
	p[ChildrenKey] = normalizeChildren(children)
	return &Element{Kind: kind, Props: p}
}

// H builds a host element.
func H(tag string, props Props, children ...any) *Element {
	return CreateElement(Tag(tag), props, children...)
}

// C builds a component element.
func C(comp *Component, props Props, children ...any) *Element {
	return CreateElement(comp.Kind(), props, children...)
}

// Text builds a text leaf.
func Text(v any) *Element {
	return &Element{
		Kind:  TextKind,
		Props: Props{NodeValueKey: v, ChildrenKey: []*Element(nil)},
	}
}

func normalizeChildren(children []any) []*Element {
	if len(children) == 0 {
		return nil
	}
	out := make([]*Element, 0, len(children))
	for _, c := range children {
		out = appendChild(out, c)
	}
	return out
}

func appendChild(dst []*Element, c any) []*Element {
	switch v := c.(type) {
	case nil:
		return append(dst, nil)
	case *Element:
		return append(dst, v)
	case bool:
		return append(dst, nil)
	case string, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return append(dst, Text(v))
	case []*Element:
		return append(dst, v...)
	case []any:
		for _, cc := range v {
			dst = appendChild(dst, cc)
		}
		return dst
	case fmt.Stringer:
		return append(dst, Text(v.String()))
	}

	rv := reflect.ValueOf(c)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			dst = appendChild(dst, rv.Index(i).Interface())
		}
		return dst
	default:
		return append(dst, Text(fmt.Sprint(c)))
	}
}

func isEventName(name string) bool {
	return len(name) > 2 && strings.HasPrefix(name, "on")
}

// eventProp reports whether a prop binds an event listener, and the event
// name it binds ("onClick" binds "click").
func eventProp(name string, v any) (string, *Listener, bool) {
	if !isEventName(name) {
		return "", nil, false
	}
	l, ok := v.(*Listener)
	if !ok {
		return "", nil, false
	}
	return strings.ToLower(name[2:]), l, true
}
