// Package memdom is an in-memory, DOM-shaped host for fiber roots. It keeps a
// log of every primitive operation so callers can see exactly what a commit
// did to the tree.
package memdom

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/delaneyj/fiberparty/fiber"
)

type NodeType uint8

const (
	ElementNode NodeType = iota
	TextNode
)

// Node is an element or text node.
type Node struct {
	Type   NodeType
	Tag    string
	Text   string
	ID     int
	Parent *Node

	children  []*Node
	attrs     map[string]any
	listeners map[string]*listenerList
}

// listenerList keeps registration order; the set rejects duplicates the way
// addEventListener does.
type listenerList struct {
	order []*fiber.Listener
	set   mapset.Set[*fiber.Listener]
}

func newListenerList() *listenerList {
	return &listenerList{set: mapset.NewThreadUnsafeSet[*fiber.Listener]()}
}

func (l *listenerList) add(fn *fiber.Listener) bool {
	if !l.set.Add(fn) {
		return false
	}
	l.order = append(l.order, fn)
	return true
}

func (l *listenerList) remove(fn *fiber.Listener) bool {
	if !l.set.Contains(fn) {
		return false
	}
	l.set.Remove(fn)
	l.order = slices.DeleteFunc(l.order, func(x *fiber.Listener) bool { return x == fn })
	return true
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	if n.Type == TextNode {
		return fmt.Sprintf("#text%d(%q)", n.ID, n.Text)
	}
	return fmt.Sprintf("%s#%d", n.Tag, n.ID)
}

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	return slices.Clone(n.children)
}

func (n *Node) Attr(name string) (any, bool) {
	v, ok := n.attrs[name]
	return v, ok
}

// AttrNames lists the attributes in sorted order.
func (n *Node) AttrNames() []string {
	return slices.Sorted(maps.Keys(n.attrs))
}

// ListenerCount is the number of listeners bound for event.
func (n *Node) ListenerCount(event string) int {
	if l, ok := n.listeners[event]; ok {
		return len(l.order)
	}
	return 0
}

// TextContent concatenates the text of n and its descendants.
func (n *Node) TextContent() string {
	if n.Type == TextNode {
		return n.Text
	}
	var sb strings.Builder
	for _, c := range n.children {
		sb.WriteString(c.TextContent())
	}
	return sb.String()
}

// Find returns the first node under n, n included, in document order that
// satisfies pred.
func (n *Node) Find(pred func(*Node) bool) *Node {
	if pred(n) {
		return n
	}
	for _, c := range n.children {
		if found := c.Find(pred); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every node under n, n included, satisfying pred.
func (n *Node) FindAll(pred func(*Node) bool) []*Node {
	var out []*Node
	var visit func(*Node)
	visit = func(x *Node) {
		if pred(x) {
			out = append(out, x)
		}
		for _, c := range x.children {
			visit(c)
		}
	}
	visit(n)
	return out
}

// ByTag matches elements with the given tag.
func ByTag(tag string) func(*Node) bool {
	return func(n *Node) bool { return n.Type == ElementNode && n.Tag == tag }
}

// ByAttr matches elements whose attribute name formats to value.
func ByAttr(name, value string) func(*Node) bool {
	return func(n *Node) bool {
		v, ok := n.attrs[name]
		return ok && fmt.Sprint(v) == value
	}
}

// ByText matches elements whose own text content is exactly text.
func ByText(tag, text string) func(*Node) bool {
	return func(n *Node) bool {
		return n.Type == ElementNode && n.Tag == tag && n.TextContent() == text
	}
}

func (n *Node) indexOf(child *Node) int {
	return slices.Index(n.children, child)
}
