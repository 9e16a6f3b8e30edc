package memdom

import (
	"errors"
	"fmt"

	"github.com/delaneyj/fiberparty/fiber"
)

var (
	// ErrForeignNode is returned for nodes that do not belong to memdom.
	ErrForeignNode = errors.New("memdom: not a memdom node")
	// ErrNotChild is returned when detaching or inserting relative to a node
	// that is not a child of the given parent.
	ErrNotChild = errors.New("memdom: node is not a child of parent")
)

type OpKind string

const (
	OpCreate         OpKind = "create"
	OpCreateText     OpKind = "create-text"
	OpSetAttr        OpKind = "set-attr"
	OpRemoveAttr     OpKind = "remove-attr"
	OpAddListener    OpKind = "add-listener"
	OpRemoveListener OpKind = "remove-listener"
	OpAppend         OpKind = "append"
	OpInsert         OpKind = "insert"
	OpRemove         OpKind = "remove"
)

// Op is one primitive operation performed on the document.
type Op struct {
	Kind   OpKind
	Target string
	Name   string
}

func (o Op) String() string {
	if o.Name == "" {
		return fmt.Sprintf("%s %s", o.Kind, o.Target)
	}
	return fmt.Sprintf("%s %s %s", o.Kind, o.Target, o.Name)
}

// Document implements fiber.Host over an in-memory tree rooted at Body.
type Document struct {
	Body *Node

	nextID int
	ops    []Op
	failOn map[OpKind]error
}

var _ fiber.Host = (*Document)(nil)

func New() *Document {
	d := &Document{failOn: map[OpKind]error{}}
	d.Body = d.newNode(ElementNode, "body")
	return d
}

func (d *Document) newNode(typ NodeType, tag string) *Node {
	d.nextID++
	return &Node{
		Type:      typ,
		Tag:       tag,
		ID:        d.nextID,
		attrs:     map[string]any{},
		listeners: map[string]*listenerList{},
	}
}

// FailOn makes every later operation of the given kind return err; a nil
// err clears the failure.
func (d *Document) FailOn(kind OpKind, err error) {
	if err == nil {
		delete(d.failOn, kind)
		return
	}
	d.failOn[kind] = err
}

// Ops returns the operations recorded since the last ResetOps.
func (d *Document) Ops() []Op {
	return append([]Op(nil), d.ops...)
}

// Counts tallies the recorded operations by kind.
func (d *Document) Counts() map[OpKind]int {
	counts := map[OpKind]int{}
	for _, op := range d.ops {
		counts[op.Kind]++
	}
	return counts
}

// Mutations counts recorded operations that touched attached or detached
// nodes, i.e. everything except node creation.
func (d *Document) Mutations() int {
	n := 0
	for _, op := range d.ops {
		if op.Kind != OpCreate && op.Kind != OpCreateText {
			n++
		}
	}
	return n
}

func (d *Document) ResetOps() {
	d.ops = d.ops[:0]
}

func (d *Document) record(kind OpKind, target *Node, name string) error {
	if err := d.failOn[kind]; err != nil {
		return err
	}
	d.ops = append(d.ops, Op{Kind: kind, Target: target.String(), Name: name})
	return nil
}

func asNode(n fiber.Node) (*Node, error) {
	node, ok := n.(*Node)
	if !ok || node == nil {
		return nil, fmt.Errorf("%w: %T", ErrForeignNode, n)
	}
	return node, nil
}

func (d *Document) CreateElement(tag string) (fiber.Node, error) {
	n := d.newNode(ElementNode, tag)
	if err := d.record(OpCreate, n, ""); err != nil {
		return nil, err
	}
	return n, nil
}

func (d *Document) CreateText() (fiber.Node, error) {
	n := d.newNode(TextNode, "")
	if err := d.record(OpCreateText, n, ""); err != nil {
		return nil, err
	}
	return n, nil
}

func (d *Document) SetAttribute(n fiber.Node, name string, value any) error {
	node, err := asNode(n)
	if err != nil {
		return err
	}
	if err := d.record(OpSetAttr, node, name); err != nil {
		return err
	}
	if node.Type == TextNode && name == fiber.NodeValueKey {
		node.Text = fmt.Sprint(value)
		return nil
	}
	node.attrs[name] = value
	return nil
}

func (d *Document) RemoveAttribute(n fiber.Node, name string) error {
	node, err := asNode(n)
	if err != nil {
		return err
	}
	if err := d.record(OpRemoveAttr, node, name); err != nil {
		return err
	}
	if node.Type == TextNode && name == fiber.NodeValueKey {
		node.Text = ""
		return nil
	}
	delete(node.attrs, name)
	return nil
}

func (d *Document) AddEventListener(n fiber.Node, event string, l *fiber.Listener) error {
	node, err := asNode(n)
	if err != nil {
		return err
	}
	if err := d.record(OpAddListener, node, event); err != nil {
		return err
	}
	list, ok := node.listeners[event]
	if !ok {
		list = newListenerList()
		node.listeners[event] = list
	}
	list.add(l)
	return nil
}

func (d *Document) RemoveEventListener(n fiber.Node, event string, l *fiber.Listener) error {
	node, err := asNode(n)
	if err != nil {
		return err
	}
	if err := d.record(OpRemoveListener, node, event); err != nil {
		return err
	}
	if list, ok := node.listeners[event]; ok {
		list.remove(l)
	}
	return nil
}

func (d *Document) AppendChild(parent, child fiber.Node) error {
	p, err := asNode(parent)
	if err != nil {
		return err
	}
	c, err := asNode(child)
	if err != nil {
		return err
	}
	if err := d.record(OpAppend, c, p.String()); err != nil {
		return err
	}
	detach(c)
	c.Parent = p
	p.children = append(p.children, c)
	return nil
}

func (d *Document) InsertBefore(parent, child, before fiber.Node) error {
	p, err := asNode(parent)
	if err != nil {
		return err
	}
	c, err := asNode(child)
	if err != nil {
		return err
	}
	b, err := asNode(before)
	if err != nil {
		return err
	}
	if p.indexOf(b) < 0 {
		return fmt.Errorf("%w: %s under %s", ErrNotChild, b, p)
	}
	if err := d.record(OpInsert, c, b.String()); err != nil {
		return err
	}
	detach(c)
	i := p.indexOf(b)
	p.children = append(p.children[:i], append([]*Node{c}, p.children[i:]...)...)
	c.Parent = p
	return nil
}

func (d *Document) RemoveChild(parent, child fiber.Node) error {
	p, err := asNode(parent)
	if err != nil {
		return err
	}
	c, err := asNode(child)
	if err != nil {
		return err
	}
	i := p.indexOf(c)
	if i < 0 {
		return fmt.Errorf("%w: %s under %s", ErrNotChild, c, p)
	}
	if err := d.record(OpRemove, c, p.String()); err != nil {
		return err
	}
	p.children = append(p.children[:i], p.children[i+1:]...)
	c.Parent = nil
	return nil
}

func detach(n *Node) {
	if n.Parent == nil {
		return
	}
	if i := n.Parent.indexOf(n); i >= 0 {
		n.Parent.children = append(n.Parent.children[:i], n.Parent.children[i+1:]...)
	}
	n.Parent = nil
}

// Dispatch delivers e to the listeners of n and then of each ancestor,
// returning how many listeners ran.
func (d *Document) Dispatch(n *Node, e fiber.Event) int {
	if e.Target == nil {
		e.Target = n
	}
	ran := 0
	for cur := n; cur != nil; cur = cur.Parent {
		list, ok := cur.listeners[e.Type]
		if !ok {
			continue
		}
		for _, l := range append([]*fiber.Listener(nil), list.order...) {
			l.Handle(e)
			ran++
		}
	}
	return ran
}

// Click dispatches a click on n. Radio and checkbox inputs are checked first
// and also receive a change event, as a browser does.
func (d *Document) Click(n *Node) int {
	ran := d.Dispatch(n, fiber.Event{Type: "click"})
	if n.Tag != "input" {
		return ran
	}
	switch n.attrs["type"] {
	case "radio", "checkbox":
		checked := true
		if n.attrs["type"] == "checkbox" {
			checked = n.attrs["checked"] != true
		}
		n.attrs["checked"] = checked
		ran += d.Dispatch(n, fiber.Event{Type: "change", Checked: checked})
	}
	return ran
}

// Input replaces the value of n, as typing would, and dispatches a change
// event carrying it.
func (d *Document) Input(n *Node, value string) int {
	n.attrs["value"] = value
	return d.Dispatch(n, fiber.Event{Type: "change", Value: value})
}

// KeyDown dispatches a keydown event for key.
func (d *Document) KeyDown(n *Node, key string) int {
	value, _ := n.attrs["value"].(string)
	return d.Dispatch(n, fiber.Event{Type: "keydown", Key: key, Value: value})
}
