package fiber

// Node is a host primitive owned by a Host, e.g. a DOM node.
type Node any

// Host performs the primitive operations on the persistent output tree.
// Any error it returns is fatal for the Root that issued the call: commits
// are not transactional, so a half-applied tree cannot be recovered.
type Host interface {
	CreateElement(tag string) (Node, error)
	CreateText() (Node, error)

	SetAttribute(n Node, name string, value any) error
	RemoveAttribute(n Node, name string) error

	AddEventListener(n Node, event string, l *Listener) error
	RemoveEventListener(n Node, event string, l *Listener) error

	AppendChild(parent, child Node) error
	// InsertBefore attaches child under parent directly before the existing
	// child before.
	InsertBefore(parent, child, before Node) error
	RemoveChild(parent, child Node) error
}
