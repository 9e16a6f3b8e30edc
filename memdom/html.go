package memdom

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/valyala/quicktemplate"
)

// attrAliases maps prop names to their HTML attribute names.
var attrAliases = map[string]string{
	"className": "class",
	"htmlFor":   "for",
}

// WriteHTML serialises n and its descendants. Attributes are written in
// sorted order, listeners are omitted, booleans follow HTML semantics
// (present when true, absent when false).
func WriteHTML(w io.Writer, n *Node) {
	qw := quicktemplate.AcquireWriter(w)
	defer quicktemplate.ReleaseWriter(qw)
	streamNode(qw, n)
}

func streamNode(qw *quicktemplate.Writer, n *Node) {
	if n.Type == TextNode {
		qw.E().S(n.Text)
		return
	}
	qw.N().S("<")
	qw.N().S(n.Tag)
	for _, name := range n.AttrNames() {
		v := n.attrs[name]
		if alias, ok := attrAliases[name]; ok {
			name = alias
		}
		switch v := v.(type) {
		case bool:
			if v {
				qw.N().S(" ")
				qw.N().S(name)
			}
		default:
			qw.N().S(" ")
			qw.N().S(name)
			qw.N().S(`="`)
			qw.E().S(fmt.Sprint(v))
			qw.N().S(`"`)
		}
	}
	qw.N().S(">")
	for _, c := range n.children {
		streamNode(qw, c)
	}
	qw.N().S("</")
	qw.N().S(n.Tag)
	qw.N().S(">")
}

// HTML returns the serialised markup of n.
func HTML(n *Node) string {
	var buf bytes.Buffer
	WriteHTML(&buf, n)
	return buf.String()
}

// InnerHTML serialises the children of n.
func InnerHTML(n *Node) string {
	var buf bytes.Buffer
	for _, c := range n.children {
		WriteHTML(&buf, c)
	}
	return buf.String()
}

// Fingerprint hashes the markup of n; two trees with equal fingerprints
// render identically.
func Fingerprint(n *Node) uint64 {
	return xxhash.Sum64String(HTML(n))
}

var (
	tagStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#87CEEB"))

	attrStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	textStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA"))

	listenerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// Dump renders n as an indented, styled outline, one node per line.
func Dump(n *Node) string {
	var sb strings.Builder
	dump(&sb, n, 0)
	return sb.String()
}

func dump(sb *strings.Builder, n *Node, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	if n.Type == TextNode {
		sb.WriteString(textStyle.Render(fmt.Sprintf("%q", n.Text)))
		sb.WriteString("\n")
		return
	}
	sb.WriteString(tagStyle.Render(n.Tag))
	for _, name := range n.AttrNames() {
		sb.WriteString(" ")
		sb.WriteString(attrStyle.Render(fmt.Sprintf("%s=%v", name, n.attrs[name])))
	}
	for _, event := range listenedEvents(n) {
		sb.WriteString(" ")
		sb.WriteString(listenerStyle.Render("@" + event))
	}
	sb.WriteString("\n")
	for _, c := range n.children {
		dump(sb, c, depth+1)
	}
}

func listenedEvents(n *Node) []string {
	events := make([]string, 0, len(n.listeners))
	for event, l := range n.listeners {
		if len(l.order) > 0 {
			events = append(events, event)
		}
	}
	slices.Sort(events)
	return events
}
