package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/delaneyj/fiberparty/fiber"
	"github.com/delaneyj/fiberparty/idle"
	"github.com/delaneyj/fiberparty/memdom"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)
	focusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	blurStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type keyMap struct {
	Next     key.Binding
	Prev     key.Binding
	Activate key.Binding
	Erase    key.Binding
	Quit     key.Binding
	Leave    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Activate, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Next, k.Prev}, {k.Activate, k.Erase}, {k.Quit, k.Leave}}
}

var keys = keyMap{
	Next:     key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next")),
	Prev:     key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "previous")),
	Activate: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter/space", "activate")),
	Erase:    key.NewBinding(key.WithKeys("backspace"), key.WithHelp("backspace", "erase")),
	Quit:     key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
	// q types into text inputs
	Leave: key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit outside inputs")),
}

func tuiCommand() *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Drive an app from the terminal",
		Flags: append(commonFlags(), appFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			defer e.close()
			// stderr belongs to the terminal UI
			if e.cfg.LogFile == "" {
				e.logger = zap.NewNop()
			}
			app, err := e.loadApp(cmd)
			if err != nil {
				return err
			}
			m, err := newTUIModel(e, app)
			if err != nil {
				return err
			}
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		},
	}
}

// tuiModel owns a root scheduled on a manual idle queue, pumped once per
// terminal message with the configured frame budget.
type tuiModel struct {
	doc   *memdom.Document
	root  *fiber.Root
	sched *idle.Manual
	frame time.Duration
	limit int
	focus int
	help  help.Model
	err   error
}

func newTUIModel(e *env, app *fiber.Element) (*tuiModel, error) {
	m := &tuiModel{
		doc:   memdom.New(),
		sched: idle.NewManual(),
		frame: e.cfg.FrameBudget,
		limit: e.cfg.MaxFlush,
		help:  help.New(),
	}
	m.root = fiber.CreateRoot(m.doc, m.doc.Body, e.rootOptions(
		fiber.WithScheduler(m.sched),
		fiber.WithOnError(func(err error) { m.err = err }),
	)...)
	if err := m.root.Render(app); err != nil {
		return nil, err
	}
	m.pump()
	return m, m.err
}

func (m *tuiModel) pump() {
	for i := 0; i < m.limit && m.sched.RunOnce(idle.Budget(m.frame)); i++ {
	}
}

func (m *tuiModel) focusable() []*memdom.Node {
	return m.doc.Body.FindAll(func(n *memdom.Node) bool {
		return n.Type == memdom.ElementNode && (n.Tag == "button" || n.Tag == "input")
	})
}

func (m *tuiModel) focused() *memdom.Node {
	nodes := m.focusable()
	if len(nodes) == 0 {
		return nil
	}
	m.focus = min(max(m.focus, 0), len(nodes)-1)
	return nodes[m.focus]
}

func isTextInput(n *memdom.Node) bool {
	if n == nil || n.Tag != "input" {
		return false
	}
	typ, _ := n.Attr("type")
	return typ == nil || typ == "text"
}

func (m *tuiModel) Init() tea.Cmd {
	return nil
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	target := m.focused()
	text := isTextInput(target)
	typed := text && (k.Type == tea.KeyRunes || k.Type == tea.KeySpace)

	switch {
	case key.Matches(k, keys.Quit), key.Matches(k, keys.Leave) && !text:
		return m, tea.Quit
	case key.Matches(k, keys.Next):
		if n := len(m.focusable()); n > 0 {
			m.focus = (m.focus + 1) % n
		}
	case key.Matches(k, keys.Prev):
		if n := len(m.focusable()); n > 0 {
			m.focus = (m.focus + n - 1) % n
		}
	case key.Matches(k, keys.Erase):
		if !text {
			break
		}
		if value := []rune(inputValue(target)); len(value) > 0 {
			m.doc.Input(target, string(value[:len(value)-1]))
			m.pump()
		}
	case key.Matches(k, keys.Activate) && !typed:
		switch {
		case text:
			m.doc.KeyDown(target, "Enter")
		case target != nil:
			m.doc.Click(target)
		}
		m.pump()
	case typed:
		m.doc.Input(target, inputValue(target)+string(k.Runes))
		m.pump()
	}
	return m, nil
}

func inputValue(n *memdom.Node) string {
	v, _ := n.Attr("value")
	s, _ := v.(string)
	return s
}

func describe(n *memdom.Node) string {
	if n.Tag == "button" {
		return fmt.Sprintf("%s %q", n, n.TextContent())
	}
	if isTextInput(n) {
		return fmt.Sprintf("%s [%s]", n, inputValue(n))
	}
	id, _ := n.Attr("id")
	if checked, _ := n.Attr("checked"); checked == true {
		return fmt.Sprintf("%s (x) %v", n, id)
	}
	return fmt.Sprintf("%s ( ) %v", n, id)
}

func (m *tuiModel) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("fiberparty"))
	sb.WriteString("\n\n")
	sb.WriteString(memdom.Dump(m.doc.Body))
	sb.WriteString("\n")

	m.focused()
	for i, n := range m.focusable() {
		if i == m.focus {
			sb.WriteString(focusStyle.Render("> " + describe(n)))
		} else {
			sb.WriteString(blurStyle.Render("  " + describe(n)))
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "\ncommits %d, fibers %d\n", m.root.Commits(), m.root.LiveFibers())
	if m.err != nil {
		sb.WriteString(errStyle.Render("error: " + m.err.Error()))
		sb.WriteString("\n")
	}
	sb.WriteString(m.help.View(keys))
	sb.WriteString("\n")
	return sb.String()
}
