package todo_test

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/delaneyj/fiberparty/apps/todo"
	"github.com/delaneyj/fiberparty/fiber"
	"github.com/delaneyj/fiberparty/memdom"
	"github.com/delaneyj/fiberparty/store"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t    *testing.T
	doc  *memdom.Document
	root *fiber.Root
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("t%d", n)
	}
}

func mountTodo(t *testing.T, opts todo.Options) *harness {
	t.Helper()
	if opts.NewID == nil {
		opts.NewID = sequentialIDs()
	}
	d := memdom.New()
	root := fiber.CreateRoot(d, d.Body, fiber.WithHookCheck(true))
	require.NoError(t, root.Render(todo.New(opts)))
	require.NoError(t, root.Flush())
	return &harness{t: t, doc: d, root: root}
}

func (h *harness) byID(id string) *memdom.Node {
	h.t.Helper()
	n := h.doc.Body.Find(memdom.ByAttr("id", id))
	require.NotNil(h.t, n, id)
	return n
}

func (h *harness) click(id string) {
	h.t.Helper()
	h.doc.Click(h.byID(id))
	require.NoError(h.t, h.root.Flush())
}

func (h *harness) add(text string) {
	h.t.Helper()
	h.doc.Input(h.byID("draft"), text)
	require.NoError(h.t, h.root.Flush())
	h.doc.KeyDown(h.byID("draft"), "Enter")
	require.NoError(h.t, h.root.Flush())
}

func (h *harness) items() string {
	var out []string
	for _, li := range h.doc.Body.FindAll(memdom.ByTag("li")) {
		label := li.Find(memdom.ByTag("label"))
		class, _ := label.Attr("className")
		text := label.TextContent()
		if class == "done" {
			text += "✓"
		}
		out = append(out, text)
	}
	return strings.Join(out, ",")
}

func TestAddToggleRemove(t *testing.T) {
	h := mountTodo(t, todo.Options{Initial: []todo.Todo{{ID: "t0", Text: "learn"}}})
	assert.Equal(t, "learn", h.items())

	h.add("milk, eggs,,")
	assert.Equal(t, "learn,milk,eggs", h.items())
	v, _ := h.byID("draft").Attr("value")
	assert.Equal(t, "", v)

	h.click("toggle-t1")
	assert.Equal(t, "learn,milk✓,eggs", h.items())
	assert.Equal(t, "cancel", h.byID("toggle-t1").TextContent())

	h.click("remove-t0")
	assert.Equal(t, "milk✓,eggs", h.items())
	assert.Equal(t, "done", h.byID("toggle-t2").TextContent())
}

func TestAddButtonIgnoresBlankInput(t *testing.T) {
	h := mountTodo(t, todo.Options{})
	h.doc.Input(h.byID("draft"), " , ")
	require.NoError(t, h.root.Flush())
	h.click("add")
	assert.Empty(t, h.items())
}

func TestFilters(t *testing.T) {
	h := mountTodo(t, todo.Options{})
	h.add("a,b,c")
	h.click("toggle-t2")

	h.click("done")
	assert.Equal(t, "b✓", h.items())
	h.click("active")
	assert.Equal(t, "a,c", h.items())
	h.click("all")
	assert.Equal(t, "a,b✓,c", h.items())

	checked, _ := h.byID("all").Attr("checked")
	assert.Equal(t, true, checked)
	checked, _ = h.byID("active").Attr("checked")
	assert.Equal(t, false, checked)
}

func TestGolden(t *testing.T) {
	h := mountTodo(t, todo.Options{Initial: []todo.Todo{{ID: "t0", Text: "learn"}}})
	h.add("milk,eggs")
	h.click("toggle-t1")
	h.click("done")

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "done_filter", []byte(memdom.InnerHTML(h.doc.Body)))
}

// should restore a saved list on the next mount
func TestSaveAndRestore(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "todos.db"))
	require.NoError(t, err)
	defer db.Close()

	h := mountTodo(t, todo.Options{Storage: db})
	assert.Empty(t, h.items())
	assert.Nil(t, h.doc.Body.Find(memdom.ByAttr("className", "status")))

	h.add("bread,jam")
	h.click("toggle-t1")
	h.click("save")
	assert.Equal(t, "saved 2", h.doc.Body.Find(memdom.ByAttr("className", "status")).TextContent())
	require.NoError(t, h.root.Unmount())

	var saved []todo.Todo
	require.NoError(t, db.GetJSON(todo.StorageKey, &saved))
	assert.Equal(t, []todo.Todo{{ID: "t1", Text: "bread", Done: true}, {ID: "t2", Text: "jam"}}, saved)

	again := mountTodo(t, todo.Options{Storage: db})
	assert.Equal(t, "bread✓,jam", again.items())
}

type brokenStorage struct{}

func (brokenStorage) GetJSON(string, any) error { return errors.New("disk on fire") }
func (brokenStorage) SetJSON(string, any) error { return errors.New("disk full") }

func TestStorageErrors(t *testing.T) {
	h := mountTodo(t, todo.Options{Storage: brokenStorage{}})
	status := func() string {
		return h.doc.Body.Find(memdom.ByAttr("className", "status")).TextContent()
	}
	assert.Equal(t, "disk on fire", status())
	h.click("save")
	assert.Equal(t, "disk full", status())
}

func TestSaveWithoutStorage(t *testing.T) {
	h := mountTodo(t, todo.Options{})
	h.click("save")
	assert.Equal(t, "nowhere to save", h.doc.Body.Find(memdom.ByAttr("className", "status")).TextContent())
}
