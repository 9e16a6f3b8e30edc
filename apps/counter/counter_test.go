package counter_test

import (
	"testing"

	"github.com/delaneyj/fiberparty/apps/counter"
	"github.com/delaneyj/fiberparty/fiber"
	"github.com/delaneyj/fiberparty/memdom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter(t *testing.T) {
	d := memdom.New()
	root := fiber.CreateRoot(d, d.Body)
	require.NoError(t, root.Render(counter.New(2)))
	require.NoError(t, root.Flush())
	assert.Equal(t,
		`<div class="counter"><h1>Count: 2</h1><button id="inc">+1</button><button id="triple">+3</button></div>`,
		memdom.InnerHTML(d.Body))

	click := func(id string) {
		d.Click(d.Body.Find(memdom.ByAttr("id", id)))
		require.NoError(t, root.Flush())
	}
	click("triple")
	assert.Equal(t, "Count: 5", d.Body.Find(memdom.ByTag("h1")).TextContent())

	d.ResetOps()
	click("inc")
	assert.Equal(t, "Count: 6", d.Body.Find(memdom.ByTag("h1")).TextContent())
	// only the count text changes
	assert.Equal(t, map[memdom.OpKind]int{memdom.OpSetAttr: 1}, d.Counts())
}
