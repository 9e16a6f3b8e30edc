package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/delaneyj/fiberparty/fiber"
	"github.com/delaneyj/fiberparty/memdom"
	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"
)

const (
	rowsKey  = "rows"
	colsKey  = "cols"
	itersKey = "iters"
)

func benchCommand(w io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "bench",
		Usage: "Time mounting and updating a grid of stateful components",
		Flags: append(commonFlags(),
			&cli.IntFlag{
				Name:  rowsKey,
				Usage: "Rows in the grid",
				Value: 10,
			},
			&cli.IntFlag{
				Name:  colsKey,
				Usage: "Cells per row",
				Value: 100,
			},
			&cli.IntFlag{
				Name:  itersKey,
				Usage: "Iterations per benchmark",
				Value: 100,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			e, err := setup(cmd)
			if err != nil {
				return err
			}
			defer e.close()
			return runBench(w, e, int(cmd.Int(rowsKey)), int(cmd.Int(colsKey)), int(cmd.Int(itersKey)))
		},
	}
}

var cell = fiber.NewComponent("Cell", func(h *fiber.Hooks, p fiber.Props) any {
	n, set := fiber.UseState(h, 0)
	register := fiber.Prop[func(*fiber.Setter[int])](p, "register")
	fiber.UseEffect(h, func() fiber.Cleanup {
		if register != nil {
			register(set)
		}
		return nil
	})
	return fiber.H("span", fiber.Props{"className": "cell"}, n)
})

func grid(rows, cols, tick int, register func(*fiber.Setter[int])) *fiber.Element {
	sections := make([]*fiber.Element, rows)
	for r := range sections {
		cells := make([]*fiber.Element, cols)
		for c := range cells {
			cells[c] = fiber.C(cell, fiber.Props{"register": register})
		}
		sections[r] = fiber.H("section", fiber.Props{"data-row": r, "data-tick": tick}, cells)
	}
	return fiber.H("div", fiber.Props{"id": "grid"}, sections)
}

func runBench(w io.Writer, e *env, rows, cols, iters int) error {
	if rows < 1 || cols < 1 || iters < 1 {
		return fmt.Errorf("rows, cols and iters must be positive, got %d, %d and %d", rows, cols, iters)
	}

	tbl := table.NewWriter()
	tbl.SetTitle(fmt.Sprintf("Fiber grid %d * %d", rows, cols))
	tbl.SetOutputMirror(w)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})
	addRow := func(name string, tach *tachymeter.Tachymeter) {
		calc := tach.Calc()
		tbl.AppendRow(table.Row{
			name,
			calc.Time.Avg,
			calc.Time.Min,
			calc.Time.P75,
			calc.Time.P99,
			calc.Time.Max,
		})
	}

	tach := tachymeter.New(&tachymeter.Config{Size: iters})
	for i := 0; i < iters; i++ {
		doc := memdom.New()
		root := fiber.CreateRoot(doc, doc.Body, e.rootOptions()...)
		start := time.Now()
		if err := root.Render(grid(rows, cols, 0, nil)); err != nil {
			return err
		}
		if err := root.Flush(); err != nil {
			return err
		}
		tach.AddTime(time.Since(start))
	}
	addRow("mount", tach)

	var setters []*fiber.Setter[int]
	register := func(s *fiber.Setter[int]) {
		setters = append(setters, s)
	}
	doc := memdom.New()
	root := fiber.CreateRoot(doc, doc.Body, e.rootOptions()...)
	if err := root.Render(grid(rows, cols, 0, register)); err != nil {
		return err
	}
	if err := root.Flush(); err != nil {
		return err
	}
	if len(setters) != rows*cols {
		return fmt.Errorf("registered %d cells, want %d", len(setters), rows*cols)
	}

	tach = tachymeter.New(&tachymeter.Config{Size: iters})
	for i := 0; i < iters; i++ {
		start := time.Now()
		setters[i%len(setters)].Update(func(n int) int { return n + 1 })
		if err := root.Flush(); err != nil {
			return err
		}
		tach.AddTime(time.Since(start))
	}
	addRow("cell update", tach)

	tach = tachymeter.New(&tachymeter.Config{Size: iters})
	for i := 0; i < iters; i++ {
		start := time.Now()
		if err := root.Render(grid(rows, cols, i+1, register)); err != nil {
			return err
		}
		if err := root.Flush(); err != nil {
			return err
		}
		tach.AddTime(time.Since(start))
	}
	addRow("root render", tach)

	total, err := cellTotal(doc)
	if err != nil {
		return err
	}
	if total != iters {
		return fmt.Errorf("cells sum to %d after %d updates", total, iters)
	}

	tbl.AppendFooter(table.Row{"fibers", humanize.Comma(int64(root.LiveFibers())), "commits", humanize.Comma(int64(root.Commits()))})
	tbl.Render()
	fmt.Fprintf(w, "fingerprint: %016x\n", memdom.Fingerprint(doc.Body))
	return nil
}

func cellTotal(doc *memdom.Document) (int, error) {
	total := 0
	for _, span := range doc.Body.FindAll(memdom.ByAttr("className", "cell")) {
		n, err := strconv.Atoi(span.TextContent())
		if err != nil {
			return 0, fmt.Errorf("cell %s: %w", span, err)
		}
		total += n
	}
	return total, nil
}
