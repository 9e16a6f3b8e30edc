package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/delaneyj/fiberparty/fiber"
	"github.com/delaneyj/fiberparty/memdom"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
)

const (
	eventKey = "event"
	htmlKey  = "html"
	treeKey  = "tree"
	statsKey = "stats"
)

var errBadEvent = errors.New("event must look like click:id, input:id=value or key:id=Key")

func renderCommand(w io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "render",
		Usage: "Mount an app, replay events and print the result",
		Flags: append(append(commonFlags(), appFlags()...),
			&cli.StringSliceFlag{
				Name:  eventKey,
				Usage: "Event to dispatch after mounting, in order (click:id, input:id=value, key:id=Key)",
			},
			&cli.BoolFlag{
				Name:  htmlKey,
				Usage: "Print the container markup",
				Value: true,
			},
			&cli.BoolFlag{
				Name:  treeKey,
				Usage: "Print a styled outline of the container",
			},
			&cli.BoolFlag{
				Name:  statsKey,
				Usage: "Print host operation counts",
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runRender(cmd, w)
		},
	}
}

func runRender(cmd *cli.Command, w io.Writer) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.close()
	app, err := e.loadApp(cmd)
	if err != nil {
		return err
	}

	doc := memdom.New()
	root := fiber.CreateRoot(doc, doc.Body, e.rootOptions()...)
	if err := root.Render(app); err != nil {
		return err
	}
	if err := root.Flush(); err != nil {
		return err
	}
	for _, ev := range cmd.StringSlice(eventKey) {
		if err := replay(doc, ev); err != nil {
			return err
		}
		if err := root.Flush(); err != nil {
			return err
		}
	}

	if cmd.Bool(htmlKey) {
		fmt.Fprintln(w, memdom.InnerHTML(doc.Body))
	}
	if cmd.Bool(treeKey) {
		fmt.Fprint(w, memdom.Dump(doc.Body))
	}
	if cmd.Bool(statsKey) {
		writeStats(w, doc, root)
	}
	return nil
}

// replay dispatches one event written as kind:id[=value].
func replay(doc *memdom.Document, ev string) error {
	kind, rest, ok := strings.Cut(ev, ":")
	if !ok {
		return fmt.Errorf("%w: %q", errBadEvent, ev)
	}
	id, value, hasValue := strings.Cut(rest, "=")
	target := doc.Body.Find(memdom.ByAttr("id", id))
	if target == nil {
		return fmt.Errorf("no element with id %q", id)
	}
	switch {
	case kind == "click" && !hasValue:
		doc.Click(target)
	case kind == "input" && hasValue:
		doc.Input(target, value)
	case kind == "key" && hasValue:
		doc.KeyDown(target, value)
	default:
		return fmt.Errorf("%w: %q", errBadEvent, ev)
	}
	return nil
}

func writeStats(w io.Writer, doc *memdom.Document, root *fiber.Root) {
	counts := doc.Counts()
	kinds := make([]string, 0, len(counts))
	for kind := range counts {
		kinds = append(kinds, string(kind))
	}
	slices.Sort(kinds)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"operation", "count"})
	for _, kind := range kinds {
		table.Append([]string{kind, humanize.Comma(int64(counts[memdom.OpKind(kind)]))})
	}
	table.SetFooter([]string{"commits", humanize.Comma(int64(root.Commits()))})
	table.Render()

	last := root.LastCommit()
	fmt.Fprintf(w, "last commit: %d placements, %d updates, %d deletions, %d effects in %s\n",
		last.Placements, last.Updates, last.Deletions, last.Effects, last.Duration)
	fmt.Fprintf(w, "live fibers: %s, fingerprint: %016x\n",
		humanize.Comma(int64(root.LiveFibers())), memdom.Fingerprint(doc.Body))
}
