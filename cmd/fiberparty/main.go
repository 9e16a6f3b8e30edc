package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"slices"
	"strings"

	"github.com/delaneyj/fiberparty/apps/counter"
	"github.com/delaneyj/fiberparty/apps/oddlist"
	"github.com/delaneyj/fiberparty/apps/todo"
	"github.com/delaneyj/fiberparty/config"
	"github.com/delaneyj/fiberparty/fiber"
	"github.com/delaneyj/fiberparty/store"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

const (
	configKey   = "config"
	logLevelKey = "log-level"
	appKey      = "app"
	dbKey       = "db"
)

func main() {
	if err := newCommand(os.Stdout).Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newCommand(w io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "fiberparty",
		Usage: "Mount fiber components on an in-memory DOM",
		Commands: []*cli.Command{
			renderCommand(w),
			benchCommand(w),
			tuiCommand(),
		},
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  configKey,
			Usage: "YAML config file",
		},
		&cli.StringFlag{
			Name:  logLevelKey,
			Usage: "Log level, overrides the config file",
		},
	}
}

func appFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  appKey,
			Usage: "App to mount: " + strings.Join(appNames(), ", "),
			Value: "todo",
		},
		&cli.StringFlag{
			Name:  dbKey,
			Usage: "bbolt file the todo app saves to, db_path from the config when empty",
		},
	}
}

// env is what every subcommand sets up from its flags.
type env struct {
	cfg    config.Config
	logger *zap.Logger
	store  *store.Store
}

func setup(cmd *cli.Command) (*env, error) {
	cfg := config.Default()
	if path := cmd.String(configKey); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	if level := cmd.String(logLevelKey); level != "" {
		cfg.LogLevel = level
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger, err := cfg.Logger()
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger}, nil
}

func (e *env) openStore(path string) error {
	if path == "" {
		return nil
	}
	s, err := store.Open(path)
	if err != nil {
		return err
	}
	e.store = s
	return nil
}

func (e *env) rootOptions(extra ...fiber.Option) []fiber.Option {
	return append(e.cfg.RootOptions(e.logger), extra...)
}

func (e *env) close() {
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			e.logger.Warn("closing store", zap.Error(err))
		}
	}
	e.logger.Sync()
}

type app struct {
	build func(e *env) *fiber.Element
	// stored apps persist through the env's store
	stored bool
}

var apps = map[string]app{
	"counter": {build: func(*env) *fiber.Element {
		return counter.New(0)
	}},
	"oddlist": {build: func(*env) *fiber.Element {
		return oddlist.New()
	}},
	"todo": {stored: true, build: func(e *env) *fiber.Element {
		opts := todo.Options{Initial: []todo.Todo{{ID: "welcome", Text: "learn fibers"}}}
		if e.store != nil {
			opts.Storage = e.store
		}
		return todo.New(opts)
	}},
}

func appNames() []string {
	names := make([]string, 0, len(apps))
	for name := range apps {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// loadApp describes the app named by --app, first opening the store it
// saves to: --db, else db_path from the config.
func (e *env) loadApp(cmd *cli.Command) (*fiber.Element, error) {
	name := cmd.String(appKey)
	a, ok := apps[name]
	if !ok {
		return nil, fmt.Errorf("unknown app %q, have %s", name, strings.Join(appNames(), ", "))
	}
	if a.stored {
		path := cmd.String(dbKey)
		if path == "" {
			path = e.cfg.DBPath
		}
		if err := e.openStore(path); err != nil {
			return nil, err
		}
	}
	return a.build(e), nil
}
