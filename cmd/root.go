package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/jensroland/git-solentry/internal/config"
	"github.com/jensroland/git-solentry/internal/debug"
	"github.com/jensroland/git-solentry/internal/exercise"
	"github.com/jensroland/git-solentry/internal/format"
	"github.com/jensroland/git-solentry/internal/project"
	"github.com/jensroland/git-solentry/internal/store"
)

// GlobalFlags returns the flags shared by every command.
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Load configuration from `FILE` (default: solentry.toml in the repository)",
			EnvVars: []string{config.EnvPrefix + "CONFIG"},
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "Also print the run log to stderr",
		},
		&cli.BoolFlag{
			Name:  "no-color",
			Usage: "Disable colored output",
		},
	}
}

// Commands returns every subcommand.
func Commands() []*cli.Command {
	return []*cli.Command{
		GenerateCommand(),
		ListCommand(),
		StatsCommand(),
		LogCommand(),
		InitCommand(),
	}
}

// Before applies the global flags.
func Before(c *cli.Context) error {
	if c.Bool("no-color") {
		format.DisableColors()
	}
	return nil
}

// env is what a command needs once the repository and config are known.
type env struct {
	root   string
	paths  project.Paths
	cfg    *config.Config
	log    zerolog.Logger
	closer io.Closer
}

func (e *env) Close() error {
	if e.closer != nil {
		return e.closer.Close()
	}
	return nil
}

// setup locates the repository, loads the configuration and opens the run
// log. The logger also becomes the global zerolog logger.
func setup(c *cli.Context) (*env, error) {
	root, err := project.FindRoot()
	if err != nil {
		return nil, fmt.Errorf("not inside an exercise repository: %w", err)
	}
	paths := project.NewPaths(root)

	cfg, err := config.LoadConfig(c.String("config"), root)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, closer, err := debug.Open(debug.Options{
		Dir:     paths.LogDir,
		Level:   cfg.Log.Level,
		Verbose: c.Bool("debug"),
		Console: c.App.ErrWriter,
	})
	if err != nil {
		return nil, err
	}
	log.Logger = logger

	return &env{root: root, paths: paths, cfg: cfg, log: logger, closer: closer}, nil
}

// inRoot resolves a configured path against the repository root.
func (e *env) inRoot(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(e.root, p)
}

func (e *env) loadExercise() (*exercise.Exercise, error) {
	ex, err := exercise.Load(e.inRoot(e.cfg.Exercise.Manifest))
	if err != nil {
		return nil, fmt.Errorf("failed to load exercise manifest: %w", err)
	}
	return ex, nil
}

// openStore opens the configured store. SQLite defaults to a database in
// the repository's cache directory.
func (e *env) openStore(ctx context.Context) (store.Store, error) {
	dsn := e.cfg.Store.DSN
	if e.cfg.Store.Driver == store.DriverSQLite {
		if dsn == "" {
			dsn = e.paths.StoreDB
		} else {
			dsn = e.inRoot(dsn)
		}
	}
	s, err := store.Open(ctx, e.cfg.Store.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", e.cfg.Store.Driver, err)
	}
	return s, nil
}

// writeJSON writes v as indented JSON followed by a newline.
func writeJSON(w io.Writer, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func stdout(c *cli.Context) io.Writer {
	if c.App.Writer != nil {
		return c.App.Writer
	}
	return os.Stdout
}

func stderr(c *cli.Context) io.Writer {
	if c.App.ErrWriter != nil {
		return c.App.ErrWriter
	}
	return os.Stderr
}
