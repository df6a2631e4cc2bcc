package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/jensroland/git-solentry/internal/debug"
	"github.com/jensroland/git-solentry/internal/format"
	"github.com/jensroland/git-solentry/internal/project"
)

// LogCommand returns the log command.
func LogCommand() *cli.Command {
	return &cli.Command{
		Name:  "log",
		Usage: "Show the run log",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "lines",
				Aliases: []string{"n"},
				Usage:   "Show the last `N` lines",
				Value:   100,
			},
		},
		Action: runLog,
	}
}

func runLog(c *cli.Context) error {
	root, err := project.FindRoot()
	if err != nil {
		return fmt.Errorf("not inside an exercise repository: %w", err)
	}
	return printLog(c, project.NewPaths(root), c.Int("lines"))
}

func printLog(c *cli.Context, paths project.Paths, n int) error {
	out := stdout(c)
	logFile := filepath.Join(paths.LogDir, debug.LogName)

	lines, err := debug.Tail(paths.LogDir, debug.LogName, n)
	if errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(out, "No log file at %s\n", logFile)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s--- %s (last %d lines) ---%s\n\n", format.Dim, logFile, len(lines), format.Reset)
	fmt.Fprintln(out, strings.Join(lines, "\n"))
	return nil
}
