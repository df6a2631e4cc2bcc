package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/jensroland/git-solentry/internal/format"
	"github.com/jensroland/git-solentry/internal/record"
	"github.com/jensroland/git-solentry/internal/report"
	"github.com/jensroland/git-solentry/internal/store"
)

// ListCommand returns the list command.
func ListCommand() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "Show stored solution entries",
		ArgsUsage: "[FILE]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "test",
				Aliases: []string{"t"},
				Usage:   "Only entries of test case `NAME`",
			},
			&cli.BoolFlag{
				Name:  "check",
				Usage: "Compare each entry with the current solution code",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Show full code, hashes and diffs",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output results as JSON",
			},
		},
		Action: runList,
	}
}

func runList(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.Close()

	ex, err := e.loadExercise()
	if err != nil {
		return err
	}
	st, err := e.openStore(c.Context)
	if err != nil {
		return err
	}
	defer st.Close()

	filter := store.Filter{
		TestCase: c.String("test"),
		File:     report.NormalizePath(c.Args().First()),
	}
	entries, err := st.List(c.Context, ex.ID, filter)
	if err != nil {
		return err
	}

	var files map[string]string
	if c.Bool("check") {
		_, _, solution, err := e.sources()
		if err != nil {
			return err
		}
		if files, err = solution.Files(c.Context); err != nil {
			return fmt.Errorf("failed to read the solution: %w", err)
		}
	}

	return printEntries(c, entries, files)
}

// printEntries writes entries as text or JSON. files is nil unless the
// entries should be checked against the current code.
func printEntries(c *cli.Context, entries []record.SolutionEntry, files map[string]string) error {
	out := stdout(c)
	verbose := c.Bool("verbose")

	if c.Bool("json") {
		items := make([]map[string]interface{}, len(entries))
		for i, entry := range entries {
			items[i] = format.EntryToJSON(entry, format.CheckMatch(entry, files))
		}
		return writeJSON(out, items)
	}

	if len(entries) == 0 {
		fmt.Fprintln(out, "No solution entries found")
		return nil
	}

	changed := 0
	for _, entry := range entries {
		m := format.CheckMatch(entry, files)
		fmt.Fprintln(out, format.FormatEntry(entry, m, verbose))
		if m == format.MatchChanged {
			changed++
			if verbose {
				current, _ := format.CurrentCode(entry, files)
				fmt.Fprintln(out, format.FormatSideBySideDiff(entry.Code, current))
			}
		}
		if verbose {
			fmt.Fprintln(out)
		}
	}

	if files != nil {
		fmt.Fprintf(out, "\n%d of %d entries no longer match the solution\n", changed, len(entries))
	}
	return nil
}
