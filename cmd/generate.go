package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/jensroland/git-solentry/internal/format"
	"github.com/jensroland/git-solentry/internal/generation"
)

// GenerateCommand returns the generate command.
func GenerateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Generate solution entries from the diff and coverage reports",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output the generated entries as JSON",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Abort the run after `DURATION`",
				Value: 5 * time.Minute,
			},
		},
		Action: runGenerate,
	}
}

func runGenerate(c *cli.Context) error {
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.Close()

	ex, err := e.loadExercise()
	if err != nil {
		return err
	}
	diffs, coverage, solution, err := e.sources()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, c.Duration("timeout"))
	defer cancel()

	st, err := e.openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	runner := generation.NewRunner(generation.NewService(generation.Config{
		Diffs:             diffs,
		Coverage:          coverage,
		Repository:        solutionRepo{src: solution},
		Store:             st,
		CandidateDistance: e.cfg.Engine.CandidateDistance,
		Logger:            e.log,
	}))

	saved, err := runner.Generate(ctx, ex)
	if err != nil {
		if kind := generation.KindOf(err); kind != "" {
			fmt.Fprintln(stderr(c), format.FormatBorderedText(err.Error(), "Generation failed: "+string(kind)))
			return cli.Exit("", 1)
		}
		return err
	}

	out := stdout(c)
	if c.Bool("json") {
		items := make([]map[string]interface{}, len(saved))
		for i, entry := range saved {
			items[i] = format.EntryToJSON(entry, format.MatchExact)
		}
		return writeJSON(out, items)
	}

	fmt.Fprintf(out, "%sGenerated %d solution entries for exercise %d%s", format.Bold, len(saved), ex.ID, format.Reset)
	if ex.Title != "" {
		fmt.Fprintf(out, " %s(%s)%s", format.Dim, ex.Title, format.Reset)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out)
	for _, entry := range saved {
		fmt.Fprintln(out, format.FormatEntry(entry, format.MatchExact, false))
	}
	return nil
}
