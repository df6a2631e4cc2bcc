package cmd

import (
	"fmt"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/jensroland/git-solentry/internal/exercise"
	"github.com/jensroland/git-solentry/internal/format"
	"github.com/jensroland/git-solentry/internal/record"
	"github.com/jensroland/git-solentry/internal/store"
)

// StatsCommand returns the stats command.
func StatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Summary statistics of the stored solution entries",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output results as JSON",
			},
		},
		Action: runStats,
	}
}

type testCaseCount struct {
	Name    string `json:"test_case"`
	Entries int    `json:"entries"`
}

// countByTestCase counts entries per active test case, most entries first.
// Test cases without entries are included with a zero count.
func countByTestCase(ex *exercise.Exercise, entries []record.SolutionEntry) []testCaseCount {
	counts := make(map[string]int)
	for _, e := range entries {
		counts[e.TestCaseName]++
	}
	var result []testCaseCount
	for _, tc := range ex.ActiveTestCases() {
		result = append(result, testCaseCount{Name: tc.Name, Entries: counts[tc.Name]})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Entries > result[j].Entries
	})
	return result
}

func runStats(c *cli.Context) error {
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

	stats, err := st.Stats(c.Context, ex.ID)
	if err != nil {
		return err
	}
	entries, err := st.List(c.Context, ex.ID, store.Filter{})
	if err != nil {
		return err
	}
	byTest := countByTestCase(ex, entries)

	var uncovered []string
	for _, tc := range byTest {
		if tc.Entries == 0 {
			uncovered = append(uncovered, tc.Name)
		}
	}

	out := stdout(c)
	if c.Bool("json") {
		return writeJSON(out, map[string]interface{}{
			"exercise_id":         ex.ID,
			"stats":               stats,
			"by_test_case":        byTest,
			"test_cases_no_entry": uncovered,
		})
	}

	fmt.Fprintf(out, "%ssolentry statistics for exercise %d%s\n\n", format.Bold, ex.ID, format.Reset)
	fmt.Fprintf(out, "  Entries:        %d\n", stats.Entries)
	fmt.Fprintf(out, "  Test cases:     %d\n", stats.TestCases)
	fmt.Fprintf(out, "  Files:          %d\n", stats.Files)
	fmt.Fprintf(out, "  Lines:          %d\n", stats.Lines)

	if len(byTest) > 0 {
		fmt.Fprintf(out, "\n  %sBy test case:%s\n", format.Bold, format.Reset)
		for _, tc := range byTest {
			fmt.Fprintf(out, "    %4d  %s\n", tc.Entries, tc.Name)
		}
	}
	if len(uncovered) > 0 {
		fmt.Fprintf(out, "\n  %s%d active test cases have no entries%s\n", format.Yellow, len(uncovered), format.Reset)
	}
	return nil
}
