package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/jensroland/git-solentry/internal/diffreport"
	"github.com/jensroland/git-solentry/internal/generation"
	"github.com/jensroland/git-solentry/internal/git"
	"github.com/jensroland/git-solentry/internal/report"
	"github.com/jensroland/git-solentry/internal/repository"
)

// gitDiff diffs two refs of the exercise repository.
type gitDiff struct {
	root     string
	template string
	solution string
}

func (d gitDiff) DiffReport(ctx context.Context, exerciseID int64) (*report.DiffReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	from, err := git.RevParse(d.root, d.template)
	if err != nil {
		return nil, fmt.Errorf("%w: template ref %s: %v", generation.ErrNotFound, d.template, err)
	}
	to, err := git.RevParse(d.root, d.solution)
	if err != nil {
		return nil, fmt.Errorf("%w: solution ref %s: %v", generation.ErrNotFound, d.solution, err)
	}
	text, err := git.Diff(d.root, from, to)
	if err != nil {
		return nil, err
	}
	entries, err := diffreport.ParseUnified(text)
	if err != nil {
		return nil, err
	}
	return &report.DiffReport{
		ExerciseID:     exerciseID,
		TemplateCommit: from,
		SolutionCommit: to,
		Entries:        entries,
	}, nil
}

// fileDiff reads a diff report exported by another tool.
type fileDiff struct {
	path string
}

func (d fileDiff) DiffReport(_ context.Context, exerciseID int64) (*report.DiffReport, error) {
	r, err := report.LoadDiffReport(d.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", generation.ErrNotFound, d.path)
	}
	if err != nil {
		return nil, err
	}
	if r.ExerciseID == 0 {
		r.ExerciseID = exerciseID
	}
	return r, nil
}

// snapshotDiff compares the template and solution trees directly.
type snapshotDiff struct {
	template repository.Source
	solution repository.Source
}

func (d snapshotDiff) DiffReport(ctx context.Context, exerciseID int64) (*report.DiffReport, error) {
	tmpl, err := d.template.Files(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: template: %v", generation.ErrNotFound, err)
	}
	sol, err := d.solution.Files(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: solution: %v", generation.ErrNotFound, err)
	}
	return &report.DiffReport{ExerciseID: exerciseID, Entries: diffreport.Compare(tmpl, sol)}, nil
}

// fileCoverage reads the coverage report written by the solution build.
type fileCoverage struct {
	path       string
	format     string
	sourceRoot string
}

func (c fileCoverage) LatestCoverageReport(_ context.Context, exerciseID int64) (*report.CoverageReport, error) {
	r, err := report.LoadCoverageReport(c.path, c.format, c.sourceRoot)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", generation.ErrNotFound, c.path)
	}
	if err != nil {
		return nil, err
	}
	if r.ExerciseID == 0 {
		r.ExerciseID = exerciseID
	}
	return r, nil
}

// solutionRepo adapts a repository.Source to the generation service.
type solutionRepo struct {
	src repository.Source
}

func (r solutionRepo) SolutionFiles(ctx context.Context, _ int64) (map[string]string, error) {
	return r.src.Files(ctx)
}

// sources builds the diff, coverage and solution sources from the config.
func (e *env) sources() (generation.DiffSource, generation.CoverageSource, repository.Source, error) {
	rc := e.cfg.Repository
	solution, err := repository.New(rc.Source, e.root, rc.Solution)
	if err != nil {
		return nil, nil, nil, err
	}

	var diffs generation.DiffSource
	switch e.cfg.Diff.Source {
	case "git":
		diffs = gitDiff{root: e.root, template: rc.Template, solution: rc.Solution}
	case "file":
		diffs = fileDiff{path: e.inRoot(e.cfg.Diff.File)}
	case "snapshot":
		template, err := repository.New(rc.Source, e.root, rc.Template)
		if err != nil {
			return nil, nil, nil, err
		}
		diffs = snapshotDiff{template: template, solution: solution}
	default:
		return nil, nil, nil, fmt.Errorf("unknown diff source %q", e.cfg.Diff.Source)
	}

	coverage := fileCoverage{
		path:       e.inRoot(e.cfg.Coverage.File),
		format:     e.cfg.Coverage.Format,
		sourceRoot: e.cfg.Coverage.SourceRoot,
	}
	return diffs, coverage, solution, nil
}
