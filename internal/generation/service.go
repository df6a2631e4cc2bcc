// Package generation runs the solution entry generation for one exercise:
// it checks preconditions, runs the rule engine and replaces the
// previously stored entries with the new ones.
package generation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jensroland/git-solentry/internal/blackboard"
	"github.com/jensroland/git-solentry/internal/exercise"
	"github.com/jensroland/git-solentry/internal/record"
	"github.com/jensroland/git-solentry/internal/report"
)

// DiffSource provides the template→solution diff report of an exercise.
type DiffSource interface {
	DiffReport(ctx context.Context, exerciseID int64) (*report.DiffReport, error)
}

// CoverageSource provides the testwise coverage of the latest solution
// build of an exercise.
type CoverageSource interface {
	LatestCoverageReport(ctx context.Context, exerciseID int64) (*report.CoverageReport, error)
}

// RepositorySource provides the solution's files as path→content.
type RepositorySource interface {
	SolutionFiles(ctx context.Context, exerciseID int64) (map[string]string, error)
}

// EntryStore persists solution entries.
type EntryStore interface {
	SaveAll(ctx context.Context, entries []record.SolutionEntry) ([]record.SolutionEntry, error)
	DeleteAll(ctx context.Context, entries []record.SolutionEntry) error
	EntriesForTestCases(ctx context.Context, exerciseID int64, testCaseIDs []int64) ([]record.SolutionEntry, error)
}

// State is a step of a generation run.
type State string

const (
	Validating  State = "VALIDATING"
	Running     State = "RUNNING"
	Reconciling State = "RECONCILING"
	Done        State = "DONE"
)

// Config wires a Service to its collaborators.
type Config struct {
	Diffs             DiffSource
	Coverage          CoverageSource
	Repository        RepositorySource
	Store             EntryStore
	CandidateDistance int
	Logger            zerolog.Logger
}

// Service generates solution entries. It keeps no state between runs;
// runs for the same exercise must not overlap (see Runner).
type Service struct {
	diffs             DiffSource
	coverage          CoverageSource
	repo              RepositorySource
	store             EntryStore
	candidateDistance int
	log               zerolog.Logger
}

// NewService creates a service from cfg.
func NewService(cfg Config) *Service {
	return &Service{
		diffs:             cfg.Diffs,
		coverage:          cfg.Coverage,
		repo:              cfg.Repository,
		store:             cfg.Store,
		candidateDistance: cfg.CandidateDistance,
		log:               cfg.Logger,
	}
}

// inputs is what VALIDATING hands to RUNNING.
type inputs struct {
	testCases []exercise.TestCase
	diff      *report.DiffReport
	coverage  *report.CoverageReport
}

// Generate runs VALIDATING → RUNNING → RECONCILING → DONE for ex and
// returns the newly persisted entries. Every failure is an *Error.
func (s *Service) Generate(ctx context.Context, ex *exercise.Exercise) ([]record.SolutionEntry, error) {
	log := s.log.With().
		Str("run_id", uuid.NewString()).
		Int64("exercise_id", ex.ID).
		Logger()

	log.Info().Str("state", string(Validating)).Msg("generation started")
	in, err := s.validate(ctx, ex)
	if err != nil {
		return nil, s.fail(log, Validating, err)
	}

	log.Info().Str("state", string(Running)).
		Int("test_cases", len(in.testCases)).
		Int("diff_entries", len(in.diff.Entries)).
		Int("coverage_entries", len(in.coverage.Entries)).
		Msg("running rule engine")
	entries, err := s.run(ctx, ex, in, log)
	if err != nil {
		return nil, s.fail(log, Running, err)
	}

	log.Info().Str("state", string(Reconciling)).Int("entries", len(entries)).Msg("reconciling")
	saved, err := s.reconcile(ctx, ex, in.testCases, entries)
	if err != nil {
		return nil, s.fail(log, Reconciling, err)
	}

	log.Info().Str("state", string(Done)).Int("entries", len(saved)).Msg("generation finished")
	return saved, nil
}

func (s *Service) fail(log zerolog.Logger, state State, err error) error {
	log.Error().Err(err).Str("state", string(state)).Str("kind", string(KindOf(err))).Msg("generation failed")
	return err
}

// validate checks the preconditions in order; the first failure wins.
func (s *Service) validate(ctx context.Context, ex *exercise.Exercise) (*inputs, error) {
	if !ex.TestwiseCoverage {
		return nil, newError(FeatureDisabled, nil,
			"testwise coverage is not enabled for exercise %d", ex.ID)
	}

	testCases := ex.ActiveTestCases()
	if len(testCases) == 0 {
		return nil, newError(NoTestCases, nil,
			"no active test cases found for exercise %d; run the solution build first", ex.ID)
	}

	diff, err := s.diffs.DiffReport(ctx, ex.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, newError(MissingDiffReport, err, "could not load the diff report of exercise %d", ex.ID)
	}
	if diff == nil || errors.Is(err, ErrNotFound) {
		return nil, newError(MissingDiffReport, nil,
			"no diff report exists for exercise %d; generate it first", ex.ID)
	}

	coverage, err := s.coverage.LatestCoverageReport(ctx, ex.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, newError(MissingCoverageReport, err, "could not load the coverage report of exercise %d", ex.ID)
	}
	if coverage == nil || errors.Is(err, ErrNotFound) {
		return nil, newError(MissingCoverageReport, nil,
			"no coverage report exists for the latest solution build of exercise %d", ex.ID)
	}

	return &inputs{testCases: testCases, diff: diff, coverage: coverage}, nil
}

func (s *Service) run(ctx context.Context, ex *exercise.Exercise, in *inputs, log zerolog.Logger) ([]record.SolutionEntry, error) {
	files, err := s.repo.SolutionFiles(ctx, ex.ID)
	if err != nil {
		return nil, newError(Repository, err, "could not read the solution repository of exercise %d", ex.ID)
	}

	ids := make(map[string]int64, len(in.testCases))
	for _, tc := range in.testCases {
		ids[tc.Name] = tc.ID
	}

	bb := blackboard.New(in.diff, filterCoverage(in.coverage, ids), files,
		blackboard.WithCandidateDistance(s.candidateDistance))
	entries, err := blackboard.NewController(blackboard.WithLogger(log)).Run(bb)
	if errors.Is(err, blackboard.ErrStuck) {
		return nil, newError(Stuck, err, "solution entry rules did not converge for exercise %d", ex.ID)
	}
	if err != nil {
		return nil, newError(Stuck, err, "rule engine failed for exercise %d", ex.ID)
	}
	log.Debug().Int("passes", bb.Passes).Int("groups", len(bb.GroupedFiles)).Msg("rule engine finished")

	if len(entries) == 0 {
		return nil, newError(EmptyResult, nil,
			"no solution entries could be created for exercise %d; the diff or coverage report may be stale", ex.ID)
	}
	for i := range entries {
		entries[i].ExerciseID = ex.ID
		entries[i].TestCaseID = ids[entries[i].TestCaseName]
	}
	return entries, nil
}

// filterCoverage keeps only coverage of the given test cases. The input
// report is left untouched.
func filterCoverage(cov *report.CoverageReport, ids map[string]int64) *report.CoverageReport {
	filtered := &report.CoverageReport{ExerciseID: cov.ExerciseID, SolutionCommit: cov.SolutionCommit}
	for _, e := range cov.Entries {
		if _, ok := ids[e.TestCaseName]; ok {
			filtered.Entries = append(filtered.Entries, e)
		}
	}
	return filtered
}

// reconcile replaces the stored entries of all active test cases with the
// new ones. Test cases that no longer produce entries lose their old ones.
func (s *Service) reconcile(ctx context.Context, ex *exercise.Exercise, testCases []exercise.TestCase, entries []record.SolutionEntry) ([]record.SolutionEntry, error) {
	ids := make([]int64, 0, len(testCases))
	for _, tc := range testCases {
		ids = append(ids, tc.ID)
	}

	old, err := s.store.EntriesForTestCases(ctx, ex.ID, ids)
	if err != nil {
		return nil, newError(Store, err, "could not load existing solution entries of exercise %d", ex.ID)
	}
	saved, err := s.store.SaveAll(ctx, entries)
	if err != nil {
		return nil, newError(Store, err, "could not save solution entries of exercise %d", ex.ID)
	}
	if len(old) > 0 {
		if err := s.store.DeleteAll(ctx, old); err != nil {
			return nil, newError(Store, err, "could not delete outdated solution entries of exercise %d", ex.ID)
		}
	}
	return saved, nil
}
