// Package store persists solution entries in SQLite or PostgreSQL.
package store

import (
	"context"
	"fmt"

	"github.com/jensroland/git-solentry/internal/record"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Store is the persistence layer for solution entries.
type Store interface {
	// SaveAll inserts entries and returns them with their IDs set.
	SaveAll(ctx context.Context, entries []record.SolutionEntry) ([]record.SolutionEntry, error)
	// DeleteAll removes entries by ID.
	DeleteAll(ctx context.Context, entries []record.SolutionEntry) error
	// EntriesForTestCases returns the entries of the given test cases.
	EntriesForTestCases(ctx context.Context, exerciseID int64, testCaseIDs []int64) ([]record.SolutionEntry, error)
	// List returns an exercise's entries in canonical order, optionally
	// restricted to one test case (by name) and one file.
	List(ctx context.Context, exerciseID int64, filter Filter) ([]record.SolutionEntry, error)
	// Stats summarizes an exercise's entries.
	Stats(ctx context.Context, exerciseID int64) (Stats, error)
	Close() error
}

// Filter narrows List. Empty fields match everything.
type Filter struct {
	TestCase string
	File     string
}

// Stats summarizes the stored entries of one exercise.
type Stats struct {
	Entries   int `json:"entries"`
	TestCases int `json:"test_cases"`
	Files     int `json:"files"`
	Lines     int `json:"lines"`
}

// Open connects to the store selected by driver.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case DriverSQLite, "":
		return OpenSQLite(dsn)
	case DriverPostgres:
		return OpenPostgres(ctx, dsn)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

const columns = `id, exercise_id, test_case_id, test_case_name, file_path,
	previous_file_path, start_line, end_line, code, content_hash`

// rowScanner is satisfied by *sql.Rows and pgx.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(rows rowScanner) (record.SolutionEntry, error) {
	var e record.SolutionEntry
	err := rows.Scan(
		&e.ID, &e.ExerciseID, &e.TestCaseID, &e.TestCaseName, &e.FilePath,
		&e.PreviousFilePath, &e.StartLine, &e.EndLine, &e.Code, &e.ContentHash,
	)
	return e, err
}

func entryIDs(entries []record.SolutionEntry) []int64 {
	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		if e.ID != 0 {
			ids = append(ids, e.ID)
		}
	}
	return ids
}
