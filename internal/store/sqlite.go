package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/jensroland/git-solentry/internal/record"
)

// SQLite stores entries in a local SQLite database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (and creates if needed) the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." {
		_ = os.MkdirAll(dir, 0o755)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// A single connection serializes writers and keeps :memory: databases
	// shared across calls.
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS solution_entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			exercise_id INTEGER NOT NULL,
			test_case_id INTEGER NOT NULL,
			test_case_name TEXT NOT NULL,
			file_path TEXT NOT NULL,
			previous_file_path TEXT NOT NULL DEFAULT '',
			start_line INTEGER NOT NULL,
			end_line INTEGER NOT NULL,
			code TEXT NOT NULL,
			content_hash TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		)
	`)
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	for _, idx := range []string{
		"CREATE INDEX IF NOT EXISTS idx_entries_test_case ON solution_entries(exercise_id, test_case_id)",
		"CREATE INDEX IF NOT EXISTS idx_entries_file ON solution_entries(exercise_id, file_path)",
	} {
		if _, err := s.db.Exec(idx); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

func (s *SQLite) SaveAll(ctx context.Context, entries []record.SolutionEntry) ([]record.SolutionEntry, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO solution_entries
		(exercise_id, test_case_id, test_case_name, file_path, previous_file_path,
		 start_line, end_line, code, content_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	defer stmt.Close()

	saved := make([]record.SolutionEntry, len(entries))
	for i, e := range entries {
		res, err := stmt.ExecContext(ctx,
			e.ExerciseID, e.TestCaseID, e.TestCaseName, e.FilePath, e.PreviousFilePath,
			e.StartLine, e.EndLine, e.Code, e.ContentHash,
		)
		if err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("insert entry %s:%d-%d: %w", e.FilePath, e.StartLine, e.EndLine, err)
		}
		e.ID, err = res.LastInsertId()
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		saved[i] = e
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *SQLite) DeleteAll(ctx context.Context, entries []record.SolutionEntry) error {
	ids := entryIDs(entries)
	if len(ids) == 0 {
		return nil
	}
	query := "DELETE FROM solution_entries WHERE id IN (" + placeholders(len(ids)) + ")"
	if _, err := s.db.ExecContext(ctx, query, int64Args(ids)...); err != nil {
		return fmt.Errorf("delete entries: %w", err)
	}
	return nil
}

func (s *SQLite) EntriesForTestCases(ctx context.Context, exerciseID int64, testCaseIDs []int64) ([]record.SolutionEntry, error) {
	if len(testCaseIDs) == 0 {
		return nil, nil
	}
	query := "SELECT " + columns + " FROM solution_entries WHERE exercise_id = ? AND test_case_id IN (" +
		placeholders(len(testCaseIDs)) + ") ORDER BY id"
	args := append([]interface{}{exerciseID}, int64Args(testCaseIDs)...)
	return s.query(ctx, query, args...)
}

func (s *SQLite) List(ctx context.Context, exerciseID int64, filter Filter) ([]record.SolutionEntry, error) {
	var conds []string
	args := []interface{}{exerciseID}
	conds = append(conds, "exercise_id = ?")
	if filter.TestCase != "" {
		conds = append(conds, "test_case_name = ?")
		args = append(args, filter.TestCase)
	}
	if filter.File != "" {
		conds = append(conds, "file_path = ?")
		args = append(args, filter.File)
	}
	query := "SELECT " + columns + " FROM solution_entries WHERE " + strings.Join(conds, " AND ") +
		" ORDER BY file_path, start_line, test_case_name, end_line"
	return s.query(ctx, query, args...)
}

func (s *SQLite) Stats(ctx context.Context, exerciseID int64) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT test_case_id), COUNT(DISTINCT file_path),
		       COALESCE(SUM(end_line - start_line + 1), 0)
		FROM solution_entries WHERE exercise_id = ?
	`, exerciseID).Scan(&st.Entries, &st.TestCases, &st.Files, &st.Lines)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	return st, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) query(ctx context.Context, query string, args ...interface{}) ([]record.SolutionEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []record.SolutionEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func int64Args(ids []int64) []interface{} {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

var _ Store = (*SQLite)(nil)
