package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jensroland/git-solentry/internal/record"
)

// Postgres stores entries in a PostgreSQL database shared by several
// machines (e.g. CI runners).
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to databaseURL and creates the schema if needed.
func OpenPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	p := &Postgres{pool: pool}
	if err := p.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) initSchema(ctx context.Context) error {
	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS solution_entries (
			id BIGSERIAL PRIMARY KEY,
			exercise_id BIGINT NOT NULL,
			test_case_id BIGINT NOT NULL,
			test_case_name TEXT NOT NULL,
			file_path TEXT NOT NULL,
			previous_file_path TEXT NOT NULL DEFAULT '',
			start_line INTEGER NOT NULL,
			end_line INTEGER NOT NULL,
			code TEXT NOT NULL,
			content_hash TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		"CREATE INDEX IF NOT EXISTS idx_entries_test_case ON solution_entries(exercise_id, test_case_id)",
		"CREATE INDEX IF NOT EXISTS idx_entries_file ON solution_entries(exercise_id, file_path)",
	} {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

func (p *Postgres) SaveAll(ctx context.Context, entries []record.SolutionEntry) ([]record.SolutionEntry, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	saved := make([]record.SolutionEntry, len(entries))
	for i, e := range entries {
		err := tx.QueryRow(ctx, `
			INSERT INTO solution_entries
			(exercise_id, test_case_id, test_case_name, file_path, previous_file_path,
			 start_line, end_line, code, content_hash)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id`,
			e.ExerciseID, e.TestCaseID, e.TestCaseName, e.FilePath, e.PreviousFilePath,
			e.StartLine, e.EndLine, e.Code, e.ContentHash,
		).Scan(&e.ID)
		if err != nil {
			return nil, fmt.Errorf("insert entry %s:%d-%d: %w", e.FilePath, e.StartLine, e.EndLine, err)
		}
		saved[i] = e
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return saved, nil
}

func (p *Postgres) DeleteAll(ctx context.Context, entries []record.SolutionEntry) error {
	ids := entryIDs(entries)
	if len(ids) == 0 {
		return nil
	}
	if _, err := p.pool.Exec(ctx, "DELETE FROM solution_entries WHERE id = ANY($1)", ids); err != nil {
		return fmt.Errorf("delete entries: %w", err)
	}
	return nil
}

func (p *Postgres) EntriesForTestCases(ctx context.Context, exerciseID int64, testCaseIDs []int64) ([]record.SolutionEntry, error) {
	if len(testCaseIDs) == 0 {
		return nil, nil
	}
	return p.query(ctx,
		"SELECT "+columns+" FROM solution_entries WHERE exercise_id = $1 AND test_case_id = ANY($2) ORDER BY id",
		exerciseID, testCaseIDs)
}

func (p *Postgres) List(ctx context.Context, exerciseID int64, filter Filter) ([]record.SolutionEntry, error) {
	conds := []string{"exercise_id = $1"}
	args := []interface{}{exerciseID}
	if filter.TestCase != "" {
		args = append(args, filter.TestCase)
		conds = append(conds, fmt.Sprintf("test_case_name = $%d", len(args)))
	}
	if filter.File != "" {
		args = append(args, filter.File)
		conds = append(conds, fmt.Sprintf("file_path = $%d", len(args)))
	}
	query := "SELECT " + columns + " FROM solution_entries WHERE " + strings.Join(conds, " AND ") +
		" ORDER BY file_path, start_line, test_case_name, end_line"
	return p.query(ctx, query, args...)
}

func (p *Postgres) Stats(ctx context.Context, exerciseID int64) (Stats, error) {
	var st Stats
	err := p.pool.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT test_case_id), COUNT(DISTINCT file_path),
		       COALESCE(SUM(end_line - start_line + 1), 0)
		FROM solution_entries WHERE exercise_id = $1`,
		exerciseID,
	).Scan(&st.Entries, &st.TestCases, &st.Files, &st.Lines)
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	return st, nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func (p *Postgres) query(ctx context.Context, query string, args ...interface{}) ([]record.SolutionEntry, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (record.SolutionEntry, error) {
		return scanEntry(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan entry: %w", err)
	}
	return entries, nil
}

var _ Store = (*Postgres)(nil)
