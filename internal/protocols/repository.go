package protocols

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
)

// SearchFilters narrows a free-text protocol search.
type SearchFilters struct {
	Priority string
	Program  string
}

// PostgresIndex is the semantic protocol index backed by pgx + pgvector.
type PostgresIndex struct {
	pool *pgxpool.Pool
}

// NewPostgresIndex creates a new protocol index.
func NewPostgresIndex(pool *pgxpool.Pool) *PostgresIndex {
	return &PostgresIndex{pool: pool}
}

// Upsert inserts or replaces a protocol by task_code.
func (idx *PostgresIndex) Upsert(ctx context.Context, rec Record, embedding []float32) error {
	vec := pgvector.NewVector(embedding)
	_, err := idx.pool.Exec(ctx,
		`INSERT INTO protocols (task_code, task_name, priority, program, content, full_text, roles, embedding)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (task_code) DO UPDATE SET
		   task_name = EXCLUDED.task_name,
		   priority = EXCLUDED.priority,
		   program = EXCLUDED.program,
		   content = EXCLUDED.content,
		   full_text = EXCLUDED.full_text,
		   roles = EXCLUDED.roles,
		   embedding = EXCLUDED.embedding,
		   updated_at = NOW()`,
		rec.TaskCode, rec.TaskName, rec.Priority, rec.Program, rec.Content, rec.FullText, rec.Roles, vec,
	)
	if err != nil {
		return fmt.Errorf("upserting protocol %s: %w", rec.TaskCode, err)
	}
	return nil
}

// TopByTaskCode returns the closest protocol whose task_code matches
// exactly, or nil when the index holds none for that code.
func (idx *PostgresIndex) TopByTaskCode(ctx context.Context, taskCode string, embedding []float32) (*Record, error) {
	vec := pgvector.NewVector(embedding)
	row := idx.pool.QueryRow(ctx,
		`SELECT task_code, task_name, priority, program, content, full_text, roles
		 FROM protocols
		 WHERE task_code = $1
		 ORDER BY embedding <=> $2
		 LIMIT 1`,
		taskCode, vec,
	)
	return scanRecord(row)
}

// TopUnfiltered returns the single closest protocol across the whole
// index, or nil when the index is empty.
func (idx *PostgresIndex) TopUnfiltered(ctx context.Context, embedding []float32) (*Record, error) {
	vec := pgvector.NewVector(embedding)
	row := idx.pool.QueryRow(ctx,
		`SELECT task_code, task_name, priority, program, content, full_text, roles
		 FROM protocols
		 ORDER BY embedding <=> $1
		 LIMIT 1`,
		vec,
	)
	return scanRecord(row)
}

// Search returns up to limit protocols by descending similarity,
// optionally filtered by priority and program.
func (idx *PostgresIndex) Search(ctx context.Context, embedding []float32, filters SearchFilters, limit int) ([]SearchResult, error) {
	vec := pgvector.NewVector(embedding)

	query := `SELECT task_code, task_name, priority, program, content, full_text, roles,
	                 1 - (embedding <=> $1) AS similarity
	          FROM protocols`
	args := []any{vec}

	where := ""
	if filters.Priority != "" {
		args = append(args, filters.Priority)
		where = fmt.Sprintf(" WHERE priority = $%d", len(args))
	}
	if filters.Program != "" {
		args = append(args, filters.Program)
		if where == "" {
			where = fmt.Sprintf(" WHERE program = $%d", len(args))
		} else {
			where += fmt.Sprintf(" AND program = $%d", len(args))
		}
	}

	args = append(args, limit)
	query += where + fmt.Sprintf(" ORDER BY embedding <=> $1 LIMIT $%d", len(args))

	rows, err := idx.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching protocols: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.TaskCode, &r.TaskName, &r.Priority, &r.Program, &r.Content, &r.FullText, &r.Roles, &r.Score); err != nil {
			return nil, fmt.Errorf("scanning protocol search result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Count returns the number of indexed protocols.
func (idx *PostgresIndex) Count(ctx context.Context) (int64, error) {
	var count int64
	err := idx.pool.QueryRow(ctx, `SELECT COUNT(*) FROM protocols`).Scan(&count)
	return count, err
}

func scanRecord(row pgx.Row) (*Record, error) {
	var r Record
	err := row.Scan(&r.TaskCode, &r.TaskName, &r.Priority, &r.Program, &r.Content, &r.FullText, &r.Roles)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning protocol: %w", err)
	}
	return &r, nil
}
