package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/qustavo/dotsql"
)

//go:embed queries/*.sql
var queriesFS embed.FS

// Queries provides access to named SQL queries loaded from embedded .sql files.
// Uses dotsql for named query management and sqlx for database operations.
type Queries struct {
	dot *dotsql.DotSql
	db  *sqlx.DB
}

// LoadQueries loads all .sql files from the embedded filesystem and returns a
// Queries instance. Named queries are accessible by name (e.g.
// "list-transactions", "insert-rule").
func LoadQueries(db *sqlx.DB) (*Queries, error) {
	var combinedSQL string

	err := fs.WalkDir(queriesFS, "queries", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".sql" {
			return nil
		}

		content, err := queriesFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		combinedSQL += string(content) + "\n"
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to load query files: %w", err)
	}

	dot, err := dotsql.LoadFromString(combinedSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse queries: %w", err)
	}

	return &Queries{dot: dot, db: db}, nil
}

// Raw returns the SQL text of a named query, unbound. Used by callers that
// need sqlx.In expansion or run inside an explicit transaction.
func (q *Queries) Raw(name string) (string, error) {
	query, err := q.dot.Raw(name)
	if err != nil {
		return "", fmt.Errorf("query not found: %s", name)
	}
	return query, nil
}

// Begin starts a database transaction.
func (q *Queries) Begin(ctx context.Context) (*sqlx.Tx, error) {
	return q.db.BeginTxx(ctx, nil)
}

// Exec executes a named query with placeholder conversion for database compatibility.
func (q *Queries) Exec(ctx context.Context, name string, args ...interface{}) (sql.Result, error) {
	query, err := q.Raw(name)
	if err != nil {
		return nil, err
	}
	return q.db.ExecContext(ctx, q.db.Rebind(query), args...)
}

// Get retrieves a single row into dest struct using a named query.
func (q *Queries) Get(ctx context.Context, name string, dest interface{}, args ...interface{}) error {
	query, err := q.Raw(name)
	if err != nil {
		return err
	}
	return q.db.GetContext(ctx, dest, q.db.Rebind(query), args...)
}

// Select retrieves multiple rows into dest slice using a named query.
func (q *Queries) Select(ctx context.Context, name string, dest interface{}, args ...interface{}) error {
	query, err := q.Raw(name)
	if err != nil {
		return err
	}
	return q.db.SelectContext(ctx, dest, q.db.Rebind(query), args...)
}

// SelectIn expands a named query containing an IN (?) clause with sqlx.In
// before binding. args may mix scalars and slices.
func (q *Queries) SelectIn(ctx context.Context, name string, dest interface{}, args ...interface{}) error {
	query, err := q.Raw(name)
	if err != nil {
		return err
	}
	expanded, expandedArgs, err := sqlx.In(query, args...)
	if err != nil {
		return fmt.Errorf("failed to expand %s: %w", name, err)
	}
	return q.db.SelectContext(ctx, dest, q.db.Rebind(expanded), expandedArgs...)
}

// ExecIn expands a named query containing an IN (?) clause with sqlx.In
// before binding and executing.
func (q *Queries) ExecIn(ctx context.Context, name string, args ...interface{}) (sql.Result, error) {
	query, err := q.Raw(name)
	if err != nil {
		return nil, err
	}
	expanded, expandedArgs, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to expand %s: %w", name, err)
	}
	return q.db.ExecContext(ctx, q.db.Rebind(expanded), expandedArgs...)
}

// ExecTx executes a named query inside an existing transaction.
func (q *Queries) ExecTx(ctx context.Context, tx *sqlx.Tx, name string, args ...interface{}) (sql.Result, error) {
	query, err := q.Raw(name)
	if err != nil {
		return nil, err
	}
	return tx.ExecContext(ctx, tx.Rebind(query), args...)
}

// GetTx retrieves a single row inside an existing transaction.
func (q *Queries) GetTx(ctx context.Context, tx *sqlx.Tx, name string, dest interface{}, args ...interface{}) error {
	query, err := q.Raw(name)
	if err != nil {
		return err
	}
	return tx.GetContext(ctx, dest, tx.Rebind(query), args...)
}
