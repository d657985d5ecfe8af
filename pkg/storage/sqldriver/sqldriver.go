// Package sqldriver implements storage.Driver on database/sql. It is
// database-agnostic and is embedded by the sqlite and postgres drivers, which
// only open the connection and pick a Dialect.
package sqldriver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/papercomputeco/restream/pkg/reconstruct"
	"github.com/papercomputeco/restream/pkg/storage"
)

// Dialect captures the few places SQL differs between backends.
type Dialect struct {
	// Name is used in error messages.
	Name string

	// Placeholder returns the bind parameter for the n-th argument (1-based).
	Placeholder func(n int) string
}

var (
	// SQLite binds with "?".
	SQLite = Dialect{Name: "sqlite", Placeholder: func(int) string { return "?" }}

	// Postgres binds with "$n".
	Postgres = Dialect{Name: "postgres", Placeholder: func(n int) string { return fmt.Sprintf("$%d", n) }}
)

const schema = `CREATE TABLE IF NOT EXISTS transcripts (
	hash        TEXT PRIMARY KEY,
	source      TEXT NOT NULL,
	input       TEXT NOT NULL,
	result      TEXT NOT NULL,
	provider    TEXT NOT NULL,
	chunk_count INTEGER NOT NULL,
	error_count INTEGER NOT NULL,
	created_at  BIGINT NOT NULL
)`

const columns = "hash, source, input, result, provider, chunk_count, error_count, created_at"

// Driver provides storage operations over a *sql.DB.
type Driver struct {
	DB      *sql.DB
	Dialect Dialect
}

// New creates the schema if needed and returns a Driver over db.
func New(ctx context.Context, db *sql.DB, dialect Dialect) (*Driver, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to create %s schema: %w", dialect.Name, err)
	}

	if _, err := db.ExecContext(ctx, "CREATE INDEX IF NOT EXISTS transcripts_created_at ON transcripts (created_at)"); err != nil {
		return nil, fmt.Errorf("failed to create %s index: %w", dialect.Name, err)
	}

	return &Driver{DB: db, Dialect: dialect}, nil
}

// Put stores a transcript. Returns true if it was newly inserted,
// false if it already existed. This is a no-op due to content-addressing.
func (d *Driver) Put(ctx context.Context, t *storage.Transcript) (bool, error) {
	if t == nil {
		return false, errors.New("cannot store nil transcript")
	}

	result, err := json.Marshal(t.Result)
	if err != nil {
		return false, fmt.Errorf("failed to marshal result: %w", err)
	}

	query := fmt.Sprintf(
		"INSERT INTO transcripts (%s) VALUES (%s) ON CONFLICT (hash) DO NOTHING",
		columns, d.placeholders(8),
	)

	res, err := d.DB.ExecContext(ctx, query,
		t.Hash,
		t.Source,
		t.Input,
		string(result),
		t.Provider,
		t.ChunkCount,
		t.ErrorCount,
		t.CreatedAt.UnixMicro(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert transcript: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}

	return n > 0, nil
}

// Get retrieves a transcript by its hash.
func (d *Driver) Get(ctx context.Context, hash string) (*storage.Transcript, error) {
	query := fmt.Sprintf("SELECT %s FROM transcripts WHERE hash = %s", columns, d.Dialect.Placeholder(1))

	t, err := scanTranscript(d.DB.QueryRowContext(ctx, query, hash))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.NotFoundError{Hash: hash}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transcript: %w", err)
	}

	return t, nil
}

// Has checks if a transcript exists by its hash.
func (d *Driver) Has(ctx context.Context, hash string) (bool, error) {
	query := fmt.Sprintf("SELECT 1 FROM transcripts WHERE hash = %s", d.Dialect.Placeholder(1))

	var one int
	err := d.DB.QueryRowContext(ctx, query, hash).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}

	return true, nil
}

// List returns transcripts newest first.
func (d *Driver) List(ctx context.Context, opts storage.ListOptions) ([]*storage.Transcript, error) {
	var (
		sb   strings.Builder
		args []any
	)

	fmt.Fprintf(&sb, "SELECT %s FROM transcripts", columns)
	if opts.Provider != "" {
		args = append(args, opts.Provider)
		fmt.Fprintf(&sb, " WHERE provider = %s", d.Dialect.Placeholder(len(args)))
	}
	sb.WriteString(" ORDER BY created_at DESC, hash ASC")
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		fmt.Fprintf(&sb, " LIMIT %s", d.Dialect.Placeholder(len(args)))
	}

	rows, err := d.DB.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transcripts: %w", err)
	}
	defer rows.Close()

	var transcripts []*storage.Transcript
	for rows.Next() {
		t, err := scanTranscript(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transcript: %w", err)
		}
		transcripts = append(transcripts, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list transcripts: %w", err)
	}

	return transcripts, nil
}

// Close closes the database connection.
func (d *Driver) Close() error {
	return d.DB.Close()
}

func (d *Driver) placeholders(n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = d.Dialect.Placeholder(i + 1)
	}
	return strings.Join(ps, ", ")
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTranscript(s scanner) (*storage.Transcript, error) {
	var (
		t         storage.Transcript
		result    string
		createdAt int64
	)

	err := s.Scan(
		&t.Hash,
		&t.Source,
		&t.Input,
		&result,
		&t.Provider,
		&t.ChunkCount,
		&t.ErrorCount,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	t.Result = &reconstruct.Result{}
	if err := json.Unmarshal([]byte(result), t.Result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}
	t.CreatedAt = time.UnixMicro(createdAt).UTC()

	return &t, nil
}
