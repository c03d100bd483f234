package store

import (
	"context"
	"errors"
	"strings"

	"github.com/gatelink/gatelink/internal/redirect"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgUniqueViolation = "23505"

// PostgresStore is a PostgreSQL implementation of redirect.Repository.
//
// Key and slug uniqueness is enforced by the table's unique constraints, not
// by application-level locking; concurrent issuance never races destructively.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed redirect store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (p *PostgresStore) Add(ctx context.Context, record *redirect.Record) error {
	query := `
		INSERT INTO redirects (key, slug, destination, token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
	`

	_, err := p.pool.Exec(ctx, query,
		record.Key,
		nullableString(record.Slug),
		record.Destination,
		record.Token,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			if strings.Contains(pgErr.ConstraintName, "slug") {
				return redirect.ErrDuplicateSlug
			}

			return redirect.ErrDuplicateKey
		}

		return err
	}

	return nil
}

func (p *PostgresStore) GetByKey(ctx context.Context, key string) (*redirect.Record, error) {
	query := `
		SELECT key, slug, destination, token, created_at, updated_at
		FROM redirects
		WHERE key = $1
	`

	return p.queryOne(ctx, query, key)
}

func (p *PostgresStore) GetBySlug(ctx context.Context, slug string) (*redirect.Record, error) {
	query := `
		SELECT key, slug, destination, token, created_at, updated_at
		FROM redirects
		WHERE slug = $1
	`

	return p.queryOne(ctx, query, slug)
}

func (p *PostgresStore) GetAll(ctx context.Context) ([]*redirect.Record, error) {
	query := `
		SELECT key, slug, destination, token, created_at, updated_at
		FROM redirects
		ORDER BY created_at
	`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*redirect.Record

	for rows.Next() {
		record, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	return records, rows.Err()
}

func (p *PostgresStore) UpdateDestination(ctx context.Context, key, destination string) error {
	query := `
		UPDATE redirects
		SET destination = $2, updated_at = now()
		WHERE key = $1
	`

	tag, err := p.pool.Exec(ctx, query, key, destination)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return redirect.ErrNotFound
	}

	return nil
}

func (p *PostgresStore) Delete(ctx context.Context, key string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM redirects WHERE key = $1`, key)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return redirect.ErrNotFound
	}

	return nil
}

func (p *PostgresStore) queryOne(ctx context.Context, query string, arg any) (*redirect.Record, error) {
	row := p.pool.QueryRow(ctx, query, arg)

	record, err := scanRecord(row.Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, redirect.ErrNotFound
		}

		return nil, err
	}

	return record, nil
}

func scanRecord(scan func(dest ...any) error) (*redirect.Record, error) {
	var record redirect.Record

	var slug *string

	err := scan(
		&record.Key,
		&slug,
		&record.Destination,
		&record.Token,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if slug != nil {
		record.Slug = *slug
	}

	return &record, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

// Compile-time check.
var _ redirect.Repository = (*PostgresStore)(nil)
