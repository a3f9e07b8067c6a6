package source

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/vyvo/netblank/pkg/netconfig"
)

// Postgres loads endpoints from the network_endpoints table.
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens a pgx-backed connection pool.
func NewPostgres(connString string) (*Postgres, error) {
	if strings.TrimSpace(connString) == "" {
		return nil, fmt.Errorf("postgres connection string is required")
	}
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}
	db.SetMaxIdleConns(2)
	db.SetMaxOpenConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Postgres{db: db}, nil
}

// NewPostgresWithDB wraps an existing handle.
func NewPostgresWithDB(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// EnsureSchema creates the endpoints table when missing.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS network_endpoints (
    id BIGSERIAL PRIMARY KEY,
    code TEXT NOT NULL UNIQUE,
    scheme TEXT,
    host TEXT,
    port INTEGER,
    path TEXT,
    query TEXT,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Configure applies every stored row in insertion order.
func (p *Postgres) Configure(ctx context.Context, cfg netconfig.Config) error {
	entries, err := p.List(ctx)
	if err != nil {
		return err
	}
	return apply(cfg, entries)
}

// List returns the stored endpoints ordered by insertion.
func (p *Postgres) List(ctx context.Context) ([]netconfig.Entry, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT code, scheme, host, port, path, query FROM network_endpoints ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query endpoints: %w", err)
	}
	defer rows.Close()

	var entries []netconfig.Entry
	for rows.Next() {
		var (
			code                      string
			scheme, host, path, query sql.NullString
			port                      sql.NullInt64
		)
		if err := rows.Scan(&code, &scheme, &host, &port, &path, &query); err != nil {
			return nil, fmt.Errorf("scan endpoint: %w", err)
		}
		entries = append(entries, netconfig.Entry{
			Code: code,
			Endpoint: netconfig.Endpoint{
				Scheme:   scheme.String,
				Host:     host.String,
				Port:     int(port.Int64),
				Path:     path.String,
				RawQuery: query.String,
			},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate endpoints: %w", err)
	}
	return entries, nil
}

// Upsert stores ep under code, replacing any existing row.
func (p *Postgres) Upsert(ctx context.Context, code string, ep netconfig.Endpoint) error {
	if strings.TrimSpace(code) == "" {
		return fmt.Errorf("endpoint code is required")
	}
	query := `INSERT INTO network_endpoints (code, scheme, host, port, path, query, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,NOW())
ON CONFLICT (code) DO UPDATE SET
    scheme = EXCLUDED.scheme,
    host = EXCLUDED.host,
    port = EXCLUDED.port,
    path = EXCLUDED.path,
    query = EXCLUDED.query,
    updated_at = EXCLUDED.updated_at`
	_, err := p.db.ExecContext(ctx, query,
		code,
		nullString(ep.Scheme),
		nullString(ep.Host),
		nullInt(ep.Port),
		nullString(ep.Path),
		nullString(ep.RawQuery),
	)
	if err != nil {
		return fmt.Errorf("upsert endpoint %q: %w", code, err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n != 0}
}
