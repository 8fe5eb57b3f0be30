// Package store persists analysis results in PostgreSQL through the pgx
// database/sql driver.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver

	"github.com/hyperifyio/papercheck/internal/analyze"
)

var schema = []string{`
create table if not exists analysis_results (
	id          bigserial primary key,
	path        text        not null,
	analyzed_at timestamptz not null,
	paragraphs  integer     not null,
	findings    integer     not null,
	result_json jsonb       not null,
	created_at  timestamptz not null default now()
)`,
	`create index if not exists analysis_results_path_idx on analysis_results (path, analyzed_at desc)`,
}

// Postgres stores results in the analysis_results table.
type Postgres struct{ DB *sql.DB }

// Open connects to dsn and verifies the connection.
func Open(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Postgres{DB: db}, nil
}

// Close releases the connection pool.
func (p *Postgres) Close() error { return p.DB.Close() }

// EnsureSchema creates the table and index when missing.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := p.DB.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Save inserts res and returns its row id.
func (p *Postgres) Save(ctx context.Context, res analyze.Result) (int64, error) {
	js, err := json.Marshal(res)
	if err != nil {
		return 0, err
	}
	const q = `
insert into analysis_results (path, analyzed_at, paragraphs, findings, result_json)
values ($1, $2, $3, $4, $5)
returning id`
	var id int64
	err = p.DB.QueryRowContext(ctx, q, res.Path, res.AnalyzedAt, res.Summary.TotalParagraphs, res.Findings(), js).Scan(&id)
	return id, err
}

// Latest returns the most recent result stored for path, or sql.ErrNoRows.
func (p *Postgres) Latest(ctx context.Context, path string) (analyze.Result, error) {
	const q = `select result_json from analysis_results
	           where path = $1
	           order by analyzed_at desc, id desc
	           limit 1`
	var js []byte
	if err := p.DB.QueryRowContext(ctx, q, path).Scan(&js); err != nil {
		return analyze.Result{}, err
	}
	var res analyze.Result
	if err := json.Unmarshal(js, &res); err != nil {
		return analyze.Result{}, fmt.Errorf("decode stored result: %w", err)
	}
	return res, nil
}
