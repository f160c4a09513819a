package retrieval

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Postgres ranks the documents of the pages table with full-text search
type Postgres struct {
	DB *sql.DB
}

func NewPostgres(databaseURL string) (*Postgres, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Postgres{DB: db}, nil
}

func (p *Postgres) CreateTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS pages (
			id TEXT PRIMARY KEY,
			text TEXT NOT NULL,
			tsv TSVECTOR GENERATED ALWAYS AS (to_tsvector('english', text)) STORED
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pages_tsv ON pages USING GIN (tsv)`,
	}
	for _, query := range queries {
		if _, err := p.DB.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query %s: %w", query, err)
		}
	}
	return nil
}

// Store or replace the text of a page
func (p *Postgres) IndexPage(ctx context.Context, id, text string) error {
	_, err := p.DB.ExecContext(ctx, `
		INSERT INTO pages (id, text) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET text = EXCLUDED.text`,
		id, text)
	return err
}

func (p *Postgres) Search(ctx context.Context, query string, size int) ([]Hit, error) {
	// LIMIT NULL is no limit
	var limit any
	if size > 0 {
		limit = size
	}
	rows, err := p.DB.QueryContext(ctx, `
		SELECT id, ts_rank(tsv, q) AS score
		FROM pages, plainto_tsquery('english', $1) q
		WHERE tsv @@ q
		ORDER BY score DESC, id
		LIMIT $2`,
		query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var hit Hit
		if err := rows.Scan(&hit.ID, &hit.Score); err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}

func (p *Postgres) Close() error {
	return p.DB.Close()
}
