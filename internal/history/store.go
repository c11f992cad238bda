// Package history records finished interactions so past analyses can be
// listed again. It is optional: the core flow never depends on it.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Entry is one recorded interaction.
type Entry struct {
	Digest       string    `json:"digest" db:"digest"`
	Prompt       string    `json:"prompt" db:"prompt"`
	Ingredients  []string  `json:"ingredients"`
	RecipeTitles []string  `json:"recipe_titles"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Store defines the history operations the web layer uses.
type Store interface {
	Save(ctx context.Context, entry *Entry) error
	Recent(ctx context.Context, limit int) ([]*Entry, error)
}

// PostgresStore implements Store on PostgreSQL.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore connects and ensures the schema exists.
func NewPostgresStore(dataSourceName string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS analyses (
		digest TEXT PRIMARY KEY,
		prompt TEXT,
		ingredients JSONB,
		recipe_titles JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create analyses table: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Save upserts an entry keyed by its digest, so re-analyzing the same
// photo refreshes the record instead of duplicating it.
func (s *PostgresStore) Save(ctx context.Context, entry *Entry) error {
	ingredientsJSON, err := json.Marshal(entry.Ingredients)
	if err != nil {
		return fmt.Errorf("failed to marshal ingredients: %w", err)
	}
	titlesJSON, err := json.Marshal(entry.RecipeTitles)
	if err != nil {
		return fmt.Errorf("failed to marshal recipe titles: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO analyses (digest, prompt, ingredients, recipe_titles) VALUES ($1, $2, $3, $4) ON CONFLICT (digest) DO UPDATE SET prompt = $2, ingredients = $3, recipe_titles = $4, created_at = now()",
		entry.Digest,
		entry.Prompt,
		ingredientsJSON,
		titlesJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	return nil
}

// Recent lists the newest entries first.
func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryxContext(ctx,
		"SELECT digest, prompt, ingredients, recipe_titles, created_at FROM analyses ORDER BY created_at DESC LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		var ingredientsJSON, titlesJSON []byte
		if err := rows.Scan(&e.Digest, &e.Prompt, &ingredientsJSON, &titlesJSON, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan analysis row: %w", err)
		}
		if err := json.Unmarshal(ingredientsJSON, &e.Ingredients); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ingredients: %w", err)
		}
		if err := json.Unmarshal(titlesJSON, &e.RecipeTitles); err != nil {
			return nil, fmt.Errorf("failed to unmarshal recipe titles: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return entries, nil
}
