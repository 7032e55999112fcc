package kv

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/trackpass/internal/common"
	"github.com/dmitrijs2005/trackpass/internal/dbx"
)

// PostgresStore implements Store over a single kv_items table
// (key text primary key, value jsonb). It is bound to a dbx.DBTX so it
// works with both *sql.DB and *sql.Tx.
type PostgresStore struct {
	db dbx.DBTX
}

func NewPostgresStore(db dbx.DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, key string, dest any) error {
	query := `SELECT value FROM kv_items WHERE key = $1`

	var raw []byte
	err := s.db.QueryRowContext(ctx, query, key).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("%w: %v", common.ErrorStorage, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("unmarshalling value for %q: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshalling value for %q: %w", key, err)
	}

	query := `
		INSERT INTO kv_items (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key)
		DO UPDATE SET value = EXCLUDED.value
	`
	if _, err := s.db.ExecContext(ctx, query, key, raw); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorStorage, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM kv_items WHERE key = $1`

	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorStorage, err)
	}
	return nil
}

func (s *PostgresStore) ScanPrefix(ctx context.Context, prefix string) ([]Item, error) {
	// Keys never contain LIKE metacharacters, see keys.go.
	query := `SELECT key, value FROM kv_items WHERE key LIKE $1 || '%' ORDER BY key`

	rows, err := s.db.QueryContext(ctx, query, prefix)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorStorage, err)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.Key, (*[]byte)(&it.Value)); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrorStorage, err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorStorage, err)
	}
	return items, nil
}
