package prefs

import (
	"context"
	"errors"

	"github.com/example/storefront-console/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresPreferenceStore — долговременные настройки оператора в Postgres.
type PostgresPreferenceStore struct {
	Pool *pgxpool.Pool
}

func NewPostgresPreferenceStore(pool *pgxpool.Pool) *PostgresPreferenceStore {
	return &PostgresPreferenceStore{Pool: pool}
}

func (s *PostgresPreferenceStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.Pool.QueryRow(ctx, `SELECT value FROM preferences WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *PostgresPreferenceStore) Set(ctx context.Context, key, value string) error {
	_, err := s.Pool.Exec(ctx, `INSERT INTO preferences(key, value) VALUES($1, $2)
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, value)
	return err
}

func (s *PostgresPreferenceStore) Delete(ctx context.Context, key string) error {
	_, err := s.Pool.Exec(ctx, `DELETE FROM preferences WHERE key = $1`, key)
	return err
}

var _ domain.PreferenceStore = (*PostgresPreferenceStore)(nil)

// EnsureSchema — создать необходимые таблицы, если отсутствуют.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS preferences (
  key text PRIMARY KEY,
  value text NOT NULL
);`)
	return err
}
