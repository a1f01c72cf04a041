package repo

import (
	"context"

	"github.com/example/storefront-console/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStorefrontRepo — персистентность витрин в Postgres; кэш
// витрин наполняется из него при старте.
type PostgresStorefrontRepo struct {
	Pool *pgxpool.Pool
}

func NewPostgresStorefrontRepo(pool *pgxpool.Pool) *PostgresStorefrontRepo {
	return &PostgresStorefrontRepo{Pool: pool}
}

func (r *PostgresStorefrontRepo) Upsert(ctx context.Context, id string, raw []byte) error {
	_, err := r.Pool.Exec(ctx, `INSERT INTO storefronts(id, payload) VALUES($1, $2)
        ON CONFLICT (id) DO UPDATE SET payload = EXCLUDED.payload`, id, raw)
	return err
}

func (r *PostgresStorefrontRepo) LoadAll(ctx context.Context, fn func(id string, raw []byte) error) error {
	rows, err := r.Pool.Query(ctx, `SELECT id, payload FROM storefronts ORDER BY created_at`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return err
		}
		if err := fn(id, raw); err != nil {
			return err
		}
	}
	return rows.Err()
}

var _ domain.StorefrontRepository = (*PostgresStorefrontRepo)(nil)

// EnsureSchema — создать необходимые таблицы, если отсутствуют.
// created_at задаёт порядок обхода, от которого зависит выбор витрины
// по умолчанию.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS storefronts (
  id text PRIMARY KEY,
  payload jsonb NOT NULL,
  created_at timestamptz NOT NULL DEFAULT now()
);`)
	return err
}
