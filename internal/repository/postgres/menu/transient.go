package menu

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MatzeKitt/km-advanced-menu/internal/domain"
	menuRepo "github.com/MatzeKitt/km-advanced-menu/internal/domain/repositories/menu"
	"github.com/MatzeKitt/km-advanced-menu/internal/repository/postgres"
)

// PostgresTransientRepository implements the TransientRepository
// interface on the network transient table
type PostgresTransientRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewTransientRepository creates a new transient repository
func NewTransientRepository(config *postgres.RepositoryConfig) menuRepo.TransientRepository {
	return &PostgresTransientRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Get returns an unexpired value
func (r *PostgresTransientRepository) Get(ctx context.Context, key string) ([]byte, error) {
	query := fmt.Sprintf(`
		SELECT value
		FROM %s
		WHERE key = $1 AND expires_at > now()
	`, r.tables.Transients)

	var value []byte
	executor := postgres.GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, key).Scan(&value); err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("transient %s: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get transient: %w", err)
	}

	return value, nil
}

// Set stores a value for ttl, replacing the previous one
func (r *PostgresTransientRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (key, value, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at
	`, r.tables.Transients)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, key, value, time.Now().Add(ttl)); err != nil {
		return fmt.Errorf("set transient: %w", err)
	}

	return nil
}

// Delete drops a value
func (r *PostgresTransientRepository) Delete(ctx context.Context, key string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE key = $1`, r.tables.Transients)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, key); err != nil {
		return fmt.Errorf("delete transient: %w", err)
	}

	return nil
}
