package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MatzeKitt/km-advanced-menu/internal/domain/repositories"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds dynamically prefixed table names. Network-wide tables
// use the bare prefix; each site's content tables use the prefix plus the
// site ID, except for the main site which uses the bare prefix.
type TableNames struct {
	Prefix     string
	MainSiteID int64
	Sites      string
	Transients string
}

// SiteTables are the content tables of one site
type SiteTables struct {
	Terms             string
	TermMeta          string
	Posts             string
	TermRelationships string
}

// NewTableNames creates table names with the given prefix
func NewTableNames(prefix string, mainSiteID int64) *TableNames {
	return &TableNames{
		Prefix:     prefix,
		MainSiteID: mainSiteID,
		Sites:      fmt.Sprintf("%ssites", prefix),
		Transients: fmt.Sprintf("%ssite_transients", prefix),
	}
}

// ForSite returns the content tables of a site
func (t *TableNames) ForSite(siteID int64) SiteTables {
	prefix := t.Prefix
	if siteID != t.MainSiteID {
		prefix = fmt.Sprintf("%s%d_", t.Prefix, siteID)
	}
	return SiteTables{
		Terms:             prefix + "terms",
		TermMeta:          prefix + "termmeta",
		Posts:             prefix + "posts",
		TermRelationships: prefix + "term_relationships",
	}
}

// CreateConnectionPool creates a pgx connection pool.
//
// Behind a transaction-pooling PgBouncer (port 6543) prepared statements
// fail with "prepared statement already exists", so the pool switches to
// QueryExecModeCacheDescribe there. A default_query_exec_mode parameter in
// the connection string takes precedence.
//
// Table prefixes and site IDs are interpolated with fmt.Sprintf before the
// SQL is sent, so every site gets its own statements ("wp_terms" vs
// "wp_2_terms").
func CreateConnectionPool(ctx context.Context, databaseURL string, logger *slog.Logger) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	// Menu traffic is read-mostly and served from the cache
	config.MaxConns = 10
	config.MinConns = 2

	if config.ConnConfig.Port == 6543 && config.ConnConfig.DefaultQueryExecMode == pgx.QueryExecModeCacheStatement {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
		logger.Debug("auto-configured cache_describe mode for PgBouncer compatibility", "port", 6543)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the transaction carried by ctx, or the pool when
// there is none
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.TxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}
