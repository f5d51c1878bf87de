package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NetworkSchema returns the DDL of the network-wide tables
func NetworkSchema(tables *TableNames) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			blog_id BIGINT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT ''
		)`, tables.Sites),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			key TEXT PRIMARY KEY,
			value JSONB NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL
		)`, tables.Transients),
	}
}

// SiteSchema returns the DDL of one site's content tables
func SiteSchema(t SiteTables) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			term_id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			slug TEXT NOT NULL DEFAULT '',
			taxonomy TEXT NOT NULL DEFAULT 'category',
			parent BIGINT NOT NULL DEFAULT 0
		)`, t.Terms),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			meta_id BIGSERIAL PRIMARY KEY,
			term_id BIGINT NOT NULL,
			meta_key TEXT NOT NULL,
			meta_value TEXT NOT NULL DEFAULT ''
		)`, t.TermMeta),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_term_key_idx ON %s (term_id, meta_key)`, t.TermMeta, t.TermMeta),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			post_title TEXT NOT NULL DEFAULT '',
			post_name TEXT NOT NULL DEFAULT '',
			post_type TEXT NOT NULL DEFAULT 'page',
			post_status TEXT NOT NULL DEFAULT 'publish',
			post_parent BIGINT NOT NULL DEFAULT 0,
			menu_order INTEGER NOT NULL DEFAULT 0
		)`, t.Posts),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			object_id BIGINT NOT NULL,
			term_id BIGINT NOT NULL,
			PRIMARY KEY (object_id, term_id)
		)`, t.TermRelationships),
	}
}

// EnsureSchema creates the network tables and the content tables of the
// given sites
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames, siteIDs []int64, logger *slog.Logger) error {
	statements := NetworkSchema(tables)
	for _, id := range siteIDs {
		statements = append(statements, SiteSchema(tables.ForSite(id))...)
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	logger.Info("schema ready", "prefix", tables.Prefix, "sites", len(siteIDs))
	return nil
}
