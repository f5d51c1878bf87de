package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MatzeKitt/km-advanced-menu/internal/domain"
	"github.com/MatzeKitt/km-advanced-menu/internal/domain/repositories"
	"github.com/MatzeKitt/km-advanced-menu/internal/repository/postgres"
	pgmenu "github.com/MatzeKitt/km-advanced-menu/internal/repository/postgres/menu"
)

// MenuSeeder writes fixtures into the Postgres content store
type MenuSeeder struct {
	pool      *pgxpool.Pool
	tables    *postgres.TableNames
	txManager repositories.TransactionManager
	logger    *slog.Logger
}

// NewMenuSeeder creates a seeder
func NewMenuSeeder(pool *pgxpool.Pool, tables *postgres.TableNames, logger *slog.Logger) *MenuSeeder {
	return &MenuSeeder{
		pool:      pool,
		tables:    tables,
		txManager: postgres.NewTransactionManager(pool, logger),
		logger:    logger,
	}
}

// Seed inserts every site of the fixture in its own transaction. A site
// that already exists is reported with ErrConflict and left untouched;
// the remaining sites are still seeded.
func (s *MenuSeeder) Seed(ctx context.Context, fixture *Fixture) error {
	var conflicts int
	for _, site := range fixture.Sites {
		err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
			return s.seedSite(ctx, site)
		})
		if err != nil {
			if postgres.IsPgDuplicateError(err) {
				s.logger.Warn("site already seeded", "site_id", site.ID)
				conflicts++
				continue
			}
			return fmt.Errorf("seed site %d: %w", site.ID, err)
		}
		s.logger.Info("site seeded",
			"site_id", site.ID,
			"categories", len(site.Categories),
			"pages", len(site.Pages),
		)
	}

	if conflicts > 0 {
		return fmt.Errorf("%d site(s) already seeded: %w", conflicts, domain.ErrConflict)
	}
	return nil
}

func (s *MenuSeeder) seedSite(ctx context.Context, site SiteFixture) error {
	executor := postgres.GetExecutor(ctx, s.pool)
	t := s.tables.ForSite(site.ID)

	siteQuery := fmt.Sprintf(`INSERT INTO %s (blog_id, name, url) VALUES ($1, $2, $3)`, s.tables.Sites)
	if _, err := executor.Exec(ctx, siteQuery, site.ID, site.Name, site.URL); err != nil {
		return err
	}

	termQuery := fmt.Sprintf(`
		INSERT INTO %s (term_id, name, slug, taxonomy, parent)
		VALUES ($1, $2, $3, 'category', $4)
	`, t.Terms)
	metaQuery := fmt.Sprintf(`
		INSERT INTO %s (term_id, meta_key, meta_value)
		VALUES ($1, $2, $3)
	`, t.TermMeta)
	for _, c := range site.Categories {
		if _, err := executor.Exec(ctx, termQuery, c.ID, c.Name, c.Slug, c.ParentID); err != nil {
			return fmt.Errorf("insert category %d: %w", c.ID, err)
		}
		if c.MenuOrder == 0 {
			continue
		}
		if _, err := executor.Exec(ctx, metaQuery, c.ID, pgmenu.MenuOrderMetaKey, strconv.Itoa(c.MenuOrder)); err != nil {
			return fmt.Errorf("insert category %d order: %w", c.ID, err)
		}
	}

	postQuery := fmt.Sprintf(`
		INSERT INTO %s (id, post_title, post_name, post_type, post_status, post_parent, menu_order)
		VALUES ($1, $2, $3, 'page', $4, $5, $6)
	`, t.Posts)
	relQuery := fmt.Sprintf(`
		INSERT INTO %s (object_id, term_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, t.TermRelationships)
	for _, p := range site.Pages {
		if _, err := executor.Exec(ctx, postQuery, p.ID, p.Title, p.Slug, p.Status, p.ParentID, p.MenuOrder); err != nil {
			return fmt.Errorf("insert page %d: %w", p.ID, err)
		}
		for _, catID := range p.CategoryIDs {
			if _, err := executor.Exec(ctx, relQuery, p.ID, catID); err != nil {
				return fmt.Errorf("insert page %d category %d: %w", p.ID, catID, err)
			}
		}
	}

	return s.bumpSequences(ctx, t)
}

// bumpSequences moves the serial sequences past the explicit ids so later
// inserts without an id do not collide
func (s *MenuSeeder) bumpSequences(ctx context.Context, t postgres.SiteTables) error {
	executor := postgres.GetExecutor(ctx, s.pool)
	for _, target := range []struct{ table, column string }{
		{t.Terms, "term_id"},
		{t.Posts, "id"},
	} {
		query := fmt.Sprintf(
			`SELECT setval(pg_get_serial_sequence('%[1]s', '%[2]s'), GREATEST((SELECT MAX(%[2]s) FROM %[1]s), 1))`,
			target.table, target.column,
		)
		if _, err := executor.Exec(ctx, query); err != nil {
			return fmt.Errorf("bump %s sequence: %w", target.table, err)
		}
	}
	return nil
}

// DropTables drops the network tables and the content tables of the
// given sites
func (s *MenuSeeder) DropTables(ctx context.Context, siteIDs []int64) error {
	tables := []string{s.tables.Sites, s.tables.Transients}
	for _, id := range siteIDs {
		t := s.tables.ForSite(id)
		tables = append(tables, t.TermRelationships, t.TermMeta, t.Posts, t.Terms)
	}

	for _, table := range tables {
		if _, err := s.pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
		s.logger.Debug("dropped table", "table", table)
	}
	return nil
}
