package menu

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MatzeKitt/km-advanced-menu/internal/domain"
	"github.com/MatzeKitt/km-advanced-menu/internal/domain/models/menu"
	menuRepo "github.com/MatzeKitt/km-advanced-menu/internal/domain/repositories/menu"
	"github.com/MatzeKitt/km-advanced-menu/internal/repository/postgres"
)

// MenuOrderMetaKey is the term meta holding a category's order key
const MenuOrderMetaKey = "menu-order"

// PostgresCategoryRepository implements the CategoryRepository interface
type PostgresCategoryRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(config *postgres.RepositoryConfig) menuRepo.CategoryRepository {
	return &PostgresCategoryRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// categoryColumns selects a term with its first "menu-order" meta value
func (r *PostgresCategoryRepository) categoryColumns(t postgres.SiteTables) string {
	return fmt.Sprintf(`
		t.term_id, t.name, t.slug, t.parent,
		COALESCE((
			SELECT m.meta_value FROM %s m
			WHERE m.term_id = t.term_id AND m.meta_key = '%s'
			ORDER BY m.meta_id
			LIMIT 1
		), '')
	`, t.TermMeta, MenuOrderMetaKey)
}

// ListBySite returns all categories of a site ordered by name, empty ones
// included
func (r *PostgresCategoryRepository) ListBySite(ctx context.Context, siteID int64) ([]menu.Category, error) {
	t := r.tables.ForSite(siteID)
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s t
		WHERE t.taxonomy = 'category'
		ORDER BY t.name, t.term_id
	`, r.categoryColumns(t), t.Terms)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		if postgres.IsPgUndefinedTableError(err) {
			return nil, fmt.Errorf("site %d: %w", siteID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := []menu.Category{}
	for rows.Next() {
		var c menu.Category
		var order string
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.ParentID, &order); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.MenuOrder = parseMenuOrder(order)
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	return categories, nil
}

// GetByID retrieves a category
func (r *PostgresCategoryRepository) GetByID(ctx context.Context, siteID, id int64) (*menu.Category, error) {
	t := r.tables.ForSite(siteID)
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s t
		WHERE t.term_id = $1 AND t.taxonomy = 'category'
	`, r.categoryColumns(t), t.Terms)

	var c menu.Category
	var order string
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Slug, &c.ParentID, &order)
	if err != nil {
		if postgres.IsMissingRow(err) {
			return nil, &domain.ItemNotFoundError{Object: string(menu.ObjectCategory), ID: id, SiteID: siteID}
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	c.MenuOrder = parseMenuOrder(order)

	return &c, nil
}

// UpdateParent moves a category under another one
func (r *PostgresCategoryRepository) UpdateParent(ctx context.Context, siteID, id, parentID int64) error {
	t := r.tables.ForSite(siteID)
	query := fmt.Sprintf(`
		UPDATE %s
		SET parent = $1
		WHERE term_id = $2 AND taxonomy = 'category'
	`, t.Terms)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, parentID, id)
	if err != nil {
		return fmt.Errorf("update category parent: %w", err)
	}

	if result.RowsAffected() == 0 {
		return &domain.ItemNotFoundError{Object: string(menu.ObjectCategory), ID: id, SiteID: siteID}
	}

	return nil
}

// SetMenuOrder updates the first "menu-order" meta row or adds one
func (r *PostgresCategoryRepository) SetMenuOrder(ctx context.Context, siteID, id int64, order int) error {
	t := r.tables.ForSite(siteID)
	query := fmt.Sprintf(`
		WITH updated AS (
			UPDATE %[1]s
			SET meta_value = $3
			WHERE meta_id = (
				SELECT meta_id FROM %[1]s
				WHERE term_id = $1 AND meta_key = $2
				ORDER BY meta_id
				LIMIT 1
			)
			RETURNING meta_id
		)
		INSERT INTO %[1]s (term_id, meta_key, meta_value)
		SELECT $1, $2, $3
		WHERE NOT EXISTS (SELECT 1 FROM updated)
	`, t.TermMeta)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, id, MenuOrderMetaKey, strconv.Itoa(order)); err != nil {
		return fmt.Errorf("set category menu order: %w", err)
	}

	return nil
}

// DeleteMenuOrder removes every "menu-order" meta row of a category
func (r *PostgresCategoryRepository) DeleteMenuOrder(ctx context.Context, siteID, id int64) error {
	t := r.tables.ForSite(siteID)
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE term_id = $1 AND meta_key = $2
	`, t.TermMeta)

	executor := postgres.GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, id, MenuOrderMetaKey); err != nil {
		return fmt.Errorf("delete category menu order: %w", err)
	}

	return nil
}

// parseMenuOrder reads a meta value leniently. Values that are not an
// integer count as unset.
func parseMenuOrder(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}
