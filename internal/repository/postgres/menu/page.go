package menu

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MatzeKitt/km-advanced-menu/internal/domain"
	"github.com/MatzeKitt/km-advanced-menu/internal/domain/models/menu"
	menuRepo "github.com/MatzeKitt/km-advanced-menu/internal/domain/repositories/menu"
	"github.com/MatzeKitt/km-advanced-menu/internal/repository/postgres"
)

// PostgresPageRepository implements the PageRepository interface
type PostgresPageRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewPageRepository creates a new page repository
func NewPageRepository(config *postgres.RepositoryConfig) menuRepo.PageRepository {
	return &PostgresPageRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// pageSelect selects pages with their category ids aggregated in
// ascending order
func pageSelect(t postgres.SiteTables, where string) string {
	return fmt.Sprintf(`
		SELECT p.id, p.post_title, p.post_name, p.post_status, p.post_parent, p.menu_order,
			COALESCE(
				array_agg(tr.term_id ORDER BY tr.term_id) FILTER (WHERE tm.term_id IS NOT NULL),
				'{}'
			)
		FROM %s p
		LEFT JOIN %s tr ON tr.object_id = p.id
		LEFT JOIN %s tm ON tm.term_id = tr.term_id AND tm.taxonomy = 'category'
		WHERE p.post_type = 'page' AND %s
		GROUP BY p.id
	`, t.Posts, t.TermRelationships, t.Terms, where)
}

// ListBySite returns the published pages of a site ordered by menu_order,
// then title
func (r *PostgresPageRepository) ListBySite(ctx context.Context, siteID int64) ([]menu.Page, error) {
	t := r.tables.ForSite(siteID)
	query := pageSelect(t, "p.post_status = $1") + `
		ORDER BY p.menu_order, p.post_title, p.id
	`

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, menu.PageStatusPublish)
	if err != nil {
		if postgres.IsPgUndefinedTableError(err) {
			return nil, fmt.Errorf("site %d: %w", siteID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer rows.Close()

	pages := []menu.Page{}
	for rows.Next() {
		var p menu.Page
		if err := rows.Scan(&p.ID, &p.Title, &p.Slug, &p.Status, &p.ParentID, &p.MenuOrder, &p.CategoryIDs); err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		pages = append(pages, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pages: %w", err)
	}

	return pages, nil
}

// GetByID retrieves a page of any status
func (r *PostgresPageRepository) GetByID(ctx context.Context, siteID, id int64) (*menu.Page, error) {
	t := r.tables.ForSite(siteID)
	query := pageSelect(t, "p.id = $1")

	var p menu.Page
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(&p.ID, &p.Title, &p.Slug, &p.Status, &p.ParentID, &p.MenuOrder, &p.CategoryIDs)
	if err != nil {
		if postgres.IsMissingRow(err) {
			return nil, &domain.ItemNotFoundError{Object: string(menu.ObjectPage), ID: id, SiteID: siteID}
		}
		return nil, fmt.Errorf("get page: %w", err)
	}

	return &p, nil
}

// UpdateOrderAndParent writes menu_order and post_parent
func (r *PostgresPageRepository) UpdateOrderAndParent(ctx context.Context, siteID, id int64, menuOrder int, parentID int64) error {
	t := r.tables.ForSite(siteID)
	query := fmt.Sprintf(`
		UPDATE %s
		SET menu_order = $1, post_parent = $2
		WHERE id = $3 AND post_type = 'page'
	`, t.Posts)

	executor := postgres.GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, menuOrder, parentID, id)
	if err != nil {
		return fmt.Errorf("update page: %w", err)
	}

	if result.RowsAffected() == 0 {
		return &domain.ItemNotFoundError{Object: string(menu.ObjectPage), ID: id, SiteID: siteID}
	}

	return nil
}

// SetCategories replaces the category relationships of a page. Terms of
// other taxonomies are left alone.
func (r *PostgresPageRepository) SetCategories(ctx context.Context, siteID, id int64, categoryIDs []int64) error {
	t := r.tables.ForSite(siteID)
	executor := postgres.GetExecutor(ctx, r.pool)

	deleteQuery := fmt.Sprintf(`
		DELETE FROM %s tr
		USING %s tm
		WHERE tr.object_id = $1 AND tm.term_id = tr.term_id AND tm.taxonomy = 'category'
	`, t.TermRelationships, t.Terms)
	if _, err := executor.Exec(ctx, deleteQuery, id); err != nil {
		return fmt.Errorf("clear page categories: %w", err)
	}

	if len(categoryIDs) == 0 {
		return nil
	}

	insertQuery := fmt.Sprintf(`
		INSERT INTO %s (object_id, term_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING
	`, t.TermRelationships)
	if _, err := executor.Exec(ctx, insertQuery, id, categoryIDs); err != nil {
		return fmt.Errorf("set page categories: %w", err)
	}

	return nil
}
