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

// PostgresSiteRepository implements the SiteRepository interface
type PostgresSiteRepository struct {
	pool   *pgxpool.Pool
	tables *postgres.TableNames
}

// NewSiteRepository creates a new site repository
func NewSiteRepository(config *postgres.RepositoryConfig) menuRepo.SiteRepository {
	return &PostgresSiteRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// List returns every site ordered by ID
func (r *PostgresSiteRepository) List(ctx context.Context) ([]menu.Site, error) {
	query := fmt.Sprintf(`
		SELECT blog_id, name, url
		FROM %s
		ORDER BY blog_id
	`, r.tables.Sites)

	executor := postgres.GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	defer rows.Close()

	sites := []menu.Site{}
	for rows.Next() {
		var site menu.Site
		if err := rows.Scan(&site.ID, &site.Name, &site.URL); err != nil {
			return nil, fmt.Errorf("scan site: %w", err)
		}
		sites = append(sites, site)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sites: %w", err)
	}

	return sites, nil
}

// GetByID retrieves one site
func (r *PostgresSiteRepository) GetByID(ctx context.Context, siteID int64) (*menu.Site, error) {
	query := fmt.Sprintf(`
		SELECT blog_id, name, url
		FROM %s
		WHERE blog_id = $1
	`, r.tables.Sites)

	var site menu.Site
	executor := postgres.GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, siteID).Scan(&site.ID, &site.Name, &site.URL)
	if err != nil {
		if postgres.IsPgNoRowsError(err) {
			return nil, fmt.Errorf("site %d: %w", siteID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get site: %w", err)
	}

	return &site, nil
}
