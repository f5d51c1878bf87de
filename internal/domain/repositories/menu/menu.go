package menu

import (
	"context"
	"time"

	"github.com/MatzeKitt/km-advanced-menu/internal/domain/models/menu"
)

// SiteRepository enumerates the sites of the network
type SiteRepository interface {
	// List returns every site ordered by ID
	List(ctx context.Context) ([]menu.Site, error)

	// GetByID retrieves one site
	GetByID(ctx context.Context, siteID int64) (*menu.Site, error)
}

// CategoryRepository defines data access for categories and their
// "menu-order" term meta
type CategoryRepository interface {
	// ListBySite returns all categories of a site with MenuOrder filled in
	ListBySite(ctx context.Context, siteID int64) ([]menu.Category, error)

	// GetByID retrieves a category, ErrNotFound if the term does not exist
	GetByID(ctx context.Context, siteID, id int64) (*menu.Category, error)

	// UpdateParent moves a category under another one (0 = top level)
	UpdateParent(ctx context.Context, siteID, id, parentID int64) error

	// SetMenuOrder stores the "menu-order" meta
	SetMenuOrder(ctx context.Context, siteID, id int64, order int) error

	// DeleteMenuOrder removes the "menu-order" meta
	DeleteMenuOrder(ctx context.Context, siteID, id int64) error
}

// PageRepository defines data access for pages and their category
// membership
type PageRepository interface {
	// ListBySite returns the published pages of a site ordered by menu_order
	ListBySite(ctx context.Context, siteID int64) ([]menu.Page, error)

	// GetByID retrieves a page with its categories
	GetByID(ctx context.Context, siteID, id int64) (*menu.Page, error)

	// UpdateOrderAndParent writes menu_order and post_parent
	UpdateOrderAndParent(ctx context.Context, siteID, id int64, menuOrder int, parentID int64) error

	// SetCategories replaces the category set of a page
	SetCategories(ctx context.Context, siteID, id int64, categoryIDs []int64) error
}

// TransientRepository is a network-wide key/value cache with expiry
type TransientRepository interface {
	// Get returns the stored value, ErrNotFound when missing or expired
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value for ttl
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete drops a value; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error
}
