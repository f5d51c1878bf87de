package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/MatzeKitt/km-advanced-menu/internal/domain"
	"github.com/MatzeKitt/km-advanced-menu/internal/domain/models/menu"
	menuRepo "github.com/MatzeKitt/km-advanced-menu/internal/domain/repositories/menu"
)

// SiteRepository implements the SiteRepository interface
type SiteRepository struct{ store *Store }

// NewSiteRepository creates a new site repository
func NewSiteRepository(store *Store) menuRepo.SiteRepository {
	return &SiteRepository{store: store}
}

// List returns every site ordered by ID
func (r *SiteRepository) List(ctx context.Context) ([]menu.Site, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return sortedSites(r.store.state.sites), nil
}

// GetByID retrieves one site
func (r *SiteRepository) GetByID(ctx context.Context, siteID int64) (*menu.Site, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	data, err := r.store.site(siteID)
	if err != nil {
		return nil, err
	}
	site := data.site
	return &site, nil
}

// CategoryRepository implements the CategoryRepository interface
type CategoryRepository struct{ store *Store }

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(store *Store) menuRepo.CategoryRepository {
	return &CategoryRepository{store: store}
}

// ListBySite returns categories in insertion order
func (r *CategoryRepository) ListBySite(ctx context.Context, siteID int64) ([]menu.Category, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	data, err := r.store.site(siteID)
	if err != nil {
		return nil, err
	}
	out := make([]menu.Category, 0, len(data.catOrder))
	for _, id := range data.catOrder {
		out = append(out, data.categories[id])
	}
	return out, nil
}

// GetByID retrieves a category
func (r *CategoryRepository) GetByID(ctx context.Context, siteID, id int64) (*menu.Category, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	data, err := r.store.site(siteID)
	if err != nil {
		return nil, err
	}
	c, ok := data.categories[id]
	if !ok {
		return nil, &domain.ItemNotFoundError{Object: string(menu.ObjectCategory), ID: id, SiteID: siteID}
	}
	return &c, nil
}

// UpdateParent moves a category
func (r *CategoryRepository) UpdateParent(ctx context.Context, siteID, id, parentID int64) error {
	return r.update(siteID, id, func(c *menu.Category) { c.ParentID = parentID })
}

// SetMenuOrder stores the order meta
func (r *CategoryRepository) SetMenuOrder(ctx context.Context, siteID, id int64, order int) error {
	return r.update(siteID, id, func(c *menu.Category) { c.MenuOrder = order })
}

// DeleteMenuOrder removes the order meta
func (r *CategoryRepository) DeleteMenuOrder(ctx context.Context, siteID, id int64) error {
	return r.update(siteID, id, func(c *menu.Category) { c.MenuOrder = 0 })
}

func (r *CategoryRepository) update(siteID, id int64, fn func(c *menu.Category)) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	data, err := r.store.site(siteID)
	if err != nil {
		return err
	}
	c, ok := data.categories[id]
	if !ok {
		return &domain.ItemNotFoundError{Object: string(menu.ObjectCategory), ID: id, SiteID: siteID}
	}
	fn(&c)
	data.categories[id] = c
	return nil
}

// PageRepository implements the PageRepository interface
type PageRepository struct{ store *Store }

// NewPageRepository creates a new page repository
func NewPageRepository(store *Store) menuRepo.PageRepository {
	return &PageRepository{store: store}
}

// ListBySite returns published pages ordered by menu_order, then insertion
func (r *PageRepository) ListBySite(ctx context.Context, siteID int64) ([]menu.Page, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	data, err := r.store.site(siteID)
	if err != nil {
		return nil, err
	}
	out := make([]menu.Page, 0, len(data.pageOrder))
	for _, id := range data.pageOrder {
		p := data.pages[id]
		if p.Status != menu.PageStatusPublish {
			continue
		}
		p.CategoryIDs = append([]int64(nil), p.CategoryIDs...)
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].MenuOrder < out[j].MenuOrder })
	return out, nil
}

// GetByID retrieves a page of any status
func (r *PageRepository) GetByID(ctx context.Context, siteID, id int64) (*menu.Page, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	data, err := r.store.site(siteID)
	if err != nil {
		return nil, err
	}
	p, ok := data.pages[id]
	if !ok {
		return nil, &domain.ItemNotFoundError{Object: string(menu.ObjectPage), ID: id, SiteID: siteID}
	}
	p.CategoryIDs = append([]int64(nil), p.CategoryIDs...)
	return &p, nil
}

// UpdateOrderAndParent writes menu_order and post_parent
func (r *PageRepository) UpdateOrderAndParent(ctx context.Context, siteID, id int64, menuOrder int, parentID int64) error {
	return r.update(siteID, id, func(p *menu.Page) {
		p.MenuOrder = menuOrder
		p.ParentID = parentID
	})
}

// SetCategories replaces the category set
func (r *PageRepository) SetCategories(ctx context.Context, siteID, id int64, categoryIDs []int64) error {
	return r.update(siteID, id, func(p *menu.Page) {
		p.CategoryIDs = append([]int64(nil), categoryIDs...)
	})
}

func (r *PageRepository) update(siteID, id int64, fn func(p *menu.Page)) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	data, err := r.store.site(siteID)
	if err != nil {
		return err
	}
	p, ok := data.pages[id]
	if !ok {
		return &domain.ItemNotFoundError{Object: string(menu.ObjectPage), ID: id, SiteID: siteID}
	}
	fn(&p)
	data.pages[id] = p
	return nil
}

// TransientRepository implements the TransientRepository interface
type TransientRepository struct{ store *Store }

// NewTransientRepository creates a new transient repository
func NewTransientRepository(store *Store) menuRepo.TransientRepository {
	return &TransientRepository{store: store}
}

// Get returns a live value
func (r *TransientRepository) Get(ctx context.Context, key string) ([]byte, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	t, ok := r.store.state.transients[key]
	if !ok || !r.store.now().Before(t.expiresAt) {
		return nil, fmt.Errorf("transient %s: %w", key, domain.ErrNotFound)
	}
	return append([]byte(nil), t.value...), nil
}

// Set stores a value for ttl
func (r *TransientRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.state.transients[key] = transient{
		value:     append([]byte(nil), value...),
		expiresAt: r.store.now().Add(ttl),
	}
	return nil
}

// Delete drops a value
func (r *TransientRepository) Delete(ctx context.Context, key string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	delete(r.store.state.transients, key)
	return nil
}
