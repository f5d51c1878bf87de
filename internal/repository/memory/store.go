// Package memory is an in-process content store. It backs the server when
// no database is configured and serves as the store in service tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/MatzeKitt/km-advanced-menu/internal/domain"
	"github.com/MatzeKitt/km-advanced-menu/internal/domain/models/menu"
	"github.com/MatzeKitt/km-advanced-menu/internal/domain/repositories"
	"github.com/MatzeKitt/km-advanced-menu/internal/seed"
)

// siteData is the content of one site
type siteData struct {
	site       menu.Site
	categories map[int64]menu.Category
	catOrder   []int64 // insertion order
	pages      map[int64]menu.Page
	pageOrder  []int64
}

type transient struct {
	value     []byte
	expiresAt time.Time
}

type state struct {
	sites      map[int64]*siteData
	transients map[string]transient
}

// Store holds every site of a network in memory
type Store struct {
	mu    sync.RWMutex
	txMu  sync.Mutex
	state state
	now   func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		state: state{
			sites:      make(map[int64]*siteData),
			transients: make(map[string]transient),
		},
		now: time.Now,
	}
}

// NewStoreFromFixture creates a store holding a fixture
func NewStoreFromFixture(f *seed.Fixture) *Store {
	s := NewStore()
	for _, sf := range f.Sites {
		s.AddSite(sf.Site())
		for _, c := range sf.Categories {
			s.PutCategory(sf.ID, c)
		}
		for _, p := range sf.Pages {
			s.PutPage(sf.ID, p)
		}
	}
	return s
}

// AddSite adds or renames a site
func (s *Store) AddSite(site menu.Site) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.state.sites[site.ID]; ok {
		existing.site = site
		return
	}
	s.state.sites[site.ID] = &siteData{
		site:       site,
		categories: make(map[int64]menu.Category),
		pages:      make(map[int64]menu.Page),
	}
}

// PutCategory inserts or replaces a category of an existing site
func (s *Store) PutCategory(siteID int64, c menu.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.state.sites[siteID]
	if !ok {
		return
	}
	if _, exists := data.categories[c.ID]; !exists {
		data.catOrder = append(data.catOrder, c.ID)
	}
	data.categories[c.ID] = c
}

// PutPage inserts or replaces a page of an existing site
func (s *Store) PutPage(siteID int64, p menu.Page) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.state.sites[siteID]
	if !ok {
		return
	}
	if _, exists := data.pages[p.ID]; !exists {
		data.pageOrder = append(data.pageOrder, p.ID)
	}
	p.CategoryIDs = append([]int64(nil), p.CategoryIDs...)
	data.pages[p.ID] = p
}

// site returns a site's data; callers hold mu
func (s *Store) site(siteID int64) (*siteData, error) {
	data, ok := s.state.sites[siteID]
	if !ok {
		return nil, fmt.Errorf("site %d: %w", siteID, domain.ErrNotFound)
	}
	return data, nil
}

// clone deep-copies the state for transaction rollback
func (st state) clone() state {
	out := state{
		sites:      make(map[int64]*siteData, len(st.sites)),
		transients: make(map[string]transient, len(st.transients)),
	}
	for id, data := range st.sites {
		cp := &siteData{
			site:       data.site,
			categories: make(map[int64]menu.Category, len(data.categories)),
			catOrder:   append([]int64(nil), data.catOrder...),
			pages:      make(map[int64]menu.Page, len(data.pages)),
			pageOrder:  append([]int64(nil), data.pageOrder...),
		}
		for k, v := range data.categories {
			cp.categories[k] = v
		}
		for k, v := range data.pages {
			v.CategoryIDs = append([]int64(nil), v.CategoryIDs...)
			cp.pages[k] = v
		}
		out.sites[id] = cp
	}
	for k, v := range st.transients {
		out.transients[k] = v
	}
	return out
}

// TransactionManager runs functions against the store atomically: when
// the function fails, every change it made is rolled back. Transactions
// are serialized.
type TransactionManager struct {
	store *Store
}

// NewTransactionManager creates a transaction manager for the store
func NewTransactionManager(store *Store) repositories.TransactionManager {
	return &TransactionManager{store: store}
}

// ExecTx executes fn; on error the store is restored
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	tm.store.txMu.Lock()
	defer tm.store.txMu.Unlock()

	tm.store.mu.RLock()
	saved := tm.store.state.clone()
	tm.store.mu.RUnlock()

	if err := fn(ctx); err != nil {
		tm.store.mu.Lock()
		tm.store.state = saved
		tm.store.mu.Unlock()
		return err
	}
	return nil
}

func sortedSites(sites map[int64]*siteData) []menu.Site {
	out := make([]menu.Site, 0, len(sites))
	for _, data := range sites {
		out = append(out, data.site)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
