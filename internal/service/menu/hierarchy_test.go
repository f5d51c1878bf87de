package menu

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/MatzeKitt/km-advanced-menu/internal/config"
	"github.com/MatzeKitt/km-advanced-menu/internal/domain"
	models "github.com/MatzeKitt/km-advanced-menu/internal/domain/models/menu"
	menuRepo "github.com/MatzeKitt/km-advanced-menu/internal/domain/repositories/menu"
	menuSvc "github.com/MatzeKitt/km-advanced-menu/internal/domain/services/menu"
	"github.com/MatzeKitt/km-advanced-menu/internal/repository/memory"
)

func TestHierarchy_SnapshotIsCached(t *testing.T) {
	ctx := context.Background()
	ts := newTestServices(t, false)

	first, err := ts.hierarchy.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	second, err := ts.hierarchy.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	if ts.sites.lists != 1 {
		t.Errorf("rebuilds = %d, want 1", ts.sites.lists)
	}
	if len(first.Sites) != 2 {
		t.Fatalf("len(Sites) = %d, want 2", len(first.Sites))
	}
	if diff := cmp.Diff(first, second, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("cached snapshot differs from built one (-built +cached):\n%s", diff)
	}
	if got := second.Site(1).Site.Name; got != "Main" {
		t.Errorf("Site(1).Name = %q, want Main", got)
	}
	if second.Site(99) != nil {
		t.Error("Site(99) should be nil")
	}
}

func TestHierarchy_CorruptCacheIsRebuilt(t *testing.T) {
	ctx := context.Background()
	ts := newTestServices(t, false)

	if err := ts.transients.Set(ctx, config.HierarchyCacheKey, []byte("{not json"), time.Hour); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	snapshot, err := ts.hierarchy.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(snapshot.Sites) != 2 {
		t.Errorf("len(Sites) = %d, want 2", len(snapshot.Sites))
	}
	if ts.sites.lists != 1 {
		t.Errorf("rebuilds = %d, want 1", ts.sites.lists)
	}

	// The rebuilt value replaced the corrupt one
	if _, err := ts.hierarchy.Snapshot(ctx); err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if ts.sites.lists != 1 {
		t.Errorf("rebuilds after repair = %d, want 1", ts.sites.lists)
	}
}

// brokenTransients fails every call
type brokenTransients struct{}

func (brokenTransients) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func (brokenTransients) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return errors.New("connection refused")
}

func (brokenTransients) Delete(ctx context.Context, key string) error {
	return errors.New("connection refused")
}

var _ menuRepo.TransientRepository = brokenTransients{}

func TestHierarchy_BrokenCacheStillServes(t *testing.T) {
	store := testNetwork()
	h := NewHierarchyService(HierarchyConfig{
		Sites:      memory.NewSiteRepository(store),
		Categories: memory.NewCategoryRepository(store),
		Pages:      memory.NewPageRepository(store),
		Transients: brokenTransients{},
		Logger:     discardLogger(),
	})

	snapshot, err := h.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if len(snapshot.Sites) != 2 {
		t.Errorf("len(Sites) = %d, want 2", len(snapshot.Sites))
	}

	if err := h.Invalidate(context.Background()); err == nil {
		t.Error("Invalidate() error = nil, want store error")
	}
}

func TestHierarchy_Invalidate(t *testing.T) {
	ctx := context.Background()
	ts := newTestServices(t, false)

	if _, err := ts.hierarchy.Snapshot(ctx); err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if err := ts.hierarchy.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate() error = %v", err)
	}
	if _, err := ts.transients.Get(ctx, config.HierarchyCacheKey); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("cache Get() error = %v, want ErrNotFound", err)
	}
	if _, err := ts.hierarchy.Snapshot(ctx); err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if ts.sites.lists != 2 {
		t.Errorf("rebuilds = %d, want 2", ts.sites.lists)
	}
}

func TestHierarchy_HandleContentEvent(t *testing.T) {
	tests := []struct {
		name        string
		multisite   bool
		wantCached  bool
		wantRebuild int
	}{
		{"single site rebuilds at once", false, true, 1},
		{"network drops the entry", true, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			ts := newTestServices(t, tt.multisite)

			// Content changes behind the cache's back
			ts.store.PutPage(1, models.Page{ID: 20, Title: "New", Status: models.PageStatusPublish})

			if err := ts.hierarchy.HandleContentEvent(ctx, menuSvc.EventInsertPage); err != nil {
				t.Fatalf("HandleContentEvent() error = %v", err)
			}
			if ts.sites.lists != tt.wantRebuild {
				t.Errorf("rebuilds = %d, want %d", ts.sites.lists, tt.wantRebuild)
			}
			_, err := ts.transients.Get(ctx, config.HierarchyCacheKey)
			if cached := err == nil; cached != tt.wantCached {
				t.Errorf("cached = %v, want %v", cached, tt.wantCached)
			}

			snapshot, err := ts.hierarchy.Snapshot(ctx)
			if err != nil {
				t.Fatalf("Snapshot() error = %v", err)
			}
			found := false
			snapshot.Site(1).Walk(func(_ int, n *models.Node) {
				if n.Ref.Key() == "page-20" {
					found = true
				}
			})
			if !found {
				t.Error("new page missing after content event")
			}
		})
	}
}

func TestHierarchy_HandleContentEvent_Unknown(t *testing.T) {
	ts := newTestServices(t, false)

	err := ts.hierarchy.HandleContentEvent(context.Background(), menuSvc.ContentEvent("save_post"))
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("HandleContentEvent() error = %v, want ErrValidation", err)
	}
	if ts.sites.lists != 0 {
		t.Errorf("rebuilds = %d, want 0", ts.sites.lists)
	}
}

func TestHierarchy_BuildSite(t *testing.T) {
	ts := newTestServices(t, false)

	forest, err := ts.hierarchy.BuildSite(context.Background(), 1)
	if err != nil {
		t.Fatalf("BuildSite() error = %v", err)
	}
	want := []string{
		"category-1:0@1", "category-2:1@2", "page-10:2@3",
		"page-11:0@4", "page-12:1@5",
		"page-13:0@6",
	}
	if diff := cmp.Diff(want, forestShape(forest)); diff != "" {
		t.Errorf("BuildSite() mismatch (-want +got):\n%s", diff)
	}
	if forest.Site.URL != "https://example.com" {
		t.Errorf("Site.URL = %q", forest.Site.URL)
	}

	if _, err := ts.hierarchy.BuildSite(context.Background(), 99); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("BuildSite(99) error = %v, want ErrNotFound", err)
	}
}

// gatedPages holds the first page listing after it has read the store
// until release is closed
type gatedPages struct {
	menuRepo.PageRepository
	once    sync.Once
	read    chan struct{}
	release chan struct{}
}

func (g *gatedPages) ListBySite(ctx context.Context, siteID int64) ([]models.Page, error) {
	pages, err := g.PageRepository.ListBySite(ctx, siteID)
	g.once.Do(func() {
		close(g.read)
		<-g.release
	})
	return pages, err
}

func TestHierarchy_RefreshDoesNotReuseStaleBuild(t *testing.T) {
	ctx := context.Background()
	store := testNetwork()
	logger := discardLogger()
	pages := &gatedPages{
		PageRepository: memory.NewPageRepository(store),
		read:           make(chan struct{}),
		release:        make(chan struct{}),
	}
	hierarchy := NewHierarchyService(HierarchyConfig{
		Sites:      memory.NewSiteRepository(store),
		Categories: memory.NewCategoryRepository(store),
		Pages:      pages,
		Transients: memory.NewTransientRepository(store),
		Logger:     logger,
	})
	mutations := NewMutationService(MutationConfig{
		Categories: memory.NewCategoryRepository(store),
		Pages:      memory.NewPageRepository(store),
		TxManager:  memory.NewTransactionManager(store),
		Hierarchy:  hierarchy,
		Logger:     logger,
	})

	// A public render misses the cache and reads the store
	lazy := make(chan error, 1)
	go func() {
		_, err := hierarchy.Snapshot(ctx)
		lazy <- err
	}()
	<-pages.read

	// Contact moves to the top while that build is in flight
	_, err := mutations.ApplySubmission(ctx, 1, []models.SubmittedItem{
		root("page-13", 13, models.ObjectPage),
		root("category-1", 1, models.ObjectCategory),
		under("category-2", 2, models.ObjectCategory, cat(1)),
		under("page-10", 10, models.ObjectPage, cat(2)),
		root("page-11", 11, models.ObjectPage),
		under("page-12", 12, models.ObjectPage, page(11)),
	})
	if err != nil {
		t.Fatalf("ApplySubmission() error = %v", err)
	}

	close(pages.release)
	if err := <-lazy; err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	snapshot, err := hierarchy.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	forest := snapshot.Site(1)
	if got := forest.Nodes[forest.Roots[0]].Ref.Key(); got != "page-13" {
		t.Errorf("first root after saved reorder = %s, want page-13", got)
	}
}
