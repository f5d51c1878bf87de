package menu

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	models "github.com/MatzeKitt/km-advanced-menu/internal/domain/models/menu"
	menuRepo "github.com/MatzeKitt/km-advanced-menu/internal/domain/repositories/menu"
	menuSvc "github.com/MatzeKitt/km-advanced-menu/internal/domain/services/menu"
	"github.com/MatzeKitt/km-advanced-menu/internal/repository/memory"
	"github.com/MatzeKitt/km-advanced-menu/internal/seed"
)

// testNetwork is the store behind the service tests. Site 1 renders as
//
//	Services (category 1)         @1
//	  Consulting (category 2)     @2
//	    Strategy (page 10)        @3
//	Team (page 11)                @4
//	  History (page 12)           @5
//	Contact (page 13)             @6
func testNetwork() *memory.Store {
	return memory.NewStoreFromFixture(&seed.Fixture{Sites: []seed.SiteFixture{
		{
			ID: 1, Name: "Main", URL: "https://example.com",
			Categories: []models.Category{
				{ID: 1, Name: "Services", Slug: "services", MenuOrder: 1},
				{ID: 2, Name: "Consulting", Slug: "consulting", ParentID: 1},
			},
			Pages: []models.Page{
				{ID: 10, Title: "Strategy", Slug: "strategy", Status: models.PageStatusPublish, CategoryIDs: []int64{2}},
				{ID: 11, Title: "Team", Slug: "team", Status: models.PageStatusPublish},
				{ID: 12, Title: "History", Slug: "history", Status: models.PageStatusPublish, ParentID: 11},
				{ID: 13, Title: "Contact", Slug: "contact", Status: models.PageStatusPublish},
			},
		},
		{
			ID: 2, Name: "Blog", URL: "https://blog.example.com",
			Pages: []models.Page{
				{ID: 5, Title: "Archive", Slug: "archive", Status: models.PageStatusPublish},
			},
		},
	}})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// countingSites counts full rebuilds
type countingSites struct {
	menuRepo.SiteRepository
	lists int
}

func (c *countingSites) List(ctx context.Context) ([]models.Site, error) {
	c.lists++
	return c.SiteRepository.List(ctx)
}

type testServices struct {
	store      *memory.Store
	sites      *countingSites
	transients menuRepo.TransientRepository
	hierarchy  menuSvc.HierarchyService
	mutations  menuSvc.MutationService
	menu       menuSvc.MenuService
}

func newTestServices(t *testing.T, multisite bool) *testServices {
	t.Helper()
	store := testNetwork()
	logger := discardLogger()

	ts := &testServices{
		store:      store,
		sites:      &countingSites{SiteRepository: memory.NewSiteRepository(store)},
		transients: memory.NewTransientRepository(store),
	}
	ts.hierarchy = NewHierarchyService(HierarchyConfig{
		Sites:      ts.sites,
		Categories: memory.NewCategoryRepository(store),
		Pages:      memory.NewPageRepository(store),
		Transients: ts.transients,
		Multisite:  multisite,
		Logger:     logger,
	})
	ts.mutations = NewMutationService(MutationConfig{
		Categories: memory.NewCategoryRepository(store),
		Pages:      memory.NewPageRepository(store),
		TxManager:  memory.NewTransactionManager(store),
		Hierarchy:  ts.hierarchy,
		Logger:     logger,
	})
	ts.menu = NewMenuService(ts.hierarchy, NewPublicRenderer(nil), logger)
	return ts
}

// recordKeys lists "<key>:<depth>" of an edit list
func recordKeys(records []models.NodeRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, fmt.Sprintf("%s:%d", r.Key(), r.Depth))
	}
	return out
}
