package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/MatzeKitt/km-advanced-menu/internal/auth"
	"github.com/MatzeKitt/km-advanced-menu/internal/config"
	models "github.com/MatzeKitt/km-advanced-menu/internal/domain/models/menu"
	"github.com/MatzeKitt/km-advanced-menu/internal/httputil"
	"github.com/MatzeKitt/km-advanced-menu/internal/repository/memory"
	"github.com/MatzeKitt/km-advanced-menu/internal/seed"
	menuService "github.com/MatzeKitt/km-advanced-menu/internal/service/menu"
)

const testUserID = "user-1"

// testEnv is a server over an in-memory network. Site 1 starts as
//
//	Services (category 1)
//	  Consulting (category 2)
//	    Strategy (page 10)
//	Team (page 11)
//	  History (page 12)
//	Contact (page 13)
type testEnv struct {
	store     *memory.Store
	nonces    *auth.HMACNonceManager
	principal *httputil.Principal
	handler   http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStoreFromFixture(&seed.Fixture{Sites: []seed.SiteFixture{
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
	}})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	nonces, err := auth.NewNonceManager("test-secret-test-secret-test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewNonceManager() error = %v", err)
	}

	hierarchy := menuService.NewHierarchyService(menuService.HierarchyConfig{
		Sites:      memory.NewSiteRepository(store),
		Categories: memory.NewCategoryRepository(store),
		Pages:      memory.NewPageRepository(store),
		Transients: memory.NewTransientRepository(store),
		Logger:     logger,
	})
	mutations := menuService.NewMutationService(menuService.MutationConfig{
		Categories: memory.NewCategoryRepository(store),
		Pages:      memory.NewPageRepository(store),
		TxManager:  memory.NewTransactionManager(store),
		Hierarchy:  hierarchy,
		Logger:     logger,
	})
	menu := menuService.NewMenuService(hierarchy, menuService.NewPublicRenderer(nil), logger)

	menuHandler := NewMenuHandler(menu, mutations, hierarchy, nonces, 1, logger)
	adminHandler := NewAdminHandler(menu, mutations, nonces, 1, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", menuHandler.HealthCheck)
	mux.HandleFunc("GET /menu", menuHandler.PublicMenu)
	mux.HandleFunc("GET /admin/menu", adminHandler.Page)
	mux.HandleFunc("POST /admin/menu", adminHandler.Submit)
	mux.HandleFunc("GET /api/sites/{site}/menu/edit", menuHandler.GetEditRecords)
	mux.HandleFunc("POST /api/sites/{site}/menu", menuHandler.SubmitRecords)
	mux.HandleFunc("POST /api/sites/{site}/menu/preview", menuHandler.Preview)
	mux.HandleFunc("PUT /api/sites/{site}/categories/{id}/menu-order", menuHandler.SetCategoryOrder)
	mux.HandleFunc("POST /api/hooks/content", menuHandler.ContentEvent)

	env := &testEnv{
		store:  store,
		nonces: nonces,
		principal: &httputil.Principal{
			UserID:       testUserID,
			Capabilities: []string{config.EditMenuCapability},
		},
	}
	env.handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if env.principal != nil {
			r = httputil.WithPrincipal(r, *env.principal)
		}
		mux.ServeHTTP(w, r)
	})
	return env
}

func (e *testEnv) do(method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) nonce(t *testing.T) string {
	t.Helper()
	n, err := e.nonces.Issue(testUserID, config.MenuNonceAction)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	return n
}

// storedKeys returns "<key>:<depth>" of site 1 as stored
func (e *testEnv) storedKeys(t *testing.T) []string {
	t.Helper()
	rec := e.do(http.MethodGet, "/api/sites/1/menu/edit", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET edit records status = %d", rec.Code)
	}
	var resp editResponse
	decodeJSON(t, rec, &resp)
	return recordKeys(resp.Records)
}

func recordKeys(records []models.NodeRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Key()+":"+strconv.Itoa(r.Depth))
	}
	return out
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dest); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}
