package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/MatzeKitt/km-advanced-menu/internal/config"
	"github.com/MatzeKitt/km-advanced-menu/internal/reorder"
	"github.com/MatzeKitt/km-advanced-menu/internal/repository/memory"
)

func TestHealthCheck(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var body map[string]string
	decodeJSON(t, rec, &body)
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
}

func TestPublicMenu(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		wantStatus   int
		wantContains []string
		wantMissing  []string
	}{
		{
			name:         "full menu marks the current page",
			query:        "?site=1&page_id=12",
			wantStatus:   http.StatusOK,
			wantContains: []string{`class="menu-item current-menu-ancestor current-page-ancestor current-menu-item"`, ">History</a>"},
		},
		{
			name:         "only_sub shows the current page's children",
			query:        "?only_sub=1&page_id=11",
			wantStatus:   http.StatusOK,
			wantContains: []string{"rh-collector-main-navigation", ">History</a>"},
			wantMissing:  []string{">Contact</a>", ">Team</a>"},
		},
		{
			name:         "depth limits nesting",
			query:        "?depth=1",
			wantStatus:   http.StatusOK,
			wantMissing:  []string{">Consulting</a>", ">History</a>"},
			wantContains: []string{">Services</a>"},
		},
		{
			name:        "false flags stay off",
			query:       "?arrows=false&only_sub=0",
			wantStatus:  http.StatusOK,
			wantMissing: []string{"drop-down-arrow", "rh-collector-main-navigation"},
		},
		{
			name:         "arrows",
			query:        "?arrows=1",
			wantStatus:   http.StatusOK,
			wantContains: []string{`<span class="drop-down-arrow"></span>`},
		},
		{name: "negative depth", query: "?depth=-1", wantStatus: http.StatusBadRequest},
		{name: "non-numeric depth", query: "?depth=two", wantStatus: http.StatusBadRequest},
		{name: "negative page", query: "?page_id=-3", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.principal = nil

			rec := env.do(http.MethodGet, "/menu"+tt.query, "", nil)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
				t.Errorf("Content-Type = %q, want text/html", ct)
			}
			body := rec.Body.String()
			for _, s := range tt.wantContains {
				if !strings.Contains(body, s) {
					t.Errorf("body missing %q:\n%s", s, body)
				}
			}
			for _, s := range tt.wantMissing {
				if strings.Contains(body, s) {
					t.Errorf("body should not contain %q:\n%s", s, body)
				}
			}
		})
	}
}

func TestGetEditRecords(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/sites/1/menu/edit", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp editResponse
	decodeJSON(t, rec, &resp)

	want := []string{
		"category-1:0", "category-2:1", "page-10:2",
		"page-11:0", "page-12:1", "page-13:0",
	}
	if diff := cmp.Diff(want, recordKeys(resp.Records)); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
	if resp.MaxDepth != 2 {
		t.Errorf("max_depth = %d, want 2", resp.MaxDepth)
	}
	if err := env.nonces.Verify(resp.Nonce, testUserID, config.MenuNonceAction); err != nil {
		t.Errorf("issued nonce does not verify: %v", err)
	}

	for _, target := range []string{"/api/sites/0/menu/edit", "/api/sites/abc/menu/edit"} {
		if rec := env.do(http.MethodGet, target, "", nil); rec.Code != http.StatusBadRequest {
			t.Errorf("GET %s status = %d, want %d", target, rec.Code, http.StatusBadRequest)
		}
	}
	if rec := env.do(http.MethodGet, "/api/sites/9/menu/edit", "", nil); rec.Code != http.StatusNotFound {
		t.Errorf("unknown site status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestPreviewThenSubmit(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/sites/1/menu/edit", "", nil)
	var edit editResponse
	decodeJSON(t, rec, &edit)

	// Contact goes under Team
	preview, _ := json.Marshal(previewRequest{
		Records:    edit.Records,
		Operations: []reorder.Operation{{Op: reorder.OpMove, Index: 5, Direction: string(reorder.Right)}},
	})
	rec = env.do(http.MethodPost, "/api/sites/1/menu/preview", string(preview), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("preview status = %d: %s", rec.Code, rec.Body.String())
	}
	var result reorder.Result
	decodeJSON(t, rec, &result)
	if !result.Changed {
		t.Error("preview changed = false, want true")
	}
	contact := result.Records[5]
	if contact.Depth != 1 || contact.ParentID != 11 {
		t.Errorf("Contact after preview = %+v, want depth 1 under page 11", contact)
	}

	// Preview does not write
	if diff := cmp.Diff(recordKeys(edit.Records), env.storedKeys(t)); diff != "" {
		t.Errorf("preview changed the store (-want +got):\n%s", diff)
	}

	submit, _ := json.Marshal(submitRequest{Records: result.Records})
	rec = env.do(http.MethodPost, "/api/sites/1/menu", string(submit), map[string]string{"X-WP-Nonce": edit.Nonce})
	if rec.Code != http.StatusOK {
		t.Fatalf("submit status = %d: %s", rec.Code, rec.Body.String())
	}

	want := []string{
		"category-1:0", "category-2:1", "page-10:2",
		"page-11:0", "page-12:1", "page-13:1",
	}
	if diff := cmp.Diff(want, env.storedKeys(t)); diff != "" {
		t.Errorf("stored menu mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitRecords_BadNonce(t *testing.T) {
	env := newTestEnv(t)
	before := env.storedKeys(t)

	body := `{"records":[{"id":13,"object":"page","object_type":"post_type","position":1,"depth":0}]}`
	for _, nonce := range []string{"", "forged"} {
		rec := env.do(http.MethodPost, "/api/sites/1/menu", body, map[string]string{"X-WP-Nonce": nonce})
		if rec.Code != http.StatusForbidden {
			t.Errorf("nonce %q: status = %d, want %d", nonce, rec.Code, http.StatusForbidden)
		}
	}
	if diff := cmp.Diff(before, env.storedKeys(t)); diff != "" {
		t.Errorf("store changed (-want +got):\n%s", diff)
	}
}

func TestSubmitRecords_Invalid(t *testing.T) {
	env := newTestEnv(t)
	headers := map[string]string{"X-WP-Nonce": env.nonce(t)}

	if rec := env.do(http.MethodPost, "/api/sites/1/menu", "{", headers); rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	body := `{"records":[{"id":0,"object":"page","object_type":"post_type"}]}`
	if rec := env.do(http.MethodPost, "/api/sites/1/menu", body, headers); rec.Code != http.StatusBadRequest {
		t.Errorf("zero id status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestPreview_InvalidOperation(t *testing.T) {
	env := newTestEnv(t)

	body := `{"records":[],"operations":[{"op":"spin","index":0}]}`
	rec := env.do(http.MethodPost, "/api/sites/1/menu/preview", body, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestSetCategoryOrder(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		body       string
		wantStatus int
		wantOrder  int
	}{
		{"number", "/api/sites/1/categories/2/menu-order", `{"menu_order": 4}`, http.StatusNoContent, 4},
		{"numeric string", "/api/sites/1/categories/2/menu-order", `{"menu_order": "9"}`, http.StatusNoContent, 9},
		{"null clears", "/api/sites/1/categories/1/menu-order", `{"menu_order": null}`, http.StatusNoContent, 0},
		{"empty clears", "/api/sites/1/categories/1/menu-order", `{"menu_order": ""}`, http.StatusNoContent, 0},
		{"absent", "/api/sites/1/categories/2/menu-order", `{}`, http.StatusBadRequest, 0},
		{"not a number", "/api/sites/1/categories/2/menu-order", `{"menu_order": "soon"}`, http.StatusBadRequest, 0},
		{"missing category", "/api/sites/1/categories/42/menu-order", `{"menu_order": 1}`, http.StatusNotFound, 0},
		{"bad id", "/api/sites/1/categories/x/menu-order", `{"menu_order": 1}`, http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			rec := env.do(http.MethodPut, tt.target, tt.body, nil)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusNoContent {
				return
			}

			id := int64(2)
			if strings.Contains(tt.target, "/categories/1/") {
				id = 1
			}
			c, err := memory.NewCategoryRepository(env.store).GetByID(context.Background(), 1, id)
			if err != nil {
				t.Fatalf("GetByID() error = %v", err)
			}
			if c.MenuOrder != tt.wantOrder {
				t.Errorf("MenuOrder = %d, want %d", c.MenuOrder, tt.wantOrder)
			}
		})
	}
}

func TestContentEvent(t *testing.T) {
	env := newTestEnv(t)

	if rec := env.do(http.MethodPost, "/api/hooks/content", `{"event":"delete_post"}`, nil); rec.Code != http.StatusAccepted {
		t.Errorf("known event status = %d, want %d", rec.Code, http.StatusAccepted)
	}
	if rec := env.do(http.MethodPost, "/api/hooks/content", `{"event":"save_widget"}`, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown event status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
