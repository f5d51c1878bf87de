package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"

	"github.com/MatzeKitt/km-advanced-menu/internal/httputil"
)

// adminForm is a parsed admin page
type adminForm struct {
	doc *goquery.Document
}

func parseAdminPage(t *testing.T, rec *httptest.ResponseRecorder) *adminForm {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	if err != nil {
		t.Fatalf("parse admin page: %v", err)
	}
	return &adminForm{doc: doc}
}

// rows returns "<li id>|<li class>" per list row
func (f *adminForm) rows() []string {
	var out []string
	f.doc.Find("#menu-to-edit > li").Each(func(_ int, li *goquery.Selection) {
		out = append(out, li.AttrOr("id", "")+"|"+li.AttrOr("class", ""))
	})
	return out
}

// body encodes the form's inputs in document order, plus extra fields
func (f *adminForm) body(extra ...string) string {
	var pairs []string
	f.doc.Find("form input").Each(func(_ int, in *goquery.Selection) {
		pairs = append(pairs, url.QueryEscape(in.AttrOr("name", ""))+"="+url.QueryEscape(in.AttrOr("value", "")))
	})
	for i := 0; i+1 < len(extra); i += 2 {
		pairs = append(pairs, url.QueryEscape(extra[i])+"="+url.QueryEscape(extra[i+1]))
	}
	return strings.Join(pairs, "&")
}

func (f *adminForm) input(name string) string {
	return f.doc.Find(`form input[name="`+name+`"]`).AttrOr("value", "")
}

var formHeaders = map[string]string{"Content-Type": "application/x-www-form-urlencoded"}

func TestAdminPage(t *testing.T) {
	env := newTestEnv(t)

	page := parseAdminPage(t, env.do(http.MethodGet, "/admin/menu?site=1", "", nil))

	want := []string{
		"menu-item-category-1|menu-item menu-item-category menu-item-depth-0",
		"menu-item-category-2|menu-item menu-item-category menu-item-depth-1",
		"menu-item-page-10|menu-item menu-item-page menu-item-depth-2",
		"menu-item-page-11|menu-item menu-item-page menu-item-depth-0",
		"menu-item-page-12|menu-item menu-item-page menu-item-depth-1",
		"menu-item-page-13|menu-item menu-item-page menu-item-depth-0",
	}
	if diff := cmp.Diff(want, page.rows()); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	if got := page.doc.Find("body").AttrOr("class", ""); got != "km-advanced-menu-admin menu-item-max-depth-2" {
		t.Errorf("body class = %q", got)
	}
	if got := page.doc.Find("form").AttrOr("action", ""); got != "/admin/menu?site=1" {
		t.Errorf("form action = %q", got)
	}
	if got := page.input("menu-item-parent-type[page-12][]"); got != "post_type" {
		t.Errorf("History parent type = %q, want post_type", got)
	}
	if got := page.doc.Find("button.menus-move").Length(); got != 30 {
		t.Errorf("move buttons = %d, want 30", got)
	}
	if page.doc.Find(".notice").Length() != 0 {
		t.Error("fresh page shows a notice")
	}
}

func TestAdminSubmit_MoveThenSave(t *testing.T) {
	env := newTestEnv(t)
	stored := env.storedKeys(t)

	page := parseAdminPage(t, env.do(http.MethodGet, "/admin/menu?site=1", "", nil))

	// Team moves above Strategy and takes its depth
	moved := parseAdminPage(t, env.do(http.MethodPost, "/admin/menu?site=1", page.body("move", "3:up"), formHeaders))

	wantRows := []string{
		"menu-item-category-1|menu-item menu-item-category menu-item-depth-0",
		"menu-item-category-2|menu-item menu-item-category menu-item-depth-1",
		"menu-item-page-11|menu-item menu-item-page menu-item-depth-2",
		"menu-item-page-12|menu-item menu-item-page menu-item-depth-3",
		"menu-item-page-10|menu-item menu-item-page menu-item-depth-2",
		"menu-item-page-13|menu-item menu-item-page menu-item-depth-0",
	}
	if diff := cmp.Diff(wantRows, moved.rows()); diff != "" {
		t.Errorf("rows after move mismatch (-want +got):\n%s", diff)
	}
	if got := moved.input("menu-changed"); got != "1" {
		t.Errorf("menu-changed = %q, want 1", got)
	}
	if moved.doc.Find(".menu-unsaved").Length() != 1 {
		t.Error("unsaved notice missing")
	}
	if got := moved.input("menu-item-parent-id[page-11][]"); got != "2" {
		t.Errorf("Team parent id = %q, want 2", got)
	}
	if diff := cmp.Diff(stored, env.storedKeys(t)); diff != "" {
		t.Errorf("move wrote to the store (-want +got):\n%s", diff)
	}

	saved := parseAdminPage(t, env.do(http.MethodPost, "/admin/menu?site=1", moved.body("save-sorting", "1"), formHeaders))
	if saved.doc.Find(".notice-success").Length() != 1 {
		t.Error("saved notice missing")
	}
	if got := saved.input("menu-changed"); got != "0" {
		t.Errorf("menu-changed after save = %q, want 0", got)
	}

	want := []string{
		"category-1:0", "category-2:1", "page-11:2", "page-12:3", "page-10:2",
		"page-13:0",
	}
	if diff := cmp.Diff(want, env.storedKeys(t)); diff != "" {
		t.Errorf("stored menu mismatch (-want +got):\n%s", diff)
	}
}

func TestAdminSubmit_BoundaryMoveKeepsFlag(t *testing.T) {
	env := newTestEnv(t)
	page := parseAdminPage(t, env.do(http.MethodGet, "/admin/menu?site=1", "", nil))

	// Moving the first row up changes nothing
	same := parseAdminPage(t, env.do(http.MethodPost, "/admin/menu?site=1", page.body("move", "0:up"), formHeaders))
	if got := same.input("menu-changed"); got != "0" {
		t.Errorf("menu-changed = %q, want 0", got)
	}
	if diff := cmp.Diff(page.rows(), same.rows()); diff != "" {
		t.Errorf("rows changed (-want +got):\n%s", diff)
	}
}

func TestAdminSubmit_Ignored(t *testing.T) {
	tests := []struct {
		name       string
		principal  *httputil.Principal
		nonce      string
		wantStatus int
	}{
		{"anonymous", nil, "", http.StatusNoContent},
		{"missing capability", &httputil.Principal{UserID: testUserID, Capabilities: []string{"read"}}, "", http.StatusNoContent},
		{"forged nonce", nil, "forged", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			before := env.storedKeys(t)
			page := parseAdminPage(t, env.do(http.MethodGet, "/admin/menu?site=1", "", nil))

			body := page.body("move", "5:top")
			if tt.nonce != "" {
				body = strings.Replace(body, "_wpnonce="+url.QueryEscape(page.input("_wpnonce")), "_wpnonce="+tt.nonce, 1)
			} else {
				env.principal = tt.principal
			}

			rec := env.do(http.MethodPost, "/admin/menu?site=1", body, formHeaders)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if rec.Code == http.StatusOK {
				// The stored list is shown again, untouched by the move
				again := parseAdminPage(t, rec)
				if diff := cmp.Diff(page.rows(), again.rows()); diff != "" {
					t.Errorf("rows mismatch (-want +got):\n%s", diff)
				}
			}

			env.principal = &httputil.Principal{UserID: testUserID}
			if diff := cmp.Diff(before, env.storedKeys(t)); diff != "" {
				t.Errorf("store changed (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAdminSubmit_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		extra string
	}{
		{"field before any row", "menu-item-parent-id%5Bpage-1%5D%5B%5D=0"},
		{"unknown object", "menu-item-db-id%5Bpost-1%5D=1"},
		{"bad move", "menu-item-db-id%5Bpage-13%5D=13&move=first"},
		{"bad direction", "menu-item-db-id%5Bpage-13%5D=13&move=0%3Asideways"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			body := "_wpnonce=" + url.QueryEscape(env.nonce(t)) + "&" + tt.extra

			rec := env.do(http.MethodPost, "/admin/menu?site=1", body, formHeaders)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d: %s", rec.Code, http.StatusBadRequest, rec.Body.String())
			}
		})
	}
}
