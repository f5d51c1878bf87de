package seed

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/MatzeKitt/km-advanced-menu/internal/domain/models/menu"
)

func TestParseFixture(t *testing.T) {
	raw := []byte(`
sites:
  - id: 1
    name: Main
    url: https://example.com
    categories:
      - {id: 3, name: News, slug: news, menu_order: 2}
      - {id: 4, name: Local, slug: local, parent: 3}
    pages:
      - {id: 10, title: About, slug: about}
      - {id: 11, title: Team, slug: team, parent: 10, status: draft, categories: [3, 4]}
`)

	f, err := ParseFixture(raw)
	if err != nil {
		t.Fatalf("ParseFixture() error = %v", err)
	}
	if len(f.Sites) != 1 {
		t.Fatalf("len(Sites) = %d, want 1", len(f.Sites))
	}

	site := f.Sites[0]
	if diff := cmp.Diff(menu.Site{ID: 1, Name: "Main", URL: "https://example.com"}, site.Site()); diff != "" {
		t.Errorf("Site() mismatch (-want +got):\n%s", diff)
	}

	wantCats := []menu.Category{
		{ID: 3, Name: "News", Slug: "news", MenuOrder: 2},
		{ID: 4, Name: "Local", Slug: "local", ParentID: 3},
	}
	if diff := cmp.Diff(wantCats, site.Categories); diff != "" {
		t.Errorf("Categories mismatch (-want +got):\n%s", diff)
	}

	wantPages := []menu.Page{
		{ID: 10, Title: "About", Slug: "about", Status: menu.PageStatusPublish},
		{ID: 11, Title: "Team", Slug: "team", Status: "draft", ParentID: 10, CategoryIDs: []int64{3, 4}},
	}
	if diff := cmp.Diff(wantPages, site.Pages); diff != "" {
		t.Errorf("Pages mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFixture_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"bad yaml", "sites: ["},
		{"missing id", "sites:\n  - name: x\n"},
		{"duplicate id", "sites:\n  - id: 1\n  - id: 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseFixture([]byte(tt.raw)); err == nil {
				t.Error("ParseFixture() error = nil, want error")
			}
		})
	}
}

func TestLoadFixture_DevelopmentNetwork(t *testing.T) {
	f, err := LoadFixture("../../fixtures/network.yaml")
	if err != nil {
		t.Fatalf("LoadFixture() error = %v", err)
	}

	if diff := cmp.Diff([]int64{1, 2, 10}, f.SiteIDs()); diff != "" {
		t.Errorf("SiteIDs() mismatch (-want +got):\n%s", diff)
	}
	for _, p := range f.Sites[0].Pages {
		if p.Status == "" {
			t.Errorf("page %d has no status", p.ID)
		}
	}
}
