package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MatzeKitt/km-advanced-menu/internal/domain/models/menu"
)

// Fixture is the YAML description of a network: its sites and each
// site's categories and pages.
type Fixture struct {
	Sites []SiteFixture `yaml:"sites"`
}

// SiteFixture is one site of a fixture
type SiteFixture struct {
	ID         int64           `yaml:"id"`
	Name       string          `yaml:"name"`
	URL        string          `yaml:"url"`
	Categories []menu.Category `yaml:"categories"`
	Pages      []menu.Page     `yaml:"pages"`
}

// Site returns the site record
func (s SiteFixture) Site() menu.Site {
	return menu.Site{ID: s.ID, Name: s.Name, URL: s.URL}
}

// SiteIDs returns the ids of every fixture site
func (f *Fixture) SiteIDs() []int64 {
	ids := make([]int64, 0, len(f.Sites))
	for _, s := range f.Sites {
		ids = append(ids, s.ID)
	}
	return ids
}

// LoadFixture reads a fixture file
func LoadFixture(path string) (*Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return ParseFixture(raw)
}

// ParseFixture decodes and checks a fixture. Pages without a status are
// published.
func ParseFixture(raw []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}

	seen := make(map[int64]bool)
	for i := range f.Sites {
		site := &f.Sites[i]
		if site.ID <= 0 {
			return nil, fmt.Errorf("site %d: id must be positive", i)
		}
		if seen[site.ID] {
			return nil, fmt.Errorf("site %d: duplicate id", site.ID)
		}
		seen[site.ID] = true

		for j := range site.Pages {
			if site.Pages[j].Status == "" {
				site.Pages[j].Status = menu.PageStatusPublish
			}
		}
	}
	return &f, nil
}
