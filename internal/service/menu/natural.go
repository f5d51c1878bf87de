package menu

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	models "github.com/MatzeKitt/km-advanced-menu/internal/domain/models/menu"
)

// sortSites puts the requesting site first and the others in
// case-insensitive natural order of their names ("Site 2" < "site 10").
func sortSites(sites []models.Forest, currentSiteID int64) []models.Forest {
	out := make([]models.Forest, len(sites))
	copy(out, sites)

	// Collators are not safe for concurrent use
	col := collate.New(language.Und, collate.IgnoreCase, collate.Numeric)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Site, out[j].Site
		if a.ID == currentSiteID || b.ID == currentSiteID {
			return a.ID == currentSiteID && b.ID != currentSiteID
		}
		return col.CompareString(a.Name, b.Name) < 0
	})
	return out
}
