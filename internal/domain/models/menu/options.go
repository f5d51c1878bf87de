package menu

// Options are the public menu attributes.
type Options struct {
	Arrows          bool `json:"arrows"`
	Depth           int  `json:"depth"` // 0 = unlimited
	OnlyCurrentSite bool `json:"only_current_site"`
	OnlySub         bool `json:"only_sub"`
}

// Current is what the requesting page is: its site and the queried
// category or page. Zero IDs mean "none".
type Current struct {
	SiteID   int64 `json:"site_id"`
	Category int64 `json:"cat"`
	Page     int64 `json:"page_id"`
}

// Is reports whether ref is the current category or page.
func (c Current) Is(ref Ref) bool {
	switch ref.Object {
	case ObjectCategory:
		return c.Category != 0 && c.Category == ref.ID
	case ObjectPage:
		return c.Page != 0 && c.Page == ref.ID
	}
	return false
}

// Ref returns the queried object. A queried page wins over a category.
func (c Current) Ref() (Ref, bool) {
	if c.Page != 0 {
		return Ref{Object: ObjectPage, ID: c.Page}, true
	}
	if c.Category != 0 {
		return Ref{Object: ObjectCategory, ID: c.Category}, true
	}
	return Ref{}, false
}
