package config

import "time"

const (
	// GlobalMaxDepth is the deepest level an item can be moved to in the
	// editor. Depth 0 is the top level.
	GlobalMaxDepth = 11

	// DepthWidthPx is the horizontal indent of one menu level in the
	// editor. Pointer offsets are divided by it to get a depth.
	DepthWidthPx = 30

	// DefaultMenuOrder is the order key of categories and pages that have
	// no explicit order. It sorts them after every ordered item.
	DefaultMenuOrder = 100000

	// MaxMenuOrder bounds the category order field.
	MaxMenuOrder = 1000000

	// HierarchyCacheKey is the network-wide transient holding the
	// assembled menu of every site.
	HierarchyCacheKey = "km_advanced_menu_hierarchy"

	// HierarchyCacheTTL is how long the assembled menu stays cached.
	HierarchyCacheTTL = 24 * time.Hour

	// MenuNonceAction is the action the admin form's authenticity token
	// is bound to.
	MenuNonceAction = "km-advanced-menu-menu"

	// EditMenuCapability is required to view and save the menu structure.
	EditMenuCapability = "edit_theme_options"

	// ManageCategoriesCapability is required to change a category's order
	// field.
	ManageCategoriesCapability = "manage_categories"

	// MaxSubmittedItems caps one submission. Typical menus have tens to
	// low hundreds of items.
	MaxSubmittedItems = 5000

	// NoTitlePlaceholder replaces empty category and page titles.
	NoTitlePlaceholder = "(no title)"
)
