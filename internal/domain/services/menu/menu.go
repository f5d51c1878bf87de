package menu

import (
	"context"
	"html/template"

	"github.com/MatzeKitt/km-advanced-menu/internal/domain/models/menu"
)

// ContentEvent names a structural change in the content store.
type ContentEvent string

const (
	EventCreatedCategory ContentEvent = "created_category"
	EventEditedCategory  ContentEvent = "edited_category"
	EventDeleteCategory  ContentEvent = "delete_category"
	EventDeletePost      ContentEvent = "delete_post"
	EventInsertPage      ContentEvent = "rest_after_insert_page"
)

// Valid reports whether the event is one the menu reacts to.
func (e ContentEvent) Valid() bool {
	switch e {
	case EventCreatedCategory, EventEditedCategory, EventDeleteCategory, EventDeletePost, EventInsertPage:
		return true
	}
	return false
}

// HierarchyService owns the cached snapshot of every site's menu
type HierarchyService interface {
	// Snapshot returns the cached snapshot, building and storing it on a miss
	Snapshot(ctx context.Context) (*menu.Snapshot, error)

	// Refresh rebuilds the snapshot and stores it
	Refresh(ctx context.Context) (*menu.Snapshot, error)

	// Invalidate drops the stored snapshot
	Invalidate(ctx context.Context) error

	// BuildSite builds one site's forest from the store, bypassing the cache
	BuildSite(ctx context.Context, siteID int64) (*menu.Forest, error)

	// HandleContentEvent refreshes or drops the snapshot after a content change
	HandleContentEvent(ctx context.Context, event ContentEvent) error
}

// MenuService renders the menu for visitors and editors
type MenuService interface {
	// RenderPublic renders the navigation markup for a visitor
	RenderPublic(ctx context.Context, opts menu.Options, current menu.Current) (template.HTML, error)

	// EditRecords returns the flat edit list of a site, never cached
	EditRecords(ctx context.Context, siteID int64) ([]menu.NodeRecord, error)
}

// MutationService writes a submitted menu back to the store
type MutationService interface {
	// ApplySubmission applies parent and order changes, then refreshes the cache
	ApplySubmission(ctx context.Context, siteID int64, items []menu.SubmittedItem) (*menu.MutationResult, error)

	// SetCategoryOrder stores the order field of one category; empty deletes it
	SetCategoryOrder(ctx context.Context, siteID, categoryID int64, value string) error
}
