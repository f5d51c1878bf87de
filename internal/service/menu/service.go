package menu

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"

	models "github.com/MatzeKitt/km-advanced-menu/internal/domain/models/menu"
	menuSvc "github.com/MatzeKitt/km-advanced-menu/internal/domain/services/menu"
)

// menuService implements the MenuService interface
type menuService struct {
	hierarchy menuSvc.HierarchyService
	renderer  *PublicRenderer
	logger    *slog.Logger
}

// NewMenuService creates a new menu service
func NewMenuService(hierarchy menuSvc.HierarchyService, renderer *PublicRenderer, logger *slog.Logger) menuSvc.MenuService {
	return &menuService{
		hierarchy: hierarchy,
		renderer:  renderer,
		logger:    logger,
	}
}

// RenderPublic renders the cached snapshot for a visitor
func (s *menuService) RenderPublic(ctx context.Context, opts models.Options, current models.Current) (template.HTML, error) {
	if err := ValidateOptions(opts); err != nil {
		return "", err
	}

	snapshot, err := s.hierarchy.Snapshot(ctx)
	if err != nil {
		return "", fmt.Errorf("load menu hierarchy: %w", err)
	}

	out, err := s.renderer.RenderPublicMenu(snapshot, opts, current)
	if err != nil {
		return "", err
	}
	s.logger.Debug("public menu rendered",
		"site_id", current.SiteID,
		"only_sub", opts.OnlySub,
		"depth", opts.Depth,
	)
	return out, nil
}

// EditRecords builds the site from the store and flattens it
func (s *menuService) EditRecords(ctx context.Context, siteID int64) ([]models.NodeRecord, error) {
	forest, err := s.hierarchy.BuildSite(ctx, siteID)
	if err != nil {
		return nil, err
	}
	return RenderEditTree(forest), nil
}
