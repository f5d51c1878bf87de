package menu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MatzeKitt/km-advanced-menu/internal/domain"
	models "github.com/MatzeKitt/km-advanced-menu/internal/domain/models/menu"
	"github.com/MatzeKitt/km-advanced-menu/internal/domain/repositories"
	menuRepo "github.com/MatzeKitt/km-advanced-menu/internal/domain/repositories/menu"
	menuSvc "github.com/MatzeKitt/km-advanced-menu/internal/domain/services/menu"
)

// MutationConfig holds the collaborators of the mutation service
type MutationConfig struct {
	Categories menuRepo.CategoryRepository
	Pages      menuRepo.PageRepository
	TxManager  repositories.TransactionManager
	Hierarchy  menuSvc.HierarchyService
	Logger     *slog.Logger
}

// mutationService implements the MutationService interface
type mutationService struct {
	categories menuRepo.CategoryRepository
	pages      menuRepo.PageRepository
	txManager  repositories.TransactionManager
	hierarchy  menuSvc.HierarchyService
	logger     *slog.Logger
}

// NewMutationService creates a new mutation service
func NewMutationService(cfg MutationConfig) menuSvc.MutationService {
	return &mutationService{
		categories: cfg.Categories,
		pages:      cfg.Pages,
		txManager:  cfg.TxManager,
		hierarchy:  cfg.Hierarchy,
		logger:     cfg.Logger,
	}
}

// ApplySubmission compares a submitted flat menu with the store, writes
// only what differs and refreshes the cached hierarchy.
//
// Items are visited in submitted order and numbered from 1; the number is
// the new order value of the item. Items missing from the store are
// skipped without taking a number.
func (s *mutationService) ApplySubmission(ctx context.Context, siteID int64, items []models.SubmittedItem) (*models.MutationResult, error) {
	if err := validateSubmission(items); err != nil {
		return nil, err
	}

	result := &models.MutationResult{
		Terms: []models.TermUpdate{},
		Posts: []models.PostUpdate{},
	}

	position := 1
	for _, item := range items {
		switch item.Type {
		case models.TypeTaxonomy:
			update, err := s.planTerm(ctx, siteID, item, position)
			if errors.Is(err, domain.ErrNotFound) {
				s.logger.Debug("skipping missing category", "site_id", siteID, "id", item.ObjectID)
				result.Skipped = append(result.Skipped, item.Key)
				continue
			}
			if err != nil {
				return nil, err
			}
			if update != nil {
				result.Terms = append(result.Terms, *update)
			}
		case models.TypePostType:
			update, err := s.planPost(ctx, siteID, item, position)
			if errors.Is(err, domain.ErrNotFound) {
				s.logger.Debug("skipping missing page", "site_id", siteID, "id", item.ObjectID)
				result.Skipped = append(result.Skipped, item.Key)
				continue
			}
			if err != nil {
				return nil, err
			}
			if update != nil {
				result.Posts = append(result.Posts, *update)
			}
		}
		position++
	}

	if result.Writes() > 0 {
		err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
			return s.apply(txCtx, siteID, result)
		})
		if err != nil {
			return nil, fmt.Errorf("apply menu submission: %w", err)
		}
	}

	if _, err := s.hierarchy.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("refresh menu hierarchy: %w", err)
	}

	s.logger.Info("menu submission applied",
		"site_id", siteID,
		"items", len(items),
		"writes", result.Writes(),
		"skipped", len(result.Skipped),
	)
	return result, nil
}

// planTerm decides the updates of one category. Categories have a single
// parent: the chain is scanned until the stored parent shows up, and the
// last category-typed entry before that wins.
func (s *mutationService) planTerm(ctx context.Context, siteID int64, item models.SubmittedItem, position int) (*models.TermUpdate, error) {
	term, err := s.categories.GetByID(ctx, siteID, item.ObjectID)
	if err != nil {
		return nil, err
	}

	update := models.TermUpdate{ID: term.ID}
	for _, parent := range item.Parents {
		if term.ParentID == parent.ID {
			break
		}
		if parent.Type == models.TypeTaxonomy || parent.Type == "" {
			id := parent.ID
			update.Parent = &id
		}
	}
	if term.MenuOrder != position {
		order := position
		update.MenuOrder = &order
	}

	if update.Parent == nil && update.MenuOrder == nil {
		return nil, nil
	}
	return &update, nil
}

// planPost decides the updates of one page. Every category entry of the
// chain becomes a category of the page; the last page entry becomes its
// parent.
func (s *mutationService) planPost(ctx context.Context, siteID int64, item models.SubmittedItem, position int) (*models.PostUpdate, error) {
	page, err := s.pages.GetByID(ctx, siteID, item.ObjectID)
	if err != nil {
		return nil, err
	}

	categories := []int64{}
	var parentPost int64
	for _, parent := range item.Parents {
		switch parent.Type {
		case models.TypeTaxonomy:
			categories = appendUnique(categories, parent.ID)
		case models.TypePostType:
			parentPost = parent.ID
		}
	}

	update := models.PostUpdate{ID: page.ID}
	if page.MenuOrder != position || page.ParentID != parentPost {
		update.Fields = &models.PostFields{MenuOrder: position, ParentID: parentPost}
	}
	if !sameIDSet(page.CategoryIDs, categories) {
		update.SetCats = true
		update.Categories = categories
	}

	if update.Fields == nil && !update.SetCats {
		return nil, nil
	}
	return &update, nil
}

// apply writes the planned updates: for categories the parent before the
// order meta, for pages the fields before the categories.
func (s *mutationService) apply(ctx context.Context, siteID int64, result *models.MutationResult) error {
	for _, t := range result.Terms {
		if t.Parent != nil {
			if err := s.categories.UpdateParent(ctx, siteID, t.ID, *t.Parent); err != nil {
				return fmt.Errorf("update parent of category %d: %w", t.ID, err)
			}
		}
		if t.MenuOrder != nil {
			if err := s.categories.SetMenuOrder(ctx, siteID, t.ID, *t.MenuOrder); err != nil {
				return fmt.Errorf("update order of category %d: %w", t.ID, err)
			}
		}
	}

	for _, p := range result.Posts {
		if p.Fields != nil {
			if err := s.pages.UpdateOrderAndParent(ctx, siteID, p.ID, p.Fields.MenuOrder, p.Fields.ParentID); err != nil {
				return fmt.Errorf("update page %d: %w", p.ID, err)
			}
		}
		if p.SetCats {
			if err := s.pages.SetCategories(ctx, siteID, p.ID, p.Categories); err != nil {
				return fmt.Errorf("update categories of page %d: %w", p.ID, err)
			}
		}
	}
	return nil
}

// SetCategoryOrder stores or clears the order field of a category
func (s *mutationService) SetCategoryOrder(ctx context.Context, siteID, categoryID int64, value string) error {
	value = strings.TrimSpace(value)

	if _, err := s.categories.GetByID(ctx, siteID, categoryID); err != nil {
		return err
	}

	if value == "" {
		if err := s.categories.DeleteMenuOrder(ctx, siteID, categoryID); err != nil {
			return fmt.Errorf("clear category order: %w", err)
		}
	} else {
		order, err := validateMenuOrder(value)
		if err != nil {
			return err
		}
		if err := s.categories.SetMenuOrder(ctx, siteID, categoryID, order); err != nil {
			return fmt.Errorf("set category order: %w", err)
		}
	}

	s.logger.Info("category order saved", "site_id", siteID, "category_id", categoryID, "menu_order", value)
	return s.hierarchy.HandleContentEvent(ctx, menuSvc.EventEditedCategory)
}

// sameIDSet compares two ID lists as sets
func sameIDSet(a, b []int64) bool {
	as := make(map[int64]bool, len(a))
	for _, id := range a {
		as[id] = true
	}
	bs := make(map[int64]bool, len(b))
	for _, id := range b {
		bs[id] = true
	}
	if len(as) != len(bs) {
		return false
	}
	for id := range as {
		if !bs[id] {
			return false
		}
	}
	return true
}
