package menu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/MatzeKitt/km-advanced-menu/internal/config"
	"github.com/MatzeKitt/km-advanced-menu/internal/domain"
	models "github.com/MatzeKitt/km-advanced-menu/internal/domain/models/menu"
	menuRepo "github.com/MatzeKitt/km-advanced-menu/internal/domain/repositories/menu"
	menuSvc "github.com/MatzeKitt/km-advanced-menu/internal/domain/services/menu"
)

// HierarchyConfig holds the collaborators of the hierarchy service
type HierarchyConfig struct {
	Sites      menuRepo.SiteRepository
	Categories menuRepo.CategoryRepository
	Pages      menuRepo.PageRepository
	Transients menuRepo.TransientRepository
	Multisite  bool
	Logger     *slog.Logger
}

// hierarchyService implements the HierarchyService interface
type hierarchyService struct {
	sites      menuRepo.SiteRepository
	categories menuRepo.CategoryRepository
	pages      menuRepo.PageRepository
	transients menuRepo.TransientRepository
	multisite  bool
	logger     *slog.Logger
	rebuilds   singleflight.Group
	now        func() time.Time

	// generation advances on every Refresh and Invalidate. A build only
	// writes the cache if no newer one started after it read the store.
	mu         sync.Mutex
	generation uint64
}

// NewHierarchyService creates a new hierarchy service
func NewHierarchyService(cfg HierarchyConfig) menuSvc.HierarchyService {
	return &hierarchyService{
		sites:      cfg.Sites,
		categories: cfg.Categories,
		pages:      cfg.Pages,
		transients: cfg.Transients,
		multisite:  cfg.Multisite,
		logger:     cfg.Logger,
		now:        time.Now,
	}
}

// Snapshot returns the cached snapshot or builds and stores a new one
func (s *hierarchyService) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	raw, err := s.transients.Get(ctx, config.HierarchyCacheKey)
	switch {
	case err == nil:
		var snapshot models.Snapshot
		jsonErr := json.Unmarshal(raw, &snapshot)
		if jsonErr == nil {
			return &snapshot, nil
		}
		s.logger.Warn("discarding unreadable menu hierarchy cache", "error", jsonErr)
	case errors.Is(err, domain.ErrNotFound):
		// miss
	default:
		// A broken cache must not take the menu down
		s.logger.Warn("menu hierarchy cache read failed", "error", err)
	}

	return s.rebuildShared(ctx)
}

// rebuildShared builds the snapshot after a cache miss. Concurrent misses
// share one build.
func (s *hierarchyService) rebuildShared(ctx context.Context) (*models.Snapshot, error) {
	v, err, _ := s.rebuilds.Do(config.HierarchyCacheKey, func() (interface{}, error) {
		return s.rebuild(ctx, s.currentGeneration())
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Snapshot), nil
}

// Refresh rebuilds every site and stores the result for the cache TTL. It
// never joins a build already in flight, since that build may have read
// the store before the caller's writes.
func (s *hierarchyService) Refresh(ctx context.Context) (*models.Snapshot, error) {
	return s.rebuild(ctx, s.nextGeneration())
}

func (s *hierarchyService) rebuild(ctx context.Context, generation uint64) (*models.Snapshot, error) {
	snapshot, err := s.build(ctx)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("encode menu hierarchy: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		s.logger.Debug("discarding superseded menu hierarchy build", "generation", generation, "latest", s.generation)
		return snapshot, nil
	}
	if err := s.transients.Set(ctx, config.HierarchyCacheKey, raw, config.HierarchyCacheTTL); err != nil {
		s.logger.Warn("menu hierarchy cache write failed", "error", err)
	}

	s.logger.Info("menu hierarchy rebuilt", "sites", len(snapshot.Sites))
	return snapshot, nil
}

func (s *hierarchyService) currentGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

func (s *hierarchyService) nextGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	return s.generation
}

// Invalidate drops the cached snapshot; the next Snapshot call rebuilds it
func (s *hierarchyService) Invalidate(ctx context.Context) error {
	s.nextGeneration()
	if err := s.transients.Delete(ctx, config.HierarchyCacheKey); err != nil {
		return fmt.Errorf("invalidate menu hierarchy: %w", err)
	}
	s.logger.Debug("menu hierarchy invalidated")
	return nil
}

// HandleContentEvent keeps the cache in step with content changes: a
// single site rebuilds right away, a network only drops the entry.
func (s *hierarchyService) HandleContentEvent(ctx context.Context, event menuSvc.ContentEvent) error {
	if !event.Valid() {
		return &domain.ValidationError{Field: "event", Message: fmt.Sprintf("unknown content event %q", event)}
	}

	s.logger.Debug("content event", "event", event, "multisite", s.multisite)
	if s.multisite {
		return s.Invalidate(ctx)
	}
	_, err := s.Refresh(ctx)
	return err
}

// BuildSite builds one site straight from the store
func (s *hierarchyService) BuildSite(ctx context.Context, siteID int64) (*models.Forest, error) {
	site, err := s.sites.GetByID(ctx, siteID)
	if err != nil {
		return nil, err
	}
	return s.buildSite(ctx, *site)
}

func (s *hierarchyService) build(ctx context.Context) (*models.Snapshot, error) {
	sites, err := s.sites.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}

	snapshot := &models.Snapshot{
		Sites:   make([]models.Forest, 0, len(sites)),
		BuiltAt: s.now().UTC(),
	}
	for _, site := range sites {
		forest, err := s.buildSite(ctx, site)
		if err != nil {
			return nil, err
		}
		snapshot.Sites = append(snapshot.Sites, *forest)
	}
	return snapshot, nil
}

func (s *hierarchyService) buildSite(ctx context.Context, site models.Site) (*models.Forest, error) {
	categories, err := s.categories.ListBySite(ctx, site.ID)
	if err != nil {
		return nil, fmt.Errorf("list categories of site %d: %w", site.ID, err)
	}
	pages, err := s.pages.ListBySite(ctx, site.ID)
	if err != nil {
		return nil, fmt.Errorf("list pages of site %d: %w", site.ID, err)
	}

	forest := BuildForest(categories, pages, NewPermalinkResolver(site.URL, categories, pages))
	forest.Site = site
	return forest, nil
}
