package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/MatzeKitt/km-advanced-menu/internal/auth"
	"github.com/MatzeKitt/km-advanced-menu/internal/config"
	"github.com/MatzeKitt/km-advanced-menu/internal/domain/models/menu"
	"github.com/MatzeKitt/km-advanced-menu/internal/domain/repositories"
	menuRepo "github.com/MatzeKitt/km-advanced-menu/internal/domain/repositories/menu"
	"github.com/MatzeKitt/km-advanced-menu/internal/handler"
	"github.com/MatzeKitt/km-advanced-menu/internal/middleware"
	"github.com/MatzeKitt/km-advanced-menu/internal/repository/memory"
	"github.com/MatzeKitt/km-advanced-menu/internal/repository/postgres"
	postgresMenu "github.com/MatzeKitt/km-advanced-menu/internal/repository/postgres/menu"
	"github.com/MatzeKitt/km-advanced-menu/internal/seed"
	menuService "github.com/MatzeKitt/km-advanced-menu/internal/service/menu"
	"github.com/MatzeKitt/km-advanced-menu/internal/service/sanitizer"
)

// stores are the repositories the services run on
type stores struct {
	sites      menuRepo.SiteRepository
	categories menuRepo.CategoryRepository
	pages      menuRepo.PageRepository
	transients menuRepo.TransientRepository
	txManager  repositories.TransactionManager
	close      func()
}

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, closeLog, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
		"multisite", cfg.Multisite,
	)

	ctx := context.Background()
	st := openStores(ctx, cfg, logger)
	defer st.close()

	// Services
	hierarchy := menuService.NewHierarchyService(menuService.HierarchyConfig{
		Sites:      st.sites,
		Categories: st.categories,
		Pages:      st.pages,
		Transients: st.transients,
		Multisite:  cfg.Multisite,
		Logger:     logger,
	})
	mutations := menuService.NewMutationService(menuService.MutationConfig{
		Categories: st.categories,
		Pages:      st.pages,
		TxManager:  st.txManager,
		Hierarchy:  hierarchy,
		Logger:     logger,
	})
	renderer := menuService.NewPublicRenderer(sanitizer.NewTitleSanitizer())
	menuSvc := menuService.NewMenuService(hierarchy, renderer, logger)

	nonceSecret := cfg.NonceSecret
	if nonceSecret == "" {
		// Tokens stop verifying after a restart
		nonceSecret = uuid.NewString()
		logger.Warn("NONCE_SECRET not set, using an ephemeral secret")
	}
	nonces, err := auth.NewNonceManager(nonceSecret, cfg.NonceTTL)
	if err != nil {
		log.Fatalf("Failed to create nonce manager: %v", err)
	}

	menuHandler := handler.NewMenuHandler(menuSvc, mutations, hierarchy, nonces, cfg.MainSiteID, logger)
	adminHandler := handler.NewAdminHandler(menuSvc, mutations, nonces, cfg.MainSiteID, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", menuHandler.HealthCheck)
	mux.HandleFunc("GET /menu", menuHandler.PublicMenu)

	// Admin routes need a JWKS endpoint to verify sessions
	if cfg.JWKSURL != "" {
		jwtVerifier, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer jwtVerifier.Close()

		authenticated := middleware.AuthMiddleware(jwtVerifier, logger)
		canEditMenu := func(h http.HandlerFunc) http.Handler {
			return authenticated(middleware.RequireCapability(config.EditMenuCapability)(h))
		}
		canManageCategories := func(h http.HandlerFunc) http.Handler {
			return authenticated(middleware.RequireCapability(config.ManageCategoriesCapability)(h))
		}

		// Admin page. POST checks the capability itself and ignores
		// submissions it cannot accept, anonymous ones included.
		mux.Handle("GET /admin/menu", canEditMenu(adminHandler.Page))
		mux.Handle("POST /admin/menu", middleware.OptionalAuth(jwtVerifier, logger)(http.HandlerFunc(adminHandler.Submit)))

		// Admin JSON API
		mux.Handle("GET /api/sites/{site}/menu/edit", canEditMenu(menuHandler.GetEditRecords))
		mux.Handle("POST /api/sites/{site}/menu", canEditMenu(menuHandler.SubmitRecords))
		mux.Handle("POST /api/sites/{site}/menu/preview", canEditMenu(menuHandler.Preview))
		mux.Handle("PUT /api/sites/{site}/categories/{id}/menu-order", canManageCategories(menuHandler.SetCategoryOrder))

		// Content store hooks
		mux.Handle("POST /api/hooks/content", authenticated(http.HandlerFunc(menuHandler.ContentEvent)))
	} else {
		logger.Warn("JWKS_URL not set, admin routes disabled")
	}

	// Build middleware chain
	// Order: CORS → Recovery → RequestLogger → Routes
	var h http.Handler = mux
	h = middleware.RequestLogger(logger)(h)
	h = middleware.Recovery(logger)(h)

	// CORS - Must be outermost to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "X-WP-Nonce"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// openStores connects to Postgres when DATABASE_URL is set and otherwise
// serves an in-memory network loaded from SEED_FILE
func openStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) *stores {
	if cfg.DatabaseURL != "" {
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			log.Fatalf("Failed to create connection pool: %v", err)
		}

		repoConfig := &postgres.RepositoryConfig{
			Pool:   pool,
			Tables: postgres.NewTableNames(cfg.TablePrefix, cfg.MainSiteID),
			Logger: logger,
		}
		return &stores{
			sites:      postgresMenu.NewSiteRepository(repoConfig),
			categories: postgresMenu.NewCategoryRepository(repoConfig),
			pages:      postgresMenu.NewPageRepository(repoConfig),
			transients: postgresMenu.NewTransientRepository(repoConfig),
			txManager:  postgres.NewTransactionManager(pool, logger),
			close:      pool.Close,
		}
	}

	var store *memory.Store
	if cfg.SeedFile != "" {
		fixture, err := seed.LoadFixture(cfg.SeedFile)
		if err != nil {
			log.Fatalf("Failed to load seed file: %v", err)
		}
		store = memory.NewStoreFromFixture(fixture)
		logger.Info("in-memory store loaded", "seed_file", cfg.SeedFile, "sites", len(fixture.Sites))
	} else {
		store = memory.NewStore()
		store.AddSite(menu.Site{ID: cfg.MainSiteID, Name: "Main"})
		logger.Warn("DATABASE_URL and SEED_FILE not set, serving an empty in-memory network")
	}

	return &stores{
		sites:      memory.NewSiteRepository(store),
		categories: memory.NewCategoryRepository(store),
		pages:      memory.NewPageRepository(store),
		transients: memory.NewTransientRepository(store),
		txManager:  memory.NewTransactionManager(store),
		close:      func() {},
	}
}
