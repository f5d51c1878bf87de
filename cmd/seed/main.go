package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"github.com/joho/godotenv"

	"github.com/MatzeKitt/km-advanced-menu/internal/config"
	"github.com/MatzeKitt/km-advanced-menu/internal/domain"
	"github.com/MatzeKitt/km-advanced-menu/internal/repository/postgres"
	"github.com/MatzeKitt/km-advanced-menu/internal/seed"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop the fixture's tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't insert content")
	fixturePath := flag.String("fixture", "", "YAML fixture to seed (defaults to SEED_FILE)")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("BLOCKED: --drop-tables is not allowed in production")
	}
	if cfg.DatabaseURL == "" {
		log.Fatalf("DATABASE_URL is required for seeding")
	}

	path := *fixturePath
	if path == "" {
		path = cfg.SeedFile
	}
	if path == "" {
		log.Fatalf("no fixture given (use --fixture or SEED_FILE)")
	}

	logger, closeLog, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()

	fixture, err := seed.LoadFixture(path)
	if err != nil {
		log.Fatalf("Failed to load fixture: %v", err)
	}

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix, cfg.MainSiteID)
	seeder := seed.NewMenuSeeder(pool, tables, logger)

	if *dropTables {
		log.Println("Dropping tables...")
		if err := seeder.DropTables(ctx, fixture.SiteIDs()); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
	}

	if err := postgres.EnsureSchema(ctx, pool, tables, fixture.SiteIDs(), logger); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}

	if *schemaOnly {
		log.Println("Schema setup complete (schema-only mode)")
		return
	}

	if err := seeder.Seed(ctx, fixture); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			log.Printf("Warning: %v (use --drop-tables to reseed)", err)
			return
		}
		log.Fatalf("Failed to seed: %v", err)
	}

	log.Printf("Seeding complete: %d site(s) from %s", len(fixture.Sites), path)
}
