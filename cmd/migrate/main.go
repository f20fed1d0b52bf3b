package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"golang.org/x/crypto/bcrypt"

	"github.com/engdahman/conference-app/internal/config"
	"github.com/engdahman/conference-app/internal/database/migrations"
	"github.com/engdahman/conference-app/internal/models"
)

func main() {
	down := flag.Bool("down", false, "roll back all migrations instead of applying them")
	dir := flag.String("dir", "./migrations", "directory containing the migration files")
	skipSeed := flag.Bool("skip-seed", false, "do not seed the bootstrap admin account")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := config.Load()

	sqldb, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	bunDB := bun.NewDB(sqldb, pgdialect.New())
	defer bunDB.Close()

	runner := migrations.NewRunner(bunDB, migrations.Options{MigrationsDir: *dir})
	defer runner.Close()

	if *down {
		if err := runner.MigrateDown(); err != nil {
			log.Fatalf("migrate down: %v", err)
		}
		log.Println("Migrations rolled back")
		return
	}

	if err := runner.MigrateUp(); err != nil {
		log.Fatalf("migrate up: %v", err)
	}
	log.Println("Migrations applied")

	if !*skipSeed {
		if err := seedAdmin(bunDB, cfg); err != nil {
			log.Fatalf("seed admin: %v", err)
		}
	}
}

// seedAdmin creates the bootstrap admin account on an empty users table so
// the dashboard is reachable right after the first deploy.
func seedAdmin(bunDB *bun.DB, cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := bunDB.NewSelect().Model((*models.User)(nil)).Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		log.Println("Users already present, skipping admin seed")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Auth.AdminDefaultPass), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := &models.User{
		ID:           uuid.NewString(),
		Username:     cfg.Auth.AdminDefaultUser,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := bunDB.NewInsert().Model(admin).Exec(ctx); err != nil {
		return err
	}
	log.Printf("Seeded admin account %q", admin.Username)
	return nil
}
