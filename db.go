package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"darlingdetails/migrations"
	"darlingdetails/models"
	"darlingdetails/pkg/config"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// initDB connects to Postgres, applies migrations when DB_AUTO_MIGRATE is on,
// and seeds the default rows.
func initDB(cfg config.Config, log zerolog.Logger) (*gorm.DB, error) {
	if cfg.DSN == "" {
		return nil, errors.New("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN")
	}
	gormLog := logger.Default.LogMode(logger.Warn)
	if cfg.IsDevelopment() {
		gormLog = logger.Default.LogMode(logger.Info)
	}
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger:         gormLog,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if cfg.AutoMigrate {
		if err := migrateDB(db); err != nil {
			return nil, err
		}
		log.Info().Msg("database migrations applied")
	}
	if err := seedDB(context.Background(), db, cfg, log); err != nil {
		return nil, err
	}
	return db, nil
}

func migrateDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql handle: %w", err)
	}
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := goose.Up(sqlDB, "."); err != nil && !errors.Is(err, goose.ErrNoNextVersion) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

var defaultCategories = []models.Category{
	{Name: "Decorațiuni", Slug: "decoratiuni", Description: strPtr("Decorațiuni elegante pentru evenimente"), Image: strPtr("https://images.unsplash.com/photo-1519225421980-715cb0215aed?w=800")},
	{Name: "Mărturii", Slug: "marturii", Description: strPtr("Mărturii unice pentru invitați"), Image: strPtr("https://images.unsplash.com/photo-1522682078546-47888fe04e81?w=800")},
	{Name: "Cabină Foto", Slug: "cabina-foto", Description: strPtr("Cabine foto profesionale pentru evenimente"), Image: strPtr("https://images.unsplash.com/photo-1522673607200-164d1b6ce486?w=800")},
	{Name: "Aranjamente Florale", Slug: "aranjamente-florale", Description: strPtr("Aranjamente florale pentru nunți și evenimente"), Image: strPtr("https://images.unsplash.com/photo-1519225421980-715cb0215aed?w=800")},
	{Name: "Lumini și Efecte", Slug: "lumini-efecte", Description: strPtr("Iluminat decorativ și efecte speciale"), Image: strPtr("https://images.unsplash.com/photo-1519167758481-83f550bb49b3?w=800")},
}

func defaultStoreSettings() models.StoreSettings {
	return models.StoreSettings{
		StoreName:        "Darling Details",
		StoreDescription: strPtr("Your one-stop shop for all things beautiful"),
		StoreAddress:     strPtr("Strada Exemplu 123, București, România"),
		ContactEmail:     "contact@darlingdetails.com",
		ContactPhone:     strPtr("555-123-4567"),
		FacebookURL:      strPtr("https://facebook.com/darlingdetails"),
		InstagramURL:     strPtr("https://instagram.com/darlingdetails"),
	}
}

// seedDB inserts the admin account, store settings and default categories
// when they are missing. It is safe to run on every start.
func seedDB(ctx context.Context, db *gorm.DB, cfg config.Config, log zerolog.Logger) error {
	tx := db.WithContext(ctx)

	var count int64
	if err := tx.Model(&models.User{}).Where("email = ?", cfg.AdminEmail).Count(&count).Error; err != nil {
		return fmt.Errorf("count admin: %w", err)
	}
	if count == 0 {
		hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}
		admin := models.User{Name: "Admin User", Email: cfg.AdminEmail, HashedPassword: hashed}
		if err := tx.Create(&admin).Error; err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		log.Info().Str("email", admin.Email).Msg("seeded admin user")
	}

	if err := tx.Model(&models.StoreSettings{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count store settings: %w", err)
	}
	if count == 0 {
		settings := defaultStoreSettings()
		if err := tx.Create(&settings).Error; err != nil {
			return fmt.Errorf("seed store settings: %w", err)
		}
		log.Info().Msg("seeded default store settings")
	}

	if err := tx.Model(&models.Category{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count categories: %w", err)
	}
	if count == 0 {
		categories := make([]models.Category, len(defaultCategories))
		copy(categories, defaultCategories)
		if err := tx.Create(&categories).Error; err != nil {
			return fmt.Errorf("seed categories: %w", err)
		}
		log.Info().Int("count", len(categories)).Msg("seeded default categories")
	}
	return nil
}

func strPtr(s string) *string { return &s }
