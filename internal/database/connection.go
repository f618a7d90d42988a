package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/EzraBr1dger/space-map-admin/internal/config"
	"github.com/EzraBr1dger/space-map-admin/internal/models"
	"github.com/EzraBr1dger/space-map-admin/internal/store"
	"github.com/EzraBr1dger/space-map-admin/pkg/logger"
)

func Connect(cfg *config.Config) (*gorm.DB, error) {
	dsn := cfg.GetDSN()

	var logLevel gormlogger.LogLevel
	if cfg.AppEnv == "development" {
		logLevel = gormlogger.Info
	} else {
		logLevel = gormlogger.Error
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		// Multi-leaf writes open their own transactions in the store.
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// A single dashboard instance; a small pool is plenty.
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	logger.Info("Database connected successfully")
	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	logger.Info("Running database migrations...")

	if err := db.AutoMigrate(&store.Node{}); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	logger.Info("Database migrations completed successfully")
	return nil
}

// SeedDefaults writes the documents the dashboard expects on a fresh
// store. Existing data is never touched.
func SeedDefaults(ctx context.Context, st store.Store) error {
	logger.Info("Checking for default documents...")

	var supply models.Supply
	found, err := st.Get(ctx, "globalSupply", &supply)
	if err != nil {
		return fmt.Errorf("read supply: %w", err)
	}
	if !found {
		logger.Info("Seeding empty global supply...")
		now := time.Now().UTC()
		seed := models.NewSupply()
		for _, item := range models.DefaultSupplyItems {
			seed.Items[item] = 0
		}
		seed.LastUpdated = &now
		if err := st.Set(ctx, "globalSupply", seed); err != nil {
			return fmt.Errorf("seed supply: %w", err)
		}
	}

	var cycles int
	found, err = st.Get(ctx, "mapData/productionCycles", &cycles)
	if err != nil {
		return fmt.Errorf("read production cycles: %w", err)
	}
	if !found {
		logger.Info("Seeding production cycle counter...")
		if err := st.Set(ctx, "mapData/productionCycles", 0); err != nil {
			return fmt.Errorf("seed production cycles: %w", err)
		}
	}
	return nil
}
