package database

import (
	"fmt"
	"log"

	"bolada-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect establishes a connection to the PostgreSQL database
func Connect(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Error),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})

	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Database connection established successfully")
	return nil
}

// AutoMigrate runs automatic migrations for all models
func AutoMigrate() error {
	return Migrate(DB)
}

// Migrate runs automatic migrations for all models on the given handle.
// Exposed separately so tests can migrate an in-memory database.
func Migrate(db *gorm.DB) error {
	coreModels := []interface{}{
		&models.User{},
		&models.JackpotRound{},
		&models.JackpotBet{},
	}

	for _, model := range coreModels {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("migration failed for %T: %w", model, err)
		}
	}

	gameModels := []interface{}{
		&models.CoinflipRoom{},
		&models.CoinflipHistory{},
		&models.RaffleTicket{},
		&models.RaffleWinner{},
	}

	for _, model := range gameModels {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("migration failed for %T: %w", model, err)
		}
	}

	socialModels := []interface{}{
		&models.ChatMessage{},
		&models.MutedUser{},
		&models.BannedUser{},
		&models.UserLevel{},
		&models.ReferralCode{},
		&models.Referral{},
		&models.ReferralEarning{},
	}

	for _, model := range socialModels {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("migration failed for %T: %w", model, err)
		}
	}

	adminModels := []interface{}{
		&models.GameSetting{},
		&models.AdminLog{},
	}

	for _, model := range adminModels {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("migration failed for %T: %w", model, err)
		}
	}

	// AutoMigrate cannot express a partial unique index. This one enforces
	// the single-active-round invariant: a second INSERT of an active round
	// fails with a uniqueness violation no matter how many processes race.
	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_jackpot_rounds_one_active
		 ON jackpot_rounds (status) WHERE status = 'active'`,
	).Error; err != nil {
		return fmt.Errorf("failed to create active-round index: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
