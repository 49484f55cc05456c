package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"bolada-backend/internal/config"
	"bolada-backend/internal/database"
	"bolada-backend/internal/repository"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a fresh in-memory database migrated with the full
// schema. A single connection keeps SQLite serializable under the
// concurrency tests.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// newTestJackpot wires a JackpotService against the test database with
// the given round duration. XP and referral side effects run against the
// same database so the full bet path is exercised.
func newTestJackpot(t *testing.T, db *gorm.DB, roundDuration time.Duration) *JackpotService {
	t.Helper()

	repo := repository.NewRepository(db)
	levels := NewLevelService(db)
	referrals := NewReferralService(db, "0.07")

	return NewJackpotService(repo, NopNotifier(), levels, referrals, config.JackpotConfig{
		TicketsPerSOL: 10,
		RoundDuration: roundDuration,
		DrawInterval:  time.Second,
	})
}

// expireRound backdates a round so its betting window has elapsed.
func expireRound(t *testing.T, db *gorm.DB, roundID interface{}, duration time.Duration) {
	t.Helper()

	err := db.Exec(
		"UPDATE jackpot_rounds SET started_at = ? WHERE id = ?",
		time.Now().Add(-duration-time.Second), roundID,
	).Error
	if err != nil {
		t.Fatalf("failed to backdate round: %v", err)
	}
}
