package services

import (
	"fmt"
	"math"

	"bolada-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// XP accrual constants: 10 XP per SOL wagered, 100 XP per level, level
// capped at 100.
const (
	XPPerSOL   = 10.0
	XPPerLevel = 100.0
	MaxLevel   = 100
)

// LevelService handles the cosmetic leveling/aura state
type LevelService struct {
	db *gorm.DB
}

// NewLevelService creates a new LevelService
func NewLevelService(db *gorm.DB) *LevelService {
	return &LevelService{db: db}
}

// GetLevel retrieves the level row for a wallet, creating the initial
// level 0 row on first access.
func (s *LevelService) GetLevel(walletAddress string) (*models.UserLevel, error) {
	var level models.UserLevel
	err := s.db.Where("wallet_address = ?", walletAddress).First(&level).Error

	if err == gorm.ErrRecordNotFound {
		level = models.UserLevel{
			WalletAddress: walletAddress,
		}
		if err := s.db.Create(&level).Error; err != nil {
			return nil, fmt.Errorf("failed to create user level: %w", err)
		}
		return &level, nil
	}

	if err != nil {
		return nil, err
	}

	return &level, nil
}

// AddXP credits XP for a wager and recomputes level and transformation.
// The counters are updated with an atomic upsert so concurrent wagers
// from the same wallet never lose an increment.
func (s *LevelService) AddXP(walletAddress string, solWagered float64) error {
	if solWagered <= 0 {
		return nil
	}

	xpGained := solWagered * XPPerSOL

	initial := models.UserLevel{
		WalletAddress:  walletAddress,
		XP:             xpGained,
		TotalWagered:   solWagered,
		Level:          levelForXP(xpGained),
		Transformation: models.TransformationForLevel(levelForXP(xpGained)),
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "wallet_address"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"xp":            gorm.Expr("user_levels.xp + ?", xpGained),
			"total_wagered": gorm.Expr("user_levels.total_wagered + ?", solWagered),
			"updated_at":    gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&initial).Error
	if err != nil {
		return fmt.Errorf("failed to add xp: %w", err)
	}

	// Level and transformation derive from the post-increment XP. They are
	// settled with a follow-up read-and-write: cosmetic state, so a stale
	// write under contention is corrected by the next wager.
	var level models.UserLevel
	if err := s.db.Where("wallet_address = ?", walletAddress).First(&level).Error; err != nil {
		return err
	}

	newLevel := levelForXP(level.XP)
	transformation := models.TransformationForLevel(newLevel)
	if newLevel != level.Level || !sameTransformation(level.Transformation, transformation) {
		if err := s.db.Model(&models.UserLevel{}).
			Where("wallet_address = ?", walletAddress).
			Updates(map[string]interface{}{
				"level":          newLevel,
				"transformation": transformation,
			}).Error; err != nil {
			return err
		}
	}

	return nil
}

// levelForXP converts accumulated XP to a level, capped at MaxLevel.
func levelForXP(xp float64) int {
	level := int(math.Floor(xp / XPPerLevel))
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

func sameTransformation(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
