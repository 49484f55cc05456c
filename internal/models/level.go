package models

import (
	"time"
)

// UserLevel tracks the cosmetic leveling state for a wallet. XP accrues on
// every wager (10 XP per SOL), 100 XP per level, capped at level 100.
type UserLevel struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	WalletAddress  string    `gorm:"size:64;uniqueIndex;not null" json:"wallet_address"`
	Level          int       `gorm:"not null;default:0" json:"level"`
	XP             float64   `gorm:"column:xp;not null;default:0" json:"xp"`
	TotalWagered   float64   `gorm:"not null;default:0" json:"total_wagered"`
	Transformation *string   `gorm:"size:50" json:"transformation"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (UserLevel) TableName() string {
	return "user_levels"
}

// Transformation is the aura name unlocked at a level threshold.
type Transformation struct {
	Level int
	Name  string
}

// Transformations lists the aura tiers in ascending level order.
var Transformations = []Transformation{
	{Level: 10, Name: "SSJ1"},
	{Level: 20, Name: "SSJ2"},
	{Level: 30, Name: "SSJ3"},
	{Level: 40, Name: "SSJ4"},
	{Level: 50, Name: "SSJ God"},
	{Level: 60, Name: "SSJ Blue"},
	{Level: 70, Name: "SSJ Blue Evolution"},
	{Level: 90, Name: "Ultra Instinct Omen"},
	{Level: 100, Name: "Ultra Instinct Mastered"},
}

// TransformationForLevel returns the highest aura tier unlocked at the
// given level, or nil below the first threshold.
func TransformationForLevel(level int) *string {
	for i := len(Transformations) - 1; i >= 0; i-- {
		if level >= Transformations[i].Level {
			name := Transformations[i].Name
			return &name
		}
	}
	return nil
}
