package models

import (
	"time"
)

// GameSetting is a key/value knob adjustable at runtime from the admin
// panel (house_edge, raffle_ticket_price).
type GameSetting struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SettingKey   string    `gorm:"size:50;uniqueIndex;not null" json:"setting_key"`
	SettingValue string    `gorm:"size:255;not null" json:"setting_value"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (GameSetting) TableName() string {
	return "game_settings"
}

// AdminLog is an audit trail entry for moderation actions.
type AdminLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	AdminWallet  string    `gorm:"size:64;not null;index" json:"admin_wallet"`
	Action       string    `gorm:"size:50;not null" json:"action"`
	TargetWallet string    `gorm:"size:64" json:"target_wallet"`
	Details      string    `gorm:"type:text" json:"details"`
	CreatedAt    time.Time `json:"created_at"`
}

func (AdminLog) TableName() string {
	return "admin_logs"
}
