package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"bolada-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotOwner = errors.New("wallet is not the platform owner")

// AdminService covers moderation and platform settings. Every mutating
// action is written to the admin audit log.
type AdminService struct {
	db          *gorm.DB
	ownerWallet string
}

// NewAdminService creates a new AdminService
func NewAdminService(db *gorm.DB, ownerWallet string) *AdminService {
	return &AdminService{db: db, ownerWallet: ownerWallet}
}

// IsOwner reports whether the wallet is the configured platform owner.
func (s *AdminService) IsOwner(walletAddress string) bool {
	return walletAddress == s.ownerWallet
}

// RequireOwner returns ErrNotOwner unless the wallet is the owner.
func (s *AdminService) RequireOwner(walletAddress string) error {
	if !s.IsOwner(walletAddress) {
		return ErrNotOwner
	}
	return nil
}

// BanUser bans a wallet from the platform.
func (s *AdminService) BanUser(adminWallet, targetWallet, reason string, ip *string) error {
	if err := s.RequireOwner(adminWallet); err != nil {
		return err
	}

	ban := &models.BannedUser{
		WalletAddress: targetWallet,
		IPAddress:     ip,
		Reason:        reason,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "wallet_address"}},
		DoUpdates: clause.AssignmentColumns([]string{"reason", "ip_address"}),
	}).Create(ban).Error
	if err != nil {
		return err
	}

	s.logAction(adminWallet, "ban", targetWallet, reason)
	return nil
}

// UnbanUser removes a wallet's ban.
func (s *AdminService) UnbanUser(adminWallet, targetWallet string) error {
	if err := s.RequireOwner(adminWallet); err != nil {
		return err
	}
	if err := s.db.Where("wallet_address = ?", targetWallet).
		Delete(&models.BannedUser{}).Error; err != nil {
		return err
	}
	s.logAction(adminWallet, "unban", targetWallet, "")
	return nil
}

// MuteUser mutes a wallet in chat for the given duration.
func (s *AdminService) MuteUser(adminWallet, targetWallet, reason string, duration time.Duration) error {
	if err := s.RequireOwner(adminWallet); err != nil {
		return err
	}
	if duration <= 0 {
		duration = time.Hour
	}

	mute := &models.MutedUser{
		WalletAddress: targetWallet,
		Reason:        reason,
		MutedUntil:    time.Now().Add(duration),
	}
	if err := s.db.Create(mute).Error; err != nil {
		return err
	}

	s.logAction(adminWallet, "mute", targetWallet, fmt.Sprintf("%s (for %s)", reason, duration))
	return nil
}

// UnmuteUser clears all active mutes for a wallet.
func (s *AdminService) UnmuteUser(adminWallet, targetWallet string) error {
	if err := s.RequireOwner(adminWallet); err != nil {
		return err
	}
	if err := s.db.Where("wallet_address = ?", targetWallet).
		Delete(&models.MutedUser{}).Error; err != nil {
		return err
	}
	s.logAction(adminWallet, "unmute", targetWallet, "")
	return nil
}

// SetSetting upserts a runtime game setting.
func (s *AdminService) SetSetting(adminWallet, key, value string) error {
	if err := s.RequireOwner(adminWallet); err != nil {
		return err
	}

	setting := &models.GameSetting{SettingKey: key, SettingValue: value}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"setting_value", "updated_at"}),
	}).Create(setting).Error
	if err != nil {
		return err
	}

	s.logAction(adminWallet, "set_setting", "", fmt.Sprintf("%s=%s", key, value))
	return nil
}

// GetSetting reads a runtime game setting, falling back to def when the
// key has never been set.
func (s *AdminService) GetSetting(key, def string) (string, error) {
	var setting models.GameSetting
	err := s.db.Where("setting_key = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return def, nil
	}
	if err != nil {
		return "", err
	}
	return setting.SettingValue, nil
}

// GetLogs returns the audit trail, newest first.
func (s *AdminService) GetLogs(limit int) ([]*models.AdminLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var logs []*models.AdminLog
	err := s.db.Order("created_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

func (s *AdminService) logAction(adminWallet, action, targetWallet, details string) {
	entry := &models.AdminLog{
		AdminWallet:  adminWallet,
		Action:       action,
		TargetWallet: targetWallet,
		Details:      details,
	}
	if err := s.db.Create(entry).Error; err != nil {
		log.Printf("[Admin] Warning: failed to write audit log (%s by %s): %v", action, adminWallet, err)
	}
}
