package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReferralCode maps a shareable code to the wallet that owns it. Codes are
// derived from the wallet address at signup (REF- plus the last 8 chars).
type ReferralCode struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	WalletAddress string    `gorm:"size:64;uniqueIndex;not null" json:"wallet_address"`
	Code          string    `gorm:"size:20;uniqueIndex;not null" json:"code"`
	CreatedAt     time.Time `json:"created_at"`
}

func (ReferralCode) TableName() string {
	return "referral_codes"
}

// Referral links a referee wallet to the referrer who recruited it. A
// wallet can be referred at most once.
type Referral struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	ReferralCode   string          `gorm:"size:20;not null;index" json:"referral_code"`
	ReferrerWallet string          `gorm:"size:64;not null;index" json:"referrer_wallet"`
	RefereeWallet  string          `gorm:"size:64;uniqueIndex;not null" json:"referee_wallet"`
	TotalEarned    decimal.Decimal `gorm:"type:decimal(18,8);default:0" json:"total_earned"`
	CreatedAt      time.Time       `json:"created_at"`
}

func (Referral) TableName() string {
	return "referrals"
}

// ReferralEarning is one commission credit against a referral, created when
// the referee wagers on any game.
type ReferralEarning struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	ReferralID uint            `gorm:"not null;index" json:"referral_id"`
	Referral   *Referral       `gorm:"foreignKey:ReferralID" json:"referral,omitempty"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,8);not null" json:"amount"`
	Source     string          `gorm:"size:20;not null" json:"source"` // jackpot, coinflip, raffle
	CreatedAt  time.Time       `json:"created_at"`
}

func (ReferralEarning) TableName() string {
	return "referral_earnings"
}
