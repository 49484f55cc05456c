package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"bolada-backend/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Referral validation errors
var (
	ErrInvalidReferralCode = errors.New("invalid referral code")
	ErrSelfReferral        = errors.New("cannot refer yourself")
	ErrAlreadyReferred     = errors.New("wallet already has a referrer")
)

// ReferralService handles referral codes and commission bookkeeping
type ReferralService struct {
	db             *gorm.DB
	commissionRate decimal.Decimal
}

// NewReferralService creates a new ReferralService. rate is the commission
// fraction credited to the referrer on every referee wager ("0.07" = 7%).
func NewReferralService(db *gorm.DB, rate string) *ReferralService {
	commission, err := decimal.NewFromString(rate)
	if err != nil {
		log.Printf("Warning: invalid referral commission rate %q, using 0.07", rate)
		commission = decimal.NewFromFloat(0.07)
	}

	return &ReferralService{db: db, commissionRate: commission}
}

// CodeForWallet derives the shareable referral code for a wallet:
// REF- plus the last 8 characters of the address, uppercased.
func CodeForWallet(walletAddress string) string {
	suffix := walletAddress
	if len(suffix) > 8 {
		suffix = suffix[len(suffix)-8:]
	}
	return "REF-" + strings.ToUpper(suffix)
}

// EnsureCode stores the wallet's referral code if it is not registered yet
// and returns it.
func (s *ReferralService) EnsureCode(walletAddress string) (string, error) {
	code := CodeForWallet(walletAddress)

	var existing models.ReferralCode
	err := s.db.Where("wallet_address = ?", walletAddress).First(&existing).Error
	if err == nil {
		return existing.Code, nil
	}
	if err != gorm.ErrRecordNotFound {
		return "", err
	}

	record := models.ReferralCode{
		WalletAddress: walletAddress,
		Code:          code,
	}
	if err := s.db.Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return code, nil
		}
		return "", fmt.Errorf("failed to store referral code: %w", err)
	}

	return code, nil
}

// ApplyCode links a referee wallet to the referrer owning the given code.
func (s *ReferralService) ApplyCode(code string, refereeWallet string) (*models.Referral, error) {
	var codeRecord models.ReferralCode
	err := s.db.Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).First(&codeRecord).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrInvalidReferralCode
	}
	if err != nil {
		return nil, err
	}

	if codeRecord.WalletAddress == refereeWallet {
		return nil, ErrSelfReferral
	}

	referral := models.Referral{
		ReferralCode:   codeRecord.Code,
		ReferrerWallet: codeRecord.WalletAddress,
		RefereeWallet:  refereeWallet,
		TotalEarned:    decimal.Zero,
	}

	if err := s.db.Create(&referral).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyReferred
		}
		return nil, fmt.Errorf("failed to create referral: %w", err)
	}

	return &referral, nil
}

// AddEarning credits the referrer's commission for a referee wager. No-op
// when the referee has no referrer. The running total is bumped with an
// atomic increment so concurrent wagers never lose a commission.
func (s *ReferralService) AddEarning(refereeWallet string, amount float64, source string) error {
	var referral models.Referral
	err := s.db.Where("referee_wallet = ?", refereeWallet).First(&referral).Error
	if err == gorm.ErrRecordNotFound {
		return nil
	}
	if err != nil {
		return err
	}

	commission := decimal.NewFromFloat(amount).Mul(s.commissionRate)

	earning := models.ReferralEarning{
		ReferralID: referral.ID,
		Amount:     commission,
		Source:     source,
	}
	if err := s.db.Create(&earning).Error; err != nil {
		return fmt.Errorf("failed to record referral earning: %w", err)
	}

	if err := s.db.Model(&models.Referral{}).
		Where("id = ?", referral.ID).
		UpdateColumn("total_earned", gorm.Expr("total_earned + ?", commission)).Error; err != nil {
		return fmt.Errorf("failed to update referral total: %w", err)
	}

	return nil
}

// GetReferrals retrieves all referrals recruited by a wallet
func (s *ReferralService) GetReferrals(referrerWallet string) ([]*models.Referral, error) {
	var referrals []*models.Referral
	err := s.db.Where("referrer_wallet = ?", referrerWallet).
		Order("created_at DESC").
		Find(&referrals).Error
	if err != nil {
		return nil, err
	}
	return referrals, nil
}

// GetEarnings retrieves the earning history for a referrer's referrals
func (s *ReferralService) GetEarnings(referrerWallet string) ([]*models.ReferralEarning, error) {
	var earnings []*models.ReferralEarning
	err := s.db.
		Joins("JOIN referrals ON referrals.id = referral_earnings.referral_id").
		Where("referrals.referrer_wallet = ?", referrerWallet).
		Order("referral_earnings.created_at DESC").
		Find(&earnings).Error
	if err != nil {
		return nil, err
	}
	return earnings, nil
}

// TotalEarned sums commission across all of a wallet's referrals
func (s *ReferralService) TotalEarned(referrerWallet string) (decimal.Decimal, error) {
	referrals, err := s.GetReferrals(referrerWallet)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, referral := range referrals {
		total = total.Add(referral.TotalEarned)
	}
	return total, nil
}
