package services

import (
	"errors"
	"fmt"
	"log"

	"bolada-backend/internal/auth"
	"bolada-backend/internal/models"
	"bolada-backend/internal/utils"

	"gorm.io/gorm"
)

var ErrBannedWallet = errors.New("wallet is banned")

// AuthService handles wallet-based login: first sign-in creates the
// account with a generated nickname and a referral code.
type AuthService struct {
	db        *gorm.DB
	referrals *ReferralService
	chat      *ChatService
}

// NewAuthService creates a new AuthService
func NewAuthService(db *gorm.DB, referrals *ReferralService, chat *ChatService) *AuthService {
	return &AuthService{db: db, referrals: referrals, chat: chat}
}

// ProcessWalletLogin finds or creates the user for a verified wallet
// signature and issues a JWT.
func (s *AuthService) ProcessWalletLogin(walletAddress string) (*models.User, string, error) {
	banned, err := s.chat.IsBanned(walletAddress)
	if err != nil {
		return nil, "", err
	}
	if banned {
		return nil, "", ErrBannedWallet
	}

	var user models.User
	err = s.db.Where("wallet_address = ?", walletAddress).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		created, createErr := s.createUser(walletAddress)
		if createErr != nil {
			return nil, "", createErr
		}
		user = *created
	} else if err != nil {
		return nil, "", err
	}

	token, err := auth.GenerateToken(user.ID, user.WalletAddress)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return &user, token, nil
}

// GetUserByWallet looks up a user by wallet address.
func (s *AuthService) GetUserByWallet(walletAddress string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("wallet_address = ?", walletAddress).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateNickname sets a user's nickname. Uniqueness is enforced by the
// database index.
func (s *AuthService) UpdateNickname(walletAddress, nickname string) error {
	res := s.db.Model(&models.User{}).
		Where("wallet_address = ?", walletAddress).
		Update("nickname", nickname)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (s *AuthService) createUser(walletAddress string) (*models.User, error) {
	const maxAttempts = 5

	for attempt := 0; attempt < maxAttempts; attempt++ {
		nickname, err := utils.GenerateNickname()
		if err != nil {
			return nil, err
		}

		user := &models.User{
			WalletAddress: walletAddress,
			Nickname:      nickname,
		}
		err = s.db.Create(user).Error
		if err == nil {
			if _, codeErr := s.referrals.EnsureCode(walletAddress); codeErr != nil {
				log.Printf("[Auth] Warning: failed to create referral code for %s: %v", walletAddress, codeErr)
			}
			log.Printf("[Auth] New user registered: wallet=%s nickname=%s", walletAddress, nickname)
			return user, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}

		// Either the nickname collided or a concurrent login already
		// created this wallet. Re-check the wallet before retrying.
		var existing models.User
		if findErr := s.db.Where("wallet_address = ?", walletAddress).First(&existing).Error; findErr == nil {
			return &existing, nil
		}
	}

	return nil, fmt.Errorf("could not register wallet %s: nickname collisions", walletAddress)
}
