package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log"

	"bolada-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrRoomNotJoinable = errors.New("room is not open for joining")
	ErrOwnRoom         = errors.New("cannot join your own room")
	ErrInvalidSide     = errors.New("side must be heads or tails")
)

// CoinflipService runs head-to-head coin flips. Joining a room is gated
// by a conditional waiting -> playing update so a room can never be
// taken by two joiners.
type CoinflipService struct {
	db        *gorm.DB
	notifier  Notifier
	levels    *LevelService
	referrals *ReferralService

	// flip returns the landed side. Overridable in tests.
	flip func() models.CoinSide
}

// NewCoinflipService creates a new CoinflipService
func NewCoinflipService(db *gorm.DB, notifier Notifier, levels *LevelService, referrals *ReferralService) *CoinflipService {
	return &CoinflipService{
		db:        db,
		notifier:  notifier,
		levels:    levels,
		referrals: referrals,
		flip:      cryptoFlip,
	}
}

// CreateRoom opens a new room with the creator's side and stake.
func (s *CoinflipService) CreateRoom(creatorWallet string, side models.CoinSide, amount float64) (*models.CoinflipRoom, error) {
	if side != models.CoinSideHeads && side != models.CoinSideTails {
		return nil, ErrInvalidSide
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	room := &models.CoinflipRoom{
		ID:            uuid.New(),
		CreatorWallet: creatorWallet,
		CreatorSide:   side,
		BetAmount:     amount,
		Status:        models.CoinflipRoomWaiting,
	}
	if err := s.db.Create(room).Error; err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	log.Printf("[Coinflip] Room %s created: wallet=%s side=%s amount=%.4f",
		room.ID, creatorWallet, side, amount)
	s.notifier.Publish(EventRoomChanged, room)
	return room, nil
}

// JoinRoom enters a waiting room as the second player and resolves the
// flip immediately. The joiner always plays the side the creator did
// not pick.
func (s *CoinflipService) JoinRoom(roomID uuid.UUID, joinerWallet string) (*models.CoinflipRoom, error) {
	var room models.CoinflipRoom
	if err := s.db.First(&room, "id = ?", roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotJoinable
		}
		return nil, err
	}
	if room.CreatorWallet == joinerWallet {
		return nil, ErrOwnRoom
	}

	// Claim the room. Only one joiner can win this update.
	claim := s.db.Model(&models.CoinflipRoom{}).
		Where("id = ? AND status = ?", roomID, models.CoinflipRoomWaiting).
		Updates(map[string]interface{}{
			"status":        models.CoinflipRoomPlaying,
			"joiner_wallet": joinerWallet,
		})
	if claim.Error != nil {
		return nil, claim.Error
	}
	if claim.RowsAffected == 0 {
		return nil, ErrRoomNotJoinable
	}

	result := s.flip()
	winner := room.CreatorWallet
	loser := joinerWallet
	if result != room.CreatorSide {
		winner, loser = loser, winner
	}

	joinerSide := room.CreatorSide.Opposite()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.CoinflipRoom{}).
			Where("id = ?", roomID).
			Updates(map[string]interface{}{
				"status":        models.CoinflipRoomCompleted,
				"result":        result,
				"winner_wallet": winner,
			}).Error; err != nil {
			return err
		}

		entries := []*models.CoinflipHistory{
			{
				ID:           uuid.New(),
				PlayerWallet: room.CreatorWallet,
				BetAmount:    room.BetAmount,
				ChosenSide:   room.CreatorSide,
				Result:       result,
				Won:          winner == room.CreatorWallet,
			},
			{
				ID:           uuid.New(),
				PlayerWallet: joinerWallet,
				BetAmount:    room.BetAmount,
				ChosenSide:   joinerSide,
				Result:       result,
				Won:          winner == joinerWallet,
			},
		}
		return tx.Create(&entries).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to settle flip: %w", err)
	}

	for _, wallet := range []string{room.CreatorWallet, joinerWallet} {
		if err := s.levels.AddXP(wallet, room.BetAmount); err != nil {
			log.Printf("[Coinflip] Warning: failed to add XP for %s: %v", wallet, err)
		}
		if err := s.referrals.AddEarning(wallet, room.BetAmount, "coinflip"); err != nil {
			log.Printf("[Coinflip] Warning: failed to credit referral for %s: %v", wallet, err)
		}
	}

	if err := s.db.First(&room, "id = ?", roomID).Error; err != nil {
		return nil, err
	}

	log.Printf("[Coinflip] Room %s resolved: result=%s winner=%s loser=%s amount=%.4f",
		roomID, result, winner, loser, room.BetAmount)
	s.notifier.Publish(EventRoomChanged, &room)
	return &room, nil
}

// CancelRoom lets a creator close a room nobody has joined yet.
func (s *CoinflipService) CancelRoom(roomID uuid.UUID, creatorWallet string) error {
	res := s.db.Where("id = ? AND creator_wallet = ? AND status = ?",
		roomID, creatorWallet, models.CoinflipRoomWaiting).
		Delete(&models.CoinflipRoom{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRoomNotJoinable
	}
	s.notifier.Publish(EventRoomChanged, map[string]interface{}{"id": roomID, "cancelled": true})
	return nil
}

// GetOpenRooms lists rooms waiting for a joiner, newest first.
func (s *CoinflipService) GetOpenRooms() ([]*models.CoinflipRoom, error) {
	var rooms []*models.CoinflipRoom
	err := s.db.Where("status = ?", models.CoinflipRoomWaiting).
		Order("created_at DESC").
		Find(&rooms).Error
	return rooms, err
}

// GetHistory lists a player's recent flips, newest first.
func (s *CoinflipService) GetHistory(wallet string, limit int) ([]*models.CoinflipHistory, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var history []*models.CoinflipHistory
	err := s.db.Where("player_wallet = ?", wallet).
		Order("created_at DESC").
		Limit(limit).
		Find(&history).Error
	return history, err
}

func cryptoFlip() models.CoinSide {
	var b [1]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	if b[0]&1 == 0 {
		return models.CoinSideHeads
	}
	return models.CoinSideTails
}
