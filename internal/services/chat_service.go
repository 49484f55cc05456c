package services

import (
	"errors"
	"strings"
	"time"

	"bolada-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrUserMuted    = errors.New("user is muted")
	ErrUserBanned   = errors.New("user is banned")
	ErrEmptyMessage = errors.New("message is empty")
	ErrMessageLong  = errors.New("message exceeds 500 characters")
)

const maxMessageLength = 500

// ChatService stores chat messages and enforces mutes and bans before a
// message hits the room.
type ChatService struct {
	db       *gorm.DB
	notifier Notifier
}

// NewChatService creates a new ChatService
func NewChatService(db *gorm.DB, notifier Notifier) *ChatService {
	return &ChatService{db: db, notifier: notifier}
}

// SendMessage posts a message to a room after mute and ban checks.
func (s *ChatService) SendMessage(roomID uuid.UUID, walletAddress, message string) (*models.ChatMessage, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if len(message) > maxMessageLength {
		return nil, ErrMessageLong
	}

	banned, err := s.IsBanned(walletAddress)
	if err != nil {
		return nil, err
	}
	if banned {
		return nil, ErrUserBanned
	}

	muted, err := s.IsMuted(walletAddress)
	if err != nil {
		return nil, err
	}
	if muted {
		return nil, ErrUserMuted
	}

	msg := &models.ChatMessage{
		ID:            uuid.New(),
		RoomID:        roomID,
		WalletAddress: walletAddress,
		Message:       message,
	}
	if err := s.db.Create(msg).Error; err != nil {
		return nil, err
	}

	s.notifier.Publish(EventChatMessage, msg)
	return msg, nil
}

// GetMessages returns recent messages for a room in chronological order.
func (s *ChatService) GetMessages(roomID uuid.UUID, limit int) ([]*models.ChatMessage, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var messages []*models.ChatMessage
	err := s.db.Where("room_id = ?", roomID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	// Fetched newest-first for the LIMIT; flip to display order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// IsMuted reports whether a wallet has an active mute.
func (s *ChatService) IsMuted(walletAddress string) (bool, error) {
	var count int64
	err := s.db.Model(&models.MutedUser{}).
		Where("wallet_address = ? AND muted_until > ?", walletAddress, time.Now()).
		Count(&count).Error
	return count > 0, err
}

// IsBanned reports whether a wallet is banned.
func (s *ChatService) IsBanned(walletAddress string) (bool, error) {
	var count int64
	err := s.db.Model(&models.BannedUser{}).
		Where("wallet_address = ?", walletAddress).
		Count(&count).Error
	return count > 0, err
}
