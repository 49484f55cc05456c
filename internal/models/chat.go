package models

import (
	"time"

	"github.com/google/uuid"
)

// GlobalChatRoomID is the room every connected client sees by default.
// Game-specific rooms (coinflip lobbies) use their own room UUIDs.
var GlobalChatRoomID = uuid.Nil

// ChatMessage is a single chat line in a room.
type ChatMessage struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RoomID        uuid.UUID `gorm:"type:uuid;not null;index" json:"room_id"`
	WalletAddress string    `gorm:"size:64;not null;index" json:"wallet_address"`
	Message       string    `gorm:"size:500;not null" json:"message"`
	CreatedAt     time.Time `json:"created_at"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

// MutedUser blocks a wallet from chatting until MutedUntil.
type MutedUser struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	WalletAddress string    `gorm:"size:64;not null;index" json:"wallet_address"`
	Reason        string    `gorm:"size:255" json:"reason"`
	MutedUntil    time.Time `gorm:"not null" json:"muted_until"`
	CreatedAt     time.Time `json:"created_at"`
}

func (MutedUser) TableName() string {
	return "muted_users"
}

// BannedUser blocks a wallet from the platform entirely.
type BannedUser struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	WalletAddress string    `gorm:"size:64;uniqueIndex;not null" json:"wallet_address"`
	IPAddress     *string   `gorm:"size:45" json:"ip_address"`
	Reason        string    `gorm:"size:255" json:"reason"`
	CreatedAt     time.Time `json:"created_at"`
}

func (BannedUser) TableName() string {
	return "banned_users"
}
