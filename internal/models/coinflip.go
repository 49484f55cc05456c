package models

import (
	"time"

	"github.com/google/uuid"
)

type CoinSide string

const (
	CoinSideHeads CoinSide = "heads"
	CoinSideTails CoinSide = "tails"
)

// Opposite returns the other side of the coin.
func (s CoinSide) Opposite() CoinSide {
	if s == CoinSideHeads {
		return CoinSideTails
	}
	return CoinSideHeads
}

type CoinflipRoomStatus string

const (
	CoinflipRoomWaiting   CoinflipRoomStatus = "waiting"
	CoinflipRoomPlaying   CoinflipRoomStatus = "playing"
	CoinflipRoomCompleted CoinflipRoomStatus = "completed"
)

// CoinflipRoom is a head-to-head flip: the creator picks a side and a
// stake, one joiner takes the opposite side for the same stake.
type CoinflipRoom struct {
	ID            uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	CreatorWallet string             `gorm:"size:64;not null;index" json:"creator_wallet"`
	CreatorSide   CoinSide           `gorm:"size:10;not null" json:"creator_side"`
	BetAmount     float64            `gorm:"not null" json:"bet_amount"`
	Status        CoinflipRoomStatus `gorm:"size:20;not null;default:waiting;index" json:"status"`
	JoinerWallet  *string            `gorm:"size:64" json:"joiner_wallet"`
	Result        *CoinSide          `gorm:"size:10" json:"result"`
	WinnerWallet  *string            `gorm:"size:64" json:"winner_wallet"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

func (CoinflipRoom) TableName() string {
	return "coinflip_rooms"
}

// CoinflipHistory records one player's side of a completed flip.
type CoinflipHistory struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PlayerWallet string    `gorm:"size:64;not null;index" json:"player_wallet"`
	BetAmount    float64   `gorm:"not null" json:"bet_amount"`
	ChosenSide   CoinSide  `gorm:"size:10;not null" json:"chosen_side"`
	Result       CoinSide  `gorm:"size:10;not null" json:"result"`
	Won          bool      `gorm:"not null" json:"won"`
	CreatedAt    time.Time `json:"created_at"`
}

func (CoinflipHistory) TableName() string {
	return "coinflip_history"
}
