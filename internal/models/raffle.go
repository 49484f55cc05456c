package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultRaffleID is the single rolling raffle the dashboard runs.
const DefaultRaffleID = "main"

// RaffleTicket is one numbered entry in a raffle. Ticket numbers are
// allocated monotonically per raffle, same as jackpot ticket ranges.
type RaffleTicket struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RaffleID      string    `gorm:"size:50;not null;default:main;index;uniqueIndex:idx_raffle_ticket_number,priority:1" json:"raffle_id"`
	WalletAddress string    `gorm:"size:64;not null;index" json:"wallet_address"`
	TicketNumber  int64     `gorm:"not null;uniqueIndex:idx_raffle_ticket_number,priority:2" json:"ticket_number"`
	Amount        float64   `gorm:"not null" json:"amount"`
	CreatedAt     time.Time `json:"created_at"`
}

func (RaffleTicket) TableName() string {
	return "raffle_tickets"
}

// RaffleWinner records an admin-selected raffle winner.
type RaffleWinner struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RaffleID      string    `gorm:"size:50;not null;default:main;index" json:"raffle_id"`
	WalletAddress string    `gorm:"size:64;not null" json:"wallet_address"`
	TicketNumber  int64     `gorm:"not null" json:"ticket_number"`
	WonAt         time.Time `gorm:"not null" json:"won_at"`
}

func (RaffleWinner) TableName() string {
	return "raffle_winners"
}
