package models

import (
	"time"

	"github.com/google/uuid"
)

type RoundStatus string

const (
	RoundStatusActive    RoundStatus = "active"
	RoundStatusCompleted RoundStatus = "completed"
)

// JackpotRound is one timed drawing cycle. At most one round is active at
// any time: a partial unique index on (status) WHERE status = 'active'
// backs that invariant at the store layer (see database.AutoMigrate).
type JackpotRound struct {
	ID                 uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	RoundNumber        int64       `gorm:"uniqueIndex;not null" json:"round_number"`
	Status             RoundStatus `gorm:"size:20;not null;default:active;index" json:"status"`
	TotalPot           float64     `gorm:"not null;default:0" json:"total_pot"`
	StartedAt          time.Time   `gorm:"not null" json:"started_at"`
	CompletedAt        *time.Time  `json:"completed_at"`
	WinnerWallet       *string     `gorm:"size:64" json:"winner_wallet"`
	WinnerTicketNumber *int64      `json:"winner_ticket_number"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

func (JackpotRound) TableName() string {
	return "jackpot_rounds"
}

// HasWinner reports whether the round closed with a drawn winner. A round
// force-closed with zero bets completes without one.
func (r *JackpotRound) HasWinner() bool {
	return r.Status == RoundStatusCompleted && r.WinnerWallet != nil
}

// Expired reports whether the round's betting window has elapsed.
func (r *JackpotRound) Expired(duration time.Duration, now time.Time) bool {
	return !now.Before(r.StartedAt.Add(duration))
}

// JackpotBet is an append-only ledger entry: a wallet's wager against a
// round, converted to the contiguous ticket range [TicketStart, TicketEnd].
type JackpotBet struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RoundID       uuid.UUID `gorm:"type:uuid;not null;index" json:"round_id"`
	WalletAddress string    `gorm:"size:64;not null;index" json:"wallet_address"`
	Amount        float64   `gorm:"not null" json:"amount"`
	TicketStart   int64     `gorm:"not null" json:"ticket_start"`
	TicketEnd     int64     `gorm:"not null" json:"ticket_end"`
	CreatedAt     time.Time `json:"created_at"`
}

func (JackpotBet) TableName() string {
	return "jackpot_bets"
}

// TicketCount returns the number of tickets this bet owns.
func (b *JackpotBet) TicketCount() int64 {
	return b.TicketEnd - b.TicketStart + 1
}
