package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bolada-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Guard failures surfaced by the conditional writes below. These are race
// outcomes, not I/O errors: callers react by re-reading state.
var (
	ErrRoundNotActive    = errors.New("round is not active")
	ErrRoundExpired      = errors.New("round timer expired")
	ErrActiveRoundExists = errors.New("an active round already exists")
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// DB exposes the underlying handle for services that manage their own
// simple reads and writes.
func (r *Repository) DB() *gorm.DB {
	return r.db
}

// GetActiveRound retrieves the current active jackpot round, or
// gorm.ErrRecordNotFound when none exists.
func (r *Repository) GetActiveRound(ctx context.Context) (*models.JackpotRound, error) {
	var round models.JackpotRound
	err := r.db.WithContext(ctx).
		Where("status = ?", models.RoundStatusActive).
		Order("started_at DESC").
		First(&round).Error
	if err != nil {
		return nil, err
	}
	return &round, nil
}

// GetRoundByID retrieves a round by ID
func (r *Repository) GetRoundByID(ctx context.Context, roundID uuid.UUID) (*models.JackpotRound, error) {
	var round models.JackpotRound
	err := r.db.WithContext(ctx).Where("id = ?", roundID).First(&round).Error
	if err != nil {
		return nil, err
	}
	return &round, nil
}

// CreateActiveRound inserts a fresh active round with the next round
// number. The partial unique index on (status) WHERE status = 'active'
// turns a creation race into a uniqueness violation, reported as
// ErrActiveRoundExists so the caller re-fetches the winner's round.
func (r *Repository) CreateActiveRound(ctx context.Context) (*models.JackpotRound, error) {
	round := &models.JackpotRound{
		ID:        uuid.New(),
		Status:    models.RoundStatusActive,
		TotalPot:  0,
		StartedAt: time.Now(),
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var lastNumber int64
		if err := tx.Model(&models.JackpotRound{}).
			Select("COALESCE(MAX(round_number), 0)").
			Scan(&lastNumber).Error; err != nil {
			return err
		}

		round.RoundNumber = lastNumber + 1
		return tx.Create(round).Error
	})

	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrActiveRoundExists
		}
		return nil, err
	}

	return round, nil
}

// AllocateBet inserts a bet with the next free ticket range and bumps the
// round pot, all in one transaction. The round row is locked for the
// duration, so two concurrent bets on the same round serialize at the
// store and can never read the same "last ticket_end".
func (r *Repository) AllocateBet(
	ctx context.Context,
	roundID uuid.UUID,
	walletAddress string,
	amount float64,
	ticketCount int64,
	roundDuration time.Duration,
) (*models.JackpotBet, error) {
	var bet *models.JackpotBet

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var round models.JackpotRound
		if err := r.forUpdate(tx).Where("id = ?", roundID).First(&round).Error; err != nil {
			return err
		}

		if round.Status != models.RoundStatusActive {
			return ErrRoundNotActive
		}
		if round.Expired(roundDuration, time.Now()) {
			return ErrRoundExpired
		}

		var lastTicketEnd int64
		if err := tx.Model(&models.JackpotBet{}).
			Where("round_id = ?", roundID).
			Select("COALESCE(MAX(ticket_end), 0)").
			Scan(&lastTicketEnd).Error; err != nil {
			return err
		}

		b := &models.JackpotBet{
			ID:            uuid.New(),
			RoundID:       roundID,
			WalletAddress: walletAddress,
			Amount:        amount,
			TicketStart:   lastTicketEnd + 1,
			TicketEnd:     lastTicketEnd + ticketCount,
			CreatedAt:     time.Now(),
		}

		if err := tx.Create(b).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.JackpotRound{}).
			Where("id = ?", roundID).
			UpdateColumn("total_pot", gorm.Expr("total_pot + ?", amount)).Error; err != nil {
			return err
		}

		bet = b
		return nil
	})

	if err != nil {
		return nil, err
	}

	return bet, nil
}

// GetRoundBets retrieves all bets for a round in ticket range order
func (r *Repository) GetRoundBets(ctx context.Context, roundID uuid.UUID) ([]*models.JackpotBet, error) {
	var bets []*models.JackpotBet
	err := r.db.WithContext(ctx).
		Where("round_id = ?", roundID).
		Order("ticket_start ASC").
		Find(&bets).Error
	if err != nil {
		return nil, err
	}
	return bets, nil
}

// CompleteRound flips a round from active to completed, assigning the
// winner fields in the same write. The WHERE status = 'active' condition
// is the exactly-once gate: of N concurrent callers only one observes a
// non-zero row count. Winner fields stay nil for a no-bet force close.
func (r *Repository) CompleteRound(
	ctx context.Context,
	roundID uuid.UUID,
	winnerWallet *string,
	winningTicket *int64,
) (bool, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&models.JackpotRound{}).
		Where("id = ? AND status = ?", roundID, models.RoundStatusActive).
		Updates(map[string]interface{}{
			"status":               models.RoundStatusCompleted,
			"winner_wallet":        winnerWallet,
			"winner_ticket_number": winningTicket,
			"completed_at":         now,
		})

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// GetRecentRounds retrieves recently completed rounds, newest first
func (r *Repository) GetRecentRounds(ctx context.Context, limit int) ([]*models.JackpotRound, error) {
	var rounds []*models.JackpotRound
	err := r.db.WithContext(ctx).
		Where("status = ?", models.RoundStatusCompleted).
		Order("completed_at DESC").
		Limit(limit).
		Find(&rounds).Error
	if err != nil {
		return nil, err
	}
	return rounds, nil
}

// AllocateRaffleTicket assigns the next ticket number in a raffle.
// Raffle tickets have no parent row to lock, so allocation leans on the
// (raffle_id, ticket_number) unique index instead: a lost race shows up
// as a duplicate key and the insert is retried with a fresh number.
func (r *Repository) AllocateRaffleTicket(
	ctx context.Context,
	raffleID string,
	walletAddress string,
	amount float64,
) (*models.RaffleTicket, error) {
	const maxAttempts = 5

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		var lastNumber int64
		if err := r.db.WithContext(ctx).Model(&models.RaffleTicket{}).
			Where("raffle_id = ?", raffleID).
			Select("COALESCE(MAX(ticket_number), 0)").
			Scan(&lastNumber).Error; err != nil {
			return nil, err
		}

		ticket := &models.RaffleTicket{
			ID:            uuid.New(),
			RaffleID:      raffleID,
			WalletAddress: walletAddress,
			TicketNumber:  lastNumber + 1,
			Amount:        amount,
			CreatedAt:     time.Now(),
		}

		err := r.db.WithContext(ctx).Create(ticket).Error
		if err == nil {
			return ticket, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("raffle ticket allocation kept losing races: %w", lastErr)
}

// forUpdate adds a row lock on databases that support it. SQLite (used by
// the test suite) has no row locks; there the transaction itself
// serializes writers.
func (r *Repository) forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}
