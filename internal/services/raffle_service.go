package services

import (
	"context"
	"log"
	"time"

	"bolada-backend/internal/models"
	"bolada-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RaffleService handles the rolling community raffle. Ticket numbers
// are allocated monotonically by the repository; winners are picked by
// an owner action rather than a timer.
type RaffleService struct {
	db       *gorm.DB
	repo     *repository.Repository
	notifier Notifier
}

// NewRaffleService creates a new RaffleService
func NewRaffleService(repo *repository.Repository, notifier Notifier) *RaffleService {
	return &RaffleService{
		db:       repo.DB(),
		repo:     repo,
		notifier: notifier,
	}
}

// BuyTicket allocates the next ticket number in the raffle for a wallet.
func (s *RaffleService) BuyTicket(ctx context.Context, walletAddress string, amount float64) (*models.RaffleTicket, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	ticket, err := s.repo.AllocateRaffleTicket(ctx, models.DefaultRaffleID, walletAddress, amount)
	if err != nil {
		return nil, err
	}

	log.Printf("[Raffle] Ticket #%d sold to %s for %.4f", ticket.TicketNumber, walletAddress, amount)
	s.notifier.Publish(EventRaffleTicket, ticket)
	return ticket, nil
}

// GetTickets lists a wallet's tickets in the current raffle.
func (s *RaffleService) GetTickets(ctx context.Context, walletAddress string) ([]*models.RaffleTicket, error) {
	var tickets []*models.RaffleTicket
	err := s.db.WithContext(ctx).
		Where("raffle_id = ? AND wallet_address = ?", models.DefaultRaffleID, walletAddress).
		Order("ticket_number ASC").
		Find(&tickets).Error
	return tickets, err
}

// TicketCount returns how many tickets have been sold in the raffle.
func (s *RaffleService) TicketCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.RaffleTicket{}).
		Where("raffle_id = ?", models.DefaultRaffleID).
		Count(&count).Error
	return count, err
}

// RecordWinner stores an owner-selected winning ticket. The ticket must
// exist in the raffle.
func (s *RaffleService) RecordWinner(ctx context.Context, ticketNumber int64) (*models.RaffleWinner, error) {
	var ticket models.RaffleTicket
	err := s.db.WithContext(ctx).
		Where("raffle_id = ? AND ticket_number = ?", models.DefaultRaffleID, ticketNumber).
		First(&ticket).Error
	if err != nil {
		return nil, err
	}

	winner := &models.RaffleWinner{
		ID:            uuid.New(),
		RaffleID:      models.DefaultRaffleID,
		WalletAddress: ticket.WalletAddress,
		TicketNumber:  ticketNumber,
		WonAt:         time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(winner).Error; err != nil {
		return nil, err
	}

	log.Printf("[Raffle] Winner recorded: wallet=%s ticket=#%d", winner.WalletAddress, ticketNumber)
	s.notifier.Publish(EventWinnerDrawn, winner)
	return winner, nil
}

// GetWinners lists past raffle winners, newest first.
func (s *RaffleService) GetWinners(ctx context.Context, limit int) ([]*models.RaffleWinner, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var winners []*models.RaffleWinner
	err := s.db.WithContext(ctx).
		Where("raffle_id = ?", models.DefaultRaffleID).
		Order("won_at DESC").
		Limit(limit).
		Find(&winners).Error
	return winners, err
}
