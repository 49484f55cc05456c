package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math"
	"math/big"
	"time"

	"bolada-backend/internal/config"
	"bolada-backend/internal/models"
	"bolada-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Validation errors surfaced by the jackpot engine. Guard failures from
// lost races are not errors: they come back as AlreadyCompleted results.
var (
	ErrInvalidAmount   = errors.New("amount too low to earn a ticket")
	ErrTimerNotExpired = errors.New("round timer not expired")
	ErrRoundNotFound   = errors.New("round not found")
)

// JackpotService owns the round lifecycle: at most one active round, bets
// with disjoint contiguous ticket ranges, and an exactly-once weighted
// draw. All cross-process invariants are enforced by the repository's
// conditional writes, never by in-process locks.
type JackpotService struct {
	repo          *repository.Repository
	notifier      Notifier
	levels        *LevelService
	referrals     *ReferralService
	ticketsPerSOL int
	roundDuration time.Duration

	// pickTicket draws a uniform ticket in [1, totalTickets]. Overridable
	// in tests for deterministic draws.
	pickTicket func(totalTickets int64) int64
}

// NewJackpotService creates a new JackpotService
func NewJackpotService(
	repo *repository.Repository,
	notifier Notifier,
	levels *LevelService,
	referrals *ReferralService,
	cfg config.JackpotConfig,
) *JackpotService {
	return &JackpotService{
		repo:          repo,
		notifier:      notifier,
		levels:        levels,
		referrals:     referrals,
		ticketsPerSOL: cfg.TicketsPerSOL,
		roundDuration: cfg.RoundDuration,
		pickTicket:    cryptoPickTicket,
	}
}

// RoundDuration returns the configured betting window length.
func (s *JackpotService) RoundDuration() time.Duration {
	return s.roundDuration
}

// TicketsPerSOL returns the configured ticket rate.
func (s *JackpotService) TicketsPerSOL() int {
	return s.ticketsPerSOL
}

// EnsureActiveRound returns the current active round, resolving an
// expired one and opening a fresh round when needed. Safe to call from
// any number of concurrent clients: creation is guarded by the partial
// unique index, and a lost race falls back to re-fetching the winner's
// round.
func (s *JackpotService) EnsureActiveRound(ctx context.Context) (*models.JackpotRound, error) {
	const maxAttempts = 3

	for attempt := 0; attempt < maxAttempts; attempt++ {
		round, err := s.repo.GetActiveRound(ctx)
		if err == nil {
			if !round.Expired(s.roundDuration, time.Now()) {
				return round, nil
			}

			// Expired round still open: resolve it before creating the
			// next one. A concurrent resolver is fine, DrawWinner is
			// idempotent.
			if _, err := s.DrawWinner(ctx, round.ID, false); err != nil {
				return nil, fmt.Errorf("failed to resolve expired round: %w", err)
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		created, err := s.repo.CreateActiveRound(ctx)
		if err == nil {
			log.Printf("[Jackpot] Round %d opened (%s)", created.RoundNumber, created.ID)
			s.notifier.Publish(EventRoundChanged, created)
			return created, nil
		}
		if !errors.Is(err, repository.ErrActiveRoundExists) {
			return nil, err
		}
		// Lost the creation race; loop and adopt the winner's round.
	}

	return nil, fmt.Errorf("could not settle on an active round after %d attempts", maxAttempts)
}

// BetPlacement describes a successfully allocated bet.
type BetPlacement struct {
	Bet         *models.JackpotBet `json:"bet"`
	TicketStart int64              `json:"ticket_start"`
	TicketEnd   int64              `json:"ticket_end"`
	TicketCount int64              `json:"ticket_count"`
	TotalPot    float64            `json:"total_pot"`
}

// PlaceBet wagers amount SOL on the given round for a wallet. The ticket
// range allocation and pot update are a single store transaction; on any
// rejection no state changes.
func (s *JackpotService) PlaceBet(
	ctx context.Context,
	roundID uuid.UUID,
	walletAddress string,
	amount float64,
) (*BetPlacement, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	ticketCount := int64(math.Floor(amount * float64(s.ticketsPerSOL)))
	if ticketCount <= 0 {
		return nil, ErrInvalidAmount
	}

	bet, err := s.repo.AllocateBet(ctx, roundID, walletAddress, amount, ticketCount, s.roundDuration)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoundNotFound
		}
		return nil, err
	}

	round, err := s.repo.GetRoundByID(ctx, roundID)
	if err != nil {
		return nil, err
	}

	log.Printf("[Jackpot] Bet placed: wallet=%s amount=%.4f tickets=#%d-#%d round=%d",
		walletAddress, amount, bet.TicketStart, bet.TicketEnd, round.RoundNumber)

	s.notifier.Publish(EventBetPlaced, bet)
	s.notifier.Publish(EventRoundChanged, round)

	// Side ledgers are best effort: a failed XP or commission write never
	// rolls back a committed bet.
	if err := s.levels.AddXP(walletAddress, amount); err != nil {
		log.Printf("[Jackpot] Warning: failed to add XP for %s: %v", walletAddress, err)
	}
	if err := s.referrals.AddEarning(walletAddress, amount, "jackpot"); err != nil {
		log.Printf("[Jackpot] Warning: failed to credit referral for %s: %v", walletAddress, err)
	}

	return &BetPlacement{
		Bet:         bet,
		TicketStart: bet.TicketStart,
		TicketEnd:   bet.TicketEnd,
		TicketCount: ticketCount,
		TotalPot:    round.TotalPot,
	}, nil
}

// DrawResult is the outcome of a draw attempt. Exactly one of the three
// shapes is populated: a winner, NoBets, or AlreadyCompleted.
type DrawResult struct {
	AlreadyCompleted bool    `json:"already_completed,omitempty"`
	NoBets           bool    `json:"no_bets,omitempty"`
	WinnerWallet     string  `json:"winner_wallet,omitempty"`
	WinningTicket    int64   `json:"winning_ticket,omitempty"`
	Prize            float64 `json:"prize,omitempty"`
}

// DrawWinner selects one bettor weighted by ticket count and completes
// the round. Any number of callers may attempt the draw concurrently;
// the conditional status flip in the repository guarantees exactly one
// reports a winner and the rest observe AlreadyCompleted. When manual is
// true the timer check is skipped (owner-authorized draws); the active
// status check never is.
func (s *JackpotService) DrawWinner(
	ctx context.Context,
	roundID uuid.UUID,
	manual bool,
) (*DrawResult, error) {
	round, err := s.repo.GetRoundByID(ctx, roundID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoundNotFound
		}
		return nil, err
	}

	if round.Status != models.RoundStatusActive {
		return &DrawResult{AlreadyCompleted: true}, nil
	}

	if !manual && !round.Expired(s.roundDuration, time.Now()) {
		return nil, ErrTimerNotExpired
	}

	bets, err := s.repo.GetRoundBets(ctx, roundID)
	if err != nil {
		return nil, err
	}

	if len(bets) == 0 {
		completed, err := s.repo.CompleteRound(ctx, roundID, nil, nil)
		if err != nil {
			return nil, err
		}
		if !completed {
			return &DrawResult{AlreadyCompleted: true}, nil
		}

		log.Printf("[Jackpot] Round %d closed with no bets", round.RoundNumber)
		s.notifier.Publish(EventRoundChanged, round)
		return &DrawResult{NoBets: true}, nil
	}

	var totalTickets int64
	for _, bet := range bets {
		totalTickets += bet.TicketCount()
	}

	winningTicket := s.pickTicket(totalTickets)

	// Walk bets in ticket range order; the first bet whose accumulated
	// upper bound reaches the winning ticket owns it.
	var winner *models.JackpotBet
	var accumulated int64
	for _, bet := range bets {
		accumulated += bet.TicketCount()
		if winningTicket <= accumulated {
			winner = bet
			break
		}
	}
	if winner == nil {
		return nil, fmt.Errorf("winning ticket %d outside allocated range 1-%d", winningTicket, totalTickets)
	}

	completed, err := s.repo.CompleteRound(ctx, roundID, &winner.WalletAddress, &winningTicket)
	if err != nil {
		return nil, err
	}
	if !completed {
		// Another caller flipped the round first. Their draw stands.
		return &DrawResult{AlreadyCompleted: true}, nil
	}

	// Pot is frozen once the status flips; re-read for the final figure.
	final, err := s.repo.GetRoundByID(ctx, roundID)
	if err != nil {
		return nil, err
	}

	result := &DrawResult{
		WinnerWallet:  winner.WalletAddress,
		WinningTicket: winningTicket,
		Prize:         final.TotalPot,
	}

	log.Printf("[Jackpot] Round %d drawn: winner=%s ticket=#%d prize=%.4f",
		round.RoundNumber, winner.WalletAddress, winningTicket, final.TotalPot)

	s.notifier.Publish(EventWinnerDrawn, result)
	s.notifier.Publish(EventRoundChanged, final)
	return result, nil
}

// GetRoundBets retrieves all bets for a round in ticket order
func (s *JackpotService) GetRoundBets(ctx context.Context, roundID uuid.UUID) ([]*models.JackpotBet, error) {
	return s.repo.GetRoundBets(ctx, roundID)
}

// GetRoundByID retrieves a round by ID
func (s *JackpotService) GetRoundByID(ctx context.Context, roundID uuid.UUID) (*models.JackpotRound, error) {
	round, err := s.repo.GetRoundByID(ctx, roundID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoundNotFound
		}
		return nil, err
	}
	return round, nil
}

// GetRecentRounds retrieves recently completed rounds for the history feed
func (s *JackpotService) GetRecentRounds(ctx context.Context, limit int) ([]*models.JackpotRound, error) {
	return s.repo.GetRecentRounds(ctx, limit)
}

// cryptoPickTicket draws uniformly in [1, totalTickets] from crypto/rand.
func cryptoPickTicket(totalTickets int64) int64 {
	n, err := rand.Int(rand.Reader, big.NewInt(totalTickets))
	if err != nil {
		// crypto/rand only fails when the platform's entropy source is
		// broken; a casino draw must not silently degrade.
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return n.Int64() + 1
}
