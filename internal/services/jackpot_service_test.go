package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bolada-backend/internal/models"
	"bolada-backend/internal/repository"

	"github.com/google/uuid"
)

func TestEnsureActiveRoundCreatesFirstRound(t *testing.T) {
	db := newTestDB(t)
	svc := newTestJackpot(t, db, time.Minute)
	ctx := context.Background()

	round, err := svc.EnsureActiveRound(ctx)
	if err != nil {
		t.Fatalf("EnsureActiveRound: %v", err)
	}
	if round.Status != models.RoundStatusActive {
		t.Errorf("expected active status, got %s", round.Status)
	}
	if round.RoundNumber != 1 {
		t.Errorf("expected round number 1, got %d", round.RoundNumber)
	}
	if round.TotalPot != 0 {
		t.Errorf("expected empty pot, got %f", round.TotalPot)
	}

	// A second call returns the same round, not a new one.
	again, err := svc.EnsureActiveRound(ctx)
	if err != nil {
		t.Fatalf("second EnsureActiveRound: %v", err)
	}
	if again.ID != round.ID {
		t.Errorf("expected same round %s, got %s", round.ID, again.ID)
	}
}

func TestSingleActiveRoundInvariant(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewRepository(db)
	ctx := context.Background()

	if _, err := repo.CreateActiveRound(ctx); err != nil {
		t.Fatalf("first CreateActiveRound: %v", err)
	}

	_, err := repo.CreateActiveRound(ctx)
	if !errors.Is(err, repository.ErrActiveRoundExists) {
		t.Fatalf("expected ErrActiveRoundExists, got %v", err)
	}

	var count int64
	db.Model(&models.JackpotRound{}).
		Where("status = ?", models.RoundStatusActive).
		Count(&count)
	if count != 1 {
		t.Errorf("expected exactly 1 active round, got %d", count)
	}
}

func TestPlaceBetTicketConversion(t *testing.T) {
	db := newTestDB(t)
	svc := newTestJackpot(t, db, time.Minute)
	ctx := context.Background()

	round, err := svc.EnsureActiveRound(ctx)
	if err != nil {
		t.Fatalf("EnsureActiveRound: %v", err)
	}

	cases := []struct {
		amount  float64
		tickets int64
	}{
		{0.1, 1},
		{0.5, 5},
		{1.0, 10},
		{2.55, 25}, // floor(25.5)
	}

	var expectedStart int64 = 1
	for _, tc := range cases {
		placement, err := svc.PlaceBet(ctx, round.ID, "wallet-conv", tc.amount)
		if err != nil {
			t.Fatalf("PlaceBet(%f): %v", tc.amount, err)
		}
		if placement.TicketCount != tc.tickets {
			t.Errorf("amount %f: expected %d tickets, got %d", tc.amount, tc.tickets, placement.TicketCount)
		}
		if placement.TicketStart != expectedStart {
			t.Errorf("amount %f: expected start %d, got %d", tc.amount, expectedStart, placement.TicketStart)
		}
		if placement.TicketEnd != expectedStart+tc.tickets-1 {
			t.Errorf("amount %f: expected end %d, got %d", tc.amount, expectedStart+tc.tickets-1, placement.TicketEnd)
		}
		expectedStart += tc.tickets
	}
}

func TestPlaceBetRejectsDust(t *testing.T) {
	db := newTestDB(t)
	svc := newTestJackpot(t, db, time.Minute)
	ctx := context.Background()

	round, err := svc.EnsureActiveRound(ctx)
	if err != nil {
		t.Fatalf("EnsureActiveRound: %v", err)
	}

	for _, amount := range []float64{0, -1, 0.05, 0.09} {
		if _, err := svc.PlaceBet(ctx, round.ID, "wallet-dust", amount); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("amount %f: expected ErrInvalidAmount, got %v", amount, err)
		}
	}

	// Rejected bets leave no trace.
	var betCount int64
	db.Model(&models.JackpotBet{}).Count(&betCount)
	if betCount != 0 {
		t.Errorf("expected no bets stored, got %d", betCount)
	}
	fresh, _ := svc.GetRoundByID(ctx, round.ID)
	if fresh.TotalPot != 0 {
		t.Errorf("expected untouched pot, got %f", fresh.TotalPot)
	}
}

func TestPlaceBetUnknownRound(t *testing.T) {
	db := newTestDB(t)
	svc := newTestJackpot(t, db, time.Minute)

	_, err := svc.PlaceBet(context.Background(), uuid.New(), "wallet-x", 1.0)
	if !errors.Is(err, ErrRoundNotFound) {
		t.Fatalf("expected ErrRoundNotFound, got %v", err)
	}
}

func TestPlaceBetOnExpiredRound(t *testing.T) {
	db := newTestDB(t)
	svc := newTestJackpot(t, db, time.Minute)
	ctx := context.Background()

	round, err := svc.EnsureActiveRound(ctx)
	if err != nil {
		t.Fatalf("EnsureActiveRound: %v", err)
	}
	expireRound(t, db, round.ID, time.Minute)

	if _, err := svc.PlaceBet(ctx, round.ID, "wallet-late", 1.0); !errors.Is(err, repository.ErrRoundExpired) {
		t.Fatalf("expected ErrRoundExpired, got %v", err)
	}
}

func TestPlaceBetOnCompletedRound(t *testing.T) {
	db := newTestDB(t)
	svc := newTestJackpot(t, db, time.Minute)
	ctx := context.Background()

	round, err := svc.EnsureActiveRound(ctx)
	if err != nil {
		t.Fatalf("EnsureActiveRound: %v", err)
	}
	expireRound(t, db, round.ID, time.Minute)
	if _, err := svc.DrawWinner(ctx, round.ID, false); err != nil {
		t.Fatalf("DrawWinner: %v", err)
	}

	if _, err := svc.PlaceBet(ctx, round.ID, "wallet-late", 1.0); !errors.Is(err, repository.ErrRoundNotActive) {
		t.Fatalf("expected ErrRoundNotActive, got %v", err)
	}
}

func TestConcurrentBetsDisjointRanges(t *testing.T) {
	db := newTestDB(t)
	svc := newTestJackpot(t, db, time.Minute)
	ctx := context.Background()

	round, err := svc.EnsureActiveRound(ctx)
	if err != nil {
		t.Fatalf("EnsureActiveRound: %v", err)
	}

	const bettors = 20
	var wg sync.WaitGroup
	errs := make(chan error, bettors)

	for i := 0; i < bettors; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			wallet := string(rune('a'+n%26)) + "-wallet"
			if _, err := svc.PlaceBet(ctx, round.ID, wallet, 0.5); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent PlaceBet: %v", err)
	}

	bets, err := svc.GetRoundBets(ctx, round.ID)
	if err != nil {
		t.Fatalf("GetRoundBets: %v", err)
	}
	if len(bets) != bettors {
		t.Fatalf("expected %d bets, got %d", bettors, len(bets))
	}

	// Ranges must tile [1, N*5] with no gaps or overlaps.
	var next int64 = 1
	for i, bet := range bets {
		if bet.TicketStart != next {
			t.Errorf("bet %d: expected start %d, got %d", i, next, bet.TicketStart)
		}
		if bet.TicketCount() != 5 {
			t.Errorf("bet %d: expected 5 tickets, got %d", i, bet.TicketCount())
		}
		next = bet.TicketEnd + 1
	}
	if next != bettors*5+1 {
		t.Errorf("expected final ticket %d, got %d", bettors*5, next-1)
	}

	// Pot must equal the sum of all amounts.
	fresh, _ := svc.GetRoundByID(ctx, round.ID)
	if want := float64(bettors) * 0.5; fresh.TotalPot != want {
		t.Errorf("expected pot %f, got %f", want, fresh.TotalPot)
	}
}

func TestDrawWinnerSingleBettor(t *testing.T) {
	db := newTestDB(t)
	svc := newTestJackpot(t, db, time.Minute)
	ctx := context.Background()

	round, _ := svc.EnsureActiveRound(ctx)
	if _, err := svc.PlaceBet(ctx, round.ID, "solo-wallet", 2.0); err != nil {
		t.Fatalf("PlaceBet: %v", err)
	}

	expireRound(t, db, round.ID, time.Minute)

	result, err := svc.DrawWinner(ctx, round.ID, false)
	if err != nil {
		t.Fatalf("DrawWinner: %v", err)
	}
	if result.WinnerWallet != "solo-wallet" {
		t.Errorf("expected solo-wallet to win, got %q", result.WinnerWallet)
	}
	if result.WinningTicket < 1 || result.WinningTicket > 20 {
		t.Errorf("winning ticket %d outside [1,20]", result.WinningTicket)
	}
	if result.Prize != 2.0 {
		t.Errorf("expected prize 2.0, got %f", result.Prize)
	}

	final, _ := svc.GetRoundByID(ctx, round.ID)
	if !final.HasWinner() {
		t.Error("expected round to record a winner")
	}
	if final.CompletedAt == nil {
		t.Error("expected completed_at to be set")
	}
}

func TestDrawWinnerDeterministicSelection(t *testing.T) {
	db := newTestDB(t)
	svc := newTestJackpot(t, db, time.Minute)
	ctx := context.Background()

	round, _ := svc.EnsureActiveRound(ctx)
	svc.PlaceBet(ctx, round.ID, "alice", 1.0) // tickets 1-10
	svc.PlaceBet(ctx, round.ID, "bob", 0.5)   // tickets 11-15
	svc.PlaceBet(ctx, round.ID, "carol", 2.0) // tickets 16-35

	expireRound(t, db, round.ID, time.Minute)

	// Force ticket 12: bob's range.
	svc.pickTicket = func(total int64) int64 {
		if total != 35 {
			t.Errorf("expected 35 total tickets, got %d", total)
		}
		return 12
	}

	result, err := svc.DrawWinner(ctx, round.ID, false)
	if err != nil {
		t.Fatalf("DrawWinner: %v", err)
	}
	if result.WinnerWallet != "bob" {
		t.Errorf("ticket 12 should belong to bob, got %q", result.WinnerWallet)
	}
	if result.WinningTicket != 12 {
		t.Errorf("expected winning ticket 12, got %d", result.WinningTicket)
	}
	if result.Prize != 3.5 {
		t.Errorf("expected prize 3.5, got %f", result.Prize)
	}
}

func TestDrawWinnerBoundaryTickets(t *testing.T) {
	db := newTestDB(t)
	svc := newTestJackpot(t, db, time.Minute)
	ctx := context.Background()

	// First and last ticket of a middle range must both land on its owner.
	for _, ticket := range []int64{11, 15} {
		round, _ := svc.EnsureActiveRound(ctx)
		svc.PlaceBet(ctx, round.ID, "alice", 1.0)
		svc.PlaceBet(ctx, round.ID, "bob", 0.5)
		svc.PlaceBet(ctx, round.ID, "carol", 1.0)
		expireRound(t, db, round.ID, time.Minute)

		svc.pickTicket = func(int64) int64 { return ticket }
		result, err := svc.DrawWinner(ctx, round.ID, false)
		if err != nil {
			t.Fatalf("DrawWinner(ticket %d): %v", ticket, err)
		}
		if result.WinnerWallet != "bob" {
			t.Errorf("ticket %d should belong to bob, got %q", ticket, result.WinnerWallet)
		}
	}
}

func TestDrawWinnerTimerNotExpired(t *testing.T) {
	db := newTestDB(t)
	svc := newTestJackpot(t, db, time.Minute)
	ctx := context.Background()

	round, _ := svc.EnsureActiveRound(ctx)
	svc.PlaceBet(ctx, round.ID, "early-wallet", 1.0)

	if _, err := svc.DrawWinner(ctx, round.ID, false); !errors.Is(err, ErrTimerNotExpired) {
		t.Fatalf("expected ErrTimerNotExpired, got %v", err)
	}

	// Manual draws skip the timer check.
	result, err := svc.DrawWinner(ctx, round.ID, true)
	if err != nil {
		t.Fatalf("manual DrawWinner: %v", err)
	}
	if result.WinnerWallet != "early-wallet" {
		t.Errorf("expected early-wallet to win, got %q", result.WinnerWallet)
	}
}

func TestDrawWinnerNoBets(t *testing.T) {
	db := newTestDB(t)
	svc := newTestJackpot(t, db, time.Minute)
	ctx := context.Background()

	round, _ := svc.EnsureActiveRound(ctx)
	expireRound(t, db, round.ID, time.Minute)

	result, err := svc.DrawWinner(ctx, round.ID, false)
	if err != nil {
		t.Fatalf("DrawWinner: %v", err)
	}
	if !result.NoBets {
		t.Error("expected NoBets result")
	}

	final, _ := svc.GetRoundByID(ctx, round.ID)
	if final.Status != models.RoundStatusCompleted {
		t.Errorf("expected completed status, got %s", final.Status)
	}
	if final.HasWinner() {
		t.Error("no-bet round must not record a winner")
	}
}

func TestDrawWinnerUnknownRound(t *testing.T) {
	db := newTestDB(t)
	svc := newTestJackpot(t, db, time.Minute)

	if _, err := svc.DrawWinner(context.Background(), uuid.New(), false); !errors.Is(err, ErrRoundNotFound) {
		t.Fatalf("expected ErrRoundNotFound, got %v", err)
	}
}

func TestDrawWinnerExactlyOnce(t *testing.T) {
	db := newTestDB(t)
	svc := newTestJackpot(t, db, time.Minute)
	ctx := context.Background()

	round, _ := svc.EnsureActiveRound(ctx)
	svc.PlaceBet(ctx, round.ID, "winner-wallet", 1.0)
	expireRound(t, db, round.ID, time.Minute)

	const drawers = 10
	var wg sync.WaitGroup
	results := make(chan *DrawResult, drawers)

	for i := 0; i < drawers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := svc.DrawWinner(ctx, round.ID, false)
			if err != nil {
				t.Errorf("concurrent DrawWinner: %v", err)
				return
			}
			results <- result
		}()
	}
	wg.Wait()
	close(results)

	winners := 0
	completed := 0
	for result := range results {
		if result.AlreadyCompleted {
			completed++
		} else if result.WinnerWallet != "" {
			winners++
		}
	}
	if winners != 1 {
		t.Errorf("expected exactly 1 winner result, got %d", winners)
	}
	if completed != drawers-1 {
		t.Errorf("expected %d AlreadyCompleted results, got %d", drawers-1, completed)
	}
}

func TestDrawWinnerIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := newTestJackpot(t, db, time.Minute)
	ctx := context.Background()

	round, _ := svc.EnsureActiveRound(ctx)
	svc.PlaceBet(ctx, round.ID, "wallet-a", 1.0)
	expireRound(t, db, round.ID, time.Minute)

	first, err := svc.DrawWinner(ctx, round.ID, false)
	if err != nil {
		t.Fatalf("first DrawWinner: %v", err)
	}
	if first.WinnerWallet == "" {
		t.Fatal("expected a winner on first draw")
	}

	second, err := svc.DrawWinner(ctx, round.ID, false)
	if err != nil {
		t.Fatalf("second DrawWinner: %v", err)
	}
	if !second.AlreadyCompleted {
		t.Error("second draw must report AlreadyCompleted")
	}

	// The stored winner is the first draw's.
	final, _ := svc.GetRoundByID(ctx, round.ID)
	if final.WinnerWallet == nil || *final.WinnerWallet != first.WinnerWallet {
		t.Error("stored winner changed after repeat draw")
	}
}

func TestEnsureActiveRoundRollsOverExpired(t *testing.T) {
	db := newTestDB(t)
	svc := newTestJackpot(t, db, time.Minute)
	ctx := context.Background()

	first, _ := svc.EnsureActiveRound(ctx)
	svc.PlaceBet(ctx, first.ID, "roll-wallet", 1.0)
	expireRound(t, db, first.ID, time.Minute)

	second, err := svc.EnsureActiveRound(ctx)
	if err != nil {
		t.Fatalf("EnsureActiveRound after expiry: %v", err)
	}
	if second.ID == first.ID {
		t.Fatal("expected a new round after expiry")
	}
	if second.RoundNumber != first.RoundNumber+1 {
		t.Errorf("expected round number %d, got %d", first.RoundNumber+1, second.RoundNumber)
	}

	// The expired round was drawn on the way through.
	closed, _ := svc.GetRoundByID(ctx, first.ID)
	if closed.Status != models.RoundStatusCompleted {
		t.Errorf("expected previous round completed, got %s", closed.Status)
	}
	if !closed.HasWinner() {
		t.Error("expected previous round to record its winner")
	}
}

func TestPotMatchesBetSum(t *testing.T) {
	db := newTestDB(t)
	svc := newTestJackpot(t, db, time.Minute)
	ctx := context.Background()

	round, _ := svc.EnsureActiveRound(ctx)
	amounts := []float64{0.1, 0.25, 1.5, 3.0, 0.7}
	var sum float64
	for i, amount := range amounts {
		wallet := string(rune('a'+i)) + "-pot-wallet"
		if _, err := svc.PlaceBet(ctx, round.ID, wallet, amount); err != nil {
			t.Fatalf("PlaceBet(%f): %v", amount, err)
		}
		sum += amount

		fresh, _ := svc.GetRoundByID(ctx, round.ID)
		if diff := fresh.TotalPot - sum; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("after bet %d: expected pot %f, got %f", i, sum, fresh.TotalPot)
		}
	}
}

func TestProportionalWinOdds(t *testing.T) {
	db := newTestDB(t)
	svc := newTestJackpot(t, db, time.Minute)
	ctx := context.Background()

	// alice holds 90% of tickets, bob 10%. Over many deterministic draws
	// stepping through every ticket, wins land exactly proportionally.
	round, _ := svc.EnsureActiveRound(ctx)
	svc.PlaceBet(ctx, round.ID, "alice", 9.0) // tickets 1-90
	svc.PlaceBet(ctx, round.ID, "bob", 1.0)   // tickets 91-100
	expireRound(t, db, round.ID, time.Minute)

	bets, _ := svc.GetRoundBets(ctx, round.ID)
	wins := map[string]int{}
	for ticket := int64(1); ticket <= 100; ticket++ {
		var acc int64
		for _, bet := range bets {
			acc += bet.TicketCount()
			if ticket <= acc {
				wins[bet.WalletAddress]++
				break
			}
		}
	}

	if wins["alice"] != 90 || wins["bob"] != 10 {
		t.Errorf("expected 90/10 split, got alice=%d bob=%d", wins["alice"], wins["bob"])
	}
}
