package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"bolada-backend/internal/repository"
)

func newTestRaffle(t *testing.T) *RaffleService {
	t.Helper()
	db := newTestDB(t)
	return NewRaffleService(repository.NewRepository(db), NopNotifier())
}

func TestBuyTicketSequentialNumbers(t *testing.T) {
	svc := newTestRaffle(t)
	ctx := context.Background()

	for want := int64(1); want <= 5; want++ {
		ticket, err := svc.BuyTicket(ctx, "raffle-wallet", 0.1)
		if err != nil {
			t.Fatalf("BuyTicket: %v", err)
		}
		if ticket.TicketNumber != want {
			t.Errorf("expected ticket #%d, got #%d", want, ticket.TicketNumber)
		}
	}

	count, err := svc.TicketCount(ctx)
	if err != nil {
		t.Fatalf("TicketCount: %v", err)
	}
	if count != 5 {
		t.Errorf("expected 5 tickets sold, got %d", count)
	}
}

func TestBuyTicketRejectsNonPositive(t *testing.T) {
	svc := newTestRaffle(t)

	if _, err := svc.BuyTicket(context.Background(), "raffle-wallet", 0); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestConcurrentTicketNumbersUnique(t *testing.T) {
	svc := newTestRaffle(t)
	ctx := context.Background()

	const buyers = 15
	var wg sync.WaitGroup
	numbers := make(chan int64, buyers)

	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			wallet := string(rune('a'+n)) + "-raffle"
			ticket, err := svc.BuyTicket(ctx, wallet, 0.1)
			if err != nil {
				t.Errorf("concurrent BuyTicket: %v", err)
				return
			}
			numbers <- ticket.TicketNumber
		}(i)
	}
	wg.Wait()
	close(numbers)

	seen := map[int64]bool{}
	for n := range numbers {
		if seen[n] {
			t.Errorf("duplicate ticket number %d", n)
		}
		seen[n] = true
	}
	if len(seen) != buyers {
		t.Errorf("expected %d unique tickets, got %d", buyers, len(seen))
	}
}

func TestRecordWinner(t *testing.T) {
	svc := newTestRaffle(t)
	ctx := context.Background()

	ticket, _ := svc.BuyTicket(ctx, "lucky-wallet", 0.5)

	winner, err := svc.RecordWinner(ctx, ticket.TicketNumber)
	if err != nil {
		t.Fatalf("RecordWinner: %v", err)
	}
	if winner.WalletAddress != "lucky-wallet" {
		t.Errorf("expected lucky-wallet, got %s", winner.WalletAddress)
	}

	if _, err := svc.RecordWinner(ctx, 999); err == nil {
		t.Error("expected error for unsold ticket")
	}

	winners, _ := svc.GetWinners(ctx, 10)
	if len(winners) != 1 {
		t.Errorf("expected 1 winner, got %d", len(winners))
	}
}

func TestGetTicketsByWallet(t *testing.T) {
	svc := newTestRaffle(t)
	ctx := context.Background()

	svc.BuyTicket(ctx, "wallet-a", 0.1)
	svc.BuyTicket(ctx, "wallet-b", 0.1)
	svc.BuyTicket(ctx, "wallet-a", 0.1)

	tickets, err := svc.GetTickets(ctx, "wallet-a")
	if err != nil {
		t.Fatalf("GetTickets: %v", err)
	}
	if len(tickets) != 2 {
		t.Fatalf("expected 2 tickets for wallet-a, got %d", len(tickets))
	}
	if tickets[0].TicketNumber != 1 || tickets[1].TicketNumber != 3 {
		t.Errorf("unexpected ticket numbers: %d, %d", tickets[0].TicketNumber, tickets[1].TicketNumber)
	}
}
