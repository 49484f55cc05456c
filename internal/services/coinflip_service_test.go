package services

import (
	"errors"
	"sync"
	"testing"

	"bolada-backend/internal/models"

	"github.com/google/uuid"
)

func newTestCoinflip(t *testing.T) *CoinflipService {
	t.Helper()
	db := newTestDB(t)
	return NewCoinflipService(db, NopNotifier(), NewLevelService(db), NewReferralService(db, "0.07"))
}

func TestCreateRoomValidation(t *testing.T) {
	svc := newTestCoinflip(t)

	if _, err := svc.CreateRoom("creator", "sideways", 1.0); !errors.Is(err, ErrInvalidSide) {
		t.Errorf("expected ErrInvalidSide, got %v", err)
	}
	if _, err := svc.CreateRoom("creator", models.CoinSideHeads, 0); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}

	room, err := svc.CreateRoom("creator", models.CoinSideHeads, 0.5)
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if room.Status != models.CoinflipRoomWaiting {
		t.Errorf("expected waiting status, got %s", room.Status)
	}
}

func TestJoinRoomResolvesFlip(t *testing.T) {
	svc := newTestCoinflip(t)
	svc.flip = func() models.CoinSide { return models.CoinSideTails }

	room, _ := svc.CreateRoom("creator", models.CoinSideHeads, 1.0)

	resolved, err := svc.JoinRoom(room.ID, "joiner")
	if err != nil {
		t.Fatalf("JoinRoom: %v", err)
	}
	if resolved.Status != models.CoinflipRoomCompleted {
		t.Errorf("expected completed status, got %s", resolved.Status)
	}
	if resolved.Result == nil || *resolved.Result != models.CoinSideTails {
		t.Error("expected tails result")
	}
	// Creator picked heads, coin landed tails: joiner wins.
	if resolved.WinnerWallet == nil || *resolved.WinnerWallet != "joiner" {
		t.Errorf("expected joiner to win, got %v", resolved.WinnerWallet)
	}

	// Both players get a history entry with correct sides.
	var history []*models.CoinflipHistory
	if err := svc.db.Order("player_wallet").Find(&history).Error; err != nil {
		t.Fatalf("load history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(history))
	}
	for _, entry := range history {
		switch entry.PlayerWallet {
		case "creator":
			if entry.ChosenSide != models.CoinSideHeads || entry.Won {
				t.Errorf("creator entry wrong: side=%s won=%v", entry.ChosenSide, entry.Won)
			}
		case "joiner":
			if entry.ChosenSide != models.CoinSideTails || !entry.Won {
				t.Errorf("joiner entry wrong: side=%s won=%v", entry.ChosenSide, entry.Won)
			}
		default:
			t.Errorf("unexpected history wallet %q", entry.PlayerWallet)
		}
	}
}

func TestJoinRoomGuards(t *testing.T) {
	svc := newTestCoinflip(t)
	svc.flip = func() models.CoinSide { return models.CoinSideHeads }

	room, _ := svc.CreateRoom("creator", models.CoinSideHeads, 1.0)

	if _, err := svc.JoinRoom(room.ID, "creator"); !errors.Is(err, ErrOwnRoom) {
		t.Errorf("expected ErrOwnRoom, got %v", err)
	}
	if _, err := svc.JoinRoom(uuid.New(), "joiner"); !errors.Is(err, ErrRoomNotJoinable) {
		t.Errorf("expected ErrRoomNotJoinable for unknown room, got %v", err)
	}

	if _, err := svc.JoinRoom(room.ID, "joiner"); err != nil {
		t.Fatalf("JoinRoom: %v", err)
	}
	// Resolved rooms cannot be joined again.
	if _, err := svc.JoinRoom(room.ID, "late-joiner"); !errors.Is(err, ErrRoomNotJoinable) {
		t.Errorf("expected ErrRoomNotJoinable for completed room, got %v", err)
	}
}

func TestJoinRoomSingleWinnerUnderRace(t *testing.T) {
	svc := newTestCoinflip(t)
	svc.flip = func() models.CoinSide { return models.CoinSideHeads }

	room, _ := svc.CreateRoom("creator", models.CoinSideHeads, 1.0)

	const joiners = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	joined := 0

	for i := 0; i < joiners; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			wallet := string(rune('a'+n)) + "-joiner"
			if _, err := svc.JoinRoom(room.ID, wallet); err == nil {
				mu.Lock()
				joined++
				mu.Unlock()
			} else if !errors.Is(err, ErrRoomNotJoinable) {
				t.Errorf("unexpected join error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if joined != 1 {
		t.Errorf("expected exactly 1 successful join, got %d", joined)
	}
}

func TestCancelRoom(t *testing.T) {
	svc := newTestCoinflip(t)
	svc.flip = func() models.CoinSide { return models.CoinSideHeads }

	room, _ := svc.CreateRoom("creator", models.CoinSideHeads, 1.0)

	// Only the creator can cancel.
	if err := svc.CancelRoom(room.ID, "stranger"); !errors.Is(err, ErrRoomNotJoinable) {
		t.Errorf("expected ErrRoomNotJoinable for stranger, got %v", err)
	}
	if err := svc.CancelRoom(room.ID, "creator"); err != nil {
		t.Fatalf("CancelRoom: %v", err)
	}

	rooms, _ := svc.GetOpenRooms()
	if len(rooms) != 0 {
		t.Errorf("expected no open rooms after cancel, got %d", len(rooms))
	}

	// Completed rooms cannot be cancelled.
	room2, _ := svc.CreateRoom("creator", models.CoinSideTails, 1.0)
	svc.JoinRoom(room2.ID, "joiner")
	if err := svc.CancelRoom(room2.ID, "creator"); !errors.Is(err, ErrRoomNotJoinable) {
		t.Errorf("expected ErrRoomNotJoinable for completed room, got %v", err)
	}
}

func TestGetOpenRooms(t *testing.T) {
	svc := newTestCoinflip(t)
	svc.flip = func() models.CoinSide { return models.CoinSideHeads }

	svc.CreateRoom("a-wallet", models.CoinSideHeads, 1.0)
	taken, _ := svc.CreateRoom("b-wallet", models.CoinSideTails, 2.0)
	svc.JoinRoom(taken.ID, "c-wallet")

	rooms, err := svc.GetOpenRooms()
	if err != nil {
		t.Fatalf("GetOpenRooms: %v", err)
	}
	if len(rooms) != 1 {
		t.Fatalf("expected 1 open room, got %d", len(rooms))
	}
	if rooms[0].CreatorWallet != "a-wallet" {
		t.Errorf("expected a-wallet's room, got %s", rooms[0].CreatorWallet)
	}
}
