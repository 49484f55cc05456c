package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"bolada-backend/internal/models"
)

func TestSendMessageValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewChatService(db, NopNotifier())

	if _, err := svc.SendMessage(models.GlobalChatRoomID, "chatter", "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("expected ErrEmptyMessage, got %v", err)
	}
	if _, err := svc.SendMessage(models.GlobalChatRoomID, "chatter", strings.Repeat("x", 501)); !errors.Is(err, ErrMessageLong) {
		t.Errorf("expected ErrMessageLong, got %v", err)
	}

	msg, err := svc.SendMessage(models.GlobalChatRoomID, "chatter", "  gm degens  ")
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if msg.Message != "gm degens" {
		t.Errorf("expected trimmed message, got %q", msg.Message)
	}
}

func TestSendMessageMuteAndBan(t *testing.T) {
	db := newTestDB(t)
	svc := NewChatService(db, NopNotifier())

	db.Create(&models.MutedUser{
		WalletAddress: "muted-wallet",
		MutedUntil:    time.Now().Add(time.Hour),
	})
	db.Create(&models.BannedUser{WalletAddress: "banned-wallet"})

	if _, err := svc.SendMessage(models.GlobalChatRoomID, "muted-wallet", "hello"); !errors.Is(err, ErrUserMuted) {
		t.Errorf("expected ErrUserMuted, got %v", err)
	}
	if _, err := svc.SendMessage(models.GlobalChatRoomID, "banned-wallet", "hello"); !errors.Is(err, ErrUserBanned) {
		t.Errorf("expected ErrUserBanned, got %v", err)
	}

	// Expired mutes no longer block.
	db.Create(&models.MutedUser{
		WalletAddress: "was-muted",
		MutedUntil:    time.Now().Add(-time.Minute),
	})
	if _, err := svc.SendMessage(models.GlobalChatRoomID, "was-muted", "back"); err != nil {
		t.Errorf("expired mute should not block: %v", err)
	}
}

func TestGetMessagesOrderAndLimit(t *testing.T) {
	db := newTestDB(t)
	svc := NewChatService(db, NopNotifier())

	for _, text := range []string{"first", "second", "third"} {
		if _, err := svc.SendMessage(models.GlobalChatRoomID, "chatter", text); err != nil {
			t.Fatalf("SendMessage(%s): %v", text, err)
		}
	}

	messages, err := svc.GetMessages(models.GlobalChatRoomID, 2)
	if err != nil {
		t.Fatalf("GetMessages: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	// The two newest, in chronological order.
	if messages[len(messages)-1].Message != "third" {
		t.Errorf("expected third last, got %q", messages[len(messages)-1].Message)
	}
}

func TestMessagesScopedToRoom(t *testing.T) {
	db := newTestDB(t)
	svc := NewChatService(db, NopNotifier())

	svc.SendMessage(models.GlobalChatRoomID, "chatter", "global message")

	room := models.GlobalChatRoomID
	room[15] = 1 // any non-global room id
	svc.SendMessage(room, "chatter", "room message")

	global, _ := svc.GetMessages(models.GlobalChatRoomID, 50)
	if len(global) != 1 || global[0].Message != "global message" {
		t.Errorf("global room leaked messages: %v", global)
	}
}
