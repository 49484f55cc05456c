package services

import (
	"errors"
	"testing"

	"bolada-backend/internal/auth"
	"bolada-backend/internal/models"
)

func newTestAuth(t *testing.T) (*AuthService, *ReferralService, *ChatService) {
	t.Helper()
	auth.InitJWT("test-secret")

	db := newTestDB(t)
	referrals := NewReferralService(db, "0.07")
	chat := NewChatService(db, NopNotifier())
	return NewAuthService(db, referrals, chat), referrals, chat
}

func TestWalletLoginCreatesUser(t *testing.T) {
	svc, referrals, _ := newTestAuth(t)

	user, token, err := svc.ProcessWalletLogin("login-wallet-12345678")
	if err != nil {
		t.Fatalf("ProcessWalletLogin: %v", err)
	}
	if token == "" {
		t.Error("expected a JWT")
	}
	if user.Nickname == "" {
		t.Error("expected a generated nickname")
	}

	// First login registers the wallet's referral code.
	code, err := referrals.EnsureCode("login-wallet-12345678")
	if err != nil {
		t.Fatalf("EnsureCode: %v", err)
	}
	if code != CodeForWallet("login-wallet-12345678") {
		t.Errorf("unexpected code %s", code)
	}
}

func TestWalletLoginIsIdempotent(t *testing.T) {
	svc, _, _ := newTestAuth(t)

	first, _, err := svc.ProcessWalletLogin("repeat-wallet-12345678")
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	second, _, err := svc.ProcessWalletLogin("repeat-wallet-12345678")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if first.ID != second.ID || first.Nickname != second.Nickname {
		t.Error("second login created a different user")
	}
}

func TestWalletLoginRejectsBanned(t *testing.T) {
	svc, _, chat := newTestAuth(t)

	// Ban before first login.
	if err := chat.db.Create(&models.BannedUser{WalletAddress: "banned-wallet"}).Error; err != nil {
		t.Fatalf("failed to seed ban: %v", err)
	}

	if _, _, err := svc.ProcessWalletLogin("banned-wallet"); !errors.Is(err, ErrBannedWallet) {
		t.Fatalf("expected ErrBannedWallet, got %v", err)
	}
}

func TestUpdateNickname(t *testing.T) {
	svc, _, _ := newTestAuth(t)

	user, _, _ := svc.ProcessWalletLogin("nick-wallet-12345678")

	if err := svc.UpdateNickname(user.WalletAddress, "HighRoller_777"); err != nil {
		t.Fatalf("UpdateNickname: %v", err)
	}
	updated, _ := svc.GetUserByWallet(user.WalletAddress)
	if updated.Nickname != "HighRoller_777" {
		t.Errorf("expected HighRoller_777, got %s", updated.Nickname)
	}

	// Unknown wallets report not found.
	if err := svc.UpdateNickname("ghost-wallet", "Ghost"); err == nil {
		t.Error("expected error for unknown wallet")
	}
}
