package auth

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/mr-tron/base58"
)

// LoginMessage is the fixed message wallets sign to authenticate.
const LoginMessage = "Sign this message to authenticate with BOLADA"

// SignatureMaxAge bounds how old a signed action timestamp may be. Keeps a
// captured signature from being replayed indefinitely.
const SignatureMaxAge = 5 * time.Minute

// BetMessage is the message a wallet signs to authorize one bet.
func BetMessage(amount float64, timestamp string) string {
	return fmt.Sprintf("Place bet: %s SOL at %s", strconv.FormatFloat(amount, 'f', -1, 64), timestamp)
}

// DrawMessage is the message the owner signs to authorize a manual draw.
func DrawMessage(roundID string, timestamp string) string {
	return fmt.Sprintf("Draw winner for round: %s at %s", roundID, timestamp)
}

// AdminMessage is the message the owner signs to authorize an admin action.
func AdminMessage(action string, timestamp string) string {
	return fmt.Sprintf("Admin action: %s at %s", action, timestamp)
}

// VerifySignature reports whether signature is a valid ed25519 signature of
// message by the wallet's key. The wallet address is the base58-encoded
// public key; the signature may be base58 or hex depending on the wallet.
func VerifySignature(message string, signature string, walletAddress string) bool {
	pubKey, err := base58.Decode(walletAddress)
	if err != nil || len(pubKey) != ed25519.PublicKeySize {
		return false
	}

	sig, err := base58.Decode(signature)
	if err != nil {
		sig, err = hex.DecodeString(signature)
		if err != nil {
			return false
		}
	}
	if len(sig) != ed25519.SignatureSize {
		return false
	}

	return ed25519.Verify(pubKey, []byte(message), sig)
}

// VerifyTimestamp checks that a signed action timestamp (RFC 3339) is
// within SignatureMaxAge of now, in either direction to tolerate clock skew.
func VerifyTimestamp(timestamp string) bool {
	ts, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return false
	}

	diff := time.Since(ts)
	if diff < 0 {
		diff = -diff
	}
	return diff <= SignatureMaxAge
}
