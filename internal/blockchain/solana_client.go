package blockchain

import (
	"context"
	"fmt"
	"log"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
)

const lamportsPerSOL = 1_000_000_000

// SolanaClient handles Solana blockchain reads for the dashboard:
// wallet balances and deposit verification. It never signs or submits
// anything.
type SolanaClient struct {
	rpcClient *rpc.Client
	network   string
}

// NewSolanaClient creates a new Solana client
func NewSolanaClient(network, rpcEndpoint string) *SolanaClient {
	if rpcEndpoint == "" {
		switch network {
		case "mainnet-beta":
			rpcEndpoint = "https://api.mainnet-beta.solana.com"
		case "testnet":
			rpcEndpoint = "https://api.testnet.solana.com"
		default:
			rpcEndpoint = "https://api.devnet.solana.com"
		}
	}

	return &SolanaClient{
		rpcClient: rpc.New(rpcEndpoint),
		network:   network,
	}
}

// ValidateWalletAddress validates a Solana wallet address format
func (s *SolanaClient) ValidateWalletAddress(address string) bool {
	_, err := solana.PublicKeyFromBase58(address)
	return err == nil
}

// GetSOLBalance gets the SOL balance for a wallet
func (s *SolanaClient) GetSOLBalance(ctx context.Context, walletAddress string) (decimal.Decimal, error) {
	pubKey, err := solana.PublicKeyFromBase58(walletAddress)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid wallet address: %w", err)
	}

	balance, err := s.rpcClient.GetBalance(ctx, pubKey, rpc.CommitmentConfirmed)
	if err != nil {
		return decimal.Zero, err
	}

	return decimal.NewFromInt(int64(balance.Value)).Div(decimal.NewFromInt(lamportsPerSOL)), nil
}

// TransactionDetails holds the parsed details of a verified transaction
type TransactionDetails struct {
	Signature string
	Sender    string
	Receiver  string
	Amount    decimal.Decimal // in SOL
	Confirmed bool
}

// VerifyTransaction checks that a transaction is confirmed on chain and
// extracts the transfer details. Returns nil (no error) while the
// transaction is still unknown or unconfirmed.
func (s *SolanaClient) VerifyTransaction(ctx context.Context, txHash string) (*TransactionDetails, error) {
	sig, err := solana.SignatureFromBase58(txHash)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction signature: %w", err)
	}

	status, err := s.rpcClient.GetSignatureStatuses(ctx, true, sig)
	if err != nil {
		return nil, err
	}
	if len(status.Value) == 0 || status.Value[0] == nil {
		return nil, nil
	}
	if status.Value[0].Err != nil {
		return nil, fmt.Errorf("transaction execution failed")
	}

	confStatus := status.Value[0].ConfirmationStatus
	if confStatus != rpc.ConfirmationStatusConfirmed && confStatus != rpc.ConfirmationStatusFinalized {
		return nil, nil
	}

	tx, err := s.rpcClient.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction details: %w", err)
	}

	transaction, err := tx.Transaction.GetTransaction()
	if err != nil {
		log.Printf("[Solana] Failed to decode transaction %s: %v", txHash, err)
		return &TransactionDetails{Signature: txHash, Confirmed: true}, nil
	}
	if len(transaction.Message.AccountKeys) < 2 {
		return &TransactionDetails{Signature: txHash, Confirmed: true}, nil
	}

	// Net lamport gain at account index 1 covers simple system transfers,
	// which is all the dashboard accepts as deposits.
	var lamports uint64
	if len(tx.Meta.PreBalances) > 1 && len(tx.Meta.PostBalances) > 1 {
		pre := tx.Meta.PreBalances[1]
		post := tx.Meta.PostBalances[1]
		if post > pre {
			lamports = post - pre
		}
	}

	return &TransactionDetails{
		Signature: txHash,
		Sender:    transaction.Message.AccountKeys[0].String(),
		Receiver:  transaction.Message.AccountKeys[1].String(),
		Amount:    decimal.NewFromUint64(lamports).Div(decimal.NewFromInt(lamportsPerSOL)),
		Confirmed: true,
	}, nil
}
