package clients

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// LedgerReader queries the chain state needed to decide and price a payment.
type LedgerReader interface {
	// TokenBalance returns the owner's total balance of mint, in atomic
	// units. A wallet with no token account holds zero; that is a balance,
	// not an error.
	TokenBalance(ctx context.Context, owner, mint solana.PublicKey) (uint64, error)

	// LatestBlockhash returns a fresh blockhash to bind into a transaction.
	LatestBlockhash(ctx context.Context) (solana.Hash, error)
}

// LedgerWriter broadcasts signed transactions directly to the chain.
type LedgerWriter interface {
	SubmitTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
}

// Ledger combines chain reads and writes behind one adapter.
type Ledger interface {
	LedgerReader
	LedgerWriter
	Close() error
}
