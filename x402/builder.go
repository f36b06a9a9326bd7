package x402

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/gagliardetto/solana-go/programs/token"

	"github.com/oraclesentinel/oracle-sentinel-go/clients"
	"github.com/oraclesentinel/oracle-sentinel-go/types"
)

// Default compute budget. A single token transfer fits well under 20k units;
// 1 micro-lamport per unit keeps the priority fee negligible.
const (
	DefaultComputeUnitLimit uint32 = 20_000
	DefaultComputeUnitPrice uint64 = 1
)

// BlockhashSource provides the freshness reference bound into each transfer.
type BlockhashSource interface {
	LatestBlockhash(ctx context.Context) (solana.Hash, error)
}

// TransactionBuilder assembles unsigned SPL-token transfers that satisfy a
// payment requirement.
type TransactionBuilder struct {
	chain  BlockhashSource
	assets map[string]uint8 // mint address -> decimals

	computeUnitLimit uint32
	computeUnitPrice uint64
}

// BuilderOption customizes a TransactionBuilder.
type BuilderOption func(*TransactionBuilder)

// WithComputeBudget overrides the compute budget placed ahead of the transfer.
func WithComputeBudget(limit uint32, price uint64) BuilderOption {
	return func(b *TransactionBuilder) {
		b.computeUnitLimit = limit
		b.computeUnitPrice = price
	}
}

// WithAssetDecimals registers an additional mint the builder may transfer.
func WithAssetDecimals(mint string, decimals uint8) BuilderOption {
	return func(b *TransactionBuilder) {
		b.assets[mint] = decimals
	}
}

// NewTransactionBuilder returns a builder that knows USDC out of the box.
func NewTransactionBuilder(chain BlockhashSource, opts ...BuilderOption) *TransactionBuilder {
	b := &TransactionBuilder{
		chain:            chain,
		assets:           map[string]uint8{types.USDCMintAddress: types.USDCDecimals},
		computeUnitLimit: DefaultComputeUnitLimit,
		computeUnitPrice: DefaultComputeUnitPrice,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build assembles the unsigned transfer for req, paid from payer's associated
// token account. Instruction order is fixed: compute unit limit, compute unit
// price, then transferChecked. The fee payer comes from the requirement, so
// when the challenge designates a sponsor the transaction remains partially
// signed until that sponsor co-signs. The blockhash fetch is the only side
// effect.
func (b *TransactionBuilder) Build(ctx context.Context, req *Requirement, payer solana.PublicKey) (*solana.Transaction, error) {
	decimals, ok := b.assets[req.Asset.String()]
	if !ok {
		return nil, &types.UnsupportedAssetError{Asset: req.Asset.String(), Reason: "no decimals registered for mint"}
	}

	sourceAccount, err := clients.DeriveAssociatedAccount(payer, req.Asset)
	if err != nil {
		return nil, err
	}
	destAccount, err := clients.DeriveAssociatedAccount(req.PayTo, req.Asset)
	if err != nil {
		return nil, err
	}

	blockhash, err := b.chain.LatestBlockhash(ctx)
	if err != nil {
		return nil, err
	}

	instructions := []solana.Instruction{
		computebudget.NewSetComputeUnitLimitInstruction(b.computeUnitLimit).Build(),
		computebudget.NewSetComputeUnitPriceInstruction(b.computeUnitPrice).Build(),
		token.NewTransferCheckedInstruction(
			req.Amount,
			decimals,
			sourceAccount,
			req.Asset,
			destAccount,
			payer,
			nil,
		).Build(),
	}

	tx, err := solana.NewTransaction(instructions, blockhash, solana.TransactionPayer(req.FeePayer))
	if err != nil {
		return nil, &types.TransactionError{Reason: "assembling transfer", Err: err}
	}
	tx.Message.SetVersion(solana.MessageVersionV0)

	return tx, nil
}
