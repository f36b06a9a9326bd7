package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/oraclesentinel/oracle-sentinel-go/types"
	"github.com/oraclesentinel/oracle-sentinel-go/utils"
)

// SolanaClient adapts a Solana JSON-RPC node to the Ledger interface.
type SolanaClient struct {
	rpcURL  string
	client  *rpc.Client
	timeout time.Duration

	confirmAttempts int
	confirmInterval time.Duration
}

var _ Ledger = (*SolanaClient)(nil)

// NewSolanaClient connects the adapter to a JSON-RPC endpoint. Every call is
// bounded by timeout.
func NewSolanaClient(rpcURL string, timeout time.Duration) *SolanaClient {
	if timeout <= 0 {
		timeout = types.DefaultTimeout
	}
	return &SolanaClient{
		rpcURL:          rpcURL,
		client:          rpc.New(rpcURL),
		timeout:         timeout,
		confirmAttempts: 5,
		confirmInterval: 3 * time.Second,
	}
}

// jsonParsed layout of an SPL token account, trimmed to the balance field.
type parsedTokenAccount struct {
	Parsed struct {
		Info struct {
			TokenAmount rpc.UiTokenAmount `json:"tokenAmount"`
		} `json:"info"`
	} `json:"parsed"`
}

// TokenBalance sums the owner's token accounts for mint. Wallets usually
// hold one associated account, but auxiliary accounts count too.
func (s *SolanaClient) TokenBalance(ctx context.Context, owner, mint solana.PublicKey) (uint64, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.client.GetTokenAccountsByOwner(
		callCtx,
		owner,
		&rpc.GetTokenAccountsConfig{Mint: &mint},
		&rpc.GetTokenAccountsOpts{
			Commitment: rpc.CommitmentConfirmed,
			Encoding:   solana.EncodingJSONParsed,
		},
	)
	if err != nil {
		return 0, &types.NetworkError{Op: "getTokenAccountsByOwner", Err: err}
	}

	var total uint64
	for _, acc := range out.Value {
		var parsed parsedTokenAccount
		if err := json.Unmarshal(acc.Account.Data.GetRawJSON(), &parsed); err != nil {
			return 0, fmt.Errorf("parsing token account %s: %w", acc.Pubkey, err)
		}

		amount, err := utils.ParseAtomicAmount(parsed.Parsed.Info.TokenAmount.Amount)
		if err != nil {
			return 0, fmt.Errorf("token account %s: %w", acc.Pubkey, err)
		}
		total += amount
	}

	return total, nil
}

// LatestBlockhash fetches a fresh blockhash at confirmed commitment.
func (s *SolanaClient) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.client.GetLatestBlockhash(callCtx, rpc.CommitmentConfirmed)
	if err != nil {
		return solana.Hash{}, &types.NetworkError{Op: "getLatestBlockhash", Err: err}
	}
	return out.Value.Blockhash, nil
}

// SubmitTransaction broadcasts a signed transaction.
func (s *SolanaClient) SubmitTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	sig, err := s.client.SendTransaction(callCtx, tx)
	if err != nil {
		return solana.Signature{}, &types.TransactionError{Reason: "broadcast rejected", Err: err}
	}
	return sig, nil
}

// WaitForConfirmation polls signature status until the transaction is
// confirmed or finalized.
func (s *SolanaClient) WaitForConfirmation(ctx context.Context, sig solana.Signature) error {
	for i := 0; i < s.confirmAttempts; i++ {
		select {
		case <-ctx.Done():
			return &types.TransactionError{Reason: "confirmation aborted", Err: ctx.Err()}
		case <-time.After(s.confirmInterval):
		}

		status, err := s.client.GetSignatureStatuses(ctx, false, sig)
		if err != nil || len(status.Value) == 0 || status.Value[0] == nil {
			continue
		}

		st := status.Value[0]
		if st.Err != nil {
			return &types.TransactionError{Reason: fmt.Sprintf("%s failed on chain: %v", sig, st.Err)}
		}
		if st.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
			st.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
			return nil
		}
	}

	return &types.TransactionError{
		Reason: fmt.Sprintf("%s not confirmed after %d attempts", sig, s.confirmAttempts),
	}
}

// Close releases the underlying RPC connection.
func (s *SolanaClient) Close() error {
	return s.client.Close()
}

// DeriveAssociatedAccount returns the associated token account holding
// owner's balance of mint. Pure derivation, no chain round-trip.
func DeriveAssociatedAccount(owner, mint solana.PublicKey) (solana.PublicKey, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("deriving associated token account: %w", err)
	}
	return ata, nil
}

// DecodeTransaction deserializes signed transaction bytes, the inverse of
// Transaction.MarshalBinary.
func DecodeTransaction(raw []byte) (*solana.Transaction, error) {
	tx, err := solana.TransactionFromDecoder(binary.NewBinDecoder(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding transaction: %w", err)
	}
	return tx, nil
}
