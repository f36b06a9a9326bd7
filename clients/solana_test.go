package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oraclesentinel/oracle-sentinel-go/types"
)

// rpcServer fakes a Solana JSON-RPC node. respond receives the method name
// and the per-method call count, and returns the "result" or "error" member
// of the response envelope.
func rpcServer(t *testing.T, respond func(method string, call int) string) *httptest.Server {
	t.Helper()

	var mu sync.Mutex
	counts := map[string]int{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("reading rpc request: %v", err)
			return
		}

		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("decoding rpc request: %v", err)
			return
		}

		mu.Lock()
		counts[req.Method]++
		call := counts[req.Method]
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%s,%s}`, req.ID, respond(req.Method, call))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// tokenAccountsResult renders a jsonParsed getTokenAccountsByOwner result
// with one token account per amount.
func tokenAccountsResult(owner, mint solana.PublicKey, amounts ...string) string {
	entries := make([]string, 0, len(amounts))
	for _, amount := range amounts {
		entries = append(entries, fmt.Sprintf(`{
			"pubkey": %q,
			"account": {
				"lamports": 2039280,
				"owner": "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA",
				"executable": false,
				"rentEpoch": 0,
				"data": {
					"program": "spl-token",
					"space": 165,
					"parsed": {
						"type": "account",
						"info": {
							"isNative": false,
							"mint": %q,
							"owner": %q,
							"state": "initialized",
							"tokenAmount": {
								"amount": %q,
								"decimals": 6,
								"uiAmount": 0,
								"uiAmountString": "0"
							}
						}
					}
				}
			}
		}`, solana.NewWallet().PublicKey(), mint, owner, amount))
	}
	return fmt.Sprintf(`"result":{"context":{"slot":1},"value":[%s]}`, strings.Join(entries, ","))
}

func TestTokenBalance_SumsAccounts(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	mint := solana.MustPublicKeyFromBase58(types.USDCMintAddress)

	srv := rpcServer(t, func(method string, _ int) string {
		require.Equal(t, "getTokenAccountsByOwner", method)
		return tokenAccountsResult(owner, mint, "120000", "30000")
	})

	c := NewSolanaClient(srv.URL, time.Second)
	defer c.Close()

	got, err := c.TokenBalance(context.Background(), owner, mint)
	require.NoError(t, err)
	assert.Equal(t, uint64(150000), got)
}

func TestTokenBalance_NoAccounts(t *testing.T) {
	srv := rpcServer(t, func(string, int) string {
		return `"result":{"context":{"slot":1},"value":[]}`
	})

	c := NewSolanaClient(srv.URL, time.Second)
	defer c.Close()

	got, err := c.TokenBalance(context.Background(), solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey())
	require.NoError(t, err)
	assert.Equal(t, uint64(0), got)
}

func TestTokenBalance_RPCError(t *testing.T) {
	srv := rpcServer(t, func(string, int) string {
		return `"error":{"code":-32602,"message":"Invalid param: could not find account"}`
	})

	c := NewSolanaClient(srv.URL, time.Second)
	defer c.Close()

	_, err := c.TokenBalance(context.Background(), solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey())

	var netErr *types.NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, "getTokenAccountsByOwner", netErr.Op)
}

func TestLatestBlockhash(t *testing.T) {
	want := solana.NewWallet().PublicKey().String()

	srv := rpcServer(t, func(method string, _ int) string {
		require.Equal(t, "getLatestBlockhash", method)
		return fmt.Sprintf(`"result":{"context":{"slot":100},"value":{"blockhash":%q,"lastValidBlockHeight":3090}}`, want)
	})

	c := NewSolanaClient(srv.URL, time.Second)
	defer c.Close()

	hash, err := c.LatestBlockhash(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, hash.String())
}

func TestLatestBlockhash_Unreachable(t *testing.T) {
	c := NewSolanaClient("http://127.0.0.1:1", 200*time.Millisecond)
	defer c.Close()

	_, err := c.LatestBlockhash(context.Background())

	var netErr *types.NetworkError
	require.True(t, errors.As(err, &netErr))
}

// signedTransfer builds a fully signed single-signer transaction for
// broadcast tests.
func signedTransfer(t *testing.T) *solana.Transaction {
	t.Helper()

	kp := solana.NewWallet()
	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(1000, kp.PublicKey(), solana.NewWallet().PublicKey()).Build(),
		},
		solana.Hash{},
		solana.TransactionPayer(kp.PublicKey()),
	)
	require.NoError(t, err)

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(kp.PublicKey()) {
			return &kp.PrivateKey
		}
		return nil
	})
	require.NoError(t, err)
	return tx
}

func TestSubmitTransaction(t *testing.T) {
	tx := signedTransfer(t)

	srv := rpcServer(t, func(method string, _ int) string {
		require.Equal(t, "sendTransaction", method)
		return fmt.Sprintf(`"result":%q`, tx.Signatures[0].String())
	})

	c := NewSolanaClient(srv.URL, time.Second)
	defer c.Close()

	sig, err := c.SubmitTransaction(context.Background(), tx)
	require.NoError(t, err)
	assert.Equal(t, tx.Signatures[0], sig)
}

func TestSubmitTransaction_Rejected(t *testing.T) {
	srv := rpcServer(t, func(string, int) string {
		return `"error":{"code":-32003,"message":"Transaction signature verification failure"}`
	})

	c := NewSolanaClient(srv.URL, time.Second)
	defer c.Close()

	_, err := c.SubmitTransaction(context.Background(), signedTransfer(t))

	var txErr *types.TransactionError
	require.True(t, errors.As(err, &txErr))
	assert.Contains(t, txErr.Error(), "broadcast rejected")
}

const (
	statusNull      = `"result":{"context":{"slot":82},"value":[null]}`
	statusConfirmed = `"result":{"context":{"slot":82},"value":[{"slot":72,"confirmations":10,"err":null,"status":{"Ok":null},"confirmationStatus":"confirmed"}]}`
	statusFailed    = `"result":{"context":{"slot":82},"value":[{"slot":72,"confirmations":null,"err":{"InstructionError":[0,{"Custom":1}]},"status":{"Err":{"InstructionError":[0,{"Custom":1}]}},"confirmationStatus":"finalized"}]}`
)

func confirmClient(srv *httptest.Server) *SolanaClient {
	c := NewSolanaClient(srv.URL, time.Second)
	c.confirmAttempts = 3
	c.confirmInterval = 5 * time.Millisecond
	return c
}

func TestWaitForConfirmation_Confirmed(t *testing.T) {
	srv := rpcServer(t, func(method string, call int) string {
		require.Equal(t, "getSignatureStatuses", method)
		if call == 1 {
			return statusNull
		}
		return statusConfirmed
	})

	c := confirmClient(srv)
	defer c.Close()

	err := c.WaitForConfirmation(context.Background(), solana.Signature{})
	require.NoError(t, err)
}

func TestWaitForConfirmation_FailedOnChain(t *testing.T) {
	srv := rpcServer(t, func(string, int) string {
		return statusFailed
	})

	c := confirmClient(srv)
	defer c.Close()

	err := c.WaitForConfirmation(context.Background(), solana.Signature{})

	var txErr *types.TransactionError
	require.True(t, errors.As(err, &txErr))
	assert.Contains(t, txErr.Error(), "failed on chain")
}

func TestWaitForConfirmation_GivesUp(t *testing.T) {
	srv := rpcServer(t, func(string, int) string {
		return statusNull
	})

	c := confirmClient(srv)
	defer c.Close()

	err := c.WaitForConfirmation(context.Background(), solana.Signature{})

	var txErr *types.TransactionError
	require.True(t, errors.As(err, &txErr))
	assert.Contains(t, txErr.Error(), "not confirmed after 3 attempts")
}

func TestWaitForConfirmation_ContextCancelled(t *testing.T) {
	srv := rpcServer(t, func(string, int) string {
		return statusNull
	})

	c := confirmClient(srv)
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.WaitForConfirmation(ctx, solana.Signature{})

	var txErr *types.TransactionError
	require.True(t, errors.As(err, &txErr))
	assert.Contains(t, txErr.Error(), "confirmation aborted")
}

func TestDeriveAssociatedAccount(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	mint := solana.MustPublicKeyFromBase58(types.USDCMintAddress)

	ata, err := DeriveAssociatedAccount(owner, mint)
	require.NoError(t, err)
	assert.False(t, ata.IsZero())

	again, err := DeriveAssociatedAccount(owner, mint)
	require.NoError(t, err)
	assert.Equal(t, ata, again, "derivation must be deterministic")

	other, err := DeriveAssociatedAccount(solana.NewWallet().PublicKey(), mint)
	require.NoError(t, err)
	assert.NotEqual(t, ata, other)
}

func TestDecodeTransaction_RoundTrip(t *testing.T) {
	tx := signedTransfer(t)

	raw, err := tx.MarshalBinary()
	require.NoError(t, err)

	decoded, err := DecodeTransaction(raw)
	require.NoError(t, err)

	assert.Equal(t, tx.Signatures, decoded.Signatures)
	assert.Equal(t, tx.Message.AccountKeys, decoded.Message.AccountKeys)
}

func TestDecodeTransaction_Garbage(t *testing.T) {
	_, err := DecodeTransaction([]byte{0xff, 0x01})
	require.Error(t, err)
}
