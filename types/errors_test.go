package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	tests := []struct {
		err  Error
		code string
	}{
		{&MissingCredentialError{}, CodeMissingCredential},
		{&InvalidCredentialError{Reason: "bad base58"}, CodeInvalidCredential},
		{&PaymentRequiredError{Amount: 80000}, CodePaymentRequired},
		{&PaymentCapabilityError{}, CodePaymentCapability},
		{&InsufficientBalanceError{Required: 80000, Available: 50000}, CodeInsufficientBalance},
		{&MalformedChallengeError{Reason: "no accepts"}, CodeMalformedChallenge},
		{&UnsupportedAssetError{Network: "base", Reason: "not solana"}, CodeUnsupportedAsset},
		{&AuthenticationError{}, CodeAuthentication},
		{&NetworkError{Op: "GET /api/v1/bulk", Err: errors.New("dial tcp")}, CodeNetwork},
		{&TransactionError{Reason: "broadcast rejected"}, CodeTransaction},
		{&APIError{StatusCode: 500, Body: "boom"}, CodeAPI},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.code, tc.err.Code(), "code for %T", tc.err)
		assert.NotEmpty(t, tc.err.Error(), "message for %T", tc.err)
	}
}

func TestPaymentRequiredError_Dollars(t *testing.T) {
	err := &PaymentRequiredError{Amount: 80000}

	assert.Equal(t, "payment of $0.08 USDC required", err.Error())
	assert.True(t, err.AmountDollars().Equal(decimal.RequireFromString("0.08")))
}

func TestInsufficientBalanceError_Dollars(t *testing.T) {
	err := &InsufficientBalanceError{Required: 80000, Available: 50000}

	assert.Equal(t, "insufficient balance: need $0.08, have $0.05", err.Error())
	assert.True(t, err.RequiredDollars().Equal(decimal.RequireFromString("0.08")))
	assert.True(t, err.AvailableDollars().Equal(decimal.RequireFromString("0.05")))
}

func TestUnsupportedAssetError_Message(t *testing.T) {
	byAsset := &UnsupportedAssetError{Asset: "So11111111111111111111111111111111111111112", Reason: "no decimals registered for mint"}
	assert.Contains(t, byAsset.Error(), "unsupported asset So1111")

	byNetwork := &UnsupportedAssetError{Network: "base", Reason: "only Solana payments are supported"}
	assert.Contains(t, byNetwork.Error(), "unsupported network base")
}

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("connection refused")
	wrapped := fmt.Errorf("calling rpc: %w", &NetworkError{Op: "getLatestBlockhash", Err: cause})

	var netErr *NetworkError
	require.True(t, errors.As(wrapped, &netErr))
	assert.Equal(t, "getLatestBlockhash", netErr.Op)
	assert.True(t, errors.Is(wrapped, cause))

	txErr := &TransactionError{Reason: "failed on chain", Err: cause}
	assert.True(t, errors.Is(txErr, cause))
	assert.Contains(t, txErr.Error(), "failed on chain")
}
