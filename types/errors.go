package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Error is implemented by every error this SDK produces. Code returns a
// stable machine-readable identifier; callers branch on concrete types with
// errors.As, or on codes when crossing a process boundary.
type Error interface {
	error
	Code() string
}

// Error codes.
const (
	// -----------------------------
	// CREDENTIALS
	// -----------------------------
	CodeMissingCredential = "missing_credential"
	CodeInvalidCredential = "invalid_credential"

	// -----------------------------
	// PAYMENT
	// -----------------------------
	CodePaymentRequired     = "payment_required"
	CodePaymentCapability   = "payment_capability_unavailable"
	CodeInsufficientBalance = "insufficient_balance"
	CodeMalformedChallenge  = "malformed_challenge"
	CodeUnsupportedAsset    = "unsupported_asset"

	// -----------------------------
	// TRANSPORT / API
	// -----------------------------
	CodeAuthentication = "authentication_failed"
	CodeNetwork        = "network_error"
	CodeTransaction    = "transaction_failed"
	CodeAPI            = "api_error"
)

// MissingCredentialError indicates that neither a wallet address nor a
// private key was configured.
type MissingCredentialError struct{}

func (e *MissingCredentialError) Error() string {
	return "wallet address or private key must be provided"
}

func (e *MissingCredentialError) Code() string { return CodeMissingCredential }

// InvalidCredentialError indicates a supplied address or key that could not
// be decoded into a usable identity.
type InvalidCredentialError struct {
	Reason string
}

func (e *InvalidCredentialError) Error() string {
	return fmt.Sprintf("invalid credential: %s", e.Reason)
}

func (e *InvalidCredentialError) Code() string { return CodeInvalidCredential }

// PaymentRequiredError is returned when the server demands payment and the
// client declines to pay, either by per-call policy or because auto-pay is
// disabled. Amount is in atomic units.
type PaymentRequiredError struct {
	Amount uint64
}

func (e *PaymentRequiredError) Error() string {
	return fmt.Sprintf("payment of $%s %s required", AtomicToDollars(e.Amount).StringFixed(2), USDCSymbol)
}

func (e *PaymentRequiredError) Code() string { return CodePaymentRequired }

// AmountDollars returns the requested amount in display units.
func (e *PaymentRequiredError) AmountDollars() decimal.Decimal {
	return AtomicToDollars(e.Amount)
}

// PaymentCapabilityError indicates a challenge arrived but the identity has
// no signing key, so no payment can be constructed.
type PaymentCapabilityError struct{}

func (e *PaymentCapabilityError) Error() string {
	return "payment required: hold 1000+ $OSAI for free access, or configure a private key for x402 micropayments"
}

func (e *PaymentCapabilityError) Code() string { return CodePaymentCapability }

// InsufficientBalanceError indicates the observed token balance does not
// cover the charge. Both amounts are atomic.
type InsufficientBalanceError struct {
	Required  uint64
	Available uint64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: need $%s, have $%s",
		AtomicToDollars(e.Required).StringFixed(2), AtomicToDollars(e.Available).StringFixed(2))
}

func (e *InsufficientBalanceError) Code() string { return CodeInsufficientBalance }

// RequiredDollars returns the charge in display units.
func (e *InsufficientBalanceError) RequiredDollars() decimal.Decimal {
	return AtomicToDollars(e.Required)
}

// AvailableDollars returns the observed balance in display units.
func (e *InsufficientBalanceError) AvailableDollars() decimal.Decimal {
	return AtomicToDollars(e.Available)
}

// MalformedChallengeError indicates a 402 body that could not be parsed into
// an actionable payment requirement.
type MalformedChallengeError struct {
	Reason string
}

func (e *MalformedChallengeError) Error() string {
	return fmt.Sprintf("malformed payment challenge: %s", e.Reason)
}

func (e *MalformedChallengeError) Code() string { return CodeMalformedChallenge }

// UnsupportedAssetError indicates a requirement this client cannot satisfy:
// an unknown asset mint or a non-Solana network.
type UnsupportedAssetError struct {
	Asset   string
	Network string
	Reason  string
}

func (e *UnsupportedAssetError) Error() string {
	switch {
	case e.Asset != "":
		return fmt.Sprintf("unsupported asset %s: %s", e.Asset, e.Reason)
	case e.Network != "":
		return fmt.Sprintf("unsupported network %s: %s", e.Network, e.Reason)
	default:
		return fmt.Sprintf("unsupported payment requirement: %s", e.Reason)
	}
}

func (e *UnsupportedAssetError) Code() string { return CodeUnsupportedAsset }

// AuthenticationError indicates the server rejected the wallet identity.
type AuthenticationError struct{}

func (e *AuthenticationError) Error() string {
	return "invalid or unauthorized wallet address"
}

func (e *AuthenticationError) Code() string { return CodeAuthentication }

// NetworkError wraps a transport-level failure against the API or the RPC node.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Code() string { return CodeNetwork }

func (e *NetworkError) Unwrap() error { return e.Err }

// TransactionError indicates a Solana transaction was rejected at broadcast
// or failed to confirm.
type TransactionError struct {
	Reason string
	Err    error
}

func (e *TransactionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transaction failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("transaction failed: %s", e.Reason)
}

func (e *TransactionError) Code() string { return CodeTransaction }

func (e *TransactionError) Unwrap() error { return e.Err }

// APIError is returned for any unexpected, non-payment API response. Body is
// truncated to a short excerpt.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Body)
}

func (e *APIError) Code() string { return CodeAPI }

var (
	_ Error = (*MissingCredentialError)(nil)
	_ Error = (*InvalidCredentialError)(nil)
	_ Error = (*PaymentRequiredError)(nil)
	_ Error = (*PaymentCapabilityError)(nil)
	_ Error = (*InsufficientBalanceError)(nil)
	_ Error = (*MalformedChallengeError)(nil)
	_ Error = (*UnsupportedAssetError)(nil)
	_ Error = (*AuthenticationError)(nil)
	_ Error = (*NetworkError)(nil)
	_ Error = (*TransactionError)(nil)
	_ Error = (*APIError)(nil)
)
