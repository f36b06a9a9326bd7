package types

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// X402Version is the x402 protocol version spoken in challenges and payment proofs.
const X402Version = 2

// SchemeExact is the only payment scheme the Oracle Sentinel service offers:
// a transfer of exactly maxAmountRequired atomic units.
const SchemeExact = "exact"

// USDC on Solana mainnet.
const (
	USDCMintAddress = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	USDCDecimals    = 6
	USDCSymbol      = "USDC"
)

const (
	// DefaultBaseURL is the production Oracle Sentinel API endpoint.
	DefaultBaseURL = "https://oraclesentinel.xyz"

	// DefaultRPCURL is the public Solana mainnet JSON-RPC endpoint.
	DefaultRPCURL = "https://api.mainnet-beta.solana.com"

	// DefaultTimeout bounds each HTTP and RPC call.
	DefaultTimeout = 30 * time.Second
)

// PaymentRequirements defines one payment option offered in a 402 challenge.
type PaymentRequirements struct {
	// Scheme of the payment protocol (e.g., "exact").
	Scheme string `json:"scheme"`

	// Network of the blockchain to send payment on (e.g., "solana").
	Network string `json:"network"`

	// Maximum amount required to pay for the resource, in atomic units of
	// the asset, represented as a decimal string.
	MaxAmountRequired string `json:"maxAmountRequired"`

	// URL of the resource to pay for.
	Resource string `json:"resource,omitempty"`

	// Description of the resource being purchased.
	Description string `json:"description,omitempty"`

	// MIME type of the resource response.
	MimeType string `json:"mimeType,omitempty"`

	// Address to which the payment must be sent.
	PayTo string `json:"payTo"`

	// Maximum time in seconds for the resource server to settle.
	MaxTimeoutSeconds int `json:"maxTimeoutSeconds,omitempty"`

	// Mint address of the SPL token the payment is denominated in.
	Asset string `json:"asset"`

	// Extra information specific to the scheme. The exact scheme on Solana
	// carries extra.feePayer, the sponsor that covers transaction fees.
	Extra map[string]interface{} `json:"extra,omitempty"`
}

// FeePayer returns extra.feePayer, or the empty string when absent.
func (pr *PaymentRequirements) FeePayer() string {
	if pr.Extra == nil {
		return ""
	}
	v, _ := pr.Extra["feePayer"].(string)
	return v
}

// PaymentRequiredResponse is the body of an HTTP 402 challenge.
type PaymentRequiredResponse struct {
	// Version of the x402 payment protocol.
	X402Version int `json:"x402Version"`

	// List of payment options the server accepts, in preference order.
	Accepts []PaymentRequirements `json:"accepts"`

	// Message from the server indicating why payment is required.
	Error string `json:"error,omitempty"`
}

// ExactSolanaPayload carries the signed transaction for the exact scheme on Solana.
type ExactSolanaPayload struct {
	// Base64-encoded signed transaction bytes.
	Transaction string `json:"transaction"`
}

// PaymentPayload is the proof envelope serialized into the X-Payment header
// as base64-encoded JSON.
type PaymentPayload struct {
	// Version of the x402 payment protocol.
	X402Version int `json:"x402Version"`

	Scheme string `json:"scheme"`

	Network string `json:"network"`

	Payload *ExactSolanaPayload `json:"payload"`
}

// Validate checks that the PaymentPayload contains all required fields.
func (p *PaymentPayload) Validate() error {
	if p.X402Version <= 0 {
		return fmt.Errorf("x402Version must be greater than 0")
	}

	if p.Scheme == "" {
		return fmt.Errorf("paymentPayload.scheme is required")
	}

	if p.Network == "" {
		return fmt.Errorf("paymentPayload.network is required")
	}

	if p.Payload == nil || p.Payload.Transaction == "" {
		return fmt.Errorf("paymentPayload.payload.transaction is required")
	}

	return nil
}

// AnalyzeMarketRequest is the body of the market-analysis endpoint.
type AnalyzeMarketRequest struct {
	URL string `json:"url"`
}

// HolderStatus reports whether the wallet qualifies for the free tier.
type HolderStatus struct {
	IsHolder      bool `json:"isHolder"`
	HasFreeAccess bool `json:"hasFreeAccess"`
}

// Config contains configuration for the Oracle Sentinel client.
type Config struct {
	// WalletAddress identifies the caller for holder verification.
	// Base58-encoded public key. Sufficient for free-tier access only.
	WalletAddress string `json:"walletAddress,omitempty"`

	// PrivateKey enables x402 payment. Base58-encoded 64-byte ed25519 key.
	// The wallet address is derived from it when set.
	PrivateKey string `json:"privateKey,omitempty"`

	// BaseURL of the Oracle Sentinel API.
	BaseURL string `json:"baseUrl,omitempty" validate:"omitempty,url"`

	// RPCURL of the Solana JSON-RPC node used for balance reads and
	// payment transactions.
	RPCURL string `json:"rpcUrl,omitempty" validate:"omitempty,url"`

	// Timeout applied per HTTP and RPC call.
	Timeout time.Duration `json:"timeout,omitempty"`

	// DisableAutoPay turns off automatic settlement of 402 challenges.
	// Gated endpoints then fail with PaymentRequiredError instead of paying.
	DisableAutoPay bool `json:"disableAutoPay,omitempty"`

	// LogLevel selects structured logging ("debug", "info", "warn", "error").
	// Empty disables logging.
	LogLevel string `json:"logLevel,omitempty"`

	// EnableMetrics registers Prometheus collectors for request and
	// payment counters.
	EnableMetrics bool `json:"enableMetrics,omitempty"`
}

// DefaultConfig returns a mainnet configuration with auto-pay enabled.
// A wallet address or private key must still be supplied.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:  DefaultBaseURL,
		RPCURL:   DefaultRPCURL,
		Timeout:  DefaultTimeout,
		LogLevel: "info",
	}
}

// AtomicToDollars converts an atomic USDC amount to display units.
// Display values are for humans; protocol logic stays in atomic units.
func AtomicToDollars(amount uint64) decimal.Decimal {
	return decimal.New(int64(amount), -USDCDecimals)
}
