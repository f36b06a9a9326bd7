// Package sentinel is the Go client for the Oracle Sentinel market-signal
// API. Access is wallet-gated: qualifying token holders read for free, and
// everyone else pays per request with an x402 USDC micropayment on Solana
// that the client settles automatically.
//
// A Client is safe for concurrent use. Concurrent paid calls from one wallet
// each build their own transfer; serializing them against each other is the
// chain's business, not the client's.
package sentinel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"github.com/oraclesentinel/oracle-sentinel-go/clients"
	"github.com/oraclesentinel/oracle-sentinel-go/logger"
	"github.com/oraclesentinel/oracle-sentinel-go/metrics"
	"github.com/oraclesentinel/oracle-sentinel-go/types"
	"github.com/oraclesentinel/oracle-sentinel-go/utils"
	"github.com/oraclesentinel/oracle-sentinel-go/wallet"
	"github.com/oraclesentinel/oracle-sentinel-go/x402"
)

// Version information.
const (
	Version         = "2.0.0"
	ProtocolVersion = types.X402Version
)

const userAgent = "oracle-sentinel-go/" + Version

const (
	headerPayment       = "X-Payment"
	headerWalletAddress = "X-Wallet-Address"
)

const (
	endpointInfo    = "/api/v1/info"
	endpointBulk    = "/api/v1/bulk"
	endpointAnalyze = "/api/v1/analyze"
)

var usdcMint = solana.MustPublicKeyFromBase58(types.USDCMintAddress)

// Client talks to the Oracle Sentinel API on behalf of one wallet identity.
type Client struct {
	cfg     *types.Config
	wallet  *wallet.Wallet
	http    *http.Client
	ledger  clients.Ledger
	builder *x402.TransactionBuilder
	log     logger.Logger
	metrics metrics.Recorder

	baseURL string
	autoPay bool

	builderOpts []x402.BuilderOption
}

// New creates a Client from cfg, which must name an identity: a wallet
// address for free-tier reads, or a private key for payment capability.
// A nil cfg uses DefaultConfig, which carries no identity and therefore
// fails with MissingCredentialError.
func New(cfg *types.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = types.DefaultConfig()
	} else {
		cc := *cfg
		cfg = &cc
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = types.DefaultBaseURL
	}
	if cfg.RPCURL == "" {
		cfg.RPCURL = types.DefaultRPCURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = types.DefaultTimeout
	}

	if err := utils.ValidateStruct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	var (
		w   *wallet.Wallet
		err error
	)
	switch {
	case cfg.PrivateKey != "":
		w, err = wallet.FromPrivateKey(cfg.PrivateKey)
		if err != nil {
			return nil, err
		}
		if cfg.WalletAddress != "" && cfg.WalletAddress != w.Address() {
			return nil, &types.InvalidCredentialError{Reason: "wallet address does not match private key"}
		}
	case cfg.WalletAddress != "":
		w, err = wallet.FromAddress(cfg.WalletAddress)
		if err != nil {
			return nil, err
		}
	default:
		return nil, &types.MissingCredentialError{}
	}

	c := &Client{
		cfg:     cfg,
		wallet:  w,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		autoPay: !cfg.DisableAutoPay,
		log:     logger.NoopLogger{},
		metrics: metrics.NoopRecorder{},
	}
	if cfg.LogLevel != "" {
		c.log = logger.NewZapLogger(cfg.LogLevel)
	}
	if cfg.EnableMetrics {
		c.metrics = metrics.NewPrometheusRecorder()
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		c.http = &http.Client{Timeout: cfg.Timeout}
	}
	if c.ledger == nil {
		c.ledger = clients.NewSolanaClient(cfg.RPCURL, cfg.Timeout)
	}
	c.builder = x402.NewTransactionBuilder(c.ledger, c.builderOpts...)

	c.log.Debug("client configured", map[string]any{
		"wallet":   w.Address(),
		"can_pay":  w.CanPay(),
		"base_url": c.baseURL,
		"auto_pay": c.autoPay,
	})

	return c, nil
}

// NewWithDefaults creates a payment-capable mainnet client from a base58
// private key.
func NewWithDefaults(privateKey string, opts ...Option) (*Client, error) {
	cfg := types.DefaultConfig()
	cfg.PrivateKey = privateKey
	return New(cfg, opts...)
}

// GetInfo returns service metadata and endpoint pricing. Never payment-gated.
func (c *Client) GetInfo(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, endpointInfo, nil, false)
}

// GetSignal returns the current trading signal for an asset.
// Price: $0.01 USDC, free for qualifying holders.
func (c *Client) GetSignal(ctx context.Context, assetSlug string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/api/v1/signal/"+url.PathEscape(assetSlug), nil, true)
}

// GetAnalysis returns the detailed analysis for an asset.
// Price: $0.03 USDC, free for qualifying holders.
func (c *Client) GetAnalysis(ctx context.Context, assetSlug string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/api/v1/analysis/"+url.PathEscape(assetSlug), nil, true)
}

// GetWhaleActivity returns large-holder movements for an asset.
// Price: $0.02 USDC, free for qualifying holders.
func (c *Client) GetWhaleActivity(ctx context.Context, assetSlug string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/api/v1/whale/"+url.PathEscape(assetSlug), nil, true)
}

// GetBulkSignals returns signals for all tracked assets.
// Price: $0.08 USDC, free for qualifying holders.
func (c *Client) GetBulkSignals(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, endpointBulk, nil, true)
}

// AnalyzeMarket runs an on-demand analysis of a prediction-market URL.
// Price: $0.05 USDC, free for qualifying holders.
func (c *Client) AnalyzeMarket(ctx context.Context, marketURL string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, endpointAnalyze, &types.AnalyzeMarketRequest{URL: marketURL}, true)
}

// HolderStatus probes the bulk endpoint without paying to learn whether the
// wallet qualifies for the free tier.
func (c *Client) HolderStatus(ctx context.Context) (*types.HolderStatus, error) {
	_, err := c.do(ctx, http.MethodGet, endpointBulk, nil, false)
	if err != nil {
		var required *types.PaymentRequiredError
		if errors.As(err, &required) {
			return &types.HolderStatus{}, nil
		}
		return nil, err
	}
	return &types.HolderStatus{IsHolder: true, HasFreeAccess: true}, nil
}

// TokenBalance returns the wallet's USDC balance in atomic units.
func (c *Client) TokenBalance(ctx context.Context) (uint64, error) {
	return c.ledger.TokenBalance(ctx, c.wallet.PublicKey(), usdcMint)
}

// USDCBalance returns the wallet's USDC balance in display units.
func (c *Client) USDCBalance(ctx context.Context) (decimal.Decimal, error) {
	atomic, err := c.TokenBalance(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return types.AtomicToDollars(atomic), nil
}

// WalletAddress returns the base58 address this client authenticates as.
func (c *Client) WalletAddress() string {
	return c.wallet.Address()
}

// CanPay reports whether the client can settle payment challenges.
func (c *Client) CanPay() bool {
	return c.wallet.CanPay()
}

// Close releases the chain adapter.
func (c *Client) Close() error {
	return c.ledger.Close()
}

// GetVersion returns version information.
func GetVersion() map[string]interface{} {
	return map[string]interface{}{
		"library_version":    Version,
		"protocol_version":   ProtocolVersion,
		"supported_networks": []string{"solana", "solana-devnet"},
		"supported_schemes":  []string{types.SchemeExact},
	}
}
