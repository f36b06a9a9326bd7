package sentinel

import (
	"net/http"

	"github.com/oraclesentinel/oracle-sentinel-go/clients"
	"github.com/oraclesentinel/oracle-sentinel-go/logger"
	"github.com/oraclesentinel/oracle-sentinel-go/metrics"
	"github.com/oraclesentinel/oracle-sentinel-go/x402"
)

// Option customizes a Client beyond what Config covers.
type Option func(*Client)

// WithLogger replaces the logger chosen from Config.LogLevel.
func WithLogger(log logger.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithMetrics replaces the metrics recorder.
func WithMetrics(rec metrics.Recorder) Option {
	return func(c *Client) {
		c.metrics = rec
	}
}

// WithHTTPClient replaces the HTTP client used for API calls. The caller
// owns its timeout behavior.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithLedger replaces the Solana chain adapter. Useful for pointing at a
// custom RPC setup or a fake in tests.
func WithLedger(l clients.Ledger) Option {
	return func(c *Client) {
		c.ledger = l
	}
}

// WithAssetDecimals registers an extra payable mint for challenge
// settlement. USDC is always registered.
func WithAssetDecimals(mint string, decimals uint8) Option {
	return func(c *Client) {
		c.builderOpts = append(c.builderOpts, x402.WithAssetDecimals(mint, decimals))
	}
}
