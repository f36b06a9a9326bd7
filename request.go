package sentinel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/oraclesentinel/oracle-sentinel-go/types"
	"github.com/oraclesentinel/oracle-sentinel-go/utils"
	"github.com/oraclesentinel/oracle-sentinel-go/x402"
)

// maxErrorBody caps how much of an error response body is carried into
// APIError.
const maxErrorBody = 512

// callState tracks one API call through the pay-and-retry exchange.
type callState int

const (
	stateIdle callState = iota
	stateAwaitingResponse
	stateChallengeReceived
	statePayingAndRetrying
	stateAwaitingRetryResponse
	stateDone
	stateRejected
)

// call is the mutable record of one exchange with the API. At most one
// payment retry happens per call.
type call struct {
	method       string
	path         string
	body         []byte
	allowPayment bool

	state    callState
	status   int
	respBody []byte
	payment  string

	result json.RawMessage
	err    error
}

// do runs one API call to completion, settling at most one x402 challenge
// along the way.
func (c *Client) do(ctx context.Context, method, path string, payload interface{}, allowPayment bool) (json.RawMessage, error) {
	k := &call{method: method, path: path, allowPayment: allowPayment}
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		k.body = body
	}

	start := time.Now()
	labels := map[string]string{"endpoint": path}
	c.metrics.IncCounter("request", labels)

	for k.state != stateDone && k.state != stateRejected {
		switch k.state {
		case stateIdle, statePayingAndRetrying:
			c.send(ctx, k)
		case stateAwaitingResponse:
			c.classify(k, false)
		case stateChallengeReceived:
			c.negotiate(ctx, k)
		case stateAwaitingRetryResponse:
			c.classify(k, true)
		}
	}

	c.metrics.ObserveLatency("request", time.Since(start), labels)

	if k.err != nil {
		return nil, k.err
	}
	return k.result, nil
}

// send issues the HTTP exchange for the call's current attempt. The payment
// header rides only on the retry.
func (c *Client) send(ctx context.Context, k *call) {
	retry := k.state == statePayingAndRetrying

	var body io.Reader
	if k.body != nil {
		body = bytes.NewReader(k.body)
	}
	req, err := http.NewRequestWithContext(ctx, k.method, c.baseURL+k.path, body)
	if err != nil {
		k.err = fmt.Errorf("building request: %w", err)
		k.state = stateRejected
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(headerWalletAddress, c.wallet.Address())
	if retry {
		req.Header.Set(headerPayment, k.payment)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		k.err = &types.NetworkError{Op: k.method + " " + k.path, Err: err}
		k.state = stateRejected
		return
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		k.err = &types.NetworkError{Op: "reading response from " + k.path, Err: err}
		k.state = stateRejected
		return
	}

	k.status = resp.StatusCode
	k.respBody = respBody
	if retry {
		k.state = stateAwaitingRetryResponse
	} else {
		k.state = stateAwaitingResponse
	}
}

// classify routes a received response. A 402 after paying means the proof was
// not accepted; that surfaces as a plain API error rather than another
// negotiation round.
func (c *Client) classify(k *call, retried bool) {
	switch {
	case k.status >= 200 && k.status < 300:
		k.result = json.RawMessage(k.respBody)
		k.state = stateDone
	case k.status == http.StatusPaymentRequired && !retried:
		c.log.Debug("payment challenge received", map[string]any{"endpoint": k.path})
		k.state = stateChallengeReceived
	case k.status == http.StatusUnauthorized:
		k.err = &types.AuthenticationError{}
		k.state = stateRejected
	default:
		k.err = &types.APIError{
			StatusCode: k.status,
			Body:       utils.TruncateBody(k.respBody, maxErrorBody),
		}
		k.state = stateRejected
	}
}

// negotiate decides whether and how to settle a payment challenge. The
// balance check runs against the challenge's own asset before any
// transaction work starts.
func (c *Client) negotiate(ctx context.Context, k *call) {
	if !k.allowPayment || !c.autoPay {
		k.err = &types.PaymentRequiredError{Amount: x402.ChallengeAmount(k.respBody)}
		k.state = stateRejected
		return
	}
	if !c.wallet.CanPay() {
		k.err = &types.PaymentCapabilityError{}
		k.state = stateRejected
		return
	}

	req, err := x402.ParseChallenge(k.respBody)
	if err != nil {
		k.err = err
		k.state = stateRejected
		return
	}

	available, err := c.ledger.TokenBalance(ctx, c.wallet.PublicKey(), req.Asset)
	if err != nil {
		c.log.Warn("balance lookup failed, treating as zero", map[string]any{
			"endpoint": k.path,
			"error":    err.Error(),
		})
		available = 0
	}
	if available < req.Amount {
		k.err = &types.InsufficientBalanceError{Required: req.Amount, Available: available}
		k.state = stateRejected
		return
	}

	proof, err := c.payChallenge(ctx, req)
	if err != nil {
		k.err = err
		k.state = stateRejected
		return
	}

	c.metrics.IncCounter("payment", map[string]string{"endpoint": k.path})
	c.log.Info("settling payment challenge", map[string]any{
		"endpoint": k.path,
		"amount":   types.AtomicToDollars(req.Amount).String(),
		"pay_to":   req.PayTo.String(),
	})

	k.payment = proof
	k.state = statePayingAndRetrying
}

// payChallenge turns a parsed requirement into a ready X-Payment header value.
func (c *Client) payChallenge(ctx context.Context, req *x402.Requirement) (string, error) {
	tx, err := c.builder.Build(ctx, req, c.wallet.PublicKey())
	if err != nil {
		return "", err
	}
	signed, err := c.wallet.SignTransaction(tx)
	if err != nil {
		return "", err
	}
	return x402.EncodeProof(signed, req)
}
