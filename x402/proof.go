package x402

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/oraclesentinel/oracle-sentinel-go/types"
)

// EncodeProof wraps signed transaction bytes in the x402 payment envelope and
// returns the X-Payment header value: base64 over the JSON envelope, which
// itself carries the transaction bytes base64-encoded.
func EncodeProof(signedTx []byte, req *Requirement) (string, error) {
	if len(signedTx) == 0 {
		return "", fmt.Errorf("signed transaction bytes are empty")
	}

	payload := types.PaymentPayload{
		X402Version: types.X402Version,
		Scheme:      req.Scheme,
		Network:     req.Network.String(),
		Payload: &types.ExactSolanaPayload{
			Transaction: base64.StdEncoding.EncodeToString(signedTx),
		},
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding payment payload: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeProof parses an X-Payment header value back into the payment
// envelope, validating required fields.
func DecodeProof(header string) (*types.PaymentPayload, error) {
	if header == "" {
		return nil, fmt.Errorf("payment header is empty")
	}

	raw, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return nil, fmt.Errorf("payment header is not valid base64: %w", err)
	}

	var payload types.PaymentPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("payment header is not valid JSON: %w", err)
	}

	if err := payload.Validate(); err != nil {
		return nil, err
	}
	return &payload, nil
}

// ProofTransaction extracts the raw signed transaction bytes from a decoded
// payment envelope.
func ProofTransaction(payload *types.PaymentPayload) ([]byte, error) {
	if payload == nil || payload.Payload == nil {
		return nil, fmt.Errorf("payment payload is empty")
	}
	raw, err := base64.StdEncoding.DecodeString(payload.Payload.Transaction)
	if err != nil {
		return nil, fmt.Errorf("payload transaction is not valid base64: %w", err)
	}
	return raw, nil
}
