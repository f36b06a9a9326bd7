// Package x402 implements the client side of the x402 payment protocol for
// the exact scheme on Solana. It decodes 402 challenges into transfer
// requirements and encodes signed transactions as X-Payment proof headers.
package x402

import (
	"encoding/json"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/oraclesentinel/oracle-sentinel-go/types"
	"github.com/oraclesentinel/oracle-sentinel-go/utils"
)

// Requirement is a parsed, validated payment option from a 402 challenge.
// Amount is atomic; addresses are decoded from base58.
type Requirement struct {
	Amount   uint64
	PayTo    solana.PublicKey
	Asset    solana.PublicKey
	FeePayer solana.PublicKey
	Network  types.Network
	Scheme   string
}

// ParseChallenge decodes a 402 response body into an actionable requirement.
// Servers list options in preference order; only the first is considered.
func ParseChallenge(body []byte) (*Requirement, error) {
	var resp types.PaymentRequiredResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &types.MalformedChallengeError{Reason: fmt.Sprintf("decoding challenge body: %v", err)}
	}

	if len(resp.Accepts) == 0 {
		return nil, &types.MalformedChallengeError{Reason: "no payment options offered"}
	}

	offer := resp.Accepts[0]

	amount, err := utils.ParseAtomicAmount(offer.MaxAmountRequired)
	if err != nil {
		return nil, &types.MalformedChallengeError{Reason: fmt.Sprintf("maxAmountRequired: %v", err)}
	}
	if amount == 0 {
		return nil, &types.MalformedChallengeError{Reason: "maxAmountRequired must be positive"}
	}

	scheme := offer.Scheme
	if scheme == "" {
		scheme = types.SchemeExact
	}

	network := types.Network(offer.Network)
	if network == "" {
		return nil, &types.MalformedChallengeError{Reason: "network is required"}
	}
	if !network.IsSolana() {
		return nil, &types.UnsupportedAssetError{Network: offer.Network, Reason: "only Solana payments are supported"}
	}

	payTo, err := parseAddress("payTo", offer.PayTo)
	if err != nil {
		return nil, err
	}
	asset, err := parseAddress("asset", offer.Asset)
	if err != nil {
		return nil, err
	}
	feePayer, err := parseAddress("extra.feePayer", offer.FeePayer())
	if err != nil {
		return nil, err
	}

	return &Requirement{
		Amount:   amount,
		PayTo:    payTo,
		Asset:    asset,
		FeePayer: feePayer,
		Network:  network,
		Scheme:   scheme,
	}, nil
}

func parseAddress(field, value string) (solana.PublicKey, error) {
	if value == "" {
		return solana.PublicKey{}, &types.MalformedChallengeError{Reason: field + " is required"}
	}
	pub, err := solana.PublicKeyFromBase58(value)
	if err != nil {
		return solana.PublicKey{}, &types.MalformedChallengeError{Reason: fmt.Sprintf("%s: %v", field, err)}
	}
	return pub, nil
}

// ChallengeAmount extracts the requested amount from a challenge body without
// full validation, for reporting when payment will not be attempted. Returns
// zero when the body does not parse.
func ChallengeAmount(body []byte) uint64 {
	var resp types.PaymentRequiredResponse
	if err := json.Unmarshal(body, &resp); err != nil || len(resp.Accepts) == 0 {
		return 0
	}

	amount, err := utils.ParseAtomicAmount(resp.Accepts[0].MaxAmountRequired)
	if err != nil {
		return 0
	}
	return amount
}
