// Package wallet holds the caller identity: a Solana address used for holder
// verification, optionally backed by an ed25519 key for x402 payment.
package wallet

import (
	"crypto/ed25519"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/oraclesentinel/oracle-sentinel-go/types"
)

// Wallet is the caller identity. Address-only wallets authenticate for the
// free tier; key-backed wallets can additionally sign payment transactions.
type Wallet struct {
	pub  solana.PublicKey
	priv solana.PrivateKey // nil for address-only wallets
}

// FromAddress builds a verification-only identity.
func FromAddress(address string) (*Wallet, error) {
	pub, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, &types.InvalidCredentialError{Reason: fmt.Sprintf("wallet address: %v", err)}
	}
	return &Wallet{pub: pub}, nil
}

// FromPrivateKey builds a payment-capable identity from a base58-encoded
// 64-byte ed25519 key. The wallet address is derived from the key.
func FromPrivateKey(key string) (*Wallet, error) {
	priv, err := solana.PrivateKeyFromBase58(key)
	if err != nil {
		return nil, &types.InvalidCredentialError{Reason: fmt.Sprintf("private key: %v", err)}
	}
	if len(priv) != ed25519.PrivateKeySize {
		return nil, &types.InvalidCredentialError{
			Reason: fmt.Sprintf("private key: expected %d bytes, got %d", ed25519.PrivateKeySize, len(priv)),
		}
	}
	return &Wallet{pub: priv.PublicKey(), priv: priv}, nil
}

// Address returns the base58 wallet address.
func (w *Wallet) Address() string { return w.pub.String() }

// PublicKey returns the wallet public key.
func (w *Wallet) PublicKey() solana.PublicKey { return w.pub }

// CanPay reports whether the wallet holds a signing key.
func (w *Wallet) CanPay() bool { return w.priv != nil }

// SignTransaction fills the signature slots this wallet controls and returns
// the serialized transaction bytes. Slots owned by other signers, such as a
// sponsored fee payer named in a challenge, stay empty for downstream
// co-signing by the facilitator.
func (w *Wallet) SignTransaction(tx *solana.Transaction) ([]byte, error) {
	if !w.CanPay() {
		return nil, &types.PaymentCapabilityError{}
	}

	if _, err := tx.PartialSign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(w.pub) {
			return &w.priv
		}
		return nil
	}); err != nil {
		return nil, &types.TransactionError{Reason: "signing transfer", Err: err}
	}

	raw, err := tx.MarshalBinary()
	if err != nil {
		return nil, &types.TransactionError{Reason: "serializing signed transfer", Err: err}
	}
	return raw, nil
}
