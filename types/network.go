package types

import "strings"

// Network identifies the blockchain cluster a payment settles on.
type Network string

const (
	NetworkSolana        Network = "solana"
	NetworkSolanaMainnet Network = "solana-mainnet"
	NetworkSolanaDevnet  Network = "solana-devnet" // testnet
)

// IsSolana reports whether the network is a Solana cluster. Challenges from
// the service name mainnet plainly as "solana"; cluster-suffixed forms are
// accepted for compatibility with other x402 resource servers.
func (n Network) IsSolana() bool {
	return n == NetworkSolana || strings.HasPrefix(string(n), "solana-")
}

// IsTestnet reports whether the network is a test cluster.
func (n Network) IsTestnet() bool {
	return n == NetworkSolanaDevnet
}

func (n Network) String() string {
	return string(n)
}
