package constants

import "time"

// Redis keys
const (
	RedisKeyRecentSwaps = "pairswap:swaps:recent"
)

// Redis Pub/Sub channels
const (
	PubSubChannelSwaps = "pairswap:swaps:live"
)

// Limits
const (
	MaxRecentSwaps = 100
)

// Transaction confirmation polling
const (
	PollInterval    = 1 * time.Second
	MaxPollAttempts = 30
)

// Compute budget sizing when assembling a simulated transaction.
const (
	ComputeUnitHeadroom  = 1.2
	DefaultComputeUnits  = 200_000
	MaxComputeUnitsLimit = 1_400_000
)

// Cluster genesis hashes. The configured cluster scopes every signed
// transaction: a client pointed at an RPC endpoint for a different cluster
// fails fast instead of producing transactions the chain silently rejects.
var ClusterGenesisHashes = map[string]string{
	"mainnet-beta": "5eykt4UsFv8P8NJdTREpY1vzqKqZKvdpKuc147dw2N9d",
	"devnet":       "EtWTRABZaYq6iMfeYKouRu166VU2xqa1wcaWoxPkrZBG",
	"testnet":      "4uhcVJyU9pJkvQyS88uRDiswHXSCkY3zQawwpjk2NsNY",
}
