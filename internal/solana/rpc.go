package solana

import (
	"context"
	"encoding/json"
)

// Simulator defines the Solana RPC HTTP surface used by the probe.
type Simulator interface {
	// SimulateTransaction runs simulateTransaction and returns the full
	// JSON-RPC response envelope as received.
	SimulateTransaction(ctx context.Context, params SimulateTransactionParams, cfg SimulateConfig) (json.RawMessage, error)

	// GetHealth returns the node health string ("ok" when healthy).
	GetHealth(ctx context.Context) (string, error)

	// GetVersion returns the node software version.
	GetVersion(ctx context.Context) (*Version, error)
}

// Version is the result of getVersion.
type Version struct {
	SolanaCore string `json:"solana-core"`
	FeatureSet uint32 `json:"feature-set"`
}
