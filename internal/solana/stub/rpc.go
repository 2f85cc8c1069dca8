package stub

import (
	"context"
	"encoding/json"

	"pool-fee-probe/internal/solana"
)

// Simulator implements solana.Simulator for testing.
type Simulator struct {
	// Response is returned verbatim from SimulateTransaction.
	Response json.RawMessage
	// Err, when set, is returned from every call.
	Err error

	Health  string
	Version *solana.Version

	// Calls records the parameters of every SimulateTransaction call.
	Calls []SimulateCall
}

// SimulateCall captures one SimulateTransaction invocation.
type SimulateCall struct {
	Params solana.SimulateTransactionParams
	Config solana.SimulateConfig
}

// NewSimulator creates a stub that answers with the given response body.
func NewSimulator(response string) *Simulator {
	return &Simulator{
		Response: json.RawMessage(response),
		Health:   "ok",
		Version:  &solana.Version{SolanaCore: "stub"},
	}
}

// SimulateTransaction records the call and returns the canned response.
func (s *Simulator) SimulateTransaction(_ context.Context, params solana.SimulateTransactionParams, cfg solana.SimulateConfig) (json.RawMessage, error) {
	s.Calls = append(s.Calls, SimulateCall{Params: params, Config: cfg})
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Response, nil
}

// GetHealth returns the canned health string.
func (s *Simulator) GetHealth(_ context.Context) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	return s.Health, nil
}

// GetVersion returns the canned version.
func (s *Simulator) GetVersion(_ context.Context) (*solana.Version, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Version, nil
}
