package solana

import (
	"errors"
	"fmt"
)

// RPC transport errors.
var (
	// ErrNetwork is returned when a request cannot be sent or no response is read.
	ErrNetwork = errors.New("rpc network error")

	// ErrParse is returned when a response body is not valid JSON.
	ErrParse = errors.New("rpc response is not valid JSON")

	// ErrInvalidPubkey is returned when an address is not a base58 32-byte key.
	ErrInvalidPubkey = errors.New("invalid public key")
)

// RPCError represents a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}
