package probe

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"pool-fee-probe/internal/solana"
)

// Defaults for the local test validator setup.
const (
	DefaultEndpoint  = "http://192.168.9.81:8899"
	DefaultProgramID = "4aeVqtWhrUh6wpX8acNj2hpWXKEQwxjA3PYb2sHhNyCn"
	DefaultAccount   = "5ZXXVaaFWRxpEaNyc5n1iE7K5cNGN6tRSAcZ6Apji1vG"
	DefaultEncoding  = "base64"
	DefaultTimeout   = solana.DefaultTimeout
)

// ErrInvalidConfig is returned when the probe configuration is unusable.
var ErrInvalidConfig = errors.New("invalid probe configuration")

// Config describes a single simulated instruction call.
type Config struct {
	Endpoint    string
	ProgramID   string
	Accounts    []solana.AccountMeta
	Instruction Instruction
	Encoding    string
	Timeout     time.Duration
	Retries     int
	// Preflight issues getHealth and getVersion before simulating.
	Preflight bool
}

// DefaultConfig returns the GetFeeInfo probe against the local validator.
func DefaultConfig() Config {
	return Config{
		Endpoint:  DefaultEndpoint,
		ProgramID: DefaultProgramID,
		Accounts: []solana.AccountMeta{
			ReadOnlyAccount(DefaultAccount),
		},
		Instruction: GetFeeInfo,
		Encoding:    DefaultEncoding,
		Timeout:     DefaultTimeout,
	}
}

// ReadOnlyAccount returns a non-signing, non-writable account reference.
func ReadOnlyAccount(pubkey string) solana.AccountMeta {
	return solana.AccountMeta{PubKey: pubkey}
}

// Validate checks the endpoint and every address before any network call.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return fmt.Errorf("%w: empty RPC endpoint", ErrInvalidConfig)
	}
	if _, err := solana.ParsePubkey(c.ProgramID); err != nil {
		return fmt.Errorf("%w: program id: %w", ErrInvalidConfig, err)
	}
	for i, acct := range c.Accounts {
		if _, err := solana.ParsePubkey(acct.PubKey); err != nil {
			return fmt.Errorf("%w: account %d: %w", ErrInvalidConfig, i, err)
		}
	}
	if c.Encoding == "" {
		return fmt.Errorf("%w: empty encoding", ErrInvalidConfig)
	}
	if c.Retries < 0 {
		return fmt.Errorf("%w: retries must be >= 0, got %d", ErrInvalidConfig, c.Retries)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must be >= 0, got %s", ErrInvalidConfig, c.Timeout)
	}
	return nil
}
