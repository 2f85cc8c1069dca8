package solana

import (
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// PubkeyLength is the size of a Solana public key in bytes.
const PubkeyLength = 32

// Pubkey is a decoded Solana address.
type Pubkey [PubkeyLength]byte

// ParsePubkey decodes a base58 address and checks its length.
func ParsePubkey(s string) (Pubkey, error) {
	var pk Pubkey
	if s == "" {
		return pk, fmt.Errorf("%w: empty address", ErrInvalidPubkey)
	}
	decoded, err := base58.Decode(s)
	if err != nil {
		return pk, fmt.Errorf("%w: %q: %v", ErrInvalidPubkey, s, err)
	}
	if len(decoded) != PubkeyLength {
		return pk, fmt.Errorf("%w: %q decodes to %d bytes, want %d", ErrInvalidPubkey, s, len(decoded), PubkeyLength)
	}
	copy(pk[:], decoded)
	return pk, nil
}

// String returns the base58 encoding of the key.
func (p Pubkey) String() string {
	return base58.Encode(p[:])
}

// IsOnCurve reports whether the key is a valid ed25519 point.
// Program derived addresses are always off the curve.
func (p Pubkey) IsOnCurve() bool {
	_, err := new(edwards25519.Point).SetBytes(p[:])
	return err == nil
}

// Kind classifies the key as "wallet" (on curve) or "pda" (off curve).
func (p Pubkey) Kind() string {
	if p.IsOnCurve() {
		return "wallet"
	}
	return "pda"
}
