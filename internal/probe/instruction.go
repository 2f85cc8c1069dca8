package probe

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Instruction is a single-byte program instruction with no arguments.
type Instruction struct {
	Name          string
	Discriminator byte
}

// GetFeeInfo reads the pool's fee configuration and collected amounts.
var GetFeeInfo = Instruction{Name: "GetFeeInfo", Discriminator: 21}

var knownInstructions = map[string]Instruction{
	strings.ToLower(GetFeeInfo.Name): GetFeeInfo,
}

// LookupInstruction resolves an instruction by name, case-insensitively.
func LookupInstruction(name string) (Instruction, error) {
	ix, ok := knownInstructions[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Instruction{}, fmt.Errorf("%w: unknown instruction %q", ErrInvalidConfig, name)
	}
	return ix, nil
}

// WithDiscriminator returns a copy of ix that sends d instead.
func (ix Instruction) WithDiscriminator(d byte) Instruction {
	ix.Discriminator = d
	return ix
}

// Bytes returns the binary instruction payload.
func (ix Instruction) Bytes() []byte {
	return []byte{ix.Discriminator}
}

// EncodedData returns the base64 payload for the instruction data field.
func (ix Instruction) EncodedData() string {
	return base64.StdEncoding.EncodeToString(ix.Bytes())
}
