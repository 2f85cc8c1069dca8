package solana

// AccountMeta references one account used by an instruction.
type AccountMeta struct {
	PubKey     string `json:"pubkey"`
	IsSigner   bool   `json:"isSigner"`
	IsWritable bool   `json:"isWritable"`
}

// Instruction is a program invocation inside a simulated transaction.
type Instruction struct {
	ProgramID string        `json:"programId"`
	Accounts  []AccountMeta `json:"accounts"`
	Data      string        `json:"data"` // base64 encoded
}

// SimulateTransactionParams is the first simulateTransaction parameter.
type SimulateTransactionParams struct {
	Instructions []Instruction `json:"instructions"`
	Signers      []string      `json:"signers"`
}

// SimulateConfig is the second simulateTransaction parameter.
type SimulateConfig struct {
	Encoding string `json:"encoding"`
}
