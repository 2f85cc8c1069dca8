// Package probe simulates a single view instruction against a validator
// and prints the raw response together with the program logs.
package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"pool-fee-probe/internal/observability"
	"pool-fee-probe/internal/solana"
)

// Probe sends one simulateTransaction request and renders the result.
type Probe struct {
	cfg     Config
	client  solana.Simulator
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// Option configures a Probe.
type Option func(*Probe)

// WithLogger sets the diagnostics logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Probe) {
		p.logger = logger
	}
}

// WithMetrics records run outcomes into m.
func WithMetrics(m *observability.Metrics) Option {
	return func(p *Probe) {
		p.metrics = m
	}
}

// New validates cfg and creates a Probe using client for RPC.
func New(cfg Config, client solana.Simulator, opts ...Option) (*Probe, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("%w: nil RPC client", ErrInvalidConfig)
	}
	p := &Probe{
		cfg:    cfg,
		client: client,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// NewHTTPClient builds the RPC client described by cfg.
func NewHTTPClient(cfg Config, opts ...solana.ClientOption) *solana.HTTPClient {
	// A zero timeout disables the limit, as in net/http.
	base := []solana.ClientOption{
		solana.WithMaxRetries(cfg.Retries),
		solana.WithTimeout(cfg.Timeout),
	}
	return solana.NewHTTPClient(cfg.Endpoint, append(base, opts...)...)
}

// Params builds the first simulateTransaction parameter.
func (p *Probe) Params() solana.SimulateTransactionParams {
	accounts := make([]solana.AccountMeta, len(p.cfg.Accounts))
	copy(accounts, p.cfg.Accounts)

	return solana.SimulateTransactionParams{
		Instructions: []solana.Instruction{{
			ProgramID: p.cfg.ProgramID,
			Accounts:  accounts,
			Data:      p.cfg.Instruction.EncodedData(),
		}},
		Signers: []string{},
	}
}

// SimulateConfig builds the second simulateTransaction parameter.
func (p *Probe) SimulateConfig() solana.SimulateConfig {
	return solana.SimulateConfig{Encoding: p.cfg.Encoding}
}

// Run performs the probe and writes the report to out.
func (p *Probe) Run(ctx context.Context, out io.Writer) error {
	logLines, err := p.run(ctx, out)
	p.record(err, logLines)
	return err
}

func (p *Probe) run(ctx context.Context, out io.Writer) (int, error) {
	p.logAccounts()

	if p.cfg.Preflight {
		if err := p.preflight(ctx); err != nil {
			return 0, err
		}
	}

	p.logger.Debug().
		Str("endpoint", p.cfg.Endpoint).
		Str("instruction", p.cfg.Instruction.Name).
		Uint8("discriminator", p.cfg.Instruction.Discriminator).
		Str("data", p.cfg.Instruction.EncodedData()).
		Msg("Simulating instruction")

	start := time.Now()
	raw, err := p.client.SimulateTransaction(ctx, p.Params(), p.SimulateConfig())
	if err != nil {
		return 0, fmt.Errorf("simulate %s: %w", p.cfg.Instruction.Name, err)
	}
	p.logger.Debug().Dur("elapsed", time.Since(start)).Int("bytes", len(raw)).Msg("Simulation response received")

	p.logSummary(raw)

	n, err := Render(out, p.cfg.Instruction.Name, raw)
	if err != nil {
		return 0, fmt.Errorf("render response: %w", err)
	}
	return n, nil
}

func (p *Probe) preflight(ctx context.Context) error {
	health, err := p.client.GetHealth(ctx)
	if err != nil {
		return fmt.Errorf("preflight getHealth: %w", err)
	}
	version, err := p.client.GetVersion(ctx)
	if err != nil {
		return fmt.Errorf("preflight getVersion: %w", err)
	}
	p.logger.Info().
		Str("health", health).
		Str("solana_core", version.SolanaCore).
		Uint32("feature_set", version.FeatureSet).
		Msg("Validator reachable")
	return nil
}

func (p *Probe) logAccounts() {
	for i, acct := range p.cfg.Accounts {
		pk, err := solana.ParsePubkey(acct.PubKey)
		if err != nil {
			continue
		}
		p.logger.Debug().
			Int("index", i).
			Str("pubkey", acct.PubKey).
			Str("kind", pk.Kind()).
			Bool("signer", acct.IsSigner).
			Bool("writable", acct.IsWritable).
			Msg("Instruction account")
	}
}

func (p *Probe) logSummary(raw []byte) {
	s := summarize(raw)
	if s.RPCError != nil {
		p.logger.Warn().Int("code", s.RPCError.Code).Str("message", s.RPCError.Message).Msg("RPC returned an error")
	}
	if s.SimErr != nil {
		p.logger.Warn().RawJSON("err", s.SimErr).Msg("Simulation failed")
	}
	if s.UnitsConsumed != nil {
		p.logger.Info().Uint64("units_consumed", *s.UnitsConsumed).Msg("Simulation complete")
	}
}

func (p *Probe) record(err error, logLines int) {
	if p.metrics == nil {
		return
	}
	p.metrics.RecordProbe(Status(err), logLines)
}

// Status classifies a run error into a metrics status label.
func Status(err error) string {
	switch {
	case err == nil:
		return observability.StatusSuccess
	case errors.Is(err, solana.ErrNetwork):
		return observability.StatusNetworkError
	case errors.Is(err, solana.ErrParse):
		return observability.StatusParseError
	default:
		return observability.StatusError
	}
}
