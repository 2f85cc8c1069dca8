package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pool-fee-probe/internal/logging"
	"pool-fee-probe/internal/observability"
	"pool-fee-probe/internal/probe"
	"pool-fee-probe/internal/solana"
)

// envPrefix namespaces environment overrides, e.g. FEEPROBE_RPC_ENDPOINT.
const envPrefix = "FEEPROBE"

const (
	flagEndpoint      = "rpc-endpoint"
	flagProgramID     = "program-id"
	flagAccount       = "account"
	flagInstruction   = "instruction"
	flagDiscriminator = "discriminator"
	flagEncoding      = "encoding"
	flagTimeout       = "timeout"
	flagRetries       = "retries"
	flagPreflight     = "preflight"
	flagMetricsFile   = "metrics-file"
	flagLogLevel      = "log-level"
)

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	defaults := probe.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "feeprobe",
		Short: "Simulate the pool program's GetFeeInfo instruction",
		Long: `feeprobe sends one simulateTransaction request to a Solana validator,
invoking a read-only pool program instruction, and prints the raw response
followed by any program logs.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return v.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(cmd, v)
		},
	}

	flags := cmd.Flags()
	flags.String(flagEndpoint, defaults.Endpoint, "Solana RPC HTTP endpoint")
	flags.String(flagProgramID, defaults.ProgramID, "Program ID to invoke")
	flags.StringSlice(flagAccount, []string{probe.DefaultAccount}, "Read-only account passed to the instruction (repeatable or comma-separated)")
	flags.String(flagInstruction, defaults.Instruction.Name, "Instruction name")
	flags.Int(flagDiscriminator, -1, "Override the instruction discriminator byte (0-255)")
	flags.String(flagEncoding, defaults.Encoding, "Response encoding requested from simulateTransaction")
	flags.Duration(flagTimeout, defaults.Timeout, "HTTP request timeout (0 disables)")
	flags.Int(flagRetries, defaults.Retries, "Retries on transport failure or rate limiting")
	flags.Bool(flagPreflight, false, "Call getHealth and getVersion before simulating")
	flags.String(flagMetricsFile, "", "Write Prometheus metrics to this file (textfile collector format)")
	cmd.PersistentFlags().String(flagLogLevel, logging.DefaultLevel, "Logging level (debug, info, warn, error)")

	cmd.AddCommand(newVersionCmd())

	return cmd
}

// configFromViper assembles the probe configuration from flags and environment.
func configFromViper(v *viper.Viper) (probe.Config, error) {
	cfg := probe.DefaultConfig()
	cfg.Endpoint = v.GetString(flagEndpoint)
	cfg.ProgramID = v.GetString(flagProgramID)
	cfg.Encoding = v.GetString(flagEncoding)
	cfg.Timeout = v.GetDuration(flagTimeout)
	cfg.Retries = v.GetInt(flagRetries)
	cfg.Preflight = v.GetBool(flagPreflight)

	cfg.Accounts = nil
	// Environment values arrive whitespace-split only; accept commas too.
	for _, item := range v.GetStringSlice(flagAccount) {
		for _, acct := range strings.Split(item, ",") {
			acct = strings.TrimSpace(acct)
			if acct == "" {
				continue
			}
			cfg.Accounts = append(cfg.Accounts, probe.ReadOnlyAccount(acct))
		}
	}
	if len(cfg.Accounts) == 0 {
		return cfg, fmt.Errorf("%w: at least one --%s is required", probe.ErrInvalidConfig, flagAccount)
	}

	ix, err := probe.LookupInstruction(v.GetString(flagInstruction))
	if err != nil {
		return cfg, err
	}
	if d := v.GetInt(flagDiscriminator); d >= 0 {
		if d > 255 {
			return cfg, fmt.Errorf("%w: discriminator %d does not fit in one byte", probe.ErrInvalidConfig, d)
		}
		ix = ix.WithDiscriminator(byte(d))
	}
	cfg.Instruction = ix

	return cfg, cfg.Validate()
}

func runProbe(cmd *cobra.Command, v *viper.Viper) error {
	logger, err := logging.NewWithWriter(cmd.ErrOrStderr(), v.GetString(flagLogLevel))
	if err != nil {
		return err
	}

	cfg, err := configFromViper(v)
	if err != nil {
		return err
	}

	metrics := observability.NewMetrics("")
	client := probe.NewHTTPClient(cfg, solana.WithLatencyObserver(metrics.RecordRPCLatency))

	p, err := probe.New(cfg, client,
		probe.WithLogger(logging.Component(logger, "probe")),
		probe.WithMetrics(metrics),
	)
	if err != nil {
		return err
	}

	runErr := p.Run(cmd.Context(), cmd.OutOrStdout())
	writeMetrics(logger, metrics, v.GetString(flagMetricsFile))
	return runErr
}

func writeMetrics(logger zerolog.Logger, metrics *observability.Metrics, path string) {
	if path == "" {
		return
	}
	start := time.Now()
	if err := metrics.WriteTextfile(path); err != nil {
		logger.Error().Err(err).Str("path", path).Msg("Failed to write metrics file")
		return
	}
	logger.Debug().Str("path", path).Dur("elapsed", time.Since(start)).Msg("Metrics written")
}
