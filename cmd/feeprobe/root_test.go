package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pool-fee-probe/internal/probe"
	"pool-fee-probe/internal/solana"
)

type capturedRequest struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

func newValidator(t *testing.T, response string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	var req capturedRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)
	return server, &req
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestRoot_PrintsResponseAndLogs(t *testing.T) {
	server, _ := newValidator(t, `{"jsonrpc":"2.0","id":1,"result":{"value":{"err":null,"logs":["a","b"]}}}`)

	stdout, _, err := execute(t, "--rpc-endpoint", server.URL)
	require.NoError(t, err)

	assert.Contains(t, stdout, "=== GetFeeInfo Response ===\n")
	assert.Contains(t, stdout, "\n=== Program Logs ===\na\nb\n")
}

func TestRoot_DiagnosticsStayOffStdout(t *testing.T) {
	server, _ := newValidator(t, `{"jsonrpc":"2.0","id":1,"result":{"value":{"err":null,"unitsConsumed":150,"logs":[]}}}`)

	stdout, stderr, err := execute(t, "--rpc-endpoint", server.URL, "--log-level", "debug")
	require.NoError(t, err)

	assert.NotContains(t, stdout, "Simulation complete")
	assert.Contains(t, stderr, "Simulation complete")
	assert.Contains(t, stderr, "units_consumed=150")
}

func TestRoot_EnvironmentOverrides(t *testing.T) {
	server, req := newValidator(t, `{"jsonrpc":"2.0","id":1,"result":{"value":{"logs":[]}}}`)
	t.Setenv("FEEPROBE_RPC_ENDPOINT", server.URL)
	t.Setenv("FEEPROBE_DISCRIMINATOR", "7")

	_, _, err := execute(t)
	require.NoError(t, err)

	require.Len(t, req.Params, 2)
	var first solana.SimulateTransactionParams
	require.NoError(t, json.Unmarshal(req.Params[0], &first))
	require.Len(t, first.Instructions, 1)
	assert.Equal(t, "Bw==", first.Instructions[0].Data)
}

func TestRoot_MultipleAccounts(t *testing.T) {
	server, req := newValidator(t, `{"result":{"value":{}}}`)

	_, _, err := execute(t,
		"--rpc-endpoint", server.URL,
		"--account", probe.DefaultAccount,
		"--account", probe.DefaultProgramID,
	)
	require.NoError(t, err)

	var first solana.SimulateTransactionParams
	require.NoError(t, json.Unmarshal(req.Params[0], &first))
	require.Len(t, first.Instructions[0].Accounts, 2)
	assert.Equal(t, probe.DefaultAccount, first.Instructions[0].Accounts[0].PubKey)
	assert.Equal(t, probe.DefaultProgramID, first.Instructions[0].Accounts[1].PubKey)
	assert.False(t, first.Instructions[0].Accounts[1].IsWritable)
}

func TestRoot_InvalidInputs(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad account", []string{"--account", "nope"}},
		{"bad program", []string{"--program-id", "0x1234"}},
		{"unknown instruction", []string{"--instruction", "Swap"}},
		{"discriminator overflow", []string{"--discriminator", "256"}},
		{"bad log level", []string{"--log-level", "loud"}},
		{"positional args", []string{"extra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Unroutable on purpose: validation must fail before any request.
			args := append([]string{"--rpc-endpoint", "http://127.0.0.1:1"}, tt.args...)
			stdout, _, err := execute(t, args...)
			require.Error(t, err)
			assert.Empty(t, stdout)
		})
	}
}

func TestRoot_ConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := server.URL
	server.Close()

	stdout, _, err := execute(t, "--rpc-endpoint", endpoint)
	require.Error(t, err)
	assert.True(t, errors.Is(err, solana.ErrNetwork))
	assert.Empty(t, stdout)
}

func TestRoot_WritesMetricsFile(t *testing.T) {
	server, _ := newValidator(t, `{"result":{"value":{"logs":["x"]}}}`)
	path := filepath.Join(t.TempDir(), "feeprobe.prom")

	_, _, err := execute(t, "--rpc-endpoint", server.URL, "--metrics-file", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `pool_fee_probe_probe_runs_total{status="success"} 1`)
	assert.Contains(t, string(data), `method="simulateTransaction"`)
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "feeprobe:")
	assert.Contains(t, stdout, "Version: dev")
}

func TestRoot_EnvironmentAccountsCommaSeparated(t *testing.T) {
	server, req := newValidator(t, `{"result":{"value":{}}}`)
	t.Setenv("FEEPROBE_RPC_ENDPOINT", server.URL)
	t.Setenv("FEEPROBE_ACCOUNT", probe.DefaultAccount+","+probe.DefaultProgramID)

	_, _, err := execute(t)
	require.NoError(t, err)

	var first solana.SimulateTransactionParams
	require.NoError(t, json.Unmarshal(req.Params[0], &first))
	require.Len(t, first.Instructions[0].Accounts, 2)
	assert.Equal(t, probe.DefaultAccount, first.Instructions[0].Accounts[0].PubKey)
	assert.Equal(t, probe.DefaultProgramID, first.Instructions[0].Accounts[1].PubKey)
}
