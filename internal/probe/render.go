package probe

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// LogsBanner precedes the program log lines.
const LogsBanner = "=== Program Logs ==="

// ResponseBanner returns the heading printed before the response dump.
func ResponseBanner(name string) string {
	return fmt.Sprintf("=== %s Response ===", name)
}

// Render writes the response dump and, when present, the program logs.
// It returns the number of log lines written.
func Render(out io.Writer, name string, raw json.RawMessage) (int, error) {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		return 0, fmt.Errorf("indent response: %w", err)
	}

	// json.Indent keeps trailing whitespace; validators end bodies with a newline.
	if _, err := fmt.Fprintf(out, "%s\n%s\n", ResponseBanner(name), bytes.TrimSpace(pretty.Bytes())); err != nil {
		return 0, err
	}

	logs, ok := extractLogs(raw)
	if !ok {
		return 0, nil
	}

	if _, err := fmt.Fprintf(out, "\n%s\n", LogsBanner); err != nil {
		return 0, err
	}
	for _, line := range logs {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return 0, err
		}
	}
	return len(logs), nil
}

// extractLogs walks result.value.logs. ok is false unless logs is an array.
func extractLogs(raw json.RawMessage) ([]string, bool) {
	value, ok := lookup(raw, "result", "value")
	if !ok {
		return nil, false
	}
	logsRaw, ok := lookup(value, "logs")
	if !ok {
		return nil, false
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(logsRaw, &entries); err != nil || entries == nil {
		return nil, false
	}

	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		var s string
		if err := json.Unmarshal(entry, &s); err == nil {
			lines = append(lines, s)
			continue
		}
		var compact bytes.Buffer
		if err := json.Compact(&compact, entry); err != nil {
			lines = append(lines, string(entry))
			continue
		}
		lines = append(lines, compact.String())
	}
	return lines, true
}

// lookup descends through nested objects by key. Missing keys, null values
// and non-object intermediates all report ok=false.
func lookup(raw json.RawMessage, keys ...string) (json.RawMessage, bool) {
	cur := raw
	for _, key := range keys {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(cur, &obj); err != nil || obj == nil {
			return nil, false
		}
		next, ok := obj[key]
		if !ok || bytes.Equal(bytes.TrimSpace(next), []byte("null")) {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// summary holds the fields logged after a simulation.
type summary struct {
	RPCError      *rpcErrorObject
	SimErr        json.RawMessage
	UnitsConsumed *uint64
}

type rpcErrorObject struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func summarize(raw json.RawMessage) summary {
	var s summary
	if errRaw, ok := lookup(raw, "error"); ok {
		var e rpcErrorObject
		if json.Unmarshal(errRaw, &e) == nil {
			s.RPCError = &e
		}
	}
	if v, ok := lookup(raw, "result", "value", "err"); ok {
		s.SimErr = v
	}
	if v, ok := lookup(raw, "result", "value", "unitsConsumed"); ok {
		var units uint64
		if json.Unmarshal(v, &units) == nil {
			s.UnitsConsumed = &units
		}
	}
	return s
}
