package observability_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"nobounce_admin/internal/adapters/observability"
)

func TestNewLoggerTo_JSONAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l := observability.NewLoggerTo(&buf, "prod", "warn")

	l.Info().Msg("dropped")
	l.Warn().Int64("court_id", 7).Msg("kept")

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("expected exactly one JSON line, got %q: %v", buf.String(), err)
	}
	if line["message"] != "kept" || line["service"] != "nobounce-admin" || line["court_id"] != 7.0 {
		t.Fatalf("unexpected log line: %v", line)
	}
}

func TestNewLoggerTo_UnknownLevelIsInfo(t *testing.T) {
	var buf bytes.Buffer
	l := observability.NewLoggerTo(&buf, "prod", "chatty")
	l.Debug().Msg("hidden")
	l.Info().Msg("shown")
	if bytes.Contains(buf.Bytes(), []byte("hidden")) || !bytes.Contains(buf.Bytes(), []byte("shown")) {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}
