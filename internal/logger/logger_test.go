package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestLogLineShape(t *testing.T) {
	var buf bytes.Buffer
	lg := NewWithWriter(&buf, "order-service", "info")

	lg.Info("order_created", map[string]any{"code": "ORD-20261017-0001"})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	for _, key := range []string{"timestamp", "level", "service", "action", "message", "hostname"} {
		if _, ok := entry[key]; !ok {
			t.Errorf("missing key %q in %v", key, entry)
		}
	}
	if entry["service"] != "order-service" {
		t.Errorf("service = %v, expected order-service", entry["service"])
	}
	if entry["code"] != "ORD-20261017-0001" {
		t.Errorf("code field = %v", entry["code"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	lg := NewWithWriter(&buf, "svc", "warn")

	lg.Debug("noise", nil)
	lg.Info("noise", nil)
	if buf.Len() != 0 {
		t.Fatalf("expected no output below warn, got %q", buf.String())
	}

	lg.Error("db_failed", errors.New("boom"), nil)
	if !strings.Contains(buf.String(), `"boom"`) {
		t.Errorf("expected error message in output, got %q", buf.String())
	}
}

func TestStdLog(t *testing.T) {
	var buf bytes.Buffer
	lg := NewWithWriter(&buf, "coffeeorder", "info")

	lg.StdLog("http_server_error").Printf("http: TLS handshake error from %s", "10.0.0.1")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if entry["level"] != "WARN" || entry["action"] != "http_server_error" {
		t.Errorf("unexpected entry %v", entry)
	}
	if !strings.Contains(entry["message"].(string), "10.0.0.1") {
		t.Errorf("message = %v", entry["message"])
	}
}
