package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	lgr := NewWithWriter(&buf, "api", "debug")

	lgr.Error("reservation_failed", "Reservation rejected", "req-1", map[string]interface{}{"table_id": 3}, errors.New("boom"))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not json: %v (%s)", err, buf.String())
	}
	if entry["service"] != "api" || entry["action"] != "reservation_failed" || entry["request_id"] != "req-1" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if entry["level"] != "ERROR" {
		t.Fatalf("level = %v", entry["level"])
	}
	errInfo, ok := entry["error"].(map[string]interface{})
	if !ok || errInfo["msg"] != "boom" {
		t.Fatalf("error = %v", entry["error"])
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	lgr := NewWithWriter(&buf, "api", "info")

	lgr.Debug("noise", "should be dropped", "", nil)
	if buf.Len() != 0 {
		t.Fatalf("debug entry written at info level: %s", buf.String())
	}
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc")
	if got := RequestID(ctx); got != "abc" {
		t.Fatalf("RequestID = %q", got)
	}
	if got := RequestID(context.Background()); got != "" {
		t.Fatalf("RequestID on empty ctx = %q", got)
	}
}
