package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	prev := defaultLogger.Load()
	buf := &bytes.Buffer{}
	SetDefault(slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { defaultLogger.Store(prev) })
	return buf
}

func TestFromContextAttachesKnownKeys(t *testing.T) {
	buf := captureLogs(t)

	ctx := WithContext(context.Background(), RequestIDKey, "req-1")
	ctx = WithContext(ctx, NovelIDKey, "novel-9")
	ctx = WithContext(ctx, PhaseKey, "chapter")
	Info(ctx, "hello", "k", "v")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	for key, want := range map[string]string{"request_id": "req-1", "novel_id": "novel-9", "phase": "chapter", "k": "v", "msg": "hello"} {
		if rec[key] != want {
			t.Errorf("%s = %v, want %s", key, rec[key], want)
		}
	}
	if _, ok := rec["trace_id"]; ok {
		t.Errorf("unexpected trace_id field")
	}
}

func TestErrorAddsErrorField(t *testing.T) {
	buf := captureLogs(t)

	Error(context.Background(), "failed", errors.New("boom"))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if rec["error"] != "boom" || rec["level"] != "ERROR" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
