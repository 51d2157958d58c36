package logger

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func captureLine(t *testing.T, format logFormat, level slog.Level, emit func(*slog.Logger)) string {
	t.Helper()
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	handler := newStructuredHandler(handlerConfig{
		level:    level,
		writer:   aw,
		format:   format,
		keyOrder: append([]string(nil), defaultKeyOrder...),
	})
	emit(slog.New(handler))
	if err := aw.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := aw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return strings.TrimSpace(buf.String())
}

func TestStructuredHandlerKVOrder(t *testing.T) {
	ctx := WithRID(context.Background(), "rid-123")
	ctx = WithUpdateMeta(ctx, 42, 7, 9)

	line := captureLine(t, formatKV, slog.LevelInfo, func(l *slog.Logger) {
		LogEvent(ctx, l.With("component", "dialog"), slog.LevelInfo, "dialog.commit",
			slog.String("status", "ok"),
			slog.String("intent", "add"),
		)
	})
	if line == "" {
		t.Fatal("expected log line")
	}
	tokens := strings.Split(line, " ")
	expected := []string{"ts=", "level=INFO", "component=dialog", "event=dialog.commit", "status=ok", "rid=rid-123"}
	if len(tokens) < len(expected) {
		t.Fatalf("unexpected token count: %d (%s)", len(tokens), line)
	}
	for i, prefix := range expected {
		if !strings.HasPrefix(tokens[i], prefix) {
			t.Fatalf("token %d = %s, expected prefix %s", i, tokens[i], prefix)
		}
	}
	if strings.Index(line, "chat_id=9") > strings.Index(line, "intent=add") {
		t.Fatalf("chat_id should precede intent: %s", line)
	}
}

func TestStructuredHandlerJSONOrder(t *testing.T) {
	ctx := WithRID(context.Background(), "rid-json")
	ctx = WithUpdateMeta(ctx, 11, 22, 33)

	line := captureLine(t, formatJSON, slog.LevelInfo, func(l *slog.Logger) {
		LogEvent(ctx, l.With("component", "store"), slog.LevelError, "store.append",
			slog.String("status", "fail"),
			slog.String("err", "boom"),
			slog.String("err_code", "STORE_FAIL"),
		)
	})
	if !strings.HasPrefix(line, "{") {
		t.Fatalf("expected JSON, got %s", line)
	}
	prefixes := []string{`{"ts":`, `"level":"ERROR"`, `"component":"store"`, `"event":"store.append"`, `"status":"fail"`, `"rid":"rid-json"`}
	pos := -1
	for _, pref := range prefixes {
		idx := strings.Index(line, pref)
		if idx == -1 || idx < pos {
			t.Fatalf("prefix %s not found in order within %s", pref, line)
		}
		pos = idx
	}
}

func TestStructuredHandlerCompactRID(t *testing.T) {
	rawRID := "123:456:789"
	ctx := WithRID(context.Background(), rawRID)
	line := captureLine(t, formatKV, slog.LevelInfo, func(l *slog.Logger) {
		LogEvent(ctx, l.With("component", "app"), slog.LevelInfo, "rid.test",
			slog.String("status", "ok"),
		)
	})
	if !strings.Contains(line, "rid="+CompactRID(rawRID)) {
		t.Fatalf("expected compact rid, got %s", line)
	}
	if strings.Contains(line, "rid_full=") {
		t.Fatalf("rid_full should be omitted in KV output, got %s", line)
	}
}

func TestStructuredHandlerCompactRIDJSON(t *testing.T) {
	rawRID := "12:34:56"
	ctx := WithRID(context.Background(), rawRID)
	line := captureLine(t, formatJSON, slog.LevelInfo, func(l *slog.Logger) {
		LogEvent(ctx, l.With("component", "app"), slog.LevelInfo, "rid.test",
			slog.String("status", "ok"),
		)
	})
	if !strings.Contains(line, `"rid":"`+CompactRID(rawRID)+`"`) {
		t.Fatalf("expected compact rid in JSON, got %s", line)
	}
	if !strings.Contains(line, `"rid_full":"`+rawRID+`"`) {
		t.Fatalf("expected rid_full in JSON output, got %s", line)
	}
	if !strings.Contains(line, `"ts_unix_nano"`) {
		t.Fatalf("expected ts_unix_nano to be present in JSON output, got %s", line)
	}
}

func TestStructuredHandlerDurationKeys(t *testing.T) {
	line := captureLine(t, formatKV, slog.LevelInfo, func(l *slog.Logger) {
		l.LogAttrs(context.Background(), slog.LevelInfo, "schedule.query",
			slog.Duration("duration", 1500*time.Microsecond),
			slog.Duration("backoff", 250*time.Millisecond),
			slog.Duration("startup_duration", 2*time.Second),
		)
	})
	for _, want := range []string{"duration_ms=2", "backoff_ms=250", "startup_duration_ms=2000", "component=app"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %s in %s", want, line)
		}
	}
}

func TestStructuredHandlerDropsUnknownIntent(t *testing.T) {
	line := captureLine(t, formatKV, slog.LevelInfo, func(l *slog.Logger) {
		LogEvent(context.Background(), l, slog.LevelInfo, "dialog.begin",
			slog.String("intent", "teleport"),
			slog.String("slot", "name"),
		)
	})
	if strings.Contains(line, "intent=") {
		t.Fatalf("unknown intent should be dropped: %s", line)
	}
	if !strings.Contains(line, "slot=name") {
		t.Fatalf("expected slot in %s", line)
	}
}

func TestStructuredHandlerLevelFilter(t *testing.T) {
	line := captureLine(t, formatKV, slog.LevelInfo, func(l *slog.Logger) {
		LogEvent(context.Background(), l, slog.LevelDebug, "dialog.fill")
	})
	if line != "" {
		t.Fatalf("debug line should be filtered, got %s", line)
	}
}

func TestStatus(t *testing.T) {
	if got := Status(nil); got != "ok" {
		t.Fatalf("Status(nil) = %s", got)
	}
	if got := Status(errors.New("x")); got != "fail" {
		t.Fatalf("Status(err) = %s", got)
	}
	if _, ok := normalizeStatus(Status(errors.New("x"))); !ok {
		t.Fatal("Status must produce an allowed status")
	}
}

func TestSanitizeLimit(t *testing.T) {
	if got := SanitizeLimit("Алгоритмы\x00​", 4); got != "Алго" {
		t.Fatalf("SanitizeLimit = %q", got)
	}
}
