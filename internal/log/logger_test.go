package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log record %q: %v", buf.String(), err)
	}
	return rec
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "json", Output: &buf, Component: ComponentLedger})

	logger.Info("Transaction added", FieldTxID, "abc")
	rec := decode(t, &buf)
	if rec[FieldComponent] != ComponentLedger || rec[FieldTxID] != "abc" {
		t.Fatalf("unexpected record %v", rec)
	}

	buf.Reset()
	logger.WithComponent(ComponentStorage).Warn("x")
	if rec := decode(t, &buf); rec[FieldComponent] != ComponentStorage {
		t.Fatalf("expected storage component, got %v", rec[FieldComponent])
	}

	buf.Reset()
	logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug must be filtered at info level")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLogFields(t *testing.T) {
	fields := NewFields().
		WithComponent(ComponentHTTP).
		WithOperation(OpCreate).
		WithError(errors.New("boom")).
		WithTransaction("id-1", "expense", "Food", "12.50")

	args := fields.ToSlice()
	got := map[string]any{}
	for i := 0; i+1 < len(args); i += 2 {
		got[args[i].(string)] = args[i+1]
	}
	if _, ok := got[FieldComponent]; ok {
		t.Fatalf("component must be left to the logger")
	}
	if got[FieldOperation] != OpCreate || got[FieldError] != "boom" || got[FieldAmount] != "12.50" {
		t.Fatalf("unexpected fields %v", got)
	}
}

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "json", Output: &buf})

	var scoped *Logger
	h := middleware.RequestID(Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scoped = FromContext(r.Context())
		w.WriteHeader(http.StatusNotFound)
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/transactions/x?y=1", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if scoped == nil || scoped.Component() != ComponentHTTP {
		t.Fatalf("expected request-scoped http logger in context")
	}
	rec := decode(t, &buf)
	if rec["level"] != "WARN" || rec[FieldStatusCode] != float64(404) || rec[FieldPath] != "/api/transactions/x" {
		t.Fatalf("unexpected request log %v", rec)
	}
	if id, _ := rec[FieldRequestID].(string); id == "" {
		t.Fatalf("expected request id in log record")
	}
	if !strings.Contains(buf.String(), "HTTP request completed") {
		t.Fatalf("missing message")
	}
}

func TestFromContextFallback(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if FromContext(req.Context()) == nil {
		t.Fatalf("expected a fallback logger")
	}
}
