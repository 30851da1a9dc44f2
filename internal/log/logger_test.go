package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonLogger(buf *bytes.Buffer, component string) *Logger {
	return New(Config{Level: slog.LevelDebug, Component: component, Format: "json", Output: buf})
}

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	return entry
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestLoggerStampsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := jsonLogger(&buf, ComponentLedger)

	logger.Info("hello", FieldUsername, "mario")
	entry := lastEntry(t, &buf)
	assert.Equal(t, ComponentLedger, entry[FieldComponent])
	assert.Equal(t, "mario", entry[FieldUsername])

	logger.WithComponent(ComponentWorker).Warn("again")
	assert.Equal(t, ComponentWorker, lastEntry(t, &buf)[FieldComponent])
}

func TestRequestIDMiddleware(t *testing.T) {
	var buf bytes.Buffer
	base := jsonLogger(&buf, ComponentHTTP)

	h := Middleware(base)(RequestIDMiddleware(func(*http.Request) string { return "req_1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			FromContext(r.Context()).Info("inside")
		})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "req_1", lastEntry(t, &buf)[FieldRequestID])
}

func TestFromContextFallback(t *testing.T) {
	assert.Equal(t, "unknown", FromContext(context.Background()).Component())
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(jsonLogger(&buf, ComponentApp))
	ctx := context.Background()

	sl.LogLedgerChange(ctx, OpCreate, "mario", 1250)
	entry := lastEntry(t, &buf)
	assert.Equal(t, "mario", entry[FieldUsername])
	assert.Equal(t, float64(1250), entry[FieldAmountCents])

	sl.LogError(ctx, "failed", errors.New("boom"), ComponentStorage, OpRead, NewFields().WithErrorType(ErrorTypeDatabase))
	entry = lastEntry(t, &buf)
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, ErrorTypeDatabase, entry[FieldErrorType])
	assert.Equal(t, "boom", entry[FieldError])
}
