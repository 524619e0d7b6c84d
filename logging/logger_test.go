package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/walk-ledger/logging"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"Error":   slog.LevelError,
	}
	for in, want := range cases {
		got, err := logging.ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := logging.ParseLevel("loud")
	assert.Error(t, err)
}

func TestNew_JSONFormatAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Config{Level: slog.LevelWarn, Format: "json", Output: &buf})

	logger.Info("dropped")
	logging.WithComponent(logger, logging.ComponentWalking).Warn("kept", "day", "2025-03-03")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, logging.ComponentWalking, entry[logging.FieldComponent])
	assert.Equal(t, "2025-03-03", entry["day"])
}

func TestMiddleware_LogsStatusAndRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Config{Level: slog.LevelDebug, Format: "json", Output: &buf})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(logging.Middleware(logging.WithComponent(logger, logging.ComponentHTTP)))
	r.Get("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing?x=1", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "/missing", entry[logging.FieldPath])
	assert.Equal(t, "x=1", entry[logging.FieldQuery])
	assert.EqualValues(t, http.StatusNotFound, entry[logging.FieldStatusCode])
	assert.NotEmpty(t, entry[logging.FieldRequestID])
	assert.Equal(t, logging.ComponentHTTP, entry[logging.FieldComponent])
	assert.Equal(t, 1, strings.Count(buf.String(), `"component"`))
}
