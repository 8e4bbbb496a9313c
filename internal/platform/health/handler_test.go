package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h *Handler, path string) (int, map[string]any) {
	t.Helper()
	r := chi.NewRouter()
	h.Register(r)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestLivenessAndStatus(t *testing.T) {
	h := New("test")

	code, body := serve(t, h, "/health/live")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "alive", body["data"].(map[string]any)["status"])

	code, body = serve(t, h, "/health")
	assert.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "test", data["environment"])
	assert.Equal(t, Version, data["version"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestReadiness(t *testing.T) {
	t.Run("ready when every check passes", func(t *testing.T) {
		h := New("test")
		h.RegisterCheck("database", func(context.Context) error { return nil })

		code, body := serve(t, h, "/health/ready")

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, map[string]any{"database": "up"}, body["data"].(map[string]any)["checks"])
	})

	t.Run("503 error envelope when a check fails", func(t *testing.T) {
		h := New("test")
		h.RegisterCheck("database", func(context.Context) error { return errors.New("connection refused") })
		h.RegisterCheck("cache", func(context.Context) error { return nil })

		code, body := serve(t, h, "/health/ready")

		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, false, body["success"])
		errBody := body["error"].(map[string]any)
		assert.Equal(t, "NOT_READY", errBody["code"])
		assert.Equal(t, []any{map[string]any{"path": "database", "message": "connection refused"}}, errBody["details"])
	})

	t.Run("checks receive a deadline", func(t *testing.T) {
		h := New("test")
		h.RegisterCheck("database", func(ctx context.Context) error {
			if _, ok := ctx.Deadline(); !ok {
				return errors.New("no deadline")
			}
			return nil
		})

		code, _ := serve(t, h, "/health/ready")
		assert.Equal(t, http.StatusOK, code)
	})
}
