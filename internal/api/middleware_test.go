package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoverer_PanicBecomes500(t *testing.T) {
	fixed := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	calls := 0
	handler := Recoverer(discardLogger(), func() time.Time { return fixed })(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path == "/boom" {
			panic("boom")
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body internalErrorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "Erro interno do servidor", body.Error)
	assert.Equal(t, "2026-05-01T12:00:00Z", body.Timestamp)

	// the next request is served normally
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 2, calls)
}

func TestRequestContext_CorrelationID(t *testing.T) {
	var seen string
	handler := RequestContext(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CorrelationIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(CorrelationHeader, "corr-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "corr-123", seen)
	assert.Equal(t, "corr-123", rec.Header().Get(CorrelationHeader))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(seen)
	assert.NoError(t, err)
	assert.Equal(t, seen, rec.Header().Get(CorrelationHeader))
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		trust      bool
		want       string
	}{
		{name: "remote addr strips port", remoteAddr: "10.1.1.1:5555", trust: true, want: "10.1.1.1"},
		{name: "ipv6 remote addr", remoteAddr: "[::1]:5555", trust: true, want: "::1"},
		{name: "forwarded first hop", remoteAddr: "10.1.1.1:5555", headers: map[string]string{"X-Forwarded-For": " 198.51.100.2 , 10.0.0.1"}, trust: true, want: "198.51.100.2"},
		{name: "real ip", remoteAddr: "10.1.1.1:5555", headers: map[string]string{"X-Real-IP": "198.51.100.3"}, trust: true, want: "198.51.100.3"},
		{name: "proxy headers ignored", remoteAddr: "10.1.1.1:5555", headers: map[string]string{"X-Forwarded-For": "198.51.100.2"}, trust: false, want: "10.1.1.1"},
		{name: "no port", remoteAddr: "pipe", trust: false, want: "pipe"},
		{name: "nothing known", remoteAddr: "", trust: false, want: "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientIP(req, tt.trust))
		})
	}
}

type panicPrinter struct{}

func (panicPrinter) Print(context.Context, string) ([]byte, error) {
	panic("printer exploded")
}

func TestRouter_RecoversFromPanickingPrinter(t *testing.T) {
	h, _ := newTestRouter(t, panicPrinter{})

	rec := do(t, h, http.MethodGet, "/api/report.pdf", nil, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = do(t, h, http.MethodGet, "/verificar?chave=qwert", nil, nil)
	assert.Equal(t, "Aprovado", rec.Body.String())
}
