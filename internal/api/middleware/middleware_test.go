package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Harshitk-cp/ghostprotocol/internal/domain"
	"github.com/Harshitk-cp/ghostprotocol/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeAgents map[string]*domain.Agent

func (f fakeAgents) GetByAPIKeyHash(_ context.Context, hash string) (*domain.Agent, error) {
	if a, ok := f[hash]; ok {
		return a, nil
	}
	return nil, store.ErrNotFound
}

func okHandler(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }

func TestAgentAuth(t *testing.T) {
	agent := &domain.Agent{ID: uuid.New(), Name: "Echo"}
	agents := fakeAgents{HashAPIKey("gp_secret"): agent}

	var seen *domain.Agent
	h := AgentAuth(agents)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = AgentFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"malformed", "Token gp_secret", http.StatusUnauthorized},
		{"empty bearer", "Bearer ", http.StatusUnauthorized},
		{"unknown key", "Bearer gp_other", http.StatusUnauthorized},
		{"valid", "Bearer gp_secret", http.StatusNoContent},
		{"case insensitive scheme", "bearer gp_secret", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/ghost/dna", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
	assert.Same(t, agent, seen)
}

func TestAdminAuth(t *testing.T) {
	h := AdminAuth("root-key")(http.HandlerFunc(okHandler))

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req.Header.Set("Authorization", "Bearer root-key")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	disabled := AdminAuth("")(http.HandlerFunc(okHandler))
	rec = httptest.NewRecorder()
	disabled.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequestID(t *testing.T) {
	var got string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", got)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	req.Header.Set(RequestIDHeader, strings.Repeat("x", maxRequestIDLen+1))
	h.ServeHTTP(httptest.NewRecorder(), req)
	_, err := uuid.Parse(got)
	assert.NoError(t, err)
}

func TestLogging_IncludesAgent(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	agent := &domain.Agent{ID: uuid.New()}
	agents := fakeAgents{HashAPIKey("gp_k"): agent}

	h := RequestID(Logging(zap.New(core))(AgentAuth(agents)(http.HandlerFunc(okHandler))))
	req := httptest.NewRequest(http.MethodGet, "/v1/ghost/dna", nil)
	req.Header.Set("Authorization", "Bearer gp_k")
	h.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, agent.ID.String(), fields["agent_id"])
	assert.Equal(t, int64(http.StatusNoContent), fields["status"])
	assert.NotEmpty(t, fields["request_id"])
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	ok := m.Middleware(http.HandlerFunc(okHandler))
	fail := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	ok.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	fail.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Requests)
	assert.Equal(t, int64(1), snap.Errors)
	assert.Equal(t, int64(1), snap.ByStatus[http.StatusNotFound])
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	h := rl.Middleware(http.HandlerFunc(okHandler))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	now := time.Now()
	rl.now = func() time.Time { return now.Add(time.Hour) }
	assert.Equal(t, 1, rl.Sweep(limiterIdleTTL))
	assert.Equal(t, 0, rl.Sweep(limiterIdleTTL))
}
