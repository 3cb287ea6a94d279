package middleware

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Harshitk-cp/ghostprotocol/internal/domain"
)

type contextKey string

const (
	agentContextKey  contextKey = "agent"
	holderContextKey contextKey = "agent_holder"
)

// agentHolder carries the authenticated agent id back to outer middleware.
type agentHolder struct {
	agentID string
}

func withAgentHolder(ctx context.Context, h *agentHolder) context.Context {
	return context.WithValue(ctx, holderContextKey, h)
}

func AgentFromContext(ctx context.Context) *domain.Agent {
	a, _ := ctx.Value(agentContextKey).(*domain.Agent)
	return a
}

// WithAgent stores the authenticated agent in ctx.
func WithAgent(ctx context.Context, a *domain.Agent) context.Context {
	if h, ok := ctx.Value(holderContextKey).(*agentHolder); ok {
		h.agentID = a.ID.String()
	}
	return context.WithValue(ctx, agentContextKey, a)
}

type agentLookup interface {
	GetByAPIKeyHash(ctx context.Context, hash string) (*domain.Agent, error)
}

// AgentAuth resolves the calling agent from a Bearer API key.
func AgentAuth(agents agentLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey, ok := bearerToken(w, r)
			if !ok {
				return
			}

			agent, err := agents.GetByAPIKeyHash(r.Context(), HashAPIKey(apiKey))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid API key")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAgent(r.Context(), agent)))
		})
	}
}

// AdminAuth accepts only the configured admin key. An empty key closes the
// admin surface entirely.
func AdminAuth(adminKey string) func(http.Handler) http.Handler {
	want := sha256.Sum256([]byte(adminKey))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminKey == "" {
				writeError(w, http.StatusForbidden, "admin API disabled")
				return
			}
			apiKey, ok := bearerToken(w, r)
			if !ok {
				return
			}
			got := sha256.Sum256([]byte(apiKey))
			if subtle.ConstantTimeCompare(got[:], want[:]) != 1 {
				writeError(w, http.StatusForbidden, "invalid admin key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		writeError(w, http.StatusUnauthorized, "missing authorization header")
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		writeError(w, http.StatusUnauthorized, "invalid authorization header format")
		return "", false
	}
	return parts[1], true
}

// HashAPIKey is the form API keys are stored and looked up in.
func HashAPIKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
