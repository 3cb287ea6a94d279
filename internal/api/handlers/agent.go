package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/Harshitk-cp/ghostprotocol/internal/api/middleware"
	"github.com/Harshitk-cp/ghostprotocol/internal/domain"
	"github.com/Harshitk-cp/ghostprotocol/internal/service"
)

const (
	apiKeyPrefix = "gp_"
	maxInterests = 20
)

type AgentHandler struct {
	svc *service.AgentService
}

func NewAgentHandler(svc *service.AgentService) *AgentHandler {
	return &AgentHandler{svc: svc}
}

type createAgentRequest struct {
	Name      string   `json:"name"`
	Interests []string `json:"interests"`
}

type createAgentResponse struct {
	Agent  *domain.Agent `json:"agent"`
	APIKey string        `json:"api_key"`
}

// Create registers an agent. The API key is returned once and only its
// hash is stored.
func (h *AgentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAgentRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if len(req.Interests) > maxInterests {
		writeError(w, http.StatusBadRequest, "too many interests")
		return
	}

	apiKey, err := generateAPIKey()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate API key")
		return
	}

	agent := &domain.Agent{
		Name:       req.Name,
		Interests:  req.Interests,
		APIKeyHash: middleware.HashAPIKey(apiKey),
	}
	if err := h.svc.Create(r.Context(), agent); err != nil {
		writeServiceError(w, err, "failed to create agent")
		return
	}

	writeJSON(w, http.StatusCreated, createAgentResponse{Agent: agent, APIKey: apiKey})
}

// Me returns the authenticated agent.
func (h *AgentHandler) Me(w http.ResponseWriter, r *http.Request) {
	agent := middleware.AgentFromContext(r.Context())
	if agent == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, agent)
}

func generateAPIKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return apiKeyPrefix + hex.EncodeToString(b), nil
}
