package handlers

import (
	"net/http"
	"strconv"

	"github.com/Harshitk-cp/ghostprotocol/internal/api/middleware"
	"github.com/Harshitk-cp/ghostprotocol/internal/domain"
	"github.com/Harshitk-cp/ghostprotocol/internal/service"
	"github.com/google/uuid"
)

const (
	defaultMutationLimit = 20
	maxMutationLimit     = 50
	maxHistoryMessages   = 50
)

// GhostHandler serves the personality engine to the authenticated agent.
type GhostHandler struct {
	ghost *service.GhostService
}

func NewGhostHandler(ghost *service.GhostService) *GhostHandler {
	return &GhostHandler{ghost: ghost}
}

func callerID(w http.ResponseWriter, r *http.Request) (*domain.Agent, bool) {
	agent := middleware.AgentFromContext(r.Context())
	if agent == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	return agent, true
}

func (h *GhostHandler) GetDNA(w http.ResponseWriter, r *http.Request) {
	agent, ok := callerID(w, r)
	if !ok {
		return
	}
	dna, err := h.ghost.GetDNA(r.Context(), agent.ID)
	if err != nil {
		writeServiceError(w, err, "failed to get dna")
		return
	}
	writeJSON(w, http.StatusOK, dna)
}

type initializeRequest struct {
	Interests []string `json:"interests"`
}

type initializeResponse struct {
	DNA     *domain.AgentDNA `json:"dna"`
	Beliefs []domain.Belief  `json:"beliefs"`
}

// Initialize generates DNA from the request interests, or from the
// interests given at registration when the body omits them.
func (h *GhostHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	agent, ok := callerID(w, r)
	if !ok {
		return
	}
	var req initializeRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}
	interests := req.Interests
	if len(interests) == 0 {
		interests = agent.Interests
	}

	dna, beliefs, err := h.ghost.InitializeDNA(r.Context(), agent.ID, interests)
	if err != nil {
		writeServiceError(w, err, "failed to initialize dna")
		return
	}
	writeJSON(w, http.StatusCreated, initializeResponse{DNA: dna, Beliefs: beliefs})
}

func (h *GhostHandler) GetBeliefs(w http.ResponseWriter, r *http.Request) {
	agent, ok := callerID(w, r)
	if !ok {
		return
	}
	beliefs, err := h.ghost.GetBeliefs(r.Context(), agent.ID)
	if err != nil {
		writeServiceError(w, err, "failed to get beliefs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"beliefs": beliefs})
}

func (h *GhostHandler) GetMutations(w http.ResponseWriter, r *http.Request) {
	agent, ok := callerID(w, r)
	if !ok {
		return
	}

	limit := defaultMutationLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxMutationLimit)
	}

	events, err := h.ghost.GetMutationHistory(r.Context(), agent.ID, limit)
	if err != nil {
		writeServiceError(w, err, "failed to get mutations")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"mutations": events})
}

func (h *GhostHandler) GetRelationship(w http.ResponseWriter, r *http.Request) {
	agent, ok := callerID(w, r)
	if !ok {
		return
	}
	targetID, ok := uuidParam(w, r, "targetId")
	if !ok {
		return
	}

	rel, err := h.ghost.GetRelationship(r.Context(), agent.ID, targetID)
	if err != nil {
		writeServiceError(w, err, "failed to get relationship")
		return
	}
	if rel == nil {
		writeError(w, http.StatusNotFound, "no relationship with this agent")
		return
	}
	writeJSON(w, http.StatusOK, rel)
}

type startConversationRequest struct {
	PartnerID string `json:"partner_id"`
}

func (h *GhostHandler) StartConversation(w http.ResponseWriter, r *http.Request) {
	agent, ok := callerID(w, r)
	if !ok {
		return
	}
	var req startConversationRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	partnerID, ok := requiredUUID(w, "partner_id", req.PartnerID)
	if !ok {
		return
	}

	conv, err := h.ghost.StartConversation(r.Context(), agent.ID, partnerID)
	if err != nil {
		writeServiceError(w, err, "failed to start conversation")
		return
	}
	writeJSON(w, http.StatusCreated, conv)
}

// RecordMessage notes that the caller sent a message its partner has not
// answered yet.
func (h *GhostHandler) RecordMessage(w http.ResponseWriter, r *http.Request) {
	agent, ok := callerID(w, r)
	if !ok {
		return
	}
	conversationID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.ghost.RecordMessage(r.Context(), agent.ID, conversationID); err != nil {
		writeServiceError(w, err, "failed to record message")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "recorded"})
}

type generateRequest struct {
	ConversationID string           `json:"conversation_id"`
	History        []domain.Message `json:"history"`
}

func (h *GhostHandler) GenerateResponse(w http.ResponseWriter, r *http.Request) {
	agent, ok := callerID(w, r)
	if !ok {
		return
	}
	var req generateRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	conversationID, ok := requiredUUID(w, "conversation_id", req.ConversationID)
	if !ok {
		return
	}
	if len(req.History) > maxHistoryMessages {
		writeError(w, http.StatusBadRequest, "history is too long")
		return
	}
	for _, m := range req.History {
		if m.Role != "user" && m.Role != "assistant" {
			writeError(w, http.StatusBadRequest, "history role must be user or assistant")
			return
		}
	}

	result, err := h.ghost.GenerateResponse(r.Context(), agent.ID, conversationID, req.History)
	if err != nil {
		writeServiceError(w, err, "failed to generate response")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type socialDecisionRequest struct {
	ConversationID string `json:"conversation_id"`
	PartnerID      string `json:"partner_id"`
}

func (h *GhostHandler) SocialDecision(w http.ResponseWriter, r *http.Request) {
	agent, ok := callerID(w, r)
	if !ok {
		return
	}
	var req socialDecisionRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	var conversationID, partnerID uuid.UUID
	if conversationID, ok = requiredUUID(w, "conversation_id", req.ConversationID); !ok {
		return
	}
	if partnerID, ok = requiredUUID(w, "partner_id", req.PartnerID); !ok {
		return
	}

	decision, err := h.ghost.GetSocialDecision(r.Context(), agent.ID, conversationID, partnerID)
	if err != nil {
		writeServiceError(w, err, "failed to compute social decision")
		return
	}
	writeJSON(w, http.StatusOK, decision)
}

func (h *GhostHandler) GlobalTension(w http.ResponseWriter, r *http.Request) {
	report, err := h.ghost.GetGlobalTensionReport(r.Context())
	if err != nil {
		writeServiceError(w, err, "failed to build tension report")
		return
	}
	writeJSON(w, http.StatusOK, report)
}
