package handlers

import (
	"net/http"

	"github.com/Harshitk-cp/ghostprotocol/internal/service"
	"github.com/go-chi/chi/v5"
)

type AdminHandler struct {
	ghost *service.GhostService
	jobs  *service.JobRunner
}

func NewAdminHandler(ghost *service.GhostService, jobs *service.JobRunner) *AdminHandler {
	return &AdminHandler{ghost: ghost, jobs: jobs}
}

func (h *AdminHandler) InitAllDNA(w http.ResponseWriter, r *http.Request) {
	result, err := h.ghost.InitAllDNA(r.Context())
	if err != nil {
		writeServiceError(w, err, "failed to initialize dna")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.ghost.Stats(r.Context())
	if err != nil {
		writeServiceError(w, err, "failed to get stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *AdminHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"jobs": h.jobs.Names()})
}

// RunJob runs one maintenance job synchronously and returns its summary.
func (h *AdminHandler) RunJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	result, err := h.jobs.Run(r.Context(), name)
	if err != nil {
		writeServiceError(w, err, "job failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"job": name, "result": result})
}
