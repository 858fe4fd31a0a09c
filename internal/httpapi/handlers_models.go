package httpapi

import (
	"net/http"
	"strings"

	"llmsuite/pkg/types"
)

func (s Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	models, err := s.Models.Models(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusBadGateway, err.Error())
		return
	}
	families, err := s.Models.Families(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, types.ModelsResponse{Models: models, Families: families})
}

func (s Server) handleRefreshModels(w http.ResponseWriter, r *http.Request) {
	s.Models.Invalidate()
	w.WriteHeader(http.StatusNoContent)
}

func (s Server) handlePullModel(w http.ResponseWriter, r *http.Request) {
	var req types.PullRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeJSONError(w, http.StatusBadRequest, "name is required")
		return
	}
	// Join server base context so shutdown interrupts a long download.
	joinedCtx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	out, err := s.Installer.Pull(joinedCtx, req.Name, req.Version)
	if err == nil {
		s.Models.Invalidate()
	}
	writeJSON(w, http.StatusOK, types.OpResult{Success: err == nil, Output: out})
}

func (s Server) handleRemoveModel(w http.ResponseWriter, r *http.Request) {
	var req types.RemoveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeJSONError(w, http.StatusBadRequest, "name is required")
		return
	}
	joinedCtx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	out, err := s.Installer.Remove(joinedCtx, req.Name)
	if err == nil {
		s.Models.Invalidate()
	}
	writeJSON(w, http.StatusOK, types.OpResult{Success: err == nil, Output: out})
}
