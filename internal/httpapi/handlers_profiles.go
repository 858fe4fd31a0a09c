package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"llmsuite/pkg/types"
)

func (s Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.ProfilesResponse{
		Profiles: s.Profiles.List(),
		Default:  s.Profiles.DefaultName(),
	})
}

// profileResponse annotates a profile with the selected models that are not
// installed, so the panel can warn and offer a pull before applying it. A
// registry failure degrades to no annotation; loading the profile still works.
func (s Server) profileResponse(ctx context.Context, p types.Profile) types.ProfileResponse {
	resp := types.ProfileResponse{Profile: p}
	installed, err := s.Models.Installed(ctx)
	if err != nil {
		return resp
	}
	for _, m := range p.SelectedModels {
		if !installed[m] {
			resp.MissingModels = append(resp.MissingModels, m)
		}
	}
	return resp
}

func (s Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	p, ok := s.Profiles.Get(name)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "profile not found")
		return
	}
	writeJSON(w, http.StatusOK, s.profileResponse(r.Context(), p))
}

func (s Server) handleDefaultProfile(w http.ResponseWriter, r *http.Request) {
	name := s.Profiles.DefaultName()
	if name == "" {
		writeJSONError(w, http.StatusNotFound, "no default profile set")
		return
	}
	p, ok := s.Profiles.Get(name)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "default profile missing")
		return
	}
	writeJSON(w, http.StatusOK, s.profileResponse(r.Context(), p))
}

func (s Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	var p types.Profile
	if !decodeJSON(w, r, &p) {
		return
	}
	// The path segment is authoritative for the name.
	p.Name = chi.URLParam(r, "name")
	if err := s.Profiles.Save(p); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s Server) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	if err := s.Profiles.Delete(chi.URLParam(r, "name")); err != nil {
		writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s Server) handleSetDefaultProfile(w http.ResponseWriter, r *http.Request) {
	if err := s.Profiles.SetDefault(chi.URLParam(r, "name")); err != nil {
		writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
