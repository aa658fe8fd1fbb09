package mockapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"spendsync/internal/core"
)

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.store.mu.Lock()
	rec, ok := s.store.findUserByID(id)
	var profile core.UserProfile
	if ok {
		profile = rec.profile
	}
	s.store.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeSuccess(w, http.StatusOK, "", profile)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id != callerID(r) {
		writeError(w, http.StatusForbidden, "Cannot update another user's profile")
		return
	}

	var patch core.ProfilePatch
	if !decodeBody(w, r, &patch) {
		return
	}

	s.store.mu.Lock()
	rec, ok := s.store.findUserByID(id)
	var profile core.UserProfile
	if ok {
		if patch.FirstName != nil {
			rec.profile.FirstName = *patch.FirstName
		}
		if patch.LastName != nil {
			rec.profile.LastName = *patch.LastName
		}
		if patch.Phone != nil {
			rec.profile.Phone = *patch.Phone
		}
		if patch.Country != nil {
			rec.profile.Country = *patch.Country
		}
		if patch.AvatarURL != nil {
			rec.profile.AvatarURL = *patch.AvatarURL
		}
		profile = rec.profile
	}
	s.store.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	s.announce(r.Context(), "profile", id, "update")
	writeSuccess(w, http.StatusOK, "Profile updated", profile)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	s.store.mu.Lock()
	settings, ok := s.store.settings[userID]
	s.store.mu.Unlock()

	if !ok {
		// New accounts start from the zero settings instead of a 404.
		settings = core.Settings{Theme: "light"}
	}
	writeSuccess(w, http.StatusOK, "", settings)
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID != callerID(r) {
		writeError(w, http.StatusForbidden, "Cannot update another user's settings")
		return
	}

	var settings core.Settings
	if !decodeBody(w, r, &settings) {
		return
	}

	s.store.mu.Lock()
	s.store.settings[userID] = settings
	s.store.mu.Unlock()

	s.announce(r.Context(), "settings", userID, "update")
	writeSuccess(w, http.StatusOK, "Settings saved", settings)
}
