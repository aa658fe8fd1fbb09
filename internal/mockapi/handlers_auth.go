package mockapi

import (
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"spendsync/internal/api"
	"spendsync/internal/core"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}

	s.store.mu.Lock()
	rec, ok := s.store.users[payload.Username]
	s.store.mu.Unlock()
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword(rec.passwordHash, []byte(payload.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, err := s.issueToken(rec.profile.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	writeSuccess(w, http.StatusOK, "Login successful", api.Credentials{
		UserProfile: rec.profile,
		Token:       token,
	})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var reg core.Registration
	if !decodeBody(w, r, &reg) {
		return
	}
	if err := reg.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	s.store.mu.Lock()
	if _, exists := s.store.users[reg.Username]; exists {
		s.store.mu.Unlock()
		writeError(w, http.StatusConflict, "Username already taken")
		return
	}
	profile := core.UserProfile{
		ID:        uuid.NewString(),
		Username:  reg.Username,
		Email:     reg.Email,
		FirstName: reg.FirstName,
		LastName:  reg.LastName,
		Country:   reg.Country,
	}
	s.store.users[reg.Username] = &userRecord{profile: profile, passwordHash: hash}
	s.store.mu.Unlock()

	token, err := s.issueToken(profile.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	writeSuccess(w, http.StatusCreated, "Registration successful", api.Credentials{
		UserProfile: profile,
		Token:       token,
	})
}

// handleLogout is stateless. Tokens expire on their own; the endpoint exists
// so clients have something to call before clearing local state.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, "Logout successful", nil)
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
	}
	if !decodeBody(w, r, &payload) {
		return
	}
	if payload.Email == "" {
		writeError(w, http.StatusBadRequest, "Email is required")
		return
	}
	// Whether the address exists is deliberately not revealed.
	writeSuccess(w, http.StatusOK, "Password reset email sent", nil)
}
