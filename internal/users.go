package internal

import (
	"encoding/json"
	"net/http"

	"pm-dashboard-api/internal/auth"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type unlockRequest struct {
	PIN string `json:"pin"`
}

type tokenResponse struct {
	Token    string   `json:"token"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// loginUser handles user authentication
func (s *Server) loginUser(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Validate request
	if req.Username == "" || req.Password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	// Verify credentials
	if !s.verifier.Verify(req.Username, req.Password) {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	// Generate JWT token
	roles := []string{auth.RoleAdmin}
	token, err := s.JWTManager.GenerateToken(req.Username, roles)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		Token:    token,
		Username: req.Username,
		Roles:    roles,
	})
}

// unlockVault exchanges an admin token plus the PIN for a vault-role token
// that reveals the stored device and server passwords on read surfaces.
func (s *Server) unlockVault(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())

	var req unlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.PIN == "" {
		http.Error(w, "PIN is required", http.StatusBadRequest)
		return
	}

	if !s.verifier.VerifyPIN(req.PIN) {
		http.Error(w, "Invalid PIN", http.StatusUnauthorized)
		return
	}

	roles := []string{auth.RoleAdmin, auth.RoleVault}
	token, err := s.JWTManager.GenerateToken(claims.Username, roles)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		Token:    token,
		Username: claims.Username,
		Roles:    roles,
	})
}
