package handlers

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"engrafo/internal/middleware"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

const adminTokenTTL = 12 * time.Hour

// AuthLogin exchanges the admin credentials for a bearer token. There
// is a single operator account configured through the environment; the
// stored value is the hex sha256 of the password, never the password.
func (a *App) AuthLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Password == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "email and password are required")
		return
	}

	sum := sha256.Sum256([]byte(req.Password))
	hash := hex.EncodeToString(sum[:])

	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(strings.ToLower(a.Cfg.AdminEmail))) == 1
	passOK := subtle.ConstantTimeCompare([]byte(hash), []byte(strings.ToLower(a.Cfg.AdminPasswordHash))) == 1
	if !emailOK || !passOK {
		a.error(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
		return
	}

	exp := time.Now().Add(adminTokenTTL)
	token, err := middleware.SignJWT(a.Cfg.JWTSecret, middleware.TokenClaims{
		Sub:   "admin",
		Email: a.Cfg.AdminEmail,
		Role:  middleware.RoleAdmin,
		Exp:   exp.Unix(),
	})
	if err != nil {
		a.Logger.Error().Err(err).Msg("sign admin token failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to issue token")
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"token":      token,
		"expires_at": exp.UTC(),
	})
}
