package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"engrafo/internal/middleware"
)

func signAdminToken(secret string) (string, error) {
	return middleware.SignJWT(secret, middleware.TokenClaims{
		Sub:  "admin",
		Role: middleware.RoleAdmin,
		Exp:  time.Now().Add(time.Hour).Unix(),
	})
}

func loginApp() *App {
	sum := sha256.Sum256([]byte("correct horse"))
	app := testApp(&scriptedSQL{})
	app.Cfg.AdminEmail = "admin@engrafo.example"
	app.Cfg.AdminPasswordHash = hex.EncodeToString(sum[:])
	return app
}

func TestAuthLogin_IssuesAdminToken(t *testing.T) {
	app := loginApp()

	body := `{"email":"ADMIN@engrafo.example","password":"correct horse"}`
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(body))
	app.AuthLogin(rr, req)

	if rr.Code != 200 {
		t.Fatalf("unexpected status: got %d, want 200: %s", rr.Code, rr.Body.String())
	}
	var payload struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	claims, err := middleware.VerifyJWT(app.Cfg.JWTSecret, payload.Token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims.Role != middleware.RoleAdmin {
		t.Fatalf("unexpected role: %q", claims.Role)
	}
}

func TestAuthLogin_RejectsWrongPassword(t *testing.T) {
	app := loginApp()

	body := `{"email":"admin@engrafo.example","password":"wrong"}`
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(body))
	app.AuthLogin(rr, req)

	if rr.Code != 401 {
		t.Fatalf("unexpected status: got %d, want 401", rr.Code)
	}
}

func TestAuthLogin_RejectsWrongEmail(t *testing.T) {
	app := loginApp()

	body := `{"email":"someone@else.example","password":"correct horse"}`
	rr := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(body))
	app.AuthLogin(rr, req)

	if rr.Code != 401 {
		t.Fatalf("unexpected status: got %d, want 401", rr.Code)
	}
}
