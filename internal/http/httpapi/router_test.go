package httpapi

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"engrafo/internal/http/handlers"
	"engrafo/internal/infra"
	"engrafo/internal/middleware"
)

func testRouterApp() *handlers.App {
	return &handlers.App{
		Logger: zerolog.Nop(),
		Cfg: &infra.Config{
			JWTSecret:          "router-secret",
			PublicBaseURL:      "http://localhost:8080",
			DonationCurrency:   "EUR",
			DonationLinkTTL:    24,
			RateLimitPerMin:    100,
			CORSAllowedOrigins: []string{"http://localhost:5173"},
		},
	}
}

func TestRouterHealthz(t *testing.T) {
	router := NewRouter(testRouterApp(), nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/v1/healthz", nil))

	if rr.Code != 200 {
		t.Fatalf("unexpected status: got %d, want 200", rr.Code)
	}
}

func TestRouterAdminRequiresToken(t *testing.T) {
	router := NewRouter(testRouterApp(), nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/v1/admin/stats", nil))

	if rr.Code != 401 {
		t.Fatalf("unexpected status: got %d, want 401", rr.Code)
	}
}

func TestRouterAdminRejectsNonAdminRole(t *testing.T) {
	app := testRouterApp()
	router := NewRouter(app, nil)

	token, err := middleware.SignJWT(app.Cfg.JWTSecret, middleware.TokenClaims{
		Sub:  "someone",
		Role: "viewer",
		Exp:  time.Now().Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/v1/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(rr, req)

	if rr.Code != 403 {
		t.Fatalf("unexpected status: got %d, want 403", rr.Code)
	}
}
