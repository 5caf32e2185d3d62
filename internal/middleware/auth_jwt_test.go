package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestJWTRoundTrip(t *testing.T) {
	token, err := SignJWT("secret", TokenClaims{
		Sub:  "admin-1",
		Role: RoleAdmin,
		Exp:  time.Now().Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("SignJWT returned error: %v", err)
	}
	claims, err := VerifyJWT("secret", token)
	if err != nil {
		t.Fatalf("VerifyJWT returned error: %v", err)
	}
	if claims.Sub != "admin-1" || claims.Role != RoleAdmin {
		t.Fatalf("unexpected claims %#v", claims)
	}
}

func TestVerifyJWTRejectsTampering(t *testing.T) {
	token, _ := SignJWT("secret", TokenClaims{Sub: "admin-1", Role: RoleAdmin})
	if _, err := VerifyJWT("other-secret", token); err == nil {
		t.Fatal("expected signature failure with wrong secret")
	}
	if _, err := VerifyJWT("secret", token+"x"); err == nil {
		t.Fatal("expected failure with mangled signature")
	}
}

func TestVerifyJWTRejectsExpired(t *testing.T) {
	token, _ := SignJWT("secret", TokenClaims{Sub: "admin-1", Exp: time.Now().Add(-time.Minute).Unix()})
	if _, err := VerifyJWT("secret", token); err == nil {
		t.Fatal("expected expiry failure")
	}
}

func TestRequireAdmin(t *testing.T) {
	adminToken, _ := SignJWT("secret", TokenClaims{Sub: "a", Role: RoleAdmin, Exp: time.Now().Add(time.Hour).Unix()})
	plainToken, _ := SignJWT("secret", TokenClaims{Sub: "u", Exp: time.Now().Add(time.Hour).Unix()})

	handler := AuthJWT("secret")(RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	cases := []struct {
		name  string
		token string
		want  int
	}{
		{"admin passes", adminToken, http.StatusNoContent},
		{"non-admin forbidden", plainToken, http.StatusForbidden},
		{"missing token unauthorized", "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			if rr.Code != tc.want {
				t.Fatalf("status = %d, want %d", rr.Code, tc.want)
			}
		})
	}
}

func TestIsAdminRequest(t *testing.T) {
	adminToken, _ := SignJWT("secret", TokenClaims{Sub: "a", Role: RoleAdmin, Exp: time.Now().Add(time.Hour).Unix()})

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	if IsAdminRequest("secret", req) {
		t.Fatal("request without token must not be admin")
	}
	req.Header.Set("Authorization", "Bearer "+adminToken)
	if !IsAdminRequest("secret", req) {
		t.Fatal("valid admin token not recognized")
	}
	if IsAdminRequest("other", req) {
		t.Fatal("token signed with different secret accepted")
	}
}
