package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"engrafo/internal/middleware"
)

// Mints a short-lived admin bearer token without going through the
// login endpoint. Useful for curl sessions against the admin API.
func main() {
	var (
		emailFlag string
		ttlFlag   time.Duration
	)
	flag.StringVar(&emailFlag, "email", "", "Email claim to embed (fallbacks to ADMIN_EMAIL)")
	flag.DurationVar(&ttlFlag, "ttl", 12*time.Hour, "Token lifetime")
	flag.Parse()

	_ = godotenv.Load()

	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET is required")
		os.Exit(1)
	}

	email := strings.TrimSpace(emailFlag)
	if email == "" {
		email = strings.TrimSpace(os.Getenv("ADMIN_EMAIL"))
	}

	token, err := middleware.SignJWT(secret, middleware.TokenClaims{
		Sub:   "admin",
		Email: email,
		Role:  middleware.RoleAdmin,
		Exp:   time.Now().Add(ttlFlag).Unix(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to sign token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
