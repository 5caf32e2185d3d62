package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"engrafo/internal/database"
)

func main() {
	var command string
	flag.StringVar(&command, "command", "up", "Migration command to run (up or status)")
	flag.Parse()

	_ = godotenv.Load()

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	var err error
	switch strings.TrimSpace(strings.ToLower(command)) {
	case "up":
		err = database.MigrateUp(dbURL)
	case "status":
		err = database.MigrateStatus(dbURL)
	default:
		fmt.Fprintf(os.Stderr, "unsupported command %q\n", command)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
}
