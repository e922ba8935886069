package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hansithacreations/storefront-api/internal/config"
	"github.com/hansithacreations/storefront-api/internal/repository/postgres"
)

func main() {
	emailFlag := flag.String("email", "", "Operator email")
	apiKeyFlag := flag.String("api-key", "", "API key for this operator (save it; it cannot be retrieved later)")
	nameFlag := flag.String("name", "", "Operator display name")
	flag.Parse()

	email := strings.TrimSpace(*emailFlag)
	// Trim so the stored hash matches what the server receives (the operator middleware trims the Bearer token)
	apiKey := strings.TrimSpace(*apiKeyFlag)
	name := strings.TrimSpace(*nameFlag)

	if email == "" || apiKey == "" {
		fmt.Println("Usage:")
		fmt.Println("  go run cmd/create-operator/main.go --email ops@example.com --api-key \"your-api-key\" [--name \"Ops Person\"]")
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Connect to database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.RunMigrations(db); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to run migrations: %v\n", err)
		os.Exit(1)
	}

	keyHash, err := bcrypt.GenerateFromPassword([]byte(apiKey), 10)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to hash API key: %v\n", err)
		os.Exit(1)
	}
	lookupHash := postgres.OperatorKeyLookupHash(apiKey)

	id := uuid.New()
	_, err = db.Exec(`
		INSERT INTO users (id, email, name, is_admin, operator_key_hash, operator_key_lookup)
		VALUES ($1, $2, $3, true, $4, $5)
		ON CONFLICT (email) DO UPDATE
		SET is_admin = true, operator_key_hash = $4, operator_key_lookup = $5
	`, id, email, name, string(keyHash), lookupHash)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create operator: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Operator %s provisioned.\n", email)
	fmt.Println("Store the API key now; only its hash is kept.")
}
