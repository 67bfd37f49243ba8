package main

import (
	"flag"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
)

// Generates a bcrypt hash suitable for the ADMIN_PASSWORD environment
// variable, so deployments never have to store the plaintext.
func main() {
	var (
		password = flag.String("password", "", "Password to hash (required)")
		cost     = flag.Int("cost", bcrypt.DefaultCost, "bcrypt cost factor")
	)
	flag.Parse()

	if *password == "" {
		log.Fatal("-password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), *cost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	fmt.Printf("ADMIN_PASSWORD=%s\n", hash)
}
