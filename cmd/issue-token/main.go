package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/noah-isme/slot-booking-api/internal/service"
	"github.com/noah-isme/slot-booking-api/pkg/config"
)

// issue-token prints a bearer token identifying an administrator. The API uses
// the token subject as the owner of slots created with it.
func main() {
	var (
		owner    string
		name     string
		lifetime time.Duration
	)
	flag.StringVar(&owner, "owner", "", "owner id placed in the token subject (defaults to SEED_OWNER_ID)")
	flag.StringVar(&name, "name", "", "display name for the administrator")
	flag.DurationVar(&lifetime, "ttl", 0, "token lifetime (defaults to JWT_EXPIRATION)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if owner == "" {
		owner = cfg.Seed.OwnerID
	}
	if lifetime <= 0 {
		lifetime = cfg.JWT.Expiration
	}

	identity := service.NewIdentityService(service.IdentityConfig{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Lifetime: lifetime,
	})
	token, expires, err := identity.Issue(owner, name)
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}

	fmt.Fprintf(os.Stderr, "owner=%s expires=%s\n", owner, expires.Format(time.RFC3339))
	fmt.Println(token)
}
