// Command admin promotes and demotes platform administrators.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"devcircle/internal/config"
	"devcircle/internal/database"
	"devcircle/internal/events"
	"devcircle/internal/models"
	"devcircle/internal/repository"
	"devcircle/internal/service"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/admin promote <username>   - Grant the Admin role")
	fmt.Println("  go run ./cmd/admin demote <username>    - Revoke the Admin role")
	fmt.Println("  go run ./cmd/admin list-admins          - List all admins")
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close() }()

	identity := service.NewIdentityService(
		repository.NewUserRepository(db),
		repository.NewFollowRepository(db),
		events.NoopPublisher{},
		cfg.JWTSecret,
		cfg.JWTTTL,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch os.Args[1] {
	case "promote", "demote":
		if len(os.Args) < 3 {
			usage()
		}
		role := models.RoleAdmin
		if os.Args[1] == "demote" {
			role = models.RoleUser
		}
		user, changed, err := identity.SetRole(ctx, os.Args[2], role)
		if err != nil {
			log.Fatalf("Failed to %s %s: %v", os.Args[1], os.Args[2], err)
		}
		if !changed {
			fmt.Printf("User %s (ID: %d) already has role %s\n", user.Username, user.ID, user.Role)
			return
		}
		fmt.Printf("User %s (ID: %d) now has role %s\n", user.Username, user.ID, user.Role)

	case "list-admins":
		admins, err := identity.Admins(ctx)
		if err != nil {
			log.Fatalf("Failed to fetch admins: %v", err)
		}
		if len(admins) == 0 {
			fmt.Println("No admins found")
			return
		}
		for _, a := range admins {
			fmt.Printf("%d\t%s\t%s\n", a.ID, a.Username, a.Email)
		}

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		usage()
	}
}
