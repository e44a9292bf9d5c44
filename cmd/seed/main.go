// Command seed fills the configured database with fake users, posts, teams and projects.
package main

import (
	"context"
	"flag"
	"log"

	"devcircle/internal/config"
	"devcircle/internal/database"
	"devcircle/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	users := flag.Int("users", defaults.Users, "Number of users to create")
	posts := flag.Int("posts", defaults.PostsPerUser, "Posts per user")
	follows := flag.Int("follows", defaults.FollowsPerUser, "Accounts each user follows")
	teams := flag.Int("teams", defaults.Teams, "Number of shared teams")
	seedValue := flag.Int64("seed", 0, "Randomness seed (0 = random)")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close() }()

	opts := defaults
	opts.Users = *users
	opts.PostsPerUser = *posts
	opts.FollowsPerUser = *follows
	opts.Teams = *teams
	opts.Seed = *seedValue

	ctx := context.Background()
	s := seed.NewSeeder(db, opts)

	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	sum, err := s.Run(ctx)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users, %d posts, %d teams, %d projects", sum.Users, sum.Posts, sum.Teams, sum.Projects)
	log.Printf("All seeded users have the password: %s", seed.DefaultPassword)
}
