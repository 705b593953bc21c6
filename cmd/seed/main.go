// Command seed fills a development database with fake posts and interactions.
package main

import (
	"flag"
	"log"

	"channelpost/internal/config"
	"channelpost/internal/database"
	"channelpost/internal/seed"

	"github.com/joho/godotenv"
)

func main() {
	defaults := seed.DefaultOptions()
	users := flag.Int("users", defaults.Users, "Number of distinct users")
	posts := flag.Int("posts", defaults.Posts, "Number of posts to create")
	first := flag.Int64("first-message-id", defaults.FirstMessageID, "Channel message id of the first post")
	days := flag.Int("days", defaults.MaxDays, "Spread post timestamps over this many days")
	rngSeed := flag.Int64("seed", 0, "Random seed (0 for random)")
	clean := flag.Bool("clean", true, "Remove existing rows before seeding")
	flag.Parse()

	_ = godotenv.Load()

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

	s := seed.NewSeeder(db)
	if *clean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("❌ Cleanup failed: %v", err)
		}
	}

	sum, err := s.Run(seed.Options{
		Users:          *users,
		Posts:          *posts,
		FirstMessageID: *first,
		MaxDays:        *days,
		Seed:           *rngSeed,
	})
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}
	log.Printf("✅ Seeded %s", sum)
}
