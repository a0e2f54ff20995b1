// Command seed populates the database with a demo social graph.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"cinesocial/internal/config"
	"cinesocial/internal/database"
	"cinesocial/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	numUsers := flag.Int("users", defaults.NumUsers, "Number of users to create")
	numFilms := flag.Int("films", defaults.NumFilms, "Number of films to create")
	friends := flag.Int("friends", defaults.FriendsPerUser, "Friend requests sent per user")
	likes := flag.Int("likes", defaults.LikesPerUser, "Films liked per user")
	reviews := flag.Int("reviews", defaults.ReviewsPerFilm, "Reviews per film")
	votes := flag.Int("votes", defaults.VotesPerReview, "Votes per review")
	seedValue := flag.Int64("seed", defaults.Seed, "Random seed")
	catalogPath := flag.String("catalog", "", "Optional YAML genre catalog (defaults to the embedded one)")
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

	catalog := seed.DefaultCatalog()
	if *catalogPath != "" {
		raw, err := os.ReadFile(*catalogPath)
		if err != nil {
			log.Fatalf("Failed to read catalog: %v", err)
		}
		if catalog, err = seed.LoadCatalog(raw); err != nil {
			log.Fatalf("Failed to load catalog: %v", err)
		}
	}

	s := seed.NewSeeder(db)
	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	_, err = s.Run(context.Background(), catalog, seed.Options{
		NumUsers:       *numUsers,
		NumFilms:       *numFilms,
		FriendsPerUser: *friends,
		LikesPerUser:   *likes,
		ReviewsPerFilm: *reviews,
		VotesPerReview: *votes,
		Seed:           *seedValue,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
