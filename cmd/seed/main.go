package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/poll/analytics/internal/config"
)

// Seeds the database with a randomized demo dataset so the analytics
// endpoints have something to aggregate during development.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	var (
		userCount = flag.Int("users", 25, "number of users to create")
		pollCount = flag.Int("polls", 40, "number of polls to create")
		voteCount = flag.Int("votes", 2000, "number of votes to create")
		days      = flag.Int("days", 30, "spread votes over the past N days")
	)
	flag.Parse()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.Database.ConnString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}

	userIDs := make([]int64, 0, *userCount)
	for i := 0; i < *userCount; i++ {
		// uuid suffix keeps usernames unique across repeated runs.
		username := fmt.Sprintf("demo-%s", uuid.NewString()[:8])
		var id int64
		err := db.QueryRow(
			"INSERT INTO users (username) VALUES ($1) RETURNING id", username,
		).Scan(&id)
		if err != nil {
			log.Fatalf("failed to insert user: %v", err)
		}
		userIDs = append(userIDs, id)
	}

	now := time.Now().UTC()
	optionIDs := make([]int64, 0, *pollCount*4)
	for i := 0; i < *pollCount; i++ {
		owner := userIDs[rand.Intn(len(userIDs))]
		createdAt := now.AddDate(0, 0, -rand.Intn(*days))
		var pollID int64
		err := db.QueryRow(
			"INSERT INTO polls (question, owner_id, view_count, created_at) VALUES ($1, $2, $3, $4) RETURNING id",
			fmt.Sprintf("Demo question #%d?", i+1), owner, rand.Intn(500), createdAt,
		).Scan(&pollID)
		if err != nil {
			log.Fatalf("failed to insert poll: %v", err)
		}

		for j := 0; j < 2+rand.Intn(3); j++ {
			var optionID int64
			err := db.QueryRow(
				"INSERT INTO options (poll_id, text) VALUES ($1, $2) RETURNING id",
				pollID, fmt.Sprintf("Option %c", 'A'+j),
			).Scan(&optionID)
			if err != nil {
				log.Fatalf("failed to insert option: %v", err)
			}
			optionIDs = append(optionIDs, optionID)
		}
	}

	for i := 0; i < *voteCount; i++ {
		castAt := now.Add(-time.Duration(rand.Intn(*days*24*3600)) * time.Second)
		_, err := db.Exec(
			"INSERT INTO votes (option_id, user_id, created_at) VALUES ($1, $2, $3)",
			optionIDs[rand.Intn(len(optionIDs))],
			userIDs[rand.Intn(len(userIDs))],
			castAt,
		)
		if err != nil {
			log.Fatalf("failed to insert vote: %v", err)
		}
	}

	log.Printf("seeded %s users, %s polls, %s votes",
		humanize.Comma(int64(*userCount)),
		humanize.Comma(int64(*pollCount)),
		humanize.Comma(int64(*voteCount)))
}
