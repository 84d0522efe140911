// Package main provides a tool to seed the database with test binder data.
//
// This creates test users and fills their binders with random cards so the
// search, social and share features have something to work with during
// development.
//
// Usage:
//
//	DB_PATH=~/binderapp/store go run ./cmd/seed
//	DB_PATH=~/binderapp/store go run ./cmd/seed --create-users  # Also create test users
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/binderapp/binder-server/internal/auth"
	"github.com/binderapp/binder-server/internal/domain"
	"github.com/binderapp/binder-server/internal/id"
	"github.com/binderapp/binder-server/internal/store"
	"github.com/binderapp/binder-server/internal/util"
)

var createUsers = flag.Bool("create-users", false, "Create test users for social feature testing")

// testUserNames are display names for generated test users.
var testUserNames = []string{
	"Alex Rivera",
	"Jordan Chen",
	"Sam Taylor",
	"Casey Morgan",
	"Riley Kim",
}

// sampleCardIDs are real card identifiers from the base sets, enough to
// make seeded binders look plausible without hitting the catalog APIs.
var sampleCardIDs = []string{
	"base1-4", "base1-2", "base1-15", "base1-58", "base1-63",
	"base2-3", "base2-7", "base2-17", "base3-10", "base3-24",
	"neo1-1", "neo1-9", "neo4-107", "ex12-100", "ex12-101",
	"sv1-198", "sv1-245", "sv2-185", "sv3-125", "sv4-162",
	"swsh1-1", "swsh4-44", "swsh9-154", "sm9-33", "sm115-7",
}

var binderNames = []string{
	"Vintage Holos",
	"Eeveelutions",
	"Trade Fodder",
	"Shiny Vault",
	"Starter Decks",
	"Gym Leader Picks",
	"Full Arts",
}

var conditions = []domain.Condition{
	domain.ConditionNearMint,
	domain.ConditionNearMint,
	domain.ConditionNearMint,
	domain.ConditionLightlyPlayed,
	domain.ConditionModeratelyPlayed,
}

func main() {
	flag.Parse()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/binderapp/store")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(dbPath, nil, store.NoopEmitter{})
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	if *createUsers {
		createTestUsers(ctx, s)
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		log.Fatalf("Failed to get users: %v", err)
	}

	if len(users) == 0 {
		log.Fatal("No users found in database. Run with --create-users or register one first.")
	}

	fmt.Printf("Found %d users\n", len(users))

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for _, user := range users {
		fmt.Printf("\nSeeding binders for user: %s (%s)\n", user.DisplayName, user.ID)

		// 1-3 binders per user, roughly half of them public
		numBinders := 1 + rng.Intn(3)
		for range numBinders {
			binder := buildBinder(rng, user.ID)
			if err := s.CreateBinder(ctx, binder); err != nil {
				log.Printf("  Failed to create binder %q: %v", binder.Name, err)
				continue
			}
			fmt.Printf("  Created binder: %s (%d cards, public=%v)\n",
				binder.Name, len(binder.Cards), binder.Public)
		}
	}

	fmt.Println("\nSeeding complete!")
}

// buildBinder constructs a binder with a random grid size and a scattering
// of cards across the first few pages.
func buildBinder(rng *rand.Rand, ownerID string) *domain.Binder {
	now := time.Now()
	settings := domain.DefaultSettings()
	if rng.Intn(2) == 0 {
		settings.Rows, settings.Columns = 4, 3
	}
	pageSize := settings.Rows * settings.Columns
	name := binderNames[rng.Intn(len(binderNames))]

	binder := &domain.Binder{
		Syncable: domain.Syncable{
			ID:        id.MustGenerate("bnd"),
			CreatedAt: now,
			UpdatedAt: now,
		},
		OwnerID:  ownerID,
		Name:     name,
		Slug:     util.Slugify(name),
		Public:   rng.Intn(2) == 0,
		Settings: settings,
		Cards:    make(map[int]domain.CardRef),
	}

	// Fill 40-80% of the first 2-4 pages, leaving gaps so the condense
	// and move operations have something to do.
	pages := 2 + rng.Intn(3)
	for pos := range pages * pageSize {
		if rng.Float32() > 0.6 {
			continue
		}
		binder.Cards[pos] = domain.CardRef{
			CardID:    sampleCardIDs[rng.Intn(len(sampleCardIDs))],
			AddedAt:   now.AddDate(0, 0, -rng.Intn(90)),
			Condition: conditions[rng.Intn(len(conditions))],
			Quantity:  1 + rng.Intn(3),
		}
	}

	return binder
}

// createTestUsers creates a handful of users with a known password.
func createTestUsers(ctx context.Context, s *store.Store) {
	fmt.Println("\n=== Creating Test Users ===")

	passwordHash, err := auth.HashPassword("testpass123")
	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		return
	}

	now := time.Now()

	for i, name := range testUserNames {
		email := fmt.Sprintf("test%d@example.com", i+1)

		if existing, _ := s.GetUserByEmail(ctx, email); existing != nil {
			fmt.Printf("  User %s already exists, skipping\n", email)
			continue
		}

		user := &domain.User{
			Syncable: domain.Syncable{
				ID:        id.MustGenerate("usr"),
				CreatedAt: now,
				UpdatedAt: now,
			},
			Email:        email,
			DisplayName:  name,
			PasswordHash: passwordHash,
		}

		if err := s.CreateUser(ctx, user); err != nil {
			log.Printf("  Failed to create user %s: %v", name, err)
			continue
		}

		fmt.Printf("  Created user: %s (%s)\n", name, email)
	}

	fmt.Println("=== Test Users Created ===")
}
