package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/binderapp/binder-server/internal/domain"
)

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/binderapp/store")
	}

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	binderCount := 0
	publicBinders := 0
	archivedBinders := 0
	totalCards := 0
	shown := 0

	err = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte("binder:")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek([]byte("binder:")); it.ValidForPrefix([]byte("binder:")); it.Next() {
			item := it.Item()
			key := string(item.Key())

			err := item.Value(func(val []byte) error {
				var binder domain.Binder
				if err := json.Unmarshal(val, &binder); err != nil {
					return err
				}

				binderCount++
				totalCards += binder.CardCount()
				if binder.Public {
					publicBinders++
				}
				if binder.IsDeleted() {
					archivedBinders++
				}

				// Show the first few binders in detail
				if shown < 3 {
					shown++
					fmt.Printf("Binder: %s\n", binder.Name)
					fmt.Printf("  ID: %s\n", binder.ID)
					fmt.Printf("  Owner: %s\n", binder.OwnerID)
					fmt.Printf("  Grid: %dx%d\n", binder.Settings.Rows, binder.Settings.Columns)
					fmt.Printf("  Cards: %d across %d pages\n", binder.CardCount(), binder.PageCount())
					fmt.Printf("  Public: %v\n", binder.Public)
					fmt.Println()
				}

				return nil
			})
			if err != nil {
				log.Printf("Error reading binder %s: %v", key, err)
			}
		}
		return nil
	})

	if err != nil {
		log.Fatalf("Error iterating database: %v", err)
	}

	userCount := 0
	shareCount := 0
	commentCount := 0

	err = db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())

			// Secondary index keys live under "<prefix>idx:", skip them
			if strings.Contains(key, "idx:") {
				continue
			}

			switch {
			case strings.HasPrefix(key, "user:"):
				userCount++
			case strings.HasPrefix(key, "share:"):
				shareCount++
			case strings.HasPrefix(key, "comment:"):
				commentCount++
			}
		}
		return nil
	})

	if err != nil {
		log.Fatalf("Error counting keys: %v", err)
	}

	fmt.Println("=== Summary ===")
	fmt.Printf("Total binders: %d\n", binderCount)
	fmt.Printf("Public binders: %d\n", publicBinders)
	fmt.Printf("Archived binders: %d\n", archivedBinders)
	fmt.Printf("Total cards: %d\n", totalCards)
	fmt.Printf("Users: %d\n", userCount)
	fmt.Printf("Share links: %d\n", shareCount)
	fmt.Printf("Comments: %d\n", commentCount)
	if binderCount > 0 {
		fmt.Printf("Average cards per binder: %.1f\n", float64(totalCards)/float64(binderCount))
	}
}
