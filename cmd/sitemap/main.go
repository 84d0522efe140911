// Command sitemap renders sitemap.xml for the public binders in a store
// and writes it to stdout or a file. Useful for static hosting setups
// that serve the sitemap without running the API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/binderapp/binder-server/internal/service"
	"github.com/binderapp/binder-server/internal/store"
)

func main() {
	publicURL := flag.String("public-url", "http://localhost:8080", "Externally visible base URL")
	output := flag.String("o", "", "Output file (default stdout)")
	robots := flag.Bool("robots", false, "Render robots.txt instead of sitemap.xml")
	flag.Parse()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/binderapp/store")
	}

	st, err := store.New(dbPath, nil, store.NoopEmitter{})
	if err != nil {
		log.Fatalf("Failed to open store at %s: %v", dbPath, err)
	}
	defer st.Close()

	sitemaps := service.NewSitemapService(st, *publicURL, nil)

	var out []byte
	if *robots {
		out = sitemaps.Robots()
	} else {
		out, err = sitemaps.Sitemap(context.Background())
		if err != nil {
			log.Fatalf("Failed to build sitemap: %v", err)
		}
	}

	if *output == "" {
		fmt.Print(string(out))
		return
	}

	if err := os.WriteFile(*output, out, 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", *output, err)
	}
}
