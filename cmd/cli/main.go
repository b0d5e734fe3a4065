// cmd/cli/main.go
// Offline inspection over the thought database.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/keshon/reverie/internal/config"
	"github.com/keshon/reverie/internal/thoughtdb"
)

func main() {
	userID := flag.String("user", "", "user ID to inspect")
	pendingOnly := flag.Bool("pending", false, "show only pending thoughts")
	sweep := flag.Bool("sweep", false, "expire aged pending thoughts and exit")
	flag.Parse()

	cfg, err := config.New()
	if err != nil {
		log.Fatal(err)
	}

	db, err := thoughtdb.Open(cfg.ThoughtDBPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	if err := thoughtdb.Migrate(db); err != nil {
		log.Fatal(err)
	}
	store, err := thoughtdb.New(db, cfg.ThoughtTTL, cfg.PendingCap)
	if err != nil {
		log.Fatal(err)
	}

	if *sweep {
		n, err := store.Sweep(time.Now())
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("expired %d aged thoughts\n", n)
		return
	}

	if *userID == "" {
		log.Fatal("-user is required")
	}

	thoughts, err := store.All(*userID)
	if err != nil {
		log.Fatal(err)
	}
	for _, t := range thoughts {
		if *pendingOnly && t.State != "pending" {
			continue
		}
		line := fmt.Sprintf("%s  %-8s  %-16s  %.2f  %s", t.CreatedAt.Format(time.RFC3339), t.State, t.Category, t.Score, t.SeedContent)
		if t.ExpiredReason != "" {
			line += fmt.Sprintf("  (%s)", t.ExpiredReason)
		}
		fmt.Println(line)
	}
}
