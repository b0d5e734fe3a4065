// cmd/discord/main.go
package main

import (
	"context"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/keshon/reverie/internal/ai"
	"github.com/keshon/reverie/internal/config"
	"github.com/keshon/reverie/internal/discord"
	"github.com/keshon/reverie/internal/mind"
	"github.com/keshon/reverie/internal/signals"
	"github.com/keshon/reverie/internal/storage"
	"github.com/keshon/reverie/internal/thoughtdb"
	v "github.com/keshon/reverie/internal/version"
)

func main() {
	log.Printf("[INFO] Starting %v %v...", v.AppName, v.AppVersion)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.New()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.DiscordToken == "" {
		log.Fatal("DISCORD_TOKEN is not set")
	}

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	db, err := thoughtdb.Open(cfg.ThoughtDBPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	if err := thoughtdb.Migrate(db); err != nil {
		log.Fatal(err)
	}
	thoughts, err := thoughtdb.New(db, cfg.ThoughtTTL, cfg.PendingCap)
	if err != nil {
		log.Fatal(err)
	}

	provider, err := ai.NewProvider(cfg.AIProvider, cfg.AITimeoutSeconds)
	if err != nil {
		log.Fatal(err)
	}

	identity := loadIdentity(cfg.MindRoot)

	lib := signals.NewLibrary(cfg.MindRoot)
	agg := mind.NewAggregator([]mind.SignalReader{
		signals.NewConversationReader(store),
		signals.NewUserNarrativeReader(lib),
		signals.NewCharacterNarrativeReader(lib),
		signals.NewMentalThreadReader(lib),
		signals.NewPresenceReader(store),
		signals.NewCalendarReader(lib),
	})

	limiter := mind.DefaultCallLimiter()
	filter := mind.NewRelevanceFilter(provider, thoughts, limiter)
	author := mind.NewAuthor(provider, limiter, identity)

	runnerCfg := mind.RunnerConfig{
		Scheduler: mind.SchedulerConfig{
			TickInterval: cfg.TickInterval,
			MinAbsence:   cfg.MinAbsence,
		},
		Gate: mind.GateConfig{
			SessionCap:       cfg.SessionSurfaceCap,
			UrgencyThreshold: cfg.UrgencyThreshold,
			SessionCooldown:  cfg.SessionCooldown,
		},
		PendingCap:         cfg.PendingCap,
		RecentContextLines: 6,
	}
	runner := mind.NewRunner(runnerCfg, thoughts, store, agg, filter, author,
		rand.New(rand.NewSource(time.Now().UnixNano())))
	runner.Start(ctx)

	// Nightly sweep so TTL expiry does not depend on access patterns.
	c := cron.New()
	if _, err := c.AddFunc("@daily", func() {
		n, err := thoughts.Sweep(time.Now())
		if err != nil {
			log.Printf("[ERR] thought sweep: %v", err)
			return
		}
		if n > 0 {
			log.Printf("[INFO] thought sweep expired %d aged thoughts", n)
		}
	}); err != nil {
		log.Fatal(err)
	}
	c.Start()
	defer c.Stop()

	errCh := make(chan error, 1)
	go func() {
		if err := discord.StartBot(ctx, cfg, store, runner, provider, identity); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Printf("[INFO] Received signal %s, shutting down...\n", s)
		cancel()
	case err := <-errCh:
		if err != nil {
			log.Println("[ERR] Discord bot error:", err)
		}
		cancel()
	case <-ctx.Done():
	}

	log.Println("[INFO] Discord bot exited cleanly")
}

// loadIdentity reads the character identity block; a missing file falls back
// to a bare default so the daemon still runs.
func loadIdentity(mindRoot string) string {
	b, err := os.ReadFile(mindRoot + "/identity.md")
	if err != nil {
		return "You are a conversational character with an inner life."
	}
	return string(b)
}
