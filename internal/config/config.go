package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, falling back to system environment variables")
	}
}

// Config holds all runtime configuration, parsed from the environment.
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN"`

	StoragePath   string `env:"STORAGE_PATH" envDefault:"data/state.json"`
	ThoughtDBPath string `env:"THOUGHT_DB_PATH" envDefault:"data/thoughts.db"`
	MindRoot      string `env:"MIND_ROOT" envDefault:"data/mind"`

	AIProvider       string `env:"AI_PROVIDER" envDefault:"pollinations"`
	AITimeoutSeconds int    `env:"AI_TIMEOUT_SECONDS" envDefault:"12"`

	TickInterval time.Duration `env:"TICK_INTERVAL" envDefault:"5m"`
	MinAbsence   time.Duration `env:"MIN_ABSENCE" envDefault:"10m"`

	PendingCap int           `env:"PENDING_CAP" envDefault:"5"`
	ThoughtTTL time.Duration `env:"THOUGHT_TTL" envDefault:"168h"`

	SessionSurfaceCap int           `env:"SESSION_SURFACE_CAP" envDefault:"3"`
	SessionCooldown   time.Duration `env:"SESSION_COOLDOWN" envDefault:"2h"`
	UrgencyThreshold  float64       `env:"URGENCY_THRESHOLD" envDefault:"0.85"`
}

// New parses config from the environment. A missing DISCORD_TOKEN is only
// fatal for the bot entry point, so it is not checked here.
func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}
	if cfg.PendingCap < 1 {
		return nil, fmt.Errorf("config: PENDING_CAP must be >= 1")
	}
	if cfg.SessionSurfaceCap < 1 {
		return nil, fmt.Errorf("config: SESSION_SURFACE_CAP must be >= 1")
	}
	return cfg, nil
}
