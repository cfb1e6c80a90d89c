package config

import (
	"errors"
	"os"
	"strings"

	"github.com/nightpost/relay/internal/models"
)

// Config carries everything the relay needs that used to be hardcoded
// constants in early versions: the designated admin identity, channel
// names, and credentials. It is built once at startup and injected into
// each component; nothing reads the environment after Load returns.
type Config struct {
	Port        string
	DatabaseURL string

	// AdminToken guards the HTTP admin surface. Empty is a fatal
	// misconfiguration; the server refuses to start without it.
	AdminToken string

	// AdminID is the single identity allowed to drive the control panel.
	AdminID string

	PublicChannel string
	ReviewChannel string

	CORSOrigin string

	// SeedStopWords are inserted into the stop-word table at startup if
	// absent. Comma-separated in the environment.
	SeedStopWords []string
}

// Load reads configuration from the environment. Call godotenv.Load first
// if a .env file should be honored.
func Load() (Config, error) {
	cfg := Config{
		Port:          os.Getenv("PORT"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		AdminToken:    os.Getenv("ADMIN_TOKEN"),
		AdminID:       os.Getenv("ADMIN_ID"),
		PublicChannel: os.Getenv("PUBLIC_CHANNEL"),
		ReviewChannel: os.Getenv("REVIEW_CHANNEL"),
		CORSOrigin:    os.Getenv("CORS_ORIGIN"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.PublicChannel == "" {
		cfg.PublicChannel = models.ChannelPublic
	}
	if cfg.ReviewChannel == "" {
		cfg.ReviewChannel = models.ChannelReview
	}
	if cfg.CORSOrigin == "" {
		cfg.CORSOrigin = "*"
	}

	if raw := os.Getenv("STOP_WORDS"); raw != "" {
		for _, w := range strings.Split(raw, ",") {
			if w = strings.TrimSpace(w); w != "" {
				cfg.SeedStopWords = append(cfg.SeedStopWords, w)
			}
		}
	}

	if cfg.AdminToken == "" {
		return Config{}, errors.New("ADMIN_TOKEN environment variable not set")
	}
	if cfg.AdminID == "" {
		return Config{}, errors.New("ADMIN_ID environment variable not set")
	}

	return cfg, nil
}
