// Package config loads server configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds every runtime knob for the server process. DATABASE_URL and
// REDIS_URL are optional; leaving them empty runs the server on in-memory
// stores only.
type Config struct {
	Port     int    `env:"PORT" envDefault:"3000"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	WSSecret string `env:"WS_SECRET,required"`

	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`

	RoomDefaultVisibility string `env:"ROOM_DEFAULT_VISIBILITY" envDefault:"public"`
	RoomDefaultMaxPlayers int    `env:"ROOM_DEFAULT_MAX_PLAYERS" envDefault:"2"`
	RoomHardMaxPlayers    int    `env:"ROOM_HARD_MAX_PLAYERS" envDefault:"8"`
	RoomSlugLength        int    `env:"ROOM_SLUG_LENGTH" envDefault:"10"`
}

// Load parses the environment into a Config and applies cross-field checks.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if len(cfg.WSSecret) < 8 {
		return Config{}, fmt.Errorf("WS_SECRET must be at least 8 characters")
	}
	if cfg.RoomDefaultMaxPlayers > cfg.RoomHardMaxPlayers {
		cfg.RoomDefaultMaxPlayers = cfg.RoomHardMaxPlayers
	}
	return cfg, nil
}
