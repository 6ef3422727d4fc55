package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Leaderboard stores
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config holds process configuration read from the environment
type Config struct {
	// Discord
	DiscordToken     string `envconfig:"DISCORD_TOKEN" required:"true"`
	DiscordChannelID string `envconfig:"DISCORD_CHANNEL_ID" required:"true"`
	CommandPrefix    string `envconfig:"COMMAND_PREFIX" default:"!"`

	// Slash commands register under the bot user unless DiscordAppID is set,
	// and globally unless DiscordGuildID is set
	DiscordAppID   string `envconfig:"DISCORD_APP_ID"`
	DiscordGuildID string `envconfig:"DISCORD_GUILD_ID"`

	// Logging
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`

	// Leaderboard storage
	LeaderboardStore string `envconfig:"LEADERBOARD_STORE" default:"memory"`
	RedisAddr        string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword    string `envconfig:"REDIS_PASSWORD"`
	RedisDB          int    `envconfig:"REDIS_DB" default:"0"`

	// MetricsAddr enables the /metrics listener when set
	MetricsAddr string `envconfig:"METRICS_ADDR"`

	// RandomSeed makes game randomness reproducible when non-zero
	RandomSeed int64 `envconfig:"RANDOM_SEED" default:"0"`
}

// Load reads an optional .env file and then the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values envconfig cannot
func (c *Config) Validate() error {
	if c.DiscordToken == "" {
		return errors.New("DISCORD_TOKEN cannot be empty")
	}

	switch c.LeaderboardStore {
	case StoreMemory, StoreRedis:
	default:
		return fmt.Errorf("unknown LEADERBOARD_STORE %q", c.LeaderboardStore)
	}

	if c.CommandPrefix == "" {
		return errors.New("COMMAND_PREFIX cannot be empty")
	}

	return nil
}
