// /internal/config/config.go
package config

import (
	"fmt"
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

func init() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, falling back to system environment variables")
	}
}

type Config struct {
	DiscordToken  string `env:"DISCORD_TOKEN,required,notEmpty"`
	AppEnv        string `env:"APP_ENV" envDefault:"dev"`
	MediaDir      string `env:"MEDIA_DIR"`
	CommandPrefix string `env:"COMMAND_PREFIX" envDefault:"!"`
	StoragePath   string `env:"STORAGE_PATH" envDefault:"datastore.json"`
}

func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if cfg.MediaDir == "" {
		if cfg.AppEnv == "production" {
			cfg.MediaDir = "/var/lib/loopbox/media"
		} else {
			cfg.MediaDir = "media"
		}
	}

	return cfg, nil
}
