package config

import (
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// ServerEnv is the server process configuration read from the environment.
type ServerEnv struct {
	Addr          string        `env:"BITGEN_ADDR"           envDefault:":9090"`
	ConfigDir     string        `env:"BITGEN_CONFIG_DIR"     envDefault:"config"`
	LogLevel      string        `env:"BITGEN_LOG_LEVEL"      envDefault:"info"`
	LogFormat     string        `env:"BITGEN_LOG_FORMAT"     envDefault:"console"`
	WatchInterval time.Duration `env:"BITGEN_WATCH_INTERVAL" envDefault:"2s"` // <= 0 disables hot reload
	MaxSessions   int           `env:"BITGEN_MAX_SESSIONS"   envDefault:"1024"`
}

// LoadServerEnv reads the dotenv files (".env" when none are given) and then
// parses the environment. Missing dotenv files are ignored; variables
// already set in the environment win over dotenv values.
func LoadServerEnv(dotenv ...string) (ServerEnv, error) {
	if len(dotenv) == 0 {
		dotenv = []string{".env"}
	}
	for _, f := range dotenv {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return ServerEnv{}, errors.Wrapf(err, "load %s", f)
		}
	}

	var cfg ServerEnv
	if err := env.Parse(&cfg); err != nil {
		return ServerEnv{}, errors.Wrap(err, "parse env")
	}
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))

	var errs []string
	if cfg.Addr == "" {
		errs = append(errs, "BITGEN_ADDR must not be empty")
	}
	if cfg.MaxSessions < 1 {
		errs = append(errs, "BITGEN_MAX_SESSIONS must be >= 1")
	}
	if cfg.LogFormat != "console" && cfg.LogFormat != "json" {
		errs = append(errs, "BITGEN_LOG_FORMAT must be one of: console, json")
	}
	if len(errs) > 0 {
		return ServerEnv{}, errors.Errorf("env validation failed: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}
