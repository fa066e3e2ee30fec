package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	CacheDir       string        `env:"DACFORGE_CACHE_DIR"`
	DBPath         string        `env:"DACFORGE_DB_PATH"`
	LogPath        string        `env:"DACFORGE_LOG_PATH"`
	LogLevel       string        `env:"DACFORGE_LOG_LEVEL"`
	LogFormat      string        `env:"DACFORGE_LOG_FORMAT"`
	RequestTimeout time.Duration `env:"DACFORGE_REQUEST_TIMEOUT"`
	HistoryLimit   int           `env:"DACFORGE_HISTORY_LIMIT"`
	PayTokenSymbol string        `env:"DACFORGE_PAY_TOKEN"`

	// Authenticators lists wallet providers as "Name=https://endpoint".
	// Order is preserved and drives the login modal.
	Authenticators []string `env:"DACFORGE_AUTHENTICATORS" envSeparator:","`
}

// AuthenticatorEndpoint is one parsed entry of Config.Authenticators.
type AuthenticatorEndpoint struct {
	Name string
	URL  string
}

func Default() Config {
	cacheDir := filepath.Join(userConfigDir(), "dacforge")
	return Config{
		CacheDir:       cacheDir,
		DBPath:         filepath.Join(cacheDir, "cache.db"),
		LogPath:        filepath.Join(cacheDir, "debug.log"),
		LogLevel:       "info",
		LogFormat:      "text",
		RequestTimeout: 30 * time.Second,
		HistoryLimit:   50,
		PayTokenSymbol: "EOS",
	}
}

// Load reads an optional .env file into the process environment and then
// overlays DACFORGE_* variables on top of Default().
func Load(envFile string) (Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("loading %s: %w", envFile, err)
	}

	cfg := Default()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	// A moved cache dir drags the derived paths along unless they were set explicitly.
	if dir, ok := os.LookupEnv("DACFORGE_CACHE_DIR"); ok && dir != "" {
		if _, set := os.LookupEnv("DACFORGE_DB_PATH"); !set {
			cfg.DBPath = filepath.Join(dir, "cache.db")
		}
		if _, set := os.LookupEnv("DACFORGE_LOG_PATH"); !set {
			cfg.LogPath = filepath.Join(dir, "debug.log")
		}
	}
	return cfg, nil
}

// Endpoints parses the configured authenticators. Malformed entries are
// skipped with a warning.
func (c Config) Endpoints() []AuthenticatorEndpoint {
	var out []AuthenticatorEndpoint
	for _, raw := range c.Authenticators {
		name, url, ok := strings.Cut(strings.TrimSpace(raw), "=")
		name, url = strings.TrimSpace(name), strings.TrimSpace(url)
		if !ok || name == "" || url == "" {
			slog.Warn("Ignoring malformed authenticator entry", "entry", raw)
			continue
		}
		out = append(out, AuthenticatorEndpoint{Name: name, URL: url})
	}
	return out
}

func userConfigDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config")
}
