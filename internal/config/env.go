package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
)

// Environment holds process settings read from environment variables:
// secrets, connection details, and runtime tuning.
type Environment struct {
	BotToken   string `env:"BOT_TOKEN"`
	GuildID    string `env:"GUILD_ID"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	ConfigPath string `env:"CONFIG_PATH" envDefault:"configuration.yaml"`

	DBDriver string `env:"DB_DRIVER" envDefault:"postgres"`
	DBHost   string `env:"DB_HOST" envDefault:"localhost"`
	DBPort   int    `env:"DB_PORT" envDefault:"5432"`
	DBUser   string `env:"DB_USER"`
	DBPass   string `env:"DB_PASS"`
	DBName   string `env:"DB_NAME" envDefault:"pokepc"`
	DBPath   string `env:"DB_PATH" envDefault:"pokepc.db"`

	CacheBackend   string `env:"CACHE_BACKEND" envDefault:"redis"`
	RedisHost      string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort      int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword  string `env:"REDIS_PASSWORD"`
	RedisDB        int    `env:"REDIS_DB" envDefault:"0"`
	RedisKeyPrefix string `env:"REDIS_KEY_PREFIX" envDefault:"eedb:"`

	AdminAddr        string `env:"ADMIN_ADDR" envDefault:":8080"`
	AdminTokenSecret string `env:"ADMIN_TOKEN_SECRET"`

	PokeAPIURL     string        `env:"POKEAPI_URL" envDefault:"https://pokeapi.co/api/v2/"`
	PokeAPIRate    float64       `env:"POKEAPI_RATE" envDefault:"10"`
	PokeAPITimeout time.Duration `env:"POKEAPI_TIMEOUT" envDefault:"10s"`

	WorkerCount int `env:"WORKER_COUNT" envDefault:"4"`
	QueueSize   int `env:"QUEUE_SIZE" envDefault:"64"`
}

// ParseEnvironment reads the Environment from the process environment.
func ParseEnvironment() (Environment, error) {
	var e Environment
	if err := env.Parse(&e); err != nil {
		return Environment{}, fmt.Errorf("parse env: %w", err)
	}
	if err := e.Validate(); err != nil {
		return Environment{}, err
	}
	return e, nil
}

// Validate checks value ranges and enumerations that struct tags cannot
// express. It does not require BotToken; commands that need it check it.
func (e Environment) Validate() error {
	switch e.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("%w: DB_DRIVER must be postgres or sqlite, got %q", ErrInvalid, e.DBDriver)
	}
	switch e.CacheBackend {
	case "redis", "memory":
	default:
		return fmt.Errorf("%w: CACHE_BACKEND must be redis or memory, got %q", ErrInvalid, e.CacheBackend)
	}
	if e.PokeAPIRate <= 0 {
		return fmt.Errorf("%w: POKEAPI_RATE must be positive", ErrInvalid)
	}
	if _, err := url.Parse(e.PokeAPIURL); err != nil {
		return fmt.Errorf("%w: POKEAPI_URL: %v", ErrInvalid, err)
	}
	if e.WorkerCount < 1 {
		return fmt.Errorf("%w: WORKER_COUNT must be at least 1", ErrInvalid)
	}
	return nil
}

// DatabaseURL returns the connection string for the configured driver: a
// postgres URL or a sqlite file path.
func (e Environment) DatabaseURL() string {
	if e.DBDriver == "sqlite" {
		return e.DBPath
	}
	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(e.DBHost, strconv.Itoa(e.DBPort)),
		Path:     "/" + e.DBName,
		RawQuery: "sslmode=disable",
	}
	if e.DBUser != "" {
		u.User = url.UserPassword(e.DBUser, e.DBPass)
	}
	return u.String()
}

// RedisAddr returns host:port for the Redis server.
func (e Environment) RedisAddr() string {
	return net.JoinHostPort(e.RedisHost, strconv.Itoa(e.RedisPort))
}
