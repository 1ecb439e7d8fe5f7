package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Server    Server    `yaml:"server"`
	Store     Store     `yaml:"store"`
	DB        Database  `yaml:"db"`
	Session   Session   `yaml:"session"`
	GitHub    GitHub    `yaml:"github"`
	Solana    Solana    `yaml:"solana"`
	Log       Log       `yaml:"log"`
	RateLimit RateLimit `yaml:"rate_limit"`
}

type Server struct {
	Port         string        `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	CORSOrigins  []string      `yaml:"cors_origins"`
}

type Store struct {
	Driver string `yaml:"driver"` // postgres or memory
	Seed   bool   `yaml:"seed"`   // seed the memory driver with sample posts
}

type Database struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN builds a keyword/value connection string understood by pgx.
func (d Database) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

type Session struct {
	Secret     string        `yaml:"secret"`
	TTL        time.Duration `yaml:"ttl"`
	CookieName string        `yaml:"cookie_name"`
	Secure     bool          `yaml:"secure"`
}

type GitHub struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURL  string `yaml:"redirect_url"`
}

// Enabled reports whether GitHub login can be offered.
func (g GitHub) Enabled() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

type Solana struct {
	RPCURL            string        `yaml:"rpc_url"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Timeout           time.Duration `yaml:"timeout"`
}

type Log struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type RateLimit struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

func Default() *Config {
	return &Config{
		Server: Server{
			Port:         "8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  time.Minute,
			CORSOrigins:  []string{"*"},
		},
		Store: Store{Driver: DriverPostgres},
		DB: Database{
			Host:    "localhost",
			Port:    "5432",
			SSLMode: "disable",
		},
		Session: Session{
			TTL:        72 * time.Hour,
			CookieName: "eliza_session",
		},
		Solana: Solana{
			RPCURL:            "https://api.mainnet-beta.solana.com",
			RequestsPerSecond: 5,
			Timeout:           10 * time.Second,
		},
		Log:       Log{Level: "info"},
		RateLimit: RateLimit{RequestsPerSecond: 2, Burst: 10},
	}
}

// Load builds the configuration from defaults, then the YAML file at path (if
// any), then a .env file, then the process environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Port, "PORT")
	setList(&c.Server.CORSOrigins, "CORS_ORIGINS")

	setString(&c.Store.Driver, "STORE_DRIVER")
	if err := setBool(&c.Store.Seed, "STORE_SEED"); err != nil {
		return err
	}

	setString(&c.DB.Host, "DB_HOST")
	setString(&c.DB.Port, "DB_PORT")
	setString(&c.DB.User, "DB_USER")
	setString(&c.DB.Password, "DB_PASSWORD")
	setString(&c.DB.Name, "DB_NAME")
	setString(&c.DB.SSLMode, "DB_SSLMODE")

	setString(&c.Session.Secret, "JWT_SECRET")
	if err := setBool(&c.Session.Secure, "SESSION_SECURE"); err != nil {
		return err
	}

	setString(&c.GitHub.ClientID, "GITHUB_CLIENT_ID")
	setString(&c.GitHub.ClientSecret, "GITHUB_CLIENT_SECRET")
	setString(&c.GitHub.RedirectURL, "GITHUB_REDIRECT_URL")

	setString(&c.Solana.RPCURL, "SOLANA_RPC_URL")

	setString(&c.Log.Level, "LOG_LEVEL")
	if err := setBool(&c.Log.JSON, "LOG_JSON"); err != nil {
		return err
	}

	if err := setFloat(&c.RateLimit.RequestsPerSecond, "RATE_LIMIT_RPS"); err != nil {
		return err
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_BURST: %w", err)
		}
		c.RateLimit.Burst = n
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Session.Secret == "" {
		return errors.New("session secret is required (JWT_SECRET)")
	}
	switch c.Store.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Session.TTL <= 0 {
		return errors.New("session ttl must be positive")
	}
	if c.Solana.RPCURL == "" {
		return errors.New("solana rpc url is required")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setList(dst *[]string, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*dst = out
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

func setFloat(dst *float64, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}
