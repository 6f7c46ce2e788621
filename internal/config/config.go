// Package config loads tablero's YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Unlimited is the plan limit that is never exceeded
const Unlimited = -1

// Config represents the application configuration
type Config struct {
	Database  DatabaseConfig        `yaml:"database"`
	Server    ServerConfig          `yaml:"server"`
	Auth      AuthConfig            `yaml:"auth"`
	Events    EventsConfig          `yaml:"events"`
	Redis     RedisConfig           `yaml:"redis"`
	RateLimit RateLimitConfig       `yaml:"rate_limit"`
	Billing   BillingConfig         `yaml:"billing"`
	Plans     map[string]PlanLimits `yaml:"plans"`
	Log       LogConfig             `yaml:"log"`
	Theme     ColorScheme           `yaml:"theme"`
}

// DatabaseConfig selects and tunes the datastore
type DatabaseConfig struct {
	Driver          string        `yaml:"driver"` // sqlite or postgres
	Path            string        `yaml:"path"`   // sqlite file
	DSN             string        `yaml:"dsn"`    // postgres connection string
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	BodyLimit      string        `yaml:"body_limit"`
	AllowOrigins   []string      `yaml:"allow_origins"`
}

// Addr returns host:port
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// AuthConfig holds the token verification settings
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`
}

// Event publishing modes
const (
	EventsNone   = "none"
	EventsSocket = "socket"
	EventsRedis  = "redis"
)

// EventsConfig configures realtime fan-out
type EventsConfig struct {
	Mode         string `yaml:"mode"`
	SocketPath   string `yaml:"socket_path"`
	RedisChannel string `yaml:"redis_channel"`
	QueueSize    int    `yaml:"queue_size"`
}

// RedisConfig locates the Redis server shared by rate limiting and events
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// RateLimitConfig bounds requests per principal
type RateLimitConfig struct {
	Backend  string        `yaml:"backend"` // memory or redis
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

// BillingConfig maps billing provider state onto plans
type BillingConfig struct {
	StripeWebhookSecret string            `yaml:"stripe_webhook_secret"`
	Prices              map[string]string `yaml:"prices"` // price id -> plan name
}

// PlanLimits caps what an organization on a plan may own
type PlanLimits struct {
	Boards  int `yaml:"boards"`
	Columns int `yaml:"columns"`
	Cards   int `yaml:"cards"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
	File   string `yaml:"file"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load loads config from $TABLERO_CONFIG or the user's config directory.
// Returns default config if the file doesn't exist.
func Load() (*Config, error) {
	configPath := os.Getenv("TABLERO_CONFIG")
	if configPath == "" {
		var err error
		configPath, err = getConfigPath()
		if err != nil {
			c := Default()
			c.applyEnv()
			return c, nil
		}
	}
	return LoadFrom(configPath)
}

// LoadFrom loads config from path, falling back to defaults when it is
// missing. Environment overrides apply in both cases.
func LoadFrom(path string) (*Config, error) {
	var config Config

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	loadThemeFile(&config)
	config.applyEnv()
	config.applyDefaults()

	return &config, nil
}

// Save saves the config to path
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Limits returns the limits of plan, or those of the free plan when plan is
// unknown
func (c *Config) Limits(plan string) PlanLimits {
	if l, ok := c.Plans[plan]; ok {
		return l
	}
	return c.Plans["free"]
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	// Try XDG_CONFIG_HOME first
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "tablero", "config.yaml"), nil
	}

	// Fall back to ~/.config
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".config", "tablero", "config.yaml"), nil
}

// tableroDir returns ~/.tablero, or a relative .tablero when home is unknown
func tableroDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tablero"
	}
	return filepath.Join(home, ".tablero")
}

// applyEnv overrides secrets and endpoints from the environment
func (c *Config) applyEnv() {
	if v := os.Getenv("TABLERO_DATABASE_DSN"); v != "" {
		c.Database.DSN = v
		if c.Database.Driver == "" {
			c.Database.Driver = "postgres"
		}
	}
	if v := os.Getenv("TABLERO_JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("TABLERO_STRIPE_WEBHOOK_SECRET"); v != "" {
		c.Billing.StripeWebhookSecret = v
	}
	if v := os.Getenv("TABLERO_REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("TABLERO_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() {
	dir := tableroDir()

	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Path == "" {
		c.Database.Path = filepath.Join(dir, "tablero.db")
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 5 * time.Minute
	}

	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.RequestTimeout == 0 {
		c.Server.RequestTimeout = 10 * time.Second
	}
	if c.Server.BodyLimit == "" {
		c.Server.BodyLimit = "1M"
	}
	if len(c.Server.AllowOrigins) == 0 {
		c.Server.AllowOrigins = []string{"*"}
	}

	if c.Auth.Issuer == "" {
		c.Auth.Issuer = "tablero"
	}

	if c.Events.Mode == "" {
		c.Events.Mode = EventsSocket
	}
	if c.Events.SocketPath == "" {
		c.Events.SocketPath = filepath.Join(dir, "tablero.sock")
	}
	if c.Events.RedisChannel == "" {
		c.Events.RedisChannel = "tablero:events"
	}
	if c.Events.QueueSize == 0 {
		c.Events.QueueSize = 256
	}

	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}

	if c.RateLimit.Backend == "" {
		c.RateLimit.Backend = "memory"
	}
	if c.RateLimit.Requests == 0 {
		c.RateLimit.Requests = 120
	}
	if c.RateLimit.Window == 0 {
		c.RateLimit.Window = time.Minute
	}

	if c.Billing.Prices == nil {
		c.Billing.Prices = map[string]string{}
	}

	if c.Plans == nil {
		c.Plans = map[string]PlanLimits{}
	}
	if _, ok := c.Plans["free"]; !ok {
		c.Plans["free"] = PlanLimits{Boards: 5, Columns: 50, Cards: 500}
	}
	if _, ok := c.Plans["pro"]; !ok {
		c.Plans["pro"] = PlanLimits{Boards: Unlimited, Columns: Unlimited, Cards: Unlimited}
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}

	c.Theme.ApplyDefaults()
}
