// Package config loads the site configuration from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"math"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidAddress = errors.New("invalid listen address")
	ErrInvalidBaseURL = errors.New("invalid base url")
	ErrInvalidCodec   = errors.New("invalid live codec")
)

// Config is the full runtime configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Site   SiteConfig   `yaml:"site"`
	Live   LiveConfig   `yaml:"live"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Address         string        `yaml:"address"`
	BaseURL         string        `yaml:"base_url"` // used for sitemap and canonical links
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// TrustProxy takes client addresses from X-Forwarded-For. Enable it
	// only behind a reverse proxy that sets the header.
	TrustProxy bool    `yaml:"trust_proxy"`
	APIRate    float64 `yaml:"api_rate"` // requests per second per client, 0 disables
	APIBurst   int     `yaml:"api_burst"`
}

type SiteConfig struct {
	Name      string        `yaml:"name"`
	Tagline   string        `yaml:"tagline"`
	InviteURL string        `yaml:"invite_url"`
	Founder   FounderConfig `yaml:"founder"`
}

type FounderConfig struct {
	Name   string `yaml:"name"`
	Avatar string `yaml:"avatar"`
	Blurb  string `yaml:"blurb"`
}

type LiveConfig struct {
	Codec           string        `yaml:"codec"` // json or msgpack
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	InsecureDevMode bool          `yaml:"insecure_dev_mode"`
	MaxSessions     int           `yaml:"max_sessions"`
	SessionTTL      time.Duration `yaml:"session_ttl"`
	MaxConnsPerIP   int           `yaml:"max_conns_per_ip"`
	EventRate       float64       `yaml:"event_rate"` // events per second per session, 0 disables
	EventBurst      int           `yaml:"event_burst"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:         ":3000",
			BaseURL:         "http://localhost:3000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			APIRate:         10,
			APIBurst:        20,
		},
		Site: SiteConfig{
			Name:      "Jojo Bot",
			Tagline:   "A powerful, feature-rich Discord bot with music, moderation, games, and more.",
			InviteURL: "https://discord.com/oauth2/authorize?scope=bot",
			Founder: FounderConfig{
				Name:   "Adam",
				Avatar: "",
				Blurb: "I started this project just for fun, but it turned out to be something much deeper and more meaningful. " +
					"Everyone should try creating something like this - it's an incredible learning experience. " +
					"I'm still learning and growing with this project, and I hope you enjoy using Jojo Bot as much as I enjoy creating it.",
			},
		},
		Live: LiveConfig{
			Codec:         "json",
			MaxSessions:   10000,
			SessionTTL:    30 * time.Minute,
			MaxConnsPerIP: 20,
			EventRate:     20,
			EventBurst:    40,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads path over the defaults and then applies environment overrides.
// An empty or missing path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if port := defaultEnv("PORT", ""); port != "" {
		c.Server.Address = ":" + strings.TrimPrefix(port, ":")
	}
	c.Server.BaseURL = defaultEnv("JOJO_BASE_URL", c.Server.BaseURL)
	c.Log.Level = defaultEnv("JOJO_LOG_LEVEL", c.Log.Level)
}

// Validate checks the fields the server cannot start without.
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Server.Address); err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidAddress, c.Server.Address, err)
	}

	u, err := url.Parse(c.Server.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w %q", ErrInvalidBaseURL, c.Server.BaseURL)
	}

	switch c.Live.Codec {
	case "json", "msgpack":
	default:
		return fmt.Errorf("%w %q: want json or msgpack", ErrInvalidCodec, c.Live.Codec)
	}

	if c.Live.MaxSessions < 0 {
		return fmt.Errorf("live.max_sessions must not be negative")
	}
	if c.Live.MaxConnsPerIP < 0 || c.Live.MaxConnsPerIP > math.MaxInt32 {
		return fmt.Errorf("live.max_conns_per_ip must be between 0 and %d", math.MaxInt32)
	}
	if c.Live.SessionTTL <= 0 {
		return fmt.Errorf("live.session_ttl must be positive")
	}
	if c.Live.EventRate < 0 || c.Server.APIRate < 0 {
		return fmt.Errorf("rates must not be negative")
	}
	if c.Live.EventBurst < 0 || c.Server.APIBurst < 0 {
		return fmt.Errorf("bursts must not be negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive")
	}
	return nil
}

// BaseURL returns server.base_url without a trailing slash.
func (c *Config) BaseURL() string {
	return strings.TrimRight(c.Server.BaseURL, "/")
}

func defaultEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
