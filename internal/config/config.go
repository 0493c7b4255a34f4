package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/blake2b"
	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/dungeongen/internal/dungeon"
	"github.com/lawnchairsociety/dungeongen/internal/entity"
	"github.com/lawnchairsociety/dungeongen/internal/pathing"
	"github.com/lawnchairsociety/dungeongen/internal/store"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Config holds the settings shared by the CLI and the layout service.
type Config struct {
	Generator GeneratorConfig `yaml:"generator"`
	Entities  EntitiesConfig  `yaml:"entities"`
	Store     StoreConfig     `yaml:"store"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// GeneratorConfig holds the map size used when a request names none, the
// pathfinding algorithm, and every generator constant.
type GeneratorConfig struct {
	Width         int    `yaml:"width"`
	Height        int    `yaml:"height"`
	PathAlgorithm string `yaml:"path_algorithm"`

	// ClearSearchLimit bounds the random clear-cell search. 0 means four
	// draws per cell of the map.
	ClearSearchLimit int `yaml:"clear_search_limit"`

	dungeon.Params `yaml:",inline"`
}

// EntitiesConfig points at an optional YAML file of weighted entity tables.
type EntitiesConfig struct {
	// TablesFile is empty to use the built-in tables.
	TablesFile string `yaml:"tables_file"`

	// Disabled skips furniture, monsters and items entirely.
	Disabled bool `yaml:"disabled"`
}

// StoreConfig turns the layout store on and says where it lives.
type StoreConfig struct {
	Enabled      bool `yaml:"enabled"`
	store.Config `yaml:",inline"`
}

// ServerConfig holds settings for the websocket layout service.
type ServerConfig struct {
	Listen string `yaml:"listen"`

	// TCPListen serves the same line protocol over plain TCP when set.
	TCPListen string `yaml:"tcp_listen"`

	WebSocket   WebSocketConfig   `yaml:"websocket"`
	Connections ConnectionsConfig `yaml:"connections"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`

	// MaxWidth and MaxHeight cap the map size a client may ask for.
	MaxWidth  int `yaml:"max_width"`
	MaxHeight int `yaml:"max_height"`
}

// RateLimitConfig holds rate limiting settings for generation requests.
type RateLimitConfig struct {
	// MaxRequests is the number of generations allowed per window before lockout.
	MaxRequests int `yaml:"max_requests"`

	// WindowSeconds is the length of the counting window.
	WindowSeconds int `yaml:"window_seconds"`

	// LockoutSeconds is the initial lockout duration in seconds.
	LockoutSeconds int `yaml:"lockout_seconds"`

	// MaxLockoutSeconds is the maximum lockout duration (for exponential backoff).
	MaxLockoutSeconds int `yaml:"max_lockout_seconds"`
}

// ConnectionsConfig holds connection limit settings.
type ConnectionsConfig struct {
	// MaxPerIP is the maximum concurrent connections allowed from a single IP address.
	// 0 means unlimited (not recommended).
	MaxPerIP int `yaml:"max_per_ip"`

	// MaxTotal is the maximum total concurrent connections to the server.
	// 0 means unlimited.
	MaxTotal int `yaml:"max_total"`
}

// WebSocketConfig holds WebSocket-specific settings.
type WebSocketConfig struct {
	// AllowedOrigins is a list of origins allowed to connect via WebSocket.
	// Empty list enforces same-origin policy.
	// Use "*" to allow all origins (not recommended for production).
	AllowedOrigins []string `yaml:"allowed_origins"`

	// MaxMessageSize is the maximum WebSocket message size in bytes.
	MaxMessageSize int64 `yaml:"max_message_size"`
}

// LoggingConfig names the logger's own YAML file.
type LoggingConfig struct {
	ConfigPath string `yaml:"config_path"`
}

// DefaultConfig returns a Config with secure defaults.
func DefaultConfig() *Config {
	return &Config{
		Generator: GeneratorConfig{
			Width:         80,
			Height:        46,
			PathAlgorithm: pathing.AStar.String(),
			Params:        dungeon.DefaultParams(),
		},
		Store: StoreConfig{
			Config: store.DefaultConfig("data/layouts.db"),
		},
		Server: ServerConfig{
			Listen: ":8080",
			WebSocket: WebSocketConfig{
				AllowedOrigins: []string{}, // Same-origin only by default
				MaxMessageSize: 4096,
			},
			Connections: ConnectionsConfig{
				MaxPerIP: 3,
				MaxTotal: 100,
			},
			RateLimit: RateLimitConfig{
				MaxRequests:       30,
				WindowSeconds:     60,
				LockoutSeconds:    30,
				MaxLockoutSeconds: 300,
			},
			MaxWidth:  256,
			MaxHeight: 256,
		},
		Logging: LoggingConfig{
			ConfigPath: "config/logging.yaml",
		},
	}
}

// LoadConfig loads configuration from a YAML file.
// If the file doesn't exist, returns default config.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil // Use defaults if file doesn't exist
		}
		return config, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return DefaultConfig(), err
	}

	return config, nil
}

// Validate rejects settings that cannot work together.
func (c *Config) Validate() error {
	g := c.Generator
	if g.Width < 3 || g.Height < 3 {
		return fmt.Errorf("%w: generator size %dx%d is below 3x3", ErrInvalid, g.Width, g.Height)
	}
	if _, err := pathing.ParseAlgorithm(g.PathAlgorithm); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if g.ClearSearchLimit < 0 {
		return fmt.Errorf("%w: clear_search_limit must not be negative", ErrInvalid)
	}
	if err := g.Params.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	if c.Store.Enabled {
		switch store.DialectType(c.Store.Driver) {
		case store.DialectSQLite:
			if c.Store.SQLitePath == "" {
				return fmt.Errorf("%w: store.sqlite_path is required for sqlite", ErrInvalid)
			}
		case store.DialectPostgres:
			if c.Store.Postgres.Host == "" || c.Store.Postgres.Database == "" {
				return fmt.Errorf("%w: store.postgres needs host and database", ErrInvalid)
			}
		default:
			return fmt.Errorf("%w: unknown store driver %q", ErrInvalid, c.Store.Driver)
		}
	}

	s := c.Server
	if s.Connections.MaxPerIP < 0 || s.Connections.MaxTotal < 0 {
		return fmt.Errorf("%w: connection limits must not be negative", ErrInvalid)
	}
	if s.MaxWidth < g.Width || s.MaxHeight < g.Height {
		return fmt.Errorf("%w: server size cap %dx%d is below the default size %dx%d",
			ErrInvalid, s.MaxWidth, s.MaxHeight, g.Width, g.Height)
	}
	if s.WebSocket.MaxMessageSize < 0 {
		return fmt.Errorf("%w: websocket.max_message_size must not be negative", ErrInvalid)
	}
	return nil
}

// Factory returns the entity tables to populate layouts with, or nil when
// entities are disabled.
func (e EntitiesConfig) Factory() (*entity.Factory, error) {
	if e.Disabled {
		return nil, nil
	}
	if e.TablesFile == "" {
		return entity.DefaultFactory(), nil
	}
	return entity.LoadFactoryFromYAML(e.TablesFile)
}

// NewGenerator builds a generator with the configured constants and fresh
// pathing collaborators. ents may be nil.
func (g GeneratorConfig) NewGenerator(seed int64, width, height int, ents *entity.Factory) (*dungeon.Generator, error) {
	algo, err := pathing.ParseAlgorithm(g.PathAlgorithm)
	if err != nil {
		return nil, err
	}
	opts := dungeon.Options{
		Pathfinder: pathing.NewPathfinder(algo),
		Finder:     pathing.NewClearSampler(g.ClearSearchLimit),
	}
	// A nil *Factory must not become a non-nil interface.
	if ents != nil {
		opts.Entities = ents
	}
	return dungeon.NewGenerator(seed, width, height, g.Params, opts)
}

// Fingerprint identifies everything besides seed and size that shapes a
// layout: the path algorithm, the clear-cell search, every generator
// constant and the entity tables. Stored layouts are keyed by it. The
// default map size is left out since requests always name one.
func (g GeneratorConfig) Fingerprint(ents *entity.Factory) (string, error) {
	profile := struct {
		PathAlgorithm    string          `yaml:"path_algorithm"`
		ClearSearchLimit int             `yaml:"clear_search_limit"`
		Params           dungeon.Params  `yaml:"params"`
		Entities         *entity.Factory `yaml:"entities"`
	}{g.PathAlgorithm, g.ClearSearchLimit, g.Params, ents}

	data, err := yaml.Marshal(profile)
	if err != nil {
		return "", fmt.Errorf("failed to encode generator profile: %w", err)
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:8]), nil
}

// IsOriginAllowed checks if the given origin is allowed based on the config.
// Returns true if:
// - AllowedOrigins contains "*" (allow all)
// - AllowedOrigins contains the exact origin
// - AllowedOrigins is empty and origin matches the request host (same-origin)
func (c *WebSocketConfig) IsOriginAllowed(origin, requestHost string) bool {
	// If no origins configured, enforce same-origin policy
	if len(c.AllowedOrigins) == 0 {
		return isSameOrigin(origin, requestHost)
	}

	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	return false
}

// isSameOrigin checks if the origin matches the request host (same-origin policy).
func isSameOrigin(origin, requestHost string) bool {
	if origin == "" {
		return true // No origin header means same-origin (e.g., non-browser client)
	}

	// Extract host from origin URL (e.g., "http://localhost:3000" -> "localhost:3000")
	originHost := origin
	if idx := strings.Index(origin, "://"); idx != -1 {
		originHost = origin[idx+3:]
	}
	originHost = strings.TrimSuffix(originHost, "/")

	return originHost == requestHost
}
