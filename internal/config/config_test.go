package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lawnchairsociety/dungeongen/internal/dungeon"
	"github.com/lawnchairsociety/dungeongen/internal/entity"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}

	if cfg.Generator.Width != 80 || cfg.Generator.Height != 46 {
		t.Errorf("default size = %dx%d, want 80x46", cfg.Generator.Width, cfg.Generator.Height)
	}
	if cfg.Generator.Params != dungeon.DefaultParams() {
		t.Error("default generator params differ from dungeon.DefaultParams")
	}
	if cfg.Store.Enabled {
		t.Error("store should be disabled by default")
	}
	if len(cfg.Server.WebSocket.AllowedOrigins) != 0 {
		t.Errorf("expected empty allowed origins by default, got %v", cfg.Server.WebSocket.AllowedOrigins)
	}
	if cfg.Server.WebSocket.MaxMessageSize != 4096 {
		t.Errorf("expected max message size 4096, got %d", cfg.Server.WebSocket.MaxMessageSize)
	}
}

func TestLoadConfig_FileNotExists(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.yaml")

	if err != nil {
		t.Errorf("expected no error for missing file, got %v", err)
	}
	if cfg == nil {
		t.Fatal("expected default config for missing file, got nil")
	}
	if cfg.Server.Listen != ":8080" {
		t.Errorf("expected default listen address, got %q", cfg.Server.Listen)
	}
}

func TestLoadConfig_ValidFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "dungeongen.yaml")

	content := `
generator:
  width: 60
  height: 30
  path_algorithm: jps
  min_rooms: 2
  teleport_chance: 0
entities:
  tables_file: tables.yaml
store:
  enabled: true
  driver: sqlite
  sqlite_path: /tmp/layouts.db
server:
  listen: "127.0.0.1:9000"
  websocket:
    allowed_origins:
      - "https://example.com"
      - "http://localhost:3000"
    max_message_size: 8192
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	g := cfg.Generator
	if g.Width != 60 || g.Height != 30 || g.PathAlgorithm != "jps" {
		t.Errorf("generator = %dx%d %q", g.Width, g.Height, g.PathAlgorithm)
	}
	if g.MinRooms != 2 || g.TeleportChance != 0 {
		t.Errorf("inline params not read: min_rooms %d, teleport_chance %g", g.MinRooms, g.TeleportChance)
	}
	// Keys left out keep their defaults.
	if g.MaxRooms != 12 || g.SanityLimit != 100 {
		t.Errorf("defaults lost: max_rooms %d, sanity_limit %d", g.MaxRooms, g.SanityLimit)
	}

	if cfg.Entities.TablesFile != "tables.yaml" {
		t.Errorf("tables_file = %q", cfg.Entities.TablesFile)
	}
	if !cfg.Store.Enabled || cfg.Store.Driver != "sqlite" || cfg.Store.SQLitePath != "/tmp/layouts.db" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Store.Postgres.Port != 5432 {
		t.Errorf("postgres defaults lost: port %d", cfg.Store.Postgres.Port)
	}

	if cfg.Server.Listen != "127.0.0.1:9000" {
		t.Errorf("listen = %q", cfg.Server.Listen)
	}
	if len(cfg.Server.WebSocket.AllowedOrigins) != 2 {
		t.Errorf("expected 2 allowed origins, got %d", len(cfg.Server.WebSocket.AllowedOrigins))
	}
	if cfg.Server.WebSocket.MaxMessageSize != 8192 {
		t.Errorf("expected max message size 8192, got %d", cfg.Server.WebSocket.MaxMessageSize)
	}
}

func TestLoadConfig_Malformed(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "dungeongen.yaml")
	if err := os.WriteFile(configPath, []byte("generator: [1, 2"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(configPath)
	if err == nil {
		t.Fatal("expected error for malformed YAML")
	}
	if cfg.Generator.Width != 80 {
		t.Errorf("expected defaults on error, got width %d", cfg.Generator.Width)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"tiny map", func(c *Config) { c.Generator.Width = 2 }},
		{"unknown algorithm", func(c *Config) { c.Generator.PathAlgorithm = "dijkstra" }},
		{"negative clear limit", func(c *Config) { c.Generator.ClearSearchLimit = -1 }},
		{"bad params", func(c *Config) { c.Generator.MaxBends = 1 }},
		{"unknown driver", func(c *Config) {
			c.Store.Enabled = true
			c.Store.Driver = "mysql"
		}},
		{"sqlite without path", func(c *Config) {
			c.Store.Enabled = true
			c.Store.SQLitePath = ""
		}},
		{"postgres without host", func(c *Config) {
			c.Store.Enabled = true
			c.Store.Driver = "postgres"
			c.Store.Postgres.Host = ""
		}},
		{"negative connections", func(c *Config) { c.Server.Connections.MaxPerIP = -1 }},
		{"size cap below default", func(c *Config) { c.Server.MaxWidth = 40 }},
		{"negative message size", func(c *Config) { c.Server.WebSocket.MaxMessageSize = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestValidate_DisabledStoreIgnoresDriver(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Store.Driver = "mysql"
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled store should not be validated: %v", err)
	}
}

func TestEntitiesFactory(t *testing.T) {
	f, err := EntitiesConfig{}.Factory()
	if err != nil || f == nil {
		t.Fatalf("default Factory() = %v, %v", f, err)
	}

	f, err = EntitiesConfig{Disabled: true}.Factory()
	if err != nil || f != nil {
		t.Errorf("disabled Factory() = %v, %v, want nil", f, err)
	}

	if _, err := (EntitiesConfig{TablesFile: "/nonexistent/tables.yaml"}).Factory(); err == nil {
		t.Error("expected error for missing tables file")
	}
}

func TestGeneratorConfigNewGenerator(t *testing.T) {
	g := DefaultConfig().Generator

	if _, err := g.NewGenerator(1, 80, 46, nil); err != nil {
		t.Errorf("NewGenerator without entities: %v", err)
	}

	g.PathAlgorithm = "nope"
	if _, err := g.NewGenerator(1, 80, 46, nil); err == nil {
		t.Error("expected error for unknown algorithm")
	}

	g = DefaultConfig().Generator
	if _, err := g.NewGenerator(1, 2, 2, nil); !errors.Is(err, dungeon.ErrInvalidSize) {
		t.Errorf("NewGenerator(2x2) = %v, want ErrInvalidSize", err)
	}
}

func TestIsOriginAllowed_EmptyList_SameOrigin(t *testing.T) {
	cfg := WebSocketConfig{
		AllowedOrigins: []string{},
	}

	if !cfg.IsOriginAllowed("", "localhost:4000") {
		t.Error("expected empty origin to be allowed (same-origin)")
	}
	if !cfg.IsOriginAllowed("http://localhost:4000", "localhost:4000") {
		t.Error("expected matching origin to be allowed (same-origin)")
	}
	if cfg.IsOriginAllowed("http://evil.com", "localhost:4000") {
		t.Error("expected different origin to be rejected (same-origin policy)")
	}
}

func TestIsOriginAllowed_Lists(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"wildcard", []string{"*"}, "http://anything.com", true},
		{"wildcard empty origin", []string{"*"}, "", true},
		{"exact", []string{"https://example.com", "http://localhost:3000"}, "http://localhost:3000", true},
		{"no match", []string{"https://example.com"}, "http://evil.com", false},
		{"partial match", []string{"https://example.com"}, "https://example.com:8080", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := WebSocketConfig{AllowedOrigins: tt.allowed}
			if got := cfg.IsOriginAllowed(tt.origin, "localhost:4000"); got != tt.want {
				t.Errorf("IsOriginAllowed(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}

func TestIsSameOrigin(t *testing.T) {
	tests := []struct {
		origin      string
		requestHost string
		expected    bool
	}{
		{"", "localhost:4000", true},                       // No origin header
		{"http://localhost:4000", "localhost:4000", true},  // HTTP match
		{"https://localhost:4000", "localhost:4000", true}, // HTTPS match
		{"http://localhost:4000/", "localhost:4000", true}, // Trailing slash
		{"http://example.com", "localhost:4000", false},    // Different host
		{"http://localhost:3000", "localhost:4000", false}, // Different port
		{"ws://localhost:4000", "localhost:4000", true},    // WebSocket scheme
	}

	for _, tt := range tests {
		result := isSameOrigin(tt.origin, tt.requestHost)
		if result != tt.expected {
			t.Errorf("isSameOrigin(%q, %q) = %v, want %v",
				tt.origin, tt.requestHost, result, tt.expected)
		}
	}
}

func TestGeneratorFingerprint(t *testing.T) {
	base := DefaultConfig().Generator
	ents := entity.DefaultFactory()

	want, err := base.Fingerprint(ents)
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	if len(want) != 16 {
		t.Errorf("Fingerprint = %q, want 16 hex digits", want)
	}

	fewerMonsters := entity.DefaultFactory()
	fewerMonsters.MonsterTable = fewerMonsters.MonsterTable[:1]

	tests := []struct {
		name   string
		modify func(g *GeneratorConfig)
		ents   *entity.Factory
		same   bool
	}{
		{"unchanged", func(g *GeneratorConfig) {}, ents, true},
		{"default size ignored", func(g *GeneratorConfig) { g.Width, g.Height = 120, 60 }, ents, true},
		{"constant changed", func(g *GeneratorConfig) { g.MaxRooms = 6 }, ents, false},
		{"algorithm changed", func(g *GeneratorConfig) { g.PathAlgorithm = "bfs" }, ents, false},
		{"search limit changed", func(g *GeneratorConfig) { g.ClearSearchLimit = 50 }, ents, false},
		{"tables changed", func(g *GeneratorConfig) {}, fewerMonsters, false},
		{"entities disabled", func(g *GeneratorConfig) {}, nil, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := base
			tc.modify(&g)
			got, err := g.Fingerprint(tc.ents)
			if err != nil {
				t.Fatalf("Fingerprint: %v", err)
			}
			if (got == want) != tc.same {
				t.Errorf("Fingerprint = %q, base %q, want same=%v", got, want, tc.same)
			}
		})
	}
}

func TestShippedConfig(t *testing.T) {
	cfg, err := LoadConfig("../../config/dungeongen.yaml")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("shipped config does not validate: %v", err)
	}
	if cfg.Generator.Params != dungeon.DefaultParams() {
		t.Error("shipped generator constants drift from the defaults")
	}

	cfg.Entities.TablesFile = filepath.Join("../..", cfg.Entities.TablesFile)
	f, err := cfg.Entities.Factory()
	if err != nil {
		t.Fatalf("shipped entity tables: %v", err)
	}
	if len(f.MonsterTable) != 2 || len(f.ItemTable) != 6 || len(f.FurnitureTable) != 4 {
		t.Errorf("shipped tables = %d furniture, %d monsters, %d items",
			len(f.FurnitureTable), len(f.MonsterTable), len(f.ItemTable))
	}
	for i, e := range entity.DefaultFactory().ItemTable {
		if i >= len(f.ItemTable) || f.ItemTable[i] != e {
			t.Errorf("shipped item %d drifts from default %+v", i, e)
		}
	}
}
