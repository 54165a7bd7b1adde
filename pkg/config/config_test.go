package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	errs "github.com/kobex777/anymaps/pkg/errors"
	"github.com/kobex777/anymaps/pkg/generate"
	"github.com/kobex777/anymaps/pkg/layout"
	"github.com/kobex777/anymaps/pkg/store"
)

func noEnv(string) (string, bool) { return "", false }

func envOf(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault_Validates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if cfg.Store.Backend != BackendFile {
		t.Errorf("Backend = %q, want %q", cfg.Store.Backend, BackendFile)
	}
	if cfg.Generator.EnhanceTimeout.Std() != generate.DefaultEnhanceTimeout {
		t.Errorf("EnhanceTimeout = %v, want %v", cfg.Generator.EnhanceTimeout.Std(), generate.DefaultEnhanceTimeout)
	}
}

func TestLoad_Files(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{
			name: "TOML",
			file: "config.toml",
			body: `
owner = "ada"

[generator]
offline = true
generate_timeout = "90s"

[store]
backend = "memory"

[layout]
direction = "down"
`,
		},
		{
			name: "YAML",
			file: "config.yaml",
			body: `
owner: ada
generator:
  offline: true
  generate_timeout: 90s
store:
  backend: memory
layout:
  direction: down
`,
		},
		{
			name: "JSON",
			file: "config.json",
			body: `{"owner":"ada","generator":{"base_url":"http://localhost:8000","offline":true,"generate_timeout":"90s"},"store":{"backend":"memory"},"layout":{"direction":"down"}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.body)
			cfg, err := load(path, noEnv)
			if err != nil {
				t.Fatalf("load() error: %v", err)
			}
			if cfg.Owner != "ada" {
				t.Errorf("Owner = %q, want ada", cfg.Owner)
			}
			if !cfg.Generator.Offline {
				t.Error("Offline = false, want true")
			}
			if got := cfg.Generator.GenerateTimeout.Std(); got != 90*time.Second {
				t.Errorf("GenerateTimeout = %v, want 90s", got)
			}
			if cfg.Store.Backend != BackendMemory {
				t.Errorf("Backend = %q, want memory", cfg.Store.Backend)
			}
			if cfg.Layout.Direction != "down" {
				t.Errorf("Direction = %q, want down", cfg.Layout.Direction)
			}
			if cfg.Layout.NodeSpacing != layout.DefaultNodeSpacing {
				t.Errorf("NodeSpacing = %v, want default %v", cfg.Layout.NodeSpacing, layout.DefaultNodeSpacing)
			}
			if cfg.Source != path {
				t.Errorf("Source = %q, want %q", cfg.Source, path)
			}
		})
	}
}

func TestLoad_UnknownKey(t *testing.T) {
	for _, tt := range []struct{ file, body string }{
		{"config.toml", "colour = \"red\"\n"},
		{"config.yaml", "colour: red\n"},
	} {
		path := writeConfig(t, tt.file, tt.body)
		_, err := load(path, noEnv)
		if !errs.Is(err, errs.ErrCodeInvalidConfig) {
			t.Errorf("load(%s) error = %v, want INVALID_CONFIG", tt.file, err)
		}
	}
}

func TestLoad_MissingPath(t *testing.T) {
	_, err := load(filepath.Join(t.TempDir(), "nope.toml"), noEnv)
	if !errs.Is(err, errs.ErrCodeInvalidConfig) {
		t.Errorf("load() error = %v, want INVALID_CONFIG", err)
	}
}

func TestLoad_MissingDefaultIsFine(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cfg, err := load("", noEnv)
	if err != nil {
		t.Fatalf("load() error: %v", err)
	}
	if cfg.Source != "" {
		t.Errorf("Source = %q, want empty", cfg.Source)
	}
}

func TestLoad_Env(t *testing.T) {
	path := writeConfig(t, "config.toml", "[store]\nbackend = \"file\"\n")
	cfg, err := load(path, envOf(map[string]string{
		"ANYMAPS_STORE":            "redis",
		"ANYMAPS_REDIS_ADDR":       "cache:6380",
		"ANYMAPS_REDIS_DB":         "2",
		"ANYMAPS_OFFLINE":          "true",
		"ANYMAPS_ENHANCE_TIMEOUT":  "3m",
		"ANYMAPS_NODE_SPACING":     "42.5",
		"ANYMAPS_GENERATOR_URL":    "",
		"ANYMAPS_LAYOUT_DIRECTION": "down",
	}))
	if err != nil {
		t.Fatalf("load() error: %v", err)
	}
	if cfg.Store.Backend != BackendRedis || cfg.Store.RedisAddr != "cache:6380" || cfg.Store.RedisDB != 2 {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if !cfg.Generator.Offline {
		t.Error("Offline = false, want true")
	}
	if got := cfg.Generator.EnhanceTimeout.Std(); got != 3*time.Minute {
		t.Errorf("EnhanceTimeout = %v, want 3m", got)
	}
	if cfg.Layout.NodeSpacing != 42.5 {
		t.Errorf("NodeSpacing = %v, want 42.5", cfg.Layout.NodeSpacing)
	}
	if cfg.Generator.BaseURL != generate.DefaultBaseURL {
		t.Errorf("BaseURL = %q, empty env value should not override", cfg.Generator.BaseURL)
	}
}

func TestLoad_BadEnv(t *testing.T) {
	_, err := load("", envOf(map[string]string{"ANYMAPS_ATTEMPTS": "many"}))
	if !errs.Is(err, errs.ErrCodeInvalidConfig) {
		t.Fatalf("load() error = %v, want INVALID_CONFIG", err)
	}
	if !strings.Contains(err.Error(), "ANYMAPS_ATTEMPTS") {
		t.Errorf("error %q should name the variable", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"NoOwner", func(c *Config) { c.Owner = "" }},
		{"UnknownBackend", func(c *Config) { c.Store.Backend = "sqlite" }},
		{"RedisWithoutAddr", func(c *Config) { c.Store.Backend = BackendRedis; c.Store.RedisAddr = "" }},
		{"MongoWithoutURI", func(c *Config) { c.Store.Backend = BackendMongo }},
		{"BadDirection", func(c *Config) { c.Layout.Direction = "left" }},
		{"BadURL", func(c *Config) { c.Generator.BaseURL = "not a url" }},
		{"TooManyAttempts", func(c *Config) { c.Generator.Attempts = 50 }},
		{"BadAddr", func(c *Config) { c.Server.Addr = "localhost" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mod(cfg)
			if err := cfg.Validate(); !errs.Is(err, errs.ErrCodeInvalidConfig) {
				t.Errorf("Validate() = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestWriteFile_RoundTrip(t *testing.T) {
	for _, name := range []string{"config.toml", "config.yaml", "config.json"} {
		t.Run(name, func(t *testing.T) {
			want := Default()
			want.Owner = "grace"
			want.Generator.CacheTTL = Duration(2 * time.Hour)
			want.Store.Backend = BackendMemory

			path := filepath.Join(t.TempDir(), "nested", name)
			if err := WriteFile(path, want); err != nil {
				t.Fatalf("WriteFile() error: %v", err)
			}
			got, err := load(path, noEnv)
			if err != nil {
				t.Fatalf("load() error: %v", err)
			}
			if got.Owner != want.Owner || got.Store.Backend != want.Store.Backend {
				t.Errorf("got %+v", got)
			}
			if got.Generator.CacheTTL != want.Generator.CacheTTL {
				t.Errorf("CacheTTL = %v, want %v", got.Generator.CacheTTL.Std(), want.Generator.CacheTTL.Std())
			}
		})
	}
}

func TestEnvNames(t *testing.T) {
	names := EnvNames()
	if len(names) != len(envVars) {
		t.Fatalf("len = %d, want %d", len(names), len(envVars))
	}
	for _, n := range names {
		if !strings.HasPrefix(n, EnvPrefix) {
			t.Errorf("%q lacks prefix", n)
		}
	}
}

func TestOpenGenerator(t *testing.T) {
	cfg := Default()
	cfg.Generator.Offline = true
	gen, err := cfg.OpenGenerator(nil)
	if err != nil {
		t.Fatalf("OpenGenerator() error: %v", err)
	}
	if _, ok := gen.(*generate.Offline); !ok {
		t.Errorf("OpenGenerator() = %T, want *generate.Offline", gen)
	}

	cfg.Generator.Offline = false
	cfg.Generator.CacheDir = t.TempDir()
	gen, err = cfg.OpenGenerator(nil)
	if err != nil {
		t.Fatalf("OpenGenerator() error: %v", err)
	}
	if _, ok := gen.(*generate.Client); !ok {
		t.Errorf("OpenGenerator() = %T, want *generate.Client", gen)
	}
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	cfg := Default()
	cfg.Store.Backend = BackendMemory
	st, err := cfg.OpenStore(ctx)
	if err != nil {
		t.Fatalf("OpenStore(memory) error: %v", err)
	}
	if _, ok := st.(*store.MemoryStore); !ok {
		t.Errorf("OpenStore(memory) = %T", st)
	}

	cfg.Store.Backend = BackendFile
	cfg.Store.Dir = t.TempDir()
	st, err = cfg.OpenStore(ctx)
	if err != nil {
		t.Fatalf("OpenStore(file) error: %v", err)
	}
	if _, ok := st.(*store.FileStore); !ok {
		t.Errorf("OpenStore(file) = %T", st)
	}

	cfg.Store.Backend = "sqlite"
	if _, err := cfg.OpenStore(ctx); !errs.Is(err, errs.ErrCodeInvalidConfig) {
		t.Errorf("OpenStore(sqlite) error = %v, want INVALID_CONFIG", err)
	}
}

func TestSessionOptions(t *testing.T) {
	cfg := Default()
	cfg.Owner = "ada"
	cfg.Layout.Direction = "down"
	opts := cfg.SessionOptions(nil)
	if opts.Owner != "ada" {
		t.Errorf("Owner = %q, want ada", opts.Owner)
	}
	if opts.Layout.Direction != layout.DirectionDown {
		t.Errorf("Direction = %q, want down", opts.Layout.Direction)
	}
	if opts.EnhanceTimeout != cfg.Generator.EnhanceTimeout.Std() {
		t.Errorf("EnhanceTimeout = %v", opts.EnhanceTimeout)
	}
}

func TestServerOptions(t *testing.T) {
	cfg := Default()
	cfg.Server.Addr = "0.0.0.0:9090"
	cfg.Server.CORSOrigins = []string{"http://localhost:3000"}
	opts := cfg.ServerOptions(nil)
	if opts.Addr != "0.0.0.0:9090" {
		t.Errorf("Addr = %q", opts.Addr)
	}
	if len(opts.CORSOrigins) != 1 || opts.CORSOrigins[0] != "http://localhost:3000" {
		t.Errorf("CORSOrigins = %v", opts.CORSOrigins)
	}
	if opts.Session.Owner != cfg.Owner {
		t.Errorf("Session.Owner = %q, want %q", opts.Session.Owner, cfg.Owner)
	}
}
