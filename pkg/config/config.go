// Package config loads AnyMaps settings.
//
// Settings come from, in increasing priority:
//
//  1. built-in defaults ([Default])
//  2. a TOML or YAML file, by default $XDG_CONFIG_HOME/anymaps/config.toml
//  3. ANYMAPS_* environment variables ([ApplyEnv])
//
// The merged result is validated with go-playground/validator tags.
//
//	cfg, err := config.Load("")
//	st, err := cfg.OpenStore(ctx)
//	gen, err := cfg.OpenGenerator(logger)
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	errs "github.com/kobex777/anymaps/pkg/errors"
	"github.com/kobex777/anymaps/pkg/generate"
	"github.com/kobex777/anymaps/pkg/layout"
)

// Store backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// DefaultServerAddr is where `anymaps serve` listens.
const DefaultServerAddr = "127.0.0.1:8080"

// Duration is a time.Duration written as a string such as "90s" in files.
type Duration time.Duration

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the duration as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// =============================================================================
// Config
// =============================================================================

// Config is the complete AnyMaps configuration.
type Config struct {
	// Owner is recorded on maps created locally.
	Owner string `toml:"owner" yaml:"owner" json:"owner" validate:"required"`

	Generator Generator `toml:"generator" yaml:"generator" json:"generator"`
	Store     Store     `toml:"store" yaml:"store" json:"store"`
	Layout    Layout    `toml:"layout" yaml:"layout" json:"layout"`
	Server    Server    `toml:"server" yaml:"server" json:"server"`

	// Source is the file the configuration was read from, if any.
	Source string `toml:"-" yaml:"-" json:"-"`
}

// Generator configures the generation service client.
type Generator struct {
	BaseURL         string   `toml:"base_url" yaml:"base_url" json:"base_url" validate:"required,url"`
	Offline         bool     `toml:"offline" yaml:"offline" json:"offline"`
	GenerateTimeout Duration `toml:"generate_timeout" yaml:"generate_timeout" json:"generate_timeout" validate:"gte=0"`
	EnhanceTimeout  Duration `toml:"enhance_timeout" yaml:"enhance_timeout" json:"enhance_timeout" validate:"gte=0"`
	Attempts        int      `toml:"attempts" yaml:"attempts" json:"attempts" validate:"gte=0,lte=10"`
	CacheTTL        Duration `toml:"cache_ttl" yaml:"cache_ttl" json:"cache_ttl" validate:"gte=0"`
	NoCache         bool     `toml:"no_cache" yaml:"no_cache" json:"no_cache"`
	CacheDir        string   `toml:"cache_dir" yaml:"cache_dir" json:"cache_dir"`
}

// Store selects and configures the persistence backend.
type Store struct {
	Backend       string `toml:"backend" yaml:"backend" json:"backend" validate:"oneof=file memory redis mongo"`
	Dir           string `toml:"dir" yaml:"dir" json:"dir"`
	RedisAddr     string `toml:"redis_addr" yaml:"redis_addr" json:"redis_addr" validate:"required_if=Backend redis"`
	RedisPassword string `toml:"redis_password" yaml:"redis_password" json:"redis_password"`
	RedisDB       int    `toml:"redis_db" yaml:"redis_db" json:"redis_db" validate:"gte=0"`
	RedisPrefix   string `toml:"redis_prefix" yaml:"redis_prefix" json:"redis_prefix"`
	MongoURI      string `toml:"mongo_uri" yaml:"mongo_uri" json:"mongo_uri" validate:"required_if=Backend mongo"`
	MongoDatabase string `toml:"mongo_database" yaml:"mongo_database" json:"mongo_database"`
}

// Layout configures the tree layout.
type Layout struct {
	Direction    string  `toml:"direction" yaml:"direction" json:"direction" validate:"oneof=right down"`
	NodeSpacing  float64 `toml:"node_spacing" yaml:"node_spacing" json:"node_spacing" validate:"gte=0"`
	LayerSpacing float64 `toml:"layer_spacing" yaml:"layer_spacing" json:"layer_spacing" validate:"gte=0"`
}

// Server configures `anymaps serve`.
type Server struct {
	Addr            string   `toml:"addr" yaml:"addr" json:"addr" validate:"required,hostname_port"`
	ShutdownTimeout Duration `toml:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout" validate:"gte=0"`
	CORSOrigins     []string `toml:"cors_origins" yaml:"cors_origins" json:"cors_origins"`
}

// Default returns the built-in configuration.
func Default() *Config {
	owner := os.Getenv("USER")
	if owner == "" {
		owner = "local"
	}
	return &Config{
		Owner: owner,
		Generator: Generator{
			BaseURL:         generate.DefaultBaseURL,
			GenerateTimeout: Duration(generate.DefaultGenerateTimeout),
			EnhanceTimeout:  Duration(generate.DefaultEnhanceTimeout),
			Attempts:        generate.DefaultAttempts,
			CacheTTL:        Duration(generate.DefaultCacheTTL),
		},
		Store: Store{
			Backend:       BackendFile,
			RedisAddr:     "localhost:6379",
			RedisPrefix:   "anymaps",
			MongoDatabase: "anymaps",
		},
		Layout: Layout{
			Direction:    string(layout.DefaultDirection),
			NodeSpacing:  layout.DefaultNodeSpacing,
			LayerSpacing: layout.DefaultLayerSpacing,
		},
		Server: Server{
			Addr:            DefaultServerAddr,
			ShutdownTimeout: Duration(10 * time.Second),
		},
	}
}

// Validate checks the configuration. Errors are INVALID_CONFIG coded.
func (c *Config) Validate() error {
	if err := errs.ValidateStruct(c); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "invalid configuration")
	}
	return nil
}

// =============================================================================
// Loading
// =============================================================================

// DefaultPath returns $XDG_CONFIG_HOME/anymaps/config.toml, falling back to
// ~/.config/anymaps/config.toml.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".anymaps", "config.toml")
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "anymaps", "config.toml")
}

// Load reads the configuration. An empty path reads [DefaultPath] if it
// exists; an explicit path must exist. Environment variables are applied on
// top and the result is validated.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := Decode(f, formatOf(path), cfg); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "read %s", path)
		}
		cfg.Source = path
	case explicit || !os.IsNotExist(err):
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "open config")
	}

	if err := applyEnv(cfg, lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// File formats.
const (
	FormatTOML = "toml"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatTOML
	}
}

// Decode reads a configuration file in the given format over cfg. Keys
// absent from the file keep their current values.
func Decode(r io.Reader, format string, cfg *Config) error {
	switch format {
	case FormatTOML:
		md, err := toml.NewDecoder(r).Decode(cfg)
		if err != nil {
			return err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("unknown key %q", undecoded[0].String())
		}
		return nil
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && err != io.EOF {
			return err
		}
		return nil
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		return dec.Decode(cfg)
	default:
		return fmt.Errorf("unsupported config format %q", format)
	}
}

// Encode writes cfg in the given format.
func Encode(w io.Writer, format string, cfg *Config) error {
	switch format {
	case FormatTOML:
		return toml.NewEncoder(w).Encode(cfg)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	default:
		return fmt.Errorf("unsupported config format %q", format)
	}
}

// WriteFile writes cfg to path in the format implied by its extension,
// creating parent directories.
func WriteFile(path string, cfg *Config) error {
	var buf bytes.Buffer
	if err := Encode(&buf, formatOf(path), cfg); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o600)
}
