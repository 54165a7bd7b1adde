package config

import (
	"os"
	"strconv"
	"time"

	errs "github.com/kobex777/anymaps/pkg/errors"
)

// EnvPrefix starts every environment override.
const EnvPrefix = "ANYMAPS_"

type envVar struct {
	name  string
	apply func(c *Config, v string) error
}

func setString(dst func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*dst(c) = v
		return nil
	}
}

func setBool(dst func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*dst(c) = b
		return nil
	}
}

func setInt(dst func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*dst(c) = n
		return nil
	}
}

func setDuration(dst func(*Config) *Duration) func(*Config, string) error {
	return func(c *Config, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*dst(c) = Duration(d)
		return nil
	}
}

func setFloat(dst func(*Config) *float64) func(*Config, string) error {
	return func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*dst(c) = f
		return nil
	}
}

// envVars lists every supported override, without the prefix.
var envVars = []envVar{
	{"OWNER", setString(func(c *Config) *string { return &c.Owner })},

	{"GENERATOR_URL", setString(func(c *Config) *string { return &c.Generator.BaseURL })},
	{"OFFLINE", setBool(func(c *Config) *bool { return &c.Generator.Offline })},
	{"GENERATE_TIMEOUT", setDuration(func(c *Config) *Duration { return &c.Generator.GenerateTimeout })},
	{"ENHANCE_TIMEOUT", setDuration(func(c *Config) *Duration { return &c.Generator.EnhanceTimeout })},
	{"ATTEMPTS", setInt(func(c *Config) *int { return &c.Generator.Attempts })},
	{"CACHE_TTL", setDuration(func(c *Config) *Duration { return &c.Generator.CacheTTL })},
	{"NO_CACHE", setBool(func(c *Config) *bool { return &c.Generator.NoCache })},
	{"CACHE_DIR", setString(func(c *Config) *string { return &c.Generator.CacheDir })},

	{"STORE", setString(func(c *Config) *string { return &c.Store.Backend })},
	{"STORE_DIR", setString(func(c *Config) *string { return &c.Store.Dir })},
	{"REDIS_ADDR", setString(func(c *Config) *string { return &c.Store.RedisAddr })},
	{"REDIS_PASSWORD", setString(func(c *Config) *string { return &c.Store.RedisPassword })},
	{"REDIS_DB", setInt(func(c *Config) *int { return &c.Store.RedisDB })},
	{"MONGO_URI", setString(func(c *Config) *string { return &c.Store.MongoURI })},
	{"MONGO_DATABASE", setString(func(c *Config) *string { return &c.Store.MongoDatabase })},

	{"LAYOUT_DIRECTION", setString(func(c *Config) *string { return &c.Layout.Direction })},
	{"NODE_SPACING", setFloat(func(c *Config) *float64 { return &c.Layout.NodeSpacing })},
	{"LAYER_SPACING", setFloat(func(c *Config) *float64 { return &c.Layout.LayerSpacing })},

	{"SERVER_ADDR", setString(func(c *Config) *string { return &c.Server.Addr })},
}

// EnvNames returns the names of every supported environment variable.
func EnvNames() []string {
	names := make([]string, len(envVars))
	for i, v := range envVars {
		names[i] = EnvPrefix + v.name
	}
	return names
}

// ApplyEnv overlays ANYMAPS_* environment variables on c.
func ApplyEnv(c *Config) error {
	return applyEnv(c, os.LookupEnv)
}

func applyEnv(c *Config, lookup func(string) (string, bool)) error {
	for _, v := range envVars {
		val, ok := lookup(EnvPrefix + v.name)
		if !ok || val == "" {
			continue
		}
		if err := v.apply(c, val); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidConfig, err, "%s%s", EnvPrefix, v.name)
		}
	}
	return nil
}
