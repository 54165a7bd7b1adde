package config

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/kobex777/anymaps/pkg/cache"
	"github.com/kobex777/anymaps/pkg/canvas"
	errs "github.com/kobex777/anymaps/pkg/errors"
	"github.com/kobex777/anymaps/pkg/generate"
	"github.com/kobex777/anymaps/pkg/layout"
	"github.com/kobex777/anymaps/pkg/server"
	"github.com/kobex777/anymaps/pkg/store"
	"github.com/kobex777/anymaps/pkg/store/mongostore"
	"github.com/kobex777/anymaps/pkg/store/redisstore"
)

// LayoutOptions returns the layout settings.
func (c *Config) LayoutOptions(logger *log.Logger) layout.Options {
	return layout.Options{
		Direction:    layout.Direction(c.Layout.Direction),
		NodeSpacing:  c.Layout.NodeSpacing,
		LayerSpacing: c.Layout.LayerSpacing,
		Logger:       logger,
	}
}

// SessionOptions returns the canvas session settings.
func (c *Config) SessionOptions(logger *log.Logger) canvas.Options {
	return canvas.Options{
		GenerateTimeout: c.Generator.GenerateTimeout.Std(),
		EnhanceTimeout:  c.Generator.EnhanceTimeout.Std(),
		Layout:          c.LayoutOptions(logger),
		Owner:           c.Owner,
		Logger:          logger,
	}
}

// ServerOptions returns the settings of `anymaps serve`.
func (c *Config) ServerOptions(logger *log.Logger) server.Options {
	return server.Options{
		Addr:            c.Server.Addr,
		Session:         c.SessionOptions(logger),
		CORSOrigins:     c.Server.CORSOrigins,
		ShutdownTimeout: c.Server.ShutdownTimeout.Std(),
		Logger:          logger,
	}
}

// Cache opens the generation response cache, or a null cache when caching
// is disabled.
func (c *Config) Cache() (cache.Cache, error) {
	if c.Generator.NoCache {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(c.Generator.CacheDir)
}

// OpenGenerator returns the offline generator or an HTTP client for the
// generation service.
func (c *Config) OpenGenerator(logger *log.Logger) (generate.Generator, error) {
	if c.Generator.Offline {
		return generate.NewOffline(), nil
	}
	rc, err := c.Cache()
	if err != nil {
		return nil, err
	}
	return generate.NewClient(generate.ClientOptions{
		BaseURL:         c.Generator.BaseURL,
		GenerateTimeout: c.Generator.GenerateTimeout.Std(),
		EnhanceTimeout:  c.Generator.EnhanceTimeout.Std(),
		Attempts:        c.Generator.Attempts,
		Cache:           rc,
		CacheTTL:        c.Generator.CacheTTL.Std(),
		Logger:          logger,
	})
}

// OpenStore connects to the configured persistence backend.
func (c *Config) OpenStore(ctx context.Context) (store.Store, error) {
	switch c.Store.Backend {
	case BackendFile, "":
		return store.NewFileStore(c.Store.Dir)
	case BackendMemory:
		return store.NewMemoryStore(), nil
	case BackendRedis:
		return redisstore.New(ctx, redisstore.Config{
			Addr:     c.Store.RedisAddr,
			Password: c.Store.RedisPassword,
			DB:       c.Store.RedisDB,
			Prefix:   c.Store.RedisPrefix,
		})
	case BackendMongo:
		return mongostore.New(ctx, mongostore.Config{
			URI:      c.Store.MongoURI,
			Database: c.Store.MongoDatabase,
		})
	default:
		return nil, errs.New(errs.ErrCodeInvalidConfig, "unknown store backend %q", c.Store.Backend)
	}
}
