// Package config loads the folio configuration.
//
// Values are layered, later sources winning:
//
//  1. built-in defaults ([Default])
//  2. a TOML file (folio.toml in the working directory, or an explicit path)
//  3. FOLIO_* environment variables, including those read from a .env file
//
// Command-line flags are applied on top by the CLI. [Config.Validate]
// reports problems as coded errors from pkg/errors.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jcolasacco/folio/pkg/cache"
	"github.com/jcolasacco/folio/pkg/errors"
	"github.com/jcolasacco/folio/pkg/gallery"
	"github.com/jcolasacco/folio/pkg/gallery/live"
	"github.com/jcolasacco/folio/pkg/gallery/probe"
	"github.com/jcolasacco/folio/pkg/gallery/viewport"
	"github.com/jcolasacco/folio/pkg/media"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "folio.toml"

// DotEnvFile is loaded into the environment when present.
const DotEnvFile = ".env"

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "FOLIO_"

// Config is the complete folio configuration.
type Config struct {
	Server  Server  `toml:"server"`
	Gallery Gallery `toml:"gallery"`
	Thumbs  Thumbs  `toml:"thumbs"`
	Cache   Cache   `toml:"cache"`
}

// Server configures the HTTP server.
type Server struct {
	Addr   string `toml:"addr"`
	Public string `toml:"public"`
	// Content is an optional YAML file with projects and Spotify embeds.
	Content string `toml:"content"`
	// Remote allows absolute http(s) image URLs to be probed.
	Remote bool `toml:"remote"`
}

// Gallery configures layout and resolution of the photo grid.
type Gallery struct {
	TargetRowHeight float64 `toml:"target_row_height"`
	Gap             float64 `toml:"gap"`
	TopOffset       float64 `toml:"top_offset"`
	Margin          float64 `toml:"margin"`
	Concurrency     int     `toml:"concurrency"`
	// Order is "desc", "asc" or "none".
	Order string `toml:"order"`
}

// Thumbs configures offline thumbnail generation.
type Thumbs struct {
	Width   int `toml:"width"`
	Workers int `toml:"workers"`
}

// Cache selects the metadata cache backend.
type Cache struct {
	Backend string `toml:"backend"`
	// Dir is the file backend's directory. Empty uses the user cache dir.
	Dir             string `toml:"dir"`
	RedisAddr       string `toml:"redis_addr"`
	RedisPassword   string `toml:"redis_password"`
	RedisDB         int    `toml:"redis_db"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: Server{
			Addr:   ":3000",
			Public: "public",
		},
		Gallery: Gallery{
			TargetRowHeight: gallery.DefaultTargetRowHeight,
			Gap:             gallery.DefaultGap,
			TopOffset:       gallery.DefaultTopOffset,
			Margin:          viewport.DefaultMargin,
			Concurrency:     probe.DefaultConcurrency,
			Order:           "desc",
		},
		Thumbs: Thumbs{
			Width:   media.DefaultThumbWidth,
			Workers: 4,
		},
		Cache: Cache{
			Backend:         cache.BackendFile,
			MongoDatabase:   "folio",
			MongoCollection: "cache",
		},
	}
}

// Load builds the configuration from defaults, the TOML file at path and
// the environment. An empty path reads DefaultFile if it exists; an explicit
// path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		if err := cfg.decodeFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := godotenv.Load(DotEnvFile); err != nil && !os.IsNotExist(err) {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", DotEnvFile)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidConfig, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// lookupFunc matches os.LookupEnv.
type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	e := envReader{lookup: lookup}

	e.str("ADDR", &c.Server.Addr)
	e.str("PUBLIC", &c.Server.Public)
	e.str("CONTENT", &c.Server.Content)
	e.bool("REMOTE", &c.Server.Remote)

	e.float("TARGET_ROW_HEIGHT", &c.Gallery.TargetRowHeight)
	e.float("GAP", &c.Gallery.Gap)
	e.float("TOP_OFFSET", &c.Gallery.TopOffset)
	e.float("MARGIN", &c.Gallery.Margin)
	e.int("CONCURRENCY", &c.Gallery.Concurrency)
	e.str("ORDER", &c.Gallery.Order)

	e.int("THUMB_WIDTH", &c.Thumbs.Width)
	e.int("THUMB_WORKERS", &c.Thumbs.Workers)

	e.str("CACHE_BACKEND", &c.Cache.Backend)
	e.str("CACHE_DIR", &c.Cache.Dir)
	e.str("REDIS_ADDR", &c.Cache.RedisAddr)
	e.str("REDIS_PASSWORD", &c.Cache.RedisPassword)
	e.int("REDIS_DB", &c.Cache.RedisDB)
	e.str("MONGO_URI", &c.Cache.MongoURI)
	e.str("MONGO_DATABASE", &c.Cache.MongoDatabase)
	e.str("MONGO_COLLECTION", &c.Cache.MongoCollection)

	return e.err
}

// envReader overlays FOLIO_* variables and keeps the first parse error.
type envReader struct {
	lookup lookupFunc
	err    error
}

func (e *envReader) get(key string) (string, bool) {
	if e.err != nil {
		return "", false
	}
	v, ok := e.lookup(EnvPrefix + key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (e *envReader) fail(key, v string, err error) {
	e.err = errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s%s=%q", EnvPrefix, key, v)
}

func (e *envReader) str(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e *envReader) int(key string, dst *int) {
	if v, ok := e.get(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			e.fail(key, v, err)
			return
		}
		*dst = n
	}
}

func (e *envReader) float(key string, dst *float64) {
	if v, ok := e.get(key); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			e.fail(key, v, err)
			return
		}
		*dst = f
	}
}

func (e *envReader) bool(key string, dst *bool) {
	if v, ok := e.get(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.fail(key, v, err)
			return
		}
		*dst = b
	}
}

// Validate checks the configuration for values the server cannot run with.
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server.addr is required")
	}
	if c.Server.Public == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server.public is required")
	}
	if err := c.GalleryOptions().Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "gallery")
	}
	if c.Gallery.Margin < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "gallery.margin must not be negative: %v", c.Gallery.Margin)
	}
	if c.Gallery.Concurrency < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "gallery.concurrency must not be negative: %d", c.Gallery.Concurrency)
	}
	if _, err := probe.ParseOrder(c.Gallery.Order); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "gallery.order")
	}
	if c.Thumbs.Width <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "thumbs.width must be positive: %d", c.Thumbs.Width)
	}
	if c.Thumbs.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "thumbs.workers must not be negative: %d", c.Thumbs.Workers)
	}

	switch c.Cache.Backend {
	case "", cache.BackendFile, cache.BackendNull:
	case cache.BackendRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
		}
	case cache.BackendMongo:
		if c.Cache.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.mongo_uri is required for the mongo backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	return nil
}

// GalleryOptions returns the layout options with an unknown width.
func (c Config) GalleryOptions() gallery.Options {
	return gallery.Options{
		TargetRowHeight: c.Gallery.TargetRowHeight,
		Gap:             c.Gallery.Gap,
		TopOffset:       c.Gallery.TopOffset,
	}
}

// LiveConfig returns the configuration of a live gallery. dater supplies
// capture times for refs that carry none; it may be nil.
func (c Config) LiveConfig(dater probe.Dater) live.Config {
	order, _ := probe.ParseOrder(c.Gallery.Order)
	return live.Config{
		Layout: c.GalleryOptions(),
		Margin: c.Gallery.Margin,
		Probe: probe.Options{
			Concurrency: c.Gallery.Concurrency,
			Dater:       dater,
			Order:       order,
		},
	}
}

// CacheOptions returns the options for cache.Open. dir is used when the
// file backend has no directory configured.
func (c Config) CacheOptions(dir string) cache.Options {
	if c.Cache.Dir != "" {
		dir = c.Cache.Dir
	}
	return cache.Options{
		Backend: c.Cache.Backend,
		Dir:     dir,
		Redis: cache.RedisConfig{
			Addr:     c.Cache.RedisAddr,
			Password: c.Cache.RedisPassword,
			DB:       c.Cache.RedisDB,
		},
		Mongo: cache.MongoConfig{
			URI:        c.Cache.MongoURI,
			Database:   c.Cache.MongoDatabase,
			Collection: c.Cache.MongoCollection,
		},
	}
}

// CacheKeyer returns the key scheme for the configured backend. Shared
// backends prefix every key with the absolute public directory so several
// sites can use one Redis or MongoDB instance.
func (c Config) CacheKeyer() cache.Keyer {
	keyer := cache.NewDefaultKeyer()
	switch c.Cache.Backend {
	case cache.BackendRedis, cache.BackendMongo:
		public, err := filepath.Abs(c.Server.Public)
		if err != nil {
			public = c.Server.Public
		}
		return cache.NewScopedKeyer(keyer, "folio:"+public+":")
	}
	return keyer
}
