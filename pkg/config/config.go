// Package config loads Stormbolt settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/stormbolt/config.toml (falling back to
// ~/.config/stormbolt/config.toml). A missing file is not an error: every
// setting has a default, and a file only needs the keys it overrides.
//
//	[generator]
//	branch_chance = 0.05
//
//	[style]
//	glow_color = "#ffd9a8"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/stormbolt/pkg/bolt"
	"github.com/matzehuels/stormbolt/pkg/cache"
	apperr "github.com/matzehuels/stormbolt/pkg/errors"
	"github.com/matzehuels/stormbolt/pkg/render"
)

const appName = "stormbolt"

// Duration is a time.Duration written as a string such as "30s" or "168h".
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Config is the full settings tree.
type Config struct {
	Generator bolt.Params  `toml:"generator"`
	Style     render.Style `toml:"style"`
	Cache     CacheConfig  `toml:"cache"`
	Server    ServerConfig `toml:"server"`
}

// CacheConfig selects the artifact cache backend.
type CacheConfig struct {
	Backend         string   `toml:"backend"`
	Dir             string   `toml:"dir"`
	TTL             Duration `toml:"ttl"`
	Prefix          string   `toml:"prefix"`
	RedisAddr       string   `toml:"redis_addr"`
	RedisPassword   string   `toml:"redis_password"`
	RedisDB         int      `toml:"redis_db"`
	MongoURI        string   `toml:"mongo_uri"`
	MongoDatabase   string   `toml:"mongo_database"`
	MongoCollection string   `toml:"mongo_collection"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string   `toml:"addr"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
}

var backends = []string{
	string(cache.BackendNone),
	string(cache.BackendFile),
	string(cache.BackendRedis),
	string(cache.BackendMongo),
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Generator: bolt.DefaultParams(),
		Style:     render.DefaultStyle(),
		Cache: CacheConfig{
			Backend:         string(cache.BackendFile),
			TTL:             Duration{cache.DefaultTTL},
			RedisAddr:       "localhost:6379",
			MongoURI:        "mongodb://localhost:27017",
			MongoDatabase:   appName,
			MongoCollection: "artifacts",
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  Duration{15 * time.Second},
			WriteTimeout: Duration{60 * time.Second},
		},
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Generator.Validate(); err != nil {
		return apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "[generator]")
	}
	if err := c.Style.Validate(); err != nil {
		return apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "[style]")
	}
	if !slices.Contains(backends, c.Cache.Backend) {
		return apperr.New(apperr.ErrCodeInvalidConfig, "[cache] unknown backend %q (valid: %s)",
			c.Cache.Backend, strings.Join(backends, ", "))
	}
	if c.Cache.Backend == string(cache.BackendMongo) {
		if err := apperr.ValidateMongoURI(c.Cache.MongoURI); err != nil {
			return err
		}
	}
	if c.Cache.TTL.Duration < 0 {
		return apperr.New(apperr.ErrCodeInvalidConfig, "[cache] ttl must not be negative")
	}
	if c.Server.Addr == "" {
		return apperr.New(apperr.ErrCodeInvalidConfig, "[server] addr cannot be empty")
	}
	return nil
}

// CacheOptions converts the cache section into cache.Options. An empty dir
// falls back to defaultDir.
func (c Config) CacheOptions(defaultDir string) cache.Options {
	dir := c.Cache.Dir
	if dir == "" {
		dir = defaultDir
	}
	return cache.Options{
		Backend: cache.Backend(c.Cache.Backend),
		Dir:     dir,
		Redis: cache.RedisConfig{
			Addr:     c.Cache.RedisAddr,
			Password: c.Cache.RedisPassword,
			DB:       c.Cache.RedisDB,
			Prefix:   c.Cache.Prefix,
		},
		Mongo: cache.MongoConfig{
			URI:        c.Cache.MongoURI,
			Database:   c.Cache.MongoDatabase,
			Collection: c.Cache.MongoCollection,
		},
	}
}

// DefaultPath returns the config file location using the XDG standard.
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads path over the defaults. An empty path means DefaultPath.
// A missing file yields the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, apperr.New(apperr.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Encode writes cfg as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Write saves cfg to path, creating parent directories. It refuses to
// overwrite an existing file unless force is set.
func Write(path string, cfg Config, force bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		return err
	}
	if err := cfg.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
