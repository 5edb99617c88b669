// Package config loads pipedag settings from a TOML file.
//
// A missing file is not an error: every setting has a default, so pipedag
// runs without configuration. When a file is found, keys it does not
// recognize are rejected so that typos surface instead of being ignored.
//
// # File Format
//
//	[layout]
//	engine = "graphviz"      # graphviz | layered
//	direction = "LR"         # LR | TB | RL | BT
//	node_width = 172
//	node_height = 36
//	node_sep = 50
//	rank_sep = 50
//
//	[cache]
//	backend = "file"         # none | file | redis
//	dir = "~/.cache/pipedag"
//	redis_addr = "localhost:6379"
//	prefix = "pipedag:"
//	ttl = "168h"
//
//	[server]
//	addr = ":8080"
//	read_timeout = "10s"
//	write_timeout = "30s"
//	max_body_bytes = 1048576
//
//	[log]
//	level = "info"
//
// # Lookup
//
// [Locate] picks the first of: an explicit path, $PIPEDAG_CONFIG,
// $XDG_CONFIG_HOME/pipedag/config.toml, ~/.config/pipedag/config.toml.
package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/pipedag/pkg/errors"
	"github.com/matzehuels/pipedag/pkg/layout"
)

const (
	appName = "pipedag"

	// EnvConfig names the environment variable holding a config path.
	EnvConfig = "PIPEDAG_CONFIG"
)

// Cache backends.
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Config is the full settings tree.
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
	Log    LogConfig    `toml:"log"`
}

// LayoutConfig holds the defaults for layout runs.
type LayoutConfig struct {
	Engine     string  `toml:"engine"`
	Direction  string  `toml:"direction"`
	NodeWidth  float64 `toml:"node_width"`
	NodeHeight float64 `toml:"node_height"`
	NodeSep    float64 `toml:"node_sep"`
	RankSep    float64 `toml:"rank_sep"`
}

// CacheConfig selects and configures the layout cache.
type CacheConfig struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	Prefix        string   `toml:"prefix"`
	TTL           Duration `toml:"ttl"`
}

// ServerConfig configures `pipedag serve`.
type ServerConfig struct {
	Addr         string   `toml:"addr"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
	MaxBodyBytes int64    `toml:"max_body_bytes"`
}

// LogConfig sets the default log level. --verbose overrides it.
type LogConfig struct {
	Level string `toml:"level"`
}

// Duration is a time.Duration written as a string such as "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Layout: LayoutConfig{
			Engine:     layout.DefaultEngine,
			Direction:  string(layout.DefaultDirection),
			NodeWidth:  layout.DefaultNodeWidth,
			NodeHeight: layout.DefaultNodeHeight,
			NodeSep:    layout.DefaultNodeSep,
			RankSep:    layout.DefaultRankSep,
		},
		Cache: CacheConfig{
			Backend: BackendFile,
			Prefix:  appName + ":",
			TTL:     Duration{7 * 24 * time.Hour},
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  Duration{10 * time.Second},
			WriteTimeout: Duration{30 * time.Second},
			MaxBodyBytes: 1 << 20,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Parse decodes TOML on top of the defaults and validates the result.
func Parse(data string) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "parse config: %v", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads the file at path. An empty path returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Config{}, errors.New(errors.ErrCodeFileNotFound, "config file not found: %s", path)
	}
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	cfg, err := Parse(string(data))
	if err != nil {
		return Config{}, errors.New(errors.GetCode(err), "%s: %s", path, errors.UserMessage(err))
	}
	return cfg, nil
}

// Locate returns the config file to load, or "" when none exists.
// An explicit path or $PIPEDAG_CONFIG is returned even if the file is
// missing so that Load can report it.
func Locate(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	var candidates []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		candidates = append(candidates, filepath.Join(xdg, appName, "config.toml"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", appName, "config.toml"))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Validate checks values that decoding alone cannot.
func (c Config) Validate() error {
	if _, err := layout.ParseDirection(c.Layout.Direction); err != nil {
		return errors.New(errors.ErrCodeInvalidConfig, "layout.direction: %s", errors.UserMessage(err))
	}
	if _, err := layout.LookupEngine(c.Layout.Engine); err != nil {
		return errors.New(errors.ErrCodeInvalidConfig, "layout.engine: %s", errors.UserMessage(err))
	}
	for name, v := range map[string]float64{
		"layout.node_width":  c.Layout.NodeWidth,
		"layout.node_height": c.Layout.NodeHeight,
		"layout.node_sep":    c.Layout.NodeSep,
		"layout.rank_sep":    c.Layout.RankSep,
	} {
		if v <= 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "%s must be positive, got %g", name, v)
		}
	}

	switch c.Cache.Backend {
	case BackendNone, BackendFile:
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
		}
		if c.Cache.Prefix == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.prefix must not be empty for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache.backend %q (want none, file or redis)", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}

	if c.Server.MaxBodyBytes <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.max_body_bytes must be positive")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown log.level %q", c.Log.Level)
	}
	return nil
}

// LayoutOptions converts the [layout] section. Validate must have passed.
func (c Config) LayoutOptions() layout.Options {
	dir, _ := layout.ParseDirection(c.Layout.Direction)
	return layout.Options{
		Direction:  dir,
		Engine:     c.Layout.Engine,
		NodeWidth:  c.Layout.NodeWidth,
		NodeHeight: c.Layout.NodeHeight,
		NodeSep:    c.Layout.NodeSep,
		RankSep:    c.Layout.RankSep,
	}
}

// CacheDir returns cache.dir with a leading ~ expanded, or the XDG cache
// directory (~/.cache/pipedag) when unset.
func (c Config) CacheDir() (string, error) {
	if dir := c.Cache.Dir; dir != "" {
		if dir == "~" || strings.HasPrefix(dir, "~/") {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			return filepath.Join(home, dir[1:]), nil
		}
		return dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
