package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/pipedag/pkg/errors"
	"github.com/matzehuels/pipedag/pkg/layout"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if diff := cmp.Diff(layout.DefaultOptions(), Default().LayoutOptions()); diff != "" {
		t.Errorf("LayoutOptions() mismatch (-want +got):\n%s", diff)
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse(`
[layout]
engine = "layered"
direction = "tb"
node_width = 200

[cache]
backend = "redis"
redis_addr = "localhost:6379"
ttl = "1h"

[server]
addr = "127.0.0.1:9000"
write_timeout = "5s"

[log]
level = "debug"
`)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	want := Default()
	want.Layout.Engine = "layered"
	want.Layout.Direction = "tb"
	want.Layout.NodeWidth = 200
	want.Cache.Backend = BackendRedis
	want.Cache.RedisAddr = "localhost:6379"
	want.Cache.TTL = Duration{time.Hour}
	want.Server.Addr = "127.0.0.1:9000"
	want.Server.WriteTimeout = Duration{5 * time.Second}
	want.Log.Level = "debug"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}

	opts := cfg.LayoutOptions()
	if opts.Direction != layout.TopToBottom || opts.Engine != layout.EngineLayered {
		t.Errorf("LayoutOptions() = %+v", opts)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"syntax", "[layout\n", "parse config"},
		{"unknown key", "[layout]\nengin = \"layered\"\n", "unknown config keys: layout.engin"},
		{"unknown section", "[metrics]\nenabled = true\n", "unknown config keys"},
		{"bad direction", "[layout]\ndirection = \"diagonal\"\n", "layout.direction"},
		{"bad engine", "[layout]\nengine = \"neato\"\n", "layout.engine"},
		{"zero width", "[layout]\nnode_width = 0\n", "layout.node_width must be positive"},
		{"bad backend", "[cache]\nbackend = \"memcached\"\n", "unknown cache.backend"},
		{"redis without addr", "[cache]\nbackend = \"redis\"\n", "cache.redis_addr is required"},
		{"redis without prefix", "[cache]\nbackend = \"redis\"\nredis_addr = \"localhost:6379\"\nprefix = \"\"\n", "cache.prefix must not be empty"},
		{"bad duration", "[cache]\nttl = \"soon\"\n", "parse config"},
		{"bad level", "[log]\nlevel = \"loud\"\n", "unknown log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Fatalf("Parse() = %v, want INVALID_CONFIG", err)
			}
			if msg := errors.UserMessage(err); !strings.Contains(msg, tt.wantMsg) {
				t.Errorf("message %q does not contain %q", msg, tt.wantMsg)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("Load(\"\") mismatch (-want +got):\n%s", diff)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) = %v, want FILE_NOT_FOUND", err)
	}

	path := filepath.Join(t.TempDir(), "config.toml")
	_ = os.WriteFile(path, []byte("[log]\nlevel = \"warn\"\n"), 0644)
	cfg, err = Load(path)
	if err != nil || cfg.Log.Level != "warn" {
		t.Errorf("Load(file) = %+v, %v", cfg.Log, err)
	}

	_ = os.WriteFile(path, []byte("[log]\nlevle = \"warn\"\n"), 0644)
	_, err = Load(path)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) || !strings.Contains(errors.UserMessage(err), path) {
		t.Errorf("Load(bad file) = %v", err)
	}
}

func TestLocate(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv(EnvConfig, "")

	if got := Locate(""); got != "" {
		t.Errorf("Locate() with no files = %q, want empty", got)
	}

	xdgPath := filepath.Join(xdg, "pipedag", "config.toml")
	_ = os.MkdirAll(filepath.Dir(xdgPath), 0755)
	_ = os.WriteFile(xdgPath, nil, 0644)
	if got := Locate(""); got != xdgPath {
		t.Errorf("Locate() = %q, want %q", got, xdgPath)
	}

	t.Setenv(EnvConfig, "/etc/pipedag.toml")
	if got := Locate(""); got != "/etc/pipedag.toml" {
		t.Errorf("Locate() with env = %q", got)
	}
	if got := Locate("explicit.toml"); got != "explicit.toml" {
		t.Errorf("Locate(explicit) = %q", got)
	}
}

func TestCacheDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CACHE_HOME", "")

	cfg := Default()
	if dir, _ := cfg.CacheDir(); dir != filepath.Join(home, ".cache", "pipedag") {
		t.Errorf("CacheDir() = %q", dir)
	}

	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	if dir, _ := cfg.CacheDir(); dir != filepath.Join("/tmp/xdg", "pipedag") {
		t.Errorf("CacheDir() with XDG = %q", dir)
	}

	cfg.Cache.Dir = "~/layouts"
	if dir, _ := cfg.CacheDir(); dir != filepath.Join(home, "layouts") {
		t.Errorf("CacheDir() with ~ = %q", dir)
	}
}
