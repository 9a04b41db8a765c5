package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, ".cache", appName)
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirXDG(t *testing.T) {
	customCache := filepath.Join(t.TempDir(), "custom-cache")
	t.Setenv("XDG_CACHE_HOME", customCache)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	expected := filepath.Join(customCache, appName)
	if dir != expected {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, expected)
	}
}

func TestFileCacheDirFromConfig(t *testing.T) {
	c, _ := newTestCLI(t)
	custom := filepath.Join(t.TempDir(), "artifacts")
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[cache]\ndir = \""+filepath.ToSlash(custom)+"\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c.configPath = path

	dir, err := c.fileCacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.ToSlash(custom) {
		t.Errorf("fileCacheDir() = %q, want %q", dir, custom)
	}
}

func TestResolvedConfigPath(t *testing.T) {
	c, _ := newTestCLI(t)
	configHome := os.Getenv("XDG_CONFIG_HOME")

	got, err := c.resolvedConfigPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(configHome, appName, "config.toml"); got != want {
		t.Errorf("resolvedConfigPath() = %q, want %q", got, want)
	}

	c.configPath = "/etc/stormbolt.toml"
	if got, _ := c.resolvedConfigPath(); got != "/etc/stormbolt.toml" {
		t.Errorf("explicit path = %q", got)
	}
}
