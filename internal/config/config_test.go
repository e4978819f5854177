package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInitPlanningRootIdempotent(t *testing.T) {
	root := t.TempDir()
	if err := InitPlanningRoot(root); err != nil {
		t.Fatal(err)
	}
	for _, rel := range []string{"projects", "tasks-open", "tasks-done", ".trellis/logs", ".trellis/trellis.yaml"} {
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel))); err != nil {
			t.Errorf("missing %s: %v", rel, err)
		}
	}

	// A second init must not clobber an edited config.
	path := filepath.Join(root, TrellisDir, configFileName)
	custom := []byte("version: 1\ndefault_priority: high\ncache_entries: 8\n")
	if err := os.WriteFile(path, custom, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := InitPlanningRoot(root); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Settings.DefaultPriority != "high" || cfg.Settings.CacheEntries != 8 {
		t.Errorf("settings = %+v", cfg.Settings)
	}
}

func TestLoadDefaultsWithoutConfigFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Settings.DefaultPriority != "normal" || cfg.Settings.CacheEntries != DefaultCacheEntries {
		t.Errorf("settings = %+v", cfg.Settings)
	}
}

func TestLoadClampsBadCacheSize(t *testing.T) {
	root := t.TempDir()
	if err := InitPlanningRoot(root); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(root, TrellisDir, configFileName)
	if err := os.WriteFile(path, []byte("version: 1\ncache_entries: -5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Settings.CacheEntries != DefaultCacheEntries {
		t.Errorf("cache entries = %d", cfg.Settings.CacheEntries)
	}
}

func TestFindRoot(t *testing.T) {
	root := t.TempDir()
	if err := InitPlanningRoot(root); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "projects", "P-x")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	found, err := FindRoot(nested)
	if err != nil {
		t.Fatal(err)
	}
	resolvedRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		t.Fatal(err)
	}
	resolvedFound, err := filepath.EvalSymlinks(found)
	if err != nil {
		t.Fatal(err)
	}
	if resolvedFound != resolvedRoot {
		t.Errorf("FindRoot = %s, want %s", found, root)
	}

	if _, err := FindRoot(t.TempDir()); err == nil {
		t.Error("expected error outside any planning root")
	}
}
