package config

import (
	"os"
	"path/filepath"
	"testing"
)

func intPtr(n int) *int { return &n }

func TestConfigMerge(t *testing.T) {
	t.Run("MergeOverridesSetFields", func(t *testing.T) {
		dest := &Config{
			LogLimit:   intPtr(200),
			DiffFormat: "git",
		}
		source := &Config{
			LogLimit:           nil, // unset - should not override
			DiffFormat:         "stat",
			ProtectedBookmarks: []string{"release"},
		}

		mergeConfig(dest, source)

		if *dest.LogLimit != 200 {
			t.Errorf("LogLimit should not be overwritten by nil, got %d", *dest.LogLimit)
		}
		if dest.DiffFormat != "stat" {
			t.Errorf("DiffFormat should be overwritten, got %s", dest.DiffFormat)
		}
		if len(dest.ProtectedBookmarks) != 1 || dest.ProtectedBookmarks[0] != "release" {
			t.Errorf("ProtectedBookmarks should be overwritten, got %v", dest.ProtectedBookmarks)
		}
	})

	t.Run("MergeWithNilSource", func(t *testing.T) {
		dest := &Config{DiffFormat: "git"}
		mergeConfig(dest, nil)
		if dest.DiffFormat != "git" {
			t.Error("merging nil should not modify dest")
		}
	})
}

func TestDefaultedAccessors(t *testing.T) {
	cfg := &Config{}
	if got := cfg.GetLogLimit(); got != 200 {
		t.Errorf("GetLogLimit() default = %d, want 200", got)
	}
	if got := cfg.GetDiffFormat(); got != "git" {
		t.Errorf("GetDiffFormat() default = %s, want git", got)
	}
	if got := cfg.GetAutoRefreshInterval(); got != 0 {
		t.Errorf("GetAutoRefreshInterval() default = %d, want 0", got)
	}
	if got := cfg.GetPreviewCacheCapacity(); got != 32 {
		t.Errorf("GetPreviewCacheCapacity() default = %d, want 32", got)
	}

	cfg.LogLimit = intPtr(50)
	cfg.DiffFormat = "stat"
	cfg.AutoRefreshInterval = intPtr(10)
	cfg.PreviewCacheCapacity = intPtr(8)

	if got := cfg.GetLogLimit(); got != 50 {
		t.Errorf("GetLogLimit() = %d, want 50", got)
	}
	if got := cfg.GetDiffFormat(); got != "stat" {
		t.Errorf("GetDiffFormat() = %s, want stat", got)
	}
	if got := cfg.GetAutoRefreshInterval(); got != 10 {
		t.Errorf("GetAutoRefreshInterval() = %d, want 10", got)
	}
	if got := cfg.GetPreviewCacheCapacity(); got != 8 {
		t.Errorf("GetPreviewCacheCapacity() = %d, want 8", got)
	}
}

func TestLocalConfigPath(t *testing.T) {
	if path := localConfigPath(); path != LocalConfigFileName {
		t.Errorf("localConfigPath() = %s, want %s", path, LocalConfigFileName)
	}
}

func TestHasLocalConfig(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "tij-config-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)
	os.Chdir(tempDir)

	if HasLocalConfig() {
		t.Error("HasLocalConfig should return false when no local config exists")
	}

	configPath := filepath.Join(tempDir, LocalConfigFileName)
	if err := os.WriteFile(configPath, []byte(`diff_format = "stat"`+"\n"), 0600); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if !HasLocalConfig() {
		t.Error("HasLocalConfig should return true when local config exists")
	}
}

func TestConfigSaveAndLoad(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "tij-config-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	configPath := filepath.Join(tempDir, "config.toml")

	original := &Config{
		LogLimit:           intPtr(75),
		DiffFormat:         "stat",
		ProtectedBookmarks: []string{"release", "hotfix"},
	}

	if err := original.SaveTo(configPath); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded, err := loadFromFile(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if *loaded.LogLimit != *original.LogLimit {
		t.Errorf("LogLimit mismatch: got %d, want %d", *loaded.LogLimit, *original.LogLimit)
	}
	if loaded.DiffFormat != original.DiffFormat {
		t.Errorf("DiffFormat mismatch: got %s, want %s", loaded.DiffFormat, original.DiffFormat)
	}
	if len(loaded.ProtectedBookmarks) != 2 {
		t.Errorf("ProtectedBookmarks mismatch: got %v", loaded.ProtectedBookmarks)
	}
}

func TestLoadFromNonExistentFile(t *testing.T) {
	cfg, err := loadFromFile("/nonexistent/path/config.toml")
	if err != nil {
		t.Errorf("loadFromFile should not error for nonexistent file, got: %v", err)
	}
	if cfg != nil {
		t.Error("loadFromFile should return nil for nonexistent file")
	}
}
