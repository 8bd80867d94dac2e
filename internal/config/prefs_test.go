package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPrefs_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if p := LoadPrefs(""); p.Theme != defaultTheme {
		t.Fatalf("Theme = %q, want %q", p.Theme, defaultTheme)
	}
}

func TestLoadPrefs_ReadsDefaultLocation(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "vpick")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "prefs.toml"), []byte("theme = \"Slate\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if p := LoadPrefs(""); p.Theme != "Slate" {
		t.Fatalf("Theme = %q, want %q", p.Theme, "Slate")
	}
}

func TestLoadPrefs_InvalidOrEmptyDegrades(t *testing.T) {
	tmp := t.TempDir()
	for name, body := range map[string]string{
		"invalid": "theme = [",
		"empty":   "theme = \"  \"\n",
	} {
		path := filepath.Join(tmp, name+".toml")
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if p := LoadPrefs(path); p.Theme != defaultTheme {
			t.Fatalf("%s: Theme = %q, want %q", name, p.Theme, defaultTheme)
		}
	}
}

func TestSavePrefs_RoundTripCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "prefs.toml")

	if err := SavePrefs(path, Prefs{Theme: "Kanagawa"}); err != nil {
		t.Fatalf("SavePrefs returned error: %v", err)
	}
	if p := LoadPrefs(path); p.Theme != "Kanagawa" {
		t.Fatalf("Theme = %q, want %q", p.Theme, "Kanagawa")
	}
}
