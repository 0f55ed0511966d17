package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CHAT_JWTSECRET", "secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != "3000" {
		t.Errorf("Port = %q, want 3000", cfg.Port)
	}
	if !cfg.SelfContained {
		t.Error("SelfContained should default to true")
	}
	if cfg.TypingTimeout != 3*time.Second {
		t.Errorf("TypingTimeout = %s, want 3s", cfg.TypingTimeout)
	}
	if cfg.Timezone != "Asia/Kolkata" {
		t.Errorf("Timezone = %q", cfg.Timezone)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"Port": "8080", "JwtSecret": "abc", "SelfContained": false, "TypingTimeout": "5s", "Timezone": "UTC"}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != "8080" || cfg.JwtSecret != "abc" || cfg.SelfContained {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.TypingTimeout != 5*time.Second {
		t.Errorf("TypingTimeout = %s, want 5s", cfg.TypingTimeout)
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Error("expected error when JwtSecret is empty")
	}
}
