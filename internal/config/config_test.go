package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Channel.ReconnectDelay != 5*time.Second {
		t.Errorf("ReconnectDelay = %v, want 5s", cfg.Channel.ReconnectDelay)
	}
	if cfg.Channel.BroadcastTopic != "/topic/messages" {
		t.Errorf("BroadcastTopic = %q", cfg.Channel.BroadcastTopic)
	}
	if cfg.Channel.PrivateTopic != "/user/topic/private-messages" {
		t.Errorf("PrivateTopic = %q", cfg.Channel.PrivateTopic)
	}
	if cfg.Backend.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", cfg.Backend.Timeout)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	yaml := `
backend:
  base_url: "http://inventory.local:9090"
  timeout: 3s
channel:
  url: "ws://inventory.local:9090/our-websocket/websocket"
  reconnect_delay: 2s
log:
  level: debug
`
	if err := os.WriteFile(cfgPath, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Backend.BaseURL != "http://inventory.local:9090" {
		t.Errorf("BaseURL = %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v, want 3s", cfg.Backend.Timeout)
	}
	if cfg.Channel.ReconnectDelay != 2*time.Second {
		t.Errorf("ReconnectDelay = %v, want 2s", cfg.Channel.ReconnectDelay)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}

	// Unset keys keep their defaults.
	if cfg.Backend.ProfilePath != "/adminuser/get-profile" {
		t.Errorf("ProfilePath = %q, want default", cfg.Backend.ProfilePath)
	}
	if cfg.Channel.BroadcastTopic != "/topic/messages" {
		t.Errorf("BroadcastTopic = %q, want default", cfg.Channel.BroadcastTopic)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Backend.BaseURL != Default().Backend.BaseURL {
		t.Errorf("expected defaults for missing file, got %q", cfg.Backend.BaseURL)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("backend: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(cfgPath); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestAvatarURL(t *testing.T) {
	cfg := Default()
	got := cfg.AvatarURL("u42")
	want := "http://localhost:8080/user/display/u42"
	if got != want {
		t.Errorf("AvatarURL = %q, want %q", got, want)
	}
}
