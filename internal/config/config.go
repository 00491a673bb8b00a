package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Channel ChannelConfig `yaml:"channel"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

type BackendConfig struct {
	BaseURL     string        `yaml:"base_url"`
	ProfilePath string        `yaml:"profile_path"`
	LogoutPath  string        `yaml:"logout_path"`
	ItemPath    string        `yaml:"item_path"`
	AvatarPath  string        `yaml:"avatar_path"`
	Timeout     time.Duration `yaml:"timeout"`
}

type ChannelConfig struct {
	URL            string        `yaml:"url"`
	BroadcastTopic string        `yaml:"broadcast_topic"`
	PrivateTopic   string        `yaml:"private_topic"`
	ReconnectDelay time.Duration `yaml:"reconnect_delay"`
}

type StorageConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Default returns the configuration used when no file is present. The
// reconnect delay matches the push client's fixed 5 s backoff.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL:     "http://localhost:8080",
			ProfilePath: "/adminuser/get-profile",
			LogoutPath:  "/auth/logout",
			ItemPath:    "/inventory-item/add",
			AvatarPath:  "/user/display/",
			Timeout:     10 * time.Second,
		},
		Channel: ChannelConfig{
			URL:            "ws://localhost:8080/our-websocket/websocket",
			BroadcastTopic: "/topic/messages",
			PrivateTopic:   "/user/topic/private-messages",
			ReconnectDelay: 5 * time.Second,
		},
		Storage: StorageConfig{
			Path: defaultPath(os.UserConfigDir, "medivault.db"),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			File:   defaultPath(os.UserCacheDir, "shell.log"),
		},
	}
}

// Load reads a YAML file over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DefaultPath is where Load looks when --config is not given.
func DefaultPath() string {
	return defaultPath(os.UserConfigDir, "config.yaml")
}

// AvatarURL returns the profile picture address for a user.
func (c *Config) AvatarURL(userID string) string {
	return c.Backend.BaseURL + c.Backend.AvatarPath + userID
}

func defaultPath(base func() (string, error), name string) string {
	dir, err := base()
	if err != nil {
		return name
	}
	return filepath.Join(dir, "medivault", name)
}
