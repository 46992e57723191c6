package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// UserConfig holds per-user CLI preferences, kept apart from the game
// config so that `outpost config set-profile` never rewrites config.yaml
type UserConfig struct {
	// Profile used when --profile is omitted
	DefaultProfile string `yaml:"default_profile,omitempty"`

	// Daemon socket used when --socket is omitted
	SocketPath string `yaml:"socket_path,omitempty"`
}

// UserConfigHandler reads and writes ~/.outpost/preferences.yaml
type UserConfigHandler struct {
	path string
}

func NewUserConfigHandler() (*UserConfigHandler, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewUserConfigHandlerAt(filepath.Join(home, ".outpost"))
}

// NewUserConfigHandlerAt keeps the preferences file in dir, creating it
func NewUserConfigHandlerAt(dir string) (*UserConfigHandler, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}
	return &UserConfigHandler{path: filepath.Join(dir, "preferences.yaml")}, nil
}

// Load returns empty preferences when the file has never been written
func (h *UserConfigHandler) Load() (*UserConfig, error) {
	prefs := &UserConfig{}
	data, err := os.ReadFile(h.path)
	if errors.Is(err, fs.ErrNotExist) {
		return prefs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}
	if err := yaml.Unmarshal(data, prefs); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", h.path, err)
	}
	return prefs, nil
}

func (h *UserConfigHandler) Save(prefs *UserConfig) error {
	data, err := yaml.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	if err := os.WriteFile(h.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	return nil
}

func (h *UserConfigHandler) update(change func(*UserConfig)) error {
	prefs, err := h.Load()
	if err != nil {
		return err
	}
	change(prefs)
	return h.Save(prefs)
}

func (h *UserConfigHandler) SetDefaultProfile(profile string) error {
	return h.update(func(p *UserConfig) { p.DefaultProfile = profile })
}

func (h *UserConfigHandler) ClearDefaultProfile() error {
	return h.update(func(p *UserConfig) { p.DefaultProfile = "" })
}

func (h *UserConfigHandler) GetConfigPath() string {
	return h.path
}

// ResolveProfile picks the save profile: the --profile flag, then the
// user's default, then save.profile from the game config
func ResolveProfile(explicit string, cfg *Config, user *UserConfig) string {
	switch {
	case explicit != "":
		return explicit
	case user != nil && user.DefaultProfile != "":
		return user.DefaultProfile
	default:
		return cfg.Save.Profile
	}
}
