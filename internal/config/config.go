package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// Window defines a tmux window opened for a sequence workspace.
type Window struct {
	Name    string `yaml:"name"`
	Command string `yaml:"command,omitempty"`
}

// Tmux contains tmux-related configuration.
type Tmux struct {
	Windows []Window `yaml:"windows"`
}

// Server contains HTTP API configuration.
type Server struct {
	Addr string `yaml:"addr,omitempty"`
}

// Library selects how workspace filenames are recognized.
type Library struct {
	Convention string `yaml:"convention,omitempty"`
}

// Model configures one generative service endpoint. API keys never live in
// the file; they come from the environment.
type Model struct {
	Name    string `yaml:"name,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
	Size    string `yaml:"size,omitempty"`
	Voice   string `yaml:"voice,omitempty"`
}

// Generation groups the model endpoints the assistant sequences.
type Generation struct {
	Script    Model `yaml:"script"`
	Still     Model `yaml:"still"`
	Voiceover Model `yaml:"voiceover"`
	Clip      Model `yaml:"clip"`
}

// Config holds all configuration options.
type Config struct {
	Server     Server     `yaml:"server"`
	Library    Library    `yaml:"library"`
	Generation Generation `yaml:"generation"`
	Tmux       Tmux       `yaml:"tmux"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server:  Server{Addr: ":8787"},
		Library: Library{Convention: "strict"},
		Generation: Generation{
			Script:    Model{Name: "gpt-4o-mini"},
			Still:     Model{Name: "gpt-4o-image", BaseURL: "https://api.openai.com", Size: "1024x1024"},
			Voiceover: Model{Name: "gpt-4o-mini-tts", BaseURL: "https://api.openai.com", Voice: "alloy"},
			Clip:      Model{Name: "sora-2", BaseURL: "https://api.openai.com", Size: "1280x720"},
		},
		Tmux: Tmux{
			Windows: []Window{
				{Name: "script"},
				{Name: "prompt"},
				{Name: "preview"},
			},
		},
	}
}

// configPath returns the path to the config file.
func configPath() string {
	return filepath.Join(xdg.ConfigHome, "vibe-studio", "config.yaml")
}

// Load loads config from file, falling back to defaults.
func Load() *Config {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath())
	if err != nil {
		return cfg
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return DefaultConfig()
	}

	return cfg
}

// Path returns the config file path (for help text).
func Path() string {
	return configPath()
}
