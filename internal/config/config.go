package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config is the only persisted config file schema.
type Config struct {
	// Editor is the external editor command (falls back to $VISUAL/$EDITOR).
	Editor string `toml:"editor"`
	// Verbose enables full thinking-block content by default.
	Verbose bool `toml:"verbose"`
	// Animations enables spinner/thinking animations.
	Animations bool `toml:"animations"`
	// LogPath overrides the default log file location.
	LogPath string `toml:"log_path"`
	// WindowTitle is set on the terminal at startup when non-empty.
	WindowTitle string `toml:"window_title"`

	Source string `toml:"-"`
}

func Default() Config {
	return Config{
		Animations:  true,
		WindowTitle: "lumen",
	}
}

func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".lumen", "config.toml")
}

// Load reads the config file, then applies env overrides. A missing file is
// not an error: defaults plus env apply.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return cfg, errors.New("config path is empty and $HOME is not set")
	}
	cfg.Source = path

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return cfg, err
	}
	if err := toml.Unmarshal(content, &cfg); err != nil {
		return cfg, err
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if env := strings.TrimSpace(os.Getenv("LUMEN_EDITOR")); env != "" {
		cfg.Editor = env
	}
	if env := strings.TrimSpace(os.Getenv("LUMEN_LOG_PATH")); env != "" {
		cfg.LogPath = env
	}
	if env := strings.TrimSpace(os.Getenv("LUMEN_VERBOSE")); env != "" {
		cfg.Verbose = env == "1" || strings.EqualFold(env, "true")
	}
}

// EditorCommand resolves the editor to launch, in priority order:
// config file, $VISUAL, $EDITOR, then vi.
func (c Config) EditorCommand() string {
	if cmd := strings.TrimSpace(c.Editor); cmd != "" {
		return cmd
	}
	if cmd := strings.TrimSpace(os.Getenv("VISUAL")); cmd != "" {
		return cmd
	}
	if cmd := strings.TrimSpace(os.Getenv("EDITOR")); cmd != "" {
		return cmd
	}
	return "vi"
}

// Save writes the config back to its source path.
func Save(cfg Config) error {
	path := cfg.Source
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return errors.New("config path is empty and $HOME is not set")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
