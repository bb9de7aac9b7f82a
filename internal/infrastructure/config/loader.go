package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/aura-go/assets"
	"github.com/doeshing/aura-go/internal/domain"
	"github.com/doeshing/aura-go/internal/pkg/filesystem"
	"github.com/doeshing/aura-go/internal/ports"
)

// EnvConfigPath overrides the default config location.
const EnvConfigPath = "AURA_CONFIG"

// FileLoader loads YAML configuration from ~/.aura/config.yaml (overridable via AURA_CONFIG).
type FileLoader struct {
	overridePath string
	now          func() time.Time
}

// NewFileLoader builds a new loader.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path, now: time.Now}
}

// Load implements ports.ConfigProvider. A missing file is created from the embedded defaults.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.resolvePath()
	if err := ensureConfigDir(path); err != nil {
		return domain.Config{}, fmt.Errorf("ensure config dir: %w", err)
	}
	loadEnvFiles(filepath.Dir(path))

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if err := os.WriteFile(path, assets.DefaultConfigYAML, domain.SecureFilePermissions); err != nil {
				return domain.Config{}, fmt.Errorf("write default config: %w", err)
			}
			return DefaultConfig(), nil
		}
		return domain.Config{}, err
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return hydrateDefaults(cfg), nil
}

// loadEnvFiles reads .env files beside the config and in the working directory.
// Variables already present in the environment win.
func loadEnvFiles(configDir string) {
	for _, candidate := range []string{filepath.Join(configDir, ".env"), ".env"} {
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		_ = godotenv.Load(candidate)
	}
}

func (l *FileLoader) resolvePath() string {
	if l.overridePath != "" {
		return expandPath(l.overridePath)
	}
	if custom := os.Getenv(EnvConfigPath); custom != "" {
		return expandPath(custom)
	}
	return filepath.Join(filesystem.UserHomeDir(), ".aura", "config.yaml")
}

func ensureConfigDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions)
}

// Path returns the resolved config file path.
func (l *FileLoader) Path() string {
	return l.resolvePath()
}

// Save writes the given config back to disk.
func (l *FileLoader) Save(cfg domain.Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	path := l.resolvePath()
	if err := ensureConfigDir(path); err != nil {
		return err
	}
	return os.WriteFile(path, raw, domain.SecureFilePermissions)
}

// Reset overwrites the config with defaults and returns the default snapshot.
func (l *FileLoader) Reset() (domain.Config, error) {
	path := l.resolvePath()
	if err := ensureConfigDir(path); err != nil {
		return domain.Config{}, err
	}
	if err := os.WriteFile(path, assets.DefaultConfigYAML, domain.SecureFilePermissions); err != nil {
		return domain.Config{}, err
	}
	return DefaultConfig(), nil
}

// Backup copies the current config file to a timestamped backup.
func (l *FileLoader) Backup() (string, error) {
	path := l.resolvePath()
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	backup := fmt.Sprintf("%s.%s.bak", path, l.now().Format("20060102T150405"))
	if err := os.WriteFile(backup, data, domain.SecureFilePermissions); err != nil {
		return "", err
	}
	return backup, nil
}

// DefaultConfig returns the embedded defaults with paths expanded.
func DefaultConfig() domain.Config {
	var cfg domain.Config
	if err := yaml.Unmarshal(assets.DefaultConfigYAML, &cfg); err != nil {
		panic(fmt.Sprintf("embedded default config is invalid: %v", err))
	}
	return hydrateDefaults(cfg)
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = "1"
	}
	home := filepath.Join(filesystem.UserHomeDir(), ".aura")
	if cfg.Contacts.File == "" {
		cfg.Contacts.File = filepath.Join(home, "contacts.yaml")
	}
	if cfg.Apps.IndexCache == "" {
		cfg.Apps.IndexCache = filepath.Join(home, "cache", "apps_index.json")
	}
	if cfg.History.Path == "" {
		cfg.History.Path = filepath.Join(home, "history.db")
	}
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = filepath.Join(home, "cache", "knowledge")
	}
	if cfg.Files.BaseDir == "" {
		cfg.Files.BaseDir = filepath.Join(filesystem.UserHomeDir(), "Documents")
	}
	if cfg.Email.PasswordEnvVar == "" {
		cfg.Email.PasswordEnvVar = "AURA_SMTP_PASSWORD"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = domain.DefaultServeAddr
	}

	cfg.Contacts.File = expandPath(cfg.Contacts.File)
	cfg.Apps.IndexCache = expandPath(cfg.Apps.IndexCache)
	cfg.History.Path = expandPath(cfg.History.Path)
	cfg.Cache.Dir = expandPath(cfg.Cache.Dir)
	cfg.Files.BaseDir = expandPath(cfg.Files.BaseDir)
	if cfg.Handlers.File != "" {
		cfg.Handlers.File = expandPath(cfg.Handlers.File)
	}
	for i, dir := range cfg.Apps.IndexDirs {
		cfg.Apps.IndexDirs[i] = expandPath(dir)
	}
	return cfg
}

func expandPath(path string) string {
	if path == "~" {
		return filesystem.UserHomeDir()
	}
	if strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		return filepath.Join(filesystem.UserHomeDir(), path[2:])
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Clean(path)
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
