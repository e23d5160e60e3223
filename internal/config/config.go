// Package config resolves history options from, in order of precedence,
// SHELLHIST_* environment variables, an optional config.toml, and built-in
// defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/bnema/shellhist/internal/domain"
)

const (
	envPrefix      = "SHELLHIST"
	configDirName  = "shellhist"
	configFileName = "config"
	configFileType = "toml"

	defaultSize       = "8128 commands"
	defaultBufferSize = 100

	configFileMode = 0o600
	configDirMode  = 0o700
)

type Config struct {
	// DataDir is the root under which the history directory lives.
	DataDir string `toml:"data_dir"`
	// HistoryFile overrides the per-session file path entirely.
	HistoryFile string `toml:"history_file"`
	// Size is the retention limit, e.g. "8128 commands", "200 files",
	// "90 d", "512 kb".
	Size        string `toml:"size"`
	Histcontrol string `toml:"histcontrol"`
	IgnoreRegex string `toml:"ignore_regex"`
	StoreStdout bool   `toml:"store_stdout"`
	SaveCwd     bool   `toml:"save_cwd"`
	BufferSize  int    `toml:"buffer_size"`
	Enabled     bool   `toml:"enabled"`
	Debug       bool   `toml:"debug"`
}

// Load reads configuration into a Config. A missing config file is fine;
// an unreadable or malformed one is not.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(filepath.Join(homeDir, ".config", configDirName))
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("data_dir", filepath.Join(homeDir, ".local", "share", configDirName))
	v.SetDefault("history_file", "")
	v.SetDefault("size", defaultSize)
	v.SetDefault("histcontrol", "")
	v.SetDefault("ignore_regex", "")
	v.SetDefault("store_stdout", false)
	v.SetDefault("save_cwd", true)
	v.SetDefault("buffer_size", defaultBufferSize)
	v.SetDefault("enabled", true)
	v.SetDefault("debug", false)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		DataDir:     v.GetString("data_dir"),
		HistoryFile: v.GetString("history_file"),
		Size:        v.GetString("size"),
		Histcontrol: v.GetString("histcontrol"),
		IgnoreRegex: v.GetString("ignore_regex"),
		StoreStdout: v.GetBool("store_stdout"),
		SaveCwd:     v.GetBool("save_cwd"),
		BufferSize:  v.GetInt("buffer_size"),
		Enabled:     v.GetBool("enabled"),
		Debug:       v.GetBool("debug"),
	}
	cfg.applyDefaults()

	if _, err := cfg.Retention(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Size == "" {
		c.Size = defaultSize
	}
	if c.BufferSize <= 0 {
		c.BufferSize = defaultBufferSize
	}
}

// Default returns the built-in configuration rooted at the user's home.
func Default() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}
	cfg := &Config{
		DataDir:    filepath.Join(homeDir, ".local", "share", configDirName),
		Size:       defaultSize,
		SaveCwd:    true,
		BufferSize: defaultBufferSize,
		Enabled:    true,
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Retention parses the configured size spec.
func (c *Config) Retention() (domain.RetentionSpec, error) {
	return domain.ParseRetentionSpec(c.Size)
}

// Control returns the parsed histcontrol flags.
func (c *Config) Control() domain.Control {
	return domain.ParseControl(c.Histcontrol)
}

// DefaultPath is where `config init` writes and Load looks first.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", configDirName, configFileName+"."+configFileType), nil
}

// WriteFile serializes the config as TOML at path, refusing to clobber an
// existing file.
func (c *Config) WriteFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat config file: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), configDirMode); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, configFileMode); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Render returns the TOML form of the effective configuration.
func (c *Config) Render() (string, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	return string(data), nil
}
