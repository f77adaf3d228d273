// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/autobrr/preflight/internal/domain"
)

const envPrefix = "PREFLIGHT__"

var configTemplate = `# config.toml

# Log level
# Options: "ERROR", "DEBUG", "INFO", "WARN", "TRACE"
logLevel = "INFO"

# Working directory for per-release artifacts (exported torrents, disc reports)
#workDir = ""

# Prefer torrents with small pieces when scanning clients for reuse
#preferSmallPieces = false

# Only reuse torrents with a piece size under this many MiB (0 = no limit)
#maxPieceSizeMib = 0

# Torrent clients, scanned in listed order
#[[clients]]
#name = "qbit-main"
#kind = "qbit"
#host = "http://localhost:8080"
#username = "admin"
#password = "adminadmin"
#enableSearch = true

#[[clients]]
#name = "rtorrent-seed"
#kind = "rtorrent"
#torrentStorageDir = "/home/user/.session"
#localDirs = ["/mnt/local"]
#remoteDirs = ["/data"]

# Per-tracker overrides
#[trackers.EXAMPLE]
#preferSmallPieces = true
#maxPieceSizeMib = 8
`

// AppConfig wraps the parsed configuration together with its viper instance
// so callers can inspect where values came from.
type AppConfig struct {
	Config *domain.Config
	viper  *viper.Viper
}

// New loads the configuration from the given path, or from the default
// location when the path is empty. A missing config file is created from
// the template on first run.
func New(configPath string, version string) (*AppConfig, error) {
	c := &AppConfig{
		viper: viper.New(),
	}

	c.defaults(version)

	if err := c.load(configPath); err != nil {
		return nil, err
	}

	if err := c.Config.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *AppConfig) defaults(version string) {
	c.Config = &domain.Config{
		Version:  version,
		LogLevel: "INFO",
	}

	c.viper.SetDefault("logLevel", c.Config.LogLevel)
	c.viper.SetDefault("unattended", false)
	c.viper.SetDefault("preferSmallPieces", false)
	c.viper.SetDefault("maxPieceSizeMib", 0)
}

func (c *AppConfig) load(configPath string) error {
	c.viper.SetConfigType("toml")

	if configPath != "" {
		if filepath.Ext(configPath) != "" {
			c.viper.SetConfigFile(configPath)
		} else {
			c.viper.AddConfigPath(configPath)
			c.viper.SetConfigName("config")
			configPath = filepath.Join(configPath, "config.toml")
		}
		if err := c.writeTemplate(configPath); err != nil {
			return err
		}
	} else {
		c.viper.SetConfigName("config")
		c.viper.AddConfigPath(".")
		c.viper.AddConfigPath("$HOME/.config/preflight")
	}

	if err := c.viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return errors.Wrap(err, "config read error")
		}
	}

	if err := c.viper.Unmarshal(c.Config); err != nil {
		return errors.Wrap(err, "failed to parse config")
	}

	c.loadFromEnv()

	if c.Config.WorkDir == "" {
		c.Config.WorkDir = filepath.Join(os.TempDir(), "preflight")
	}

	return nil
}

// writeTemplate creates a commented default config when none exists yet.
func (c *AppConfig) writeTemplate(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return errors.Wrap(err, "could not stat config file")
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return errors.Wrap(err, "could not create config directory")
	}
	if err := os.WriteFile(configPath, []byte(configTemplate), 0o644); err != nil {
		return errors.Wrap(err, "could not write default config file")
	}

	log.Info().Str("path", configPath).Msg("wrote default config file")
	return nil
}

// loadFromEnv applies PREFLIGHT__ environment overrides for scalar settings.
func (c *AppConfig) loadFromEnv() {
	for _, pair := range os.Environ() {
		key, value, found := strings.Cut(pair, "=")
		if !found || !strings.HasPrefix(key, envPrefix) || value == "" {
			continue
		}

		switch strings.TrimPrefix(key, envPrefix) {
		case "LOG_LEVEL":
			c.Config.LogLevel = value
		case "LOG_PATH":
			c.Config.LogPath = value
		case "WORK_DIR":
			c.Config.WorkDir = value
		case "UNATTENDED":
			c.Config.Unattended = strings.EqualFold(value, "true")
		case "PREFER_SMALL_PIECES":
			c.Config.PreferSmallPieces = strings.EqualFold(value, "true")
		}
	}
}
