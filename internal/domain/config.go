// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

import (
	"fmt"
	"strings"
)

// Config represents the application configuration
type Config struct {
	Version string

	LogLevel string `toml:"logLevel" mapstructure:"logLevel"`
	LogPath  string `toml:"logPath" mapstructure:"logPath"`
	WorkDir  string `toml:"workDir" mapstructure:"workDir"`

	// Unattended disables every interactive prompt and applies the
	// conservative defaults (decline trump, skip on remaining dupes).
	Unattended bool `toml:"unattended" mapstructure:"unattended"`

	// AssumeDupeUpload uploads past plain dupes without confirmation in
	// unattended mode. Trump decisions still default to declined.
	AssumeDupeUpload bool `toml:"assumeDupeUpload" mapstructure:"assumeDupeUpload"`

	PreferSmallPieces bool `toml:"preferSmallPieces" mapstructure:"preferSmallPieces"`
	MaxPieceSizeMiB   int  `toml:"maxPieceSizeMib" mapstructure:"maxPieceSizeMib"`

	// Clients are scanned for reusable torrents in listed order.
	Clients []ClientConfig `toml:"clients" mapstructure:"clients"`

	Trackers map[string]TrackerConfig `toml:"trackers" mapstructure:"trackers"`
}

// ClientConfig describes one torrent client backend.
type ClientConfig struct {
	Name     string `toml:"name" mapstructure:"name"`
	Kind     string `toml:"kind" mapstructure:"kind"`
	Host     string `toml:"host" mapstructure:"host"`
	Username string `toml:"username" mapstructure:"username"`
	Password string `toml:"password" mapstructure:"password"`

	// ProxyURL routes torrent exports through an HTTP proxy endpoint
	// instead of the client RPC.
	ProxyURL string `toml:"proxyUrl" mapstructure:"proxyUrl"`

	// TorrentStorageDir is the client's session directory. When set,
	// torrents are read straight from disk and no export call is made.
	TorrentStorageDir string `toml:"torrentStorageDir" mapstructure:"torrentStorageDir"`

	EnableSearch bool `toml:"enableSearch" mapstructure:"enableSearch"`

	// LocalDirs and RemoteDirs are index-paired path mappings for clients
	// running on another host or mount.
	LocalDirs  []string `toml:"localDirs" mapstructure:"localDirs"`
	RemoteDirs []string `toml:"remoteDirs" mapstructure:"remoteDirs"`
}

// TrackerConfig carries per-tracker overrides of the global policy.
type TrackerConfig struct {
	PreferSmallPieces bool `toml:"preferSmallPieces" mapstructure:"preferSmallPieces"`
	MaxPieceSizeMiB   int  `toml:"maxPieceSizeMib" mapstructure:"maxPieceSizeMib"`
	SkipDupeAsking    bool `toml:"skipDupeAsking" mapstructure:"skipDupeAsking"`

	// FrenchHierarchy enables the language-tier supersede rule on this
	// tracker's dupe checks.
	FrenchHierarchy bool `toml:"frenchHierarchy" mapstructure:"frenchHierarchy"`
}

// PiecePreferenceFor resolves the piece-size policy for one tracker,
// falling back to the global settings when the tracker has no override.
func (c *Config) PiecePreferenceFor(tracker string) PiecePreference {
	pref := PiecePreference{
		SmallPieces: c.PreferSmallPieces,
		MaxMiB:      c.MaxPieceSizeMiB,
	}
	if tc, ok := c.Trackers[tracker]; ok {
		if tc.PreferSmallPieces {
			pref.SmallPieces = true
		}
		if tc.MaxPieceSizeMiB > 0 {
			pref.MaxMiB = tc.MaxPieceSizeMiB
		}
	}
	return pref
}

// Validate checks client entries for the fields each backend kind needs.
func (c *Config) Validate() error {
	for i := range c.Clients {
		client := &c.Clients[i]
		if client.Name == "" {
			client.Name = fmt.Sprintf("%s-%d", client.Kind, i)
		}
		if len(client.LocalDirs) != len(client.RemoteDirs) {
			return fmt.Errorf("client %q: localDirs and remoteDirs must pair up", client.Name)
		}
		switch strings.ToLower(client.Kind) {
		case "qbit", "qbittorrent":
			if client.Host == "" {
				return fmt.Errorf("client %q: host is required for qBittorrent", client.Name)
			}
		case "rtorrent", "deluge", "transmission":
			if client.TorrentStorageDir == "" {
				return fmt.Errorf("client %q: torrentStorageDir is required for %s", client.Name, client.Kind)
			}
		case "":
			return fmt.Errorf("client %q: kind is required", client.Name)
		default:
			return fmt.Errorf("client %q: unsupported kind %q", client.Name, client.Kind)
		}
	}
	return nil
}
