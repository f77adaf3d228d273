// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package torrentclient

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/autobrr/preflight/internal/domain"
)

// NewBackends builds one backend per configured client, preserving the
// configured scan order.
func NewBackends(configs []domain.ClientConfig) ([]Backend, error) {
	backends := make([]Backend, 0, len(configs))

	for _, cfg := range configs {
		mapping := PathMapping{Local: cfg.LocalDirs, Remote: cfg.RemoteDirs}

		switch strings.ToLower(cfg.Kind) {
		case "qbit", "qbittorrent":
			backends = append(backends, NewQbitBackend(QbitConfig{
				Name:              cfg.Name,
				Host:              cfg.Host,
				Username:          cfg.Username,
				Password:          cfg.Password,
				ProxyURL:          cfg.ProxyURL,
				TorrentStorageDir: cfg.TorrentStorageDir,
				EnableSearch:      cfg.EnableSearch,
				PathMapping:       mapping,
			}))
		case KindRTorrent, KindDeluge, KindTransmission:
			backends = append(backends, NewSessionDirBackend(SessionDirConfig{
				Name:        cfg.Name,
				Kind:        strings.ToLower(cfg.Kind),
				Dir:         cfg.TorrentStorageDir,
				PathMapping: mapping,
			}))
		default:
			return nil, errors.Errorf("unsupported client kind %q", cfg.Kind)
		}
	}

	return backends, nil
}
