// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package torrentclient exposes the two operations the reuse engine needs
// from a torrent client: export a .torrent by hash and search the client's
// torrent list. Each supported client family implements Backend; everything
// richer than these two calls stays out of scope.
package torrentclient

import (
	"context"

	"github.com/autobrr/preflight/internal/domain"
)

// Client kinds. The kind decides hash-case normalization and which torrent
// sources are available.
const (
	KindQbit         = "qbit"
	KindRTorrent     = "rtorrent"
	KindDeluge       = "deluge"
	KindTransmission = "transmission"
)

// Backend is one configured torrent client.
type Backend interface {
	// Name is the user-facing config name of this client.
	Name() string

	// Kind is one of the Kind constants.
	Kind() string

	// ExportTorrent fetches the raw .torrent bytes for a hash.
	ExportTorrent(ctx context.Context, hash string) ([]byte, error)

	// SearchTorrents lists torrents whose name matches the query. Backends
	// that cannot search return ErrSearchUnsupported.
	SearchTorrents(ctx context.Context, query string) ([]domain.TorrentCandidate, error)

	// StorageDir is the client's .torrent session directory, empty when the
	// client only serves torrents over RPC.
	StorageDir() string

	// PathMap returns the configured local/remote path substitution pairs
	// for clients running on a different host or mount.
	PathMap() (local, remote []string)
}

// PathMapping is a reusable local/remote substitution table.
type PathMapping struct {
	Local  []string
	Remote []string
}

// Resolve picks the mapping pair whose local prefix matches the given path.
// Falls back to the first configured pair.
func (m PathMapping) Resolve(path string) (local, remote string) {
	if len(m.Local) == 0 || len(m.Remote) == 0 {
		return "", ""
	}

	local, remote = m.Local[0], m.Remote[0]
	for i, l := range m.Local {
		if l == "" {
			continue
		}
		if containsFold(path, l) {
			local = l
			if i < len(m.Remote) {
				remote = m.Remote[i]
			}
			break
		}
	}
	return local, remote
}
