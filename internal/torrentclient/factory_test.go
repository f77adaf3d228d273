// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package torrentclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/preflight/internal/domain"
)

func TestNewBackends(t *testing.T) {
	configs := []domain.ClientConfig{
		{Name: "qb", Kind: "qBittorrent", Host: "http://localhost:8080"},
		{Name: "rt", Kind: "rtorrent", TorrentStorageDir: "/session"},
		{Name: "dl", Kind: "deluge", TorrentStorageDir: "/state"},
	}

	backends, err := NewBackends(configs)
	require.NoError(t, err)
	require.Len(t, backends, 3)

	assert.Equal(t, "qb", backends[0].Name())
	assert.Equal(t, KindRTorrent, backends[1].Kind())
	assert.Equal(t, "/session", backends[1].StorageDir())
	assert.Equal(t, KindDeluge, backends[2].Kind())
}

func TestNewBackendsUnsupportedKind(t *testing.T) {
	_, err := NewBackends([]domain.ClientConfig{{Name: "x", Kind: "utorrent"}})
	assert.ErrorContains(t, err, "unsupported client kind")
}

func TestPathMappingResolve(t *testing.T) {
	m := PathMapping{
		Local:  []string{"/mnt/local", "/mnt/other"},
		Remote: []string{"/data", "/storage"},
	}

	local, remote := m.Resolve("/mnt/other/release")
	assert.Equal(t, "/mnt/other", local)
	assert.Equal(t, "/storage", remote)

	// Unmatched paths fall back to the first configured pair.
	local, remote = m.Resolve("/somewhere/else")
	assert.Equal(t, "/mnt/local", local)
	assert.Equal(t, "/data", remote)

	local, remote = PathMapping{}.Resolve("/any")
	assert.Empty(t, local)
	assert.Empty(t, remote)
}
