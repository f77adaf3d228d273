// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package torrentclient

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	qbt "github.com/autobrr/go-qbittorrent"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/preflight/internal/domain"
)

// QbitConfig configures one qBittorrent backend.
type QbitConfig struct {
	Name     string
	Host     string
	Username string
	Password string

	// ProxyURL, when set, exports .torrent files through a qui proxy's
	// /api/v2/torrents/export endpoint instead of direct RPC.
	ProxyURL string

	// TorrentStorageDir short-circuits exports entirely: the session
	// directory already holds <hash>.torrent files.
	TorrentStorageDir string

	EnableSearch bool

	PathMapping PathMapping
}

// QbitBackend talks to qBittorrent over its Web API, optionally through a
// qui proxy for exports.
type QbitBackend struct {
	cfg   QbitConfig
	httpc *http.Client

	mu       sync.Mutex
	client   *qbt.Client
	loggedIn bool
}

func NewQbitBackend(cfg QbitConfig) *QbitBackend {
	return &QbitBackend{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 30 * time.Second},
	}
}

func (b *QbitBackend) Name() string { return b.cfg.Name }
func (b *QbitBackend) Kind() string { return KindQbit }

func (b *QbitBackend) StorageDir() string { return b.cfg.TorrentStorageDir }

func (b *QbitBackend) PathMap() (local, remote []string) {
	return b.cfg.PathMapping.Local, b.cfg.PathMapping.Remote
}

func (b *QbitBackend) connect(ctx context.Context) (*qbt.Client, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.client == nil {
		b.client = qbt.NewClient(qbt.Config{
			Host:     b.cfg.Host,
			Username: b.cfg.Username,
			Password: b.cfg.Password,
			Timeout:  30,
		})
	}

	if !b.loggedIn {
		if err := withRetry(ctx, "qbittorrent login", func() error {
			return b.client.LoginCtx(ctx)
		}); err != nil {
			return nil, err
		}
		b.loggedIn = true
	}

	return b.client, nil
}

// ExportTorrent fetches .torrent bytes for a hash, preferring the proxy
// export endpoint when configured.
func (b *QbitBackend) ExportTorrent(ctx context.Context, hash string) ([]byte, error) {
	if b.cfg.ProxyURL != "" {
		return b.exportViaProxy(ctx, hash)
	}

	client, err := b.connect(ctx)
	if err != nil {
		return nil, err
	}

	var data []byte
	err = withRetry(ctx, "export torrent "+hash, func() error {
		var exportErr error
		data, exportErr = client.ExportTorrentCtx(ctx, hash)
		return exportErr
	})
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.Errorf("empty export response for hash %s", hash)
	}
	return data, nil
}

func (b *QbitBackend) exportViaProxy(ctx context.Context, hash string) ([]byte, error) {
	endpoint := strings.TrimRight(b.cfg.ProxyURL, "/") + "/api/v2/torrents/export"

	var data []byte
	err := withRetry(ctx, "proxy export "+hash, func() error {
		form := url.Values{"hash": {hash}}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := b.httpc.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return errors.Errorf("proxy export returned status %d", resp.StatusCode)
		}

		data, err = io.ReadAll(resp.Body)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.Errorf("empty proxy export response for hash %s", hash)
	}
	return data, nil
}

// SearchTorrents lists the client's torrents and keeps those whose name
// contains the query, case-insensitively.
func (b *QbitBackend) SearchTorrents(ctx context.Context, query string) ([]domain.TorrentCandidate, error) {
	if !b.cfg.EnableSearch {
		return nil, ErrSearchUnsupported
	}

	client, err := b.connect(ctx)
	if err != nil {
		return nil, err
	}

	var torrents []qbt.Torrent
	err = withRetry(ctx, "list torrents", func() error {
		var listErr error
		torrents, listErr = client.GetTorrentsCtx(ctx, qbt.TorrentFilterOptions{})
		return listErr
	})
	if err != nil {
		return nil, err
	}

	var results []domain.TorrentCandidate
	for _, t := range torrents {
		if query != "" && !containsFold(t.Name, query) {
			continue
		}
		results = append(results, domain.TorrentCandidate{
			Name:     t.Name,
			InfoHash: strings.TrimSpace(t.Hash),
			Size:     t.Size,
			Origin:   b.cfg.Name,
		})
	}

	log.Debug().Str("client", b.cfg.Name).Str("query", query).Int("matches", len(results)).Msg("qbittorrent search")

	return results, nil
}
