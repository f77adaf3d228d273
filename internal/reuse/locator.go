// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package reuse

import (
	"context"
	"os"
	"path/filepath"

	"github.com/anacrolix/torrent/metainfo"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/preflight/internal/domain"
	"github.com/autobrr/preflight/internal/torrentclient"
	"github.com/autobrr/preflight/pkg/hashutil"
)

// smallPieceThreshold is the "polite torrent" piece size some trackers
// prefer: a valid candidate at or under it is ideal when small pieces are
// requested.
const smallPieceThreshold = 8 << 20 // 8 MiB

// bestMatch tracks the smallest-piece-size valid candidate seen so far.
type bestMatch struct {
	path     string
	hash     string
	pieceLen int64
}

// Locator scans configured torrent clients for a reusable .torrent.
type Locator struct{}

func NewLocator() *Locator {
	return &Locator{}
}

// FindReusable iterates the clients in priority order and returns the first
// ideal candidate, falling back to the smallest-piece-size valid candidate
// when the preference cares about piece size. The scan is sequential by
// design: the first acceptable candidate stops further network calls.
//
// Failures against one client are logged and treated as "no candidate from
// this client"; they never abort the scan of the remaining clients.
func (l *Locator) FindReusable(ctx context.Context, release *domain.ReleaseDescriptor, backends []torrentclient.Backend, pref domain.PiecePreference) (string, bool) {
	var best *bestMatch

	for _, backend := range backends {
		result, ideal := l.searchBackend(ctx, release, backend, pref, best)
		if result == nil {
			continue
		}

		if !pref.Active() {
			log.Debug().Str("client", backend.Name()).Msg("found valid torrent, stopping search")
			return result.path, true
		}
		if ideal {
			log.Debug().Str("client", backend.Name()).Str("hash", result.hash).Msg("found valid torrent with preferred piece size")
			return result.path, true
		}

		best = result
	}

	if pref.Active() && best != nil {
		log.Debug().Str("hash", best.hash).Int64("pieceLength", best.pieceLen).Msg("using best match torrent")
		return best.path, true
	}

	return "", false
}

// searchBackend tries hash lookups first, then a name search when the
// client supports one. It returns the running best match (possibly updated)
// and whether the returned match is ideal under the active preference.
func (l *Locator) searchBackend(ctx context.Context, release *domain.ReleaseDescriptor, backend torrentclient.Backend, pref domain.PiecePreference, best *bestMatch) (*bestMatch, bool) {
	origin := originFor(backend)

	for _, hash := range releaseHashes(release) {
		torrentPath, err := l.resolveTorrentPath(ctx, release, backend, hash)
		if err != nil {
			log.Debug().Err(err).Str("client", backend.Name()).Str("hash", hash).Msg("could not fetch torrent")
			continue
		}

		verdict := Validate(release, domain.TorrentCandidate{
			InfoHash:    hash,
			TorrentPath: torrentPath,
			Origin:      backend.Name(),
		}, origin)
		if !verdict.Valid {
			log.Debug().Str("client", backend.Name()).Str("hash", hash).Str("reason", verdict.Reason).Msg("torrent not reusable")
			continue
		}

		if match, ideal := weigh(verdict.Path, hash, pref, best); match != nil {
			return match, ideal
		}
	}

	candidates, err := backend.SearchTorrents(ctx, release.Name)
	if err != nil {
		if err != torrentclient.ErrSearchUnsupported {
			log.Debug().Err(err).Str("client", backend.Name()).Msg("client search failed")
		}
		return best, false
	}

	for i := range candidates {
		cand := candidates[i]
		if cand.TorrentPath == "" {
			cand.TorrentPath, err = l.resolveTorrentPath(ctx, release, backend, cand.InfoHash)
			if err != nil {
				log.Debug().Err(err).Str("client", backend.Name()).Str("hash", cand.InfoHash).Msg("could not fetch searched torrent")
				continue
			}
		}

		verdict := Validate(release, cand, origin)
		if !verdict.Valid {
			continue
		}

		if match, ideal := weigh(verdict.Path, cand.InfoHash, pref, best); match != nil {
			return match, ideal
		}
	}

	return best, false
}

// weigh decides what to do with a freshly validated candidate: return it as
// final (no active preference), return it as ideal, or fold it into the
// best-match tracking. A nil return means "keep scanning".
func weigh(path, hash string, pref domain.PiecePreference, best *bestMatch) (*bestMatch, bool) {
	pieceLen, err := pieceLength(path)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("could not re-read piece size")
		return nil, false
	}

	match := &bestMatch{path: path, hash: hash, pieceLen: pieceLen}

	if !pref.Active() {
		return match, true
	}
	if pref.SmallPieces && pieceLen <= smallPieceThreshold {
		return match, true
	}
	if pref.MaxMiB > 0 && pieceLen < int64(pref.MaxMiB)<<20 {
		return match, true
	}

	if best == nil || pieceLen < best.pieceLen {
		return match, false
	}
	return nil, false
}

// resolveTorrentPath locates the .torrent for a hash: straight from the
// client's session directory when one is configured, otherwise exported over
// RPC (or proxy) and cached in the release work dir. The cache is keyed by
// hash, so concurrent writers for the same content are idempotent.
func (l *Locator) resolveTorrentPath(ctx context.Context, release *domain.ReleaseDescriptor, backend torrentclient.Backend, hash string) (string, error) {
	if dir := backend.StorageDir(); dir != "" {
		return filepath.Join(dir, hash+".torrent"), nil
	}

	cached := filepath.Join(release.WorkDir, hash+".torrent")
	if _, err := os.Stat(cached); err == nil {
		return cached, nil
	}

	data, err := backend.ExportTorrent(ctx, hash)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(release.WorkDir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(cached, data, 0o644); err != nil {
		return "", err
	}

	log.Debug().Str("path", cached).Msg("saved exported torrent")
	return cached, nil
}

func releaseHashes(release *domain.ReleaseDescriptor) []string {
	return hashutil.Dedupe([]string{release.InfoHash, release.CrossHash})
}

func originFor(backend torrentclient.Backend) Origin {
	local, remote := backend.PathMap()
	return Origin{
		Kind:        backend.Kind(),
		PathMapping: torrentclient.PathMapping{Local: local, Remote: remote},
	}
}

func pieceLength(torrentPath string) (int64, error) {
	mi, err := metainfo.LoadFromFile(torrentPath)
	if err != nil {
		return 0, err
	}
	info, err := mi.UnmarshalInfo()
	if err != nil {
		return 0, err
	}
	return info.PieceLength, nil
}
