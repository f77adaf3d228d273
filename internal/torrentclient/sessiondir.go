// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package torrentclient

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/anacrolix/torrent/metainfo"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/zeebo/bencode"

	"github.com/autobrr/preflight/internal/domain"
)

// SessionDirConfig configures a client reached through its session
// directory: rTorrent, Deluge and Transmission all keep <hash>.torrent
// files plus bencoded state next to them.
type SessionDirConfig struct {
	Name string
	Kind string
	Dir  string

	PathMapping PathMapping
}

// SessionDirBackend serves exports and searches straight from a client's
// session directory, with no RPC session at all.
type SessionDirBackend struct {
	cfg SessionDirConfig
}

func NewSessionDirBackend(cfg SessionDirConfig) *SessionDirBackend {
	return &SessionDirBackend{cfg: cfg}
}

func (b *SessionDirBackend) Name() string       { return b.cfg.Name }
func (b *SessionDirBackend) Kind() string       { return b.cfg.Kind }
func (b *SessionDirBackend) StorageDir() string { return b.cfg.Dir }

func (b *SessionDirBackend) PathMap() (local, remote []string) {
	return b.cfg.PathMapping.Local, b.cfg.PathMapping.Remote
}

// ExportTorrent reads <hash>.torrent from the session directory. rTorrent
// names session files with upper-case hashes, the libtorrent family with
// lower-case, so both spellings are tried.
func (b *SessionDirBackend) ExportTorrent(_ context.Context, hash string) ([]byte, error) {
	for _, candidate := range []string{hash, strings.ToLower(hash), strings.ToUpper(hash)} {
		data, err := os.ReadFile(filepath.Join(b.cfg.Dir, candidate+".torrent"))
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "read session torrent %s", candidate)
		}
	}
	return nil, errors.Errorf("no session torrent for hash %s in %s", hash, b.cfg.Dir)
}

// SearchTorrents scans the session directory, parsing each .torrent's name
// and, where the client keeps one, its bencoded state file. Torrents no
// longer referenced by the client's session state are skipped.
func (b *SessionDirBackend) SearchTorrents(_ context.Context, query string) ([]domain.TorrentCandidate, error) {
	torrentsDir := b.cfg.Dir
	if b.cfg.Kind == KindTransmission {
		torrentsDir = filepath.Join(b.cfg.Dir, "torrents")
	}

	matches, err := filepath.Glob(filepath.Join(torrentsDir, "*.torrent"))
	if err != nil {
		return nil, errors.Wrapf(err, "glob error: %s", torrentsDir)
	}

	active := b.activeHashes()

	var results []domain.TorrentCandidate
	for _, match := range matches {
		hash := sessionFileHash(match)
		if active != nil {
			if _, ok := active[strings.ToLower(hash)]; !ok {
				continue
			}
		}

		mi, err := metainfo.LoadFromFile(match)
		if err != nil {
			log.Debug().Err(err).Str("file", match).Msg("could not load session torrent")
			continue
		}
		info, err := mi.UnmarshalInfo()
		if err != nil {
			log.Debug().Err(err).Str("file", match).Msg("could not unmarshal session torrent")
			continue
		}

		name := info.BestName()
		if query != "" && !containsFold(name, query) {
			continue
		}

		cand := domain.TorrentCandidate{
			Name:        name,
			InfoHash:    mi.HashInfoBytes().HexString(),
			PieceLength: info.PieceLength,
			PieceCount:  info.NumPieces(),
			TorrentPath: match,
			Origin:      b.cfg.Name,
		}
		if b.cfg.Kind == KindRTorrent {
			if state, err := decodeRTorrentState(match); err == nil {
				cand.Desc = state.Directory
			}
		}

		results = append(results, cand)
	}

	return results, nil
}

// activeHashes returns the set of hashes the client session still tracks,
// or nil when the client keeps no usable state index.
func (b *SessionDirBackend) activeHashes() map[string]struct{} {
	if b.cfg.Kind != KindDeluge {
		return nil
	}

	resume, err := decodeDelugeFastresume(filepath.Join(b.cfg.Dir, "torrents.fastresume"))
	if err != nil {
		log.Debug().Err(err).Str("client", b.cfg.Name).Msg("no deluge fastresume index")
		return nil
	}

	active := make(map[string]struct{}, len(resume))
	for torrentID := range resume {
		active[strings.ToLower(torrentID)] = struct{}{}
	}
	return active
}

// sessionFileHash extracts the info-hash from a session file name.
func sessionFileHash(file string) string {
	_, fileName := filepath.Split(file)
	return strings.TrimSuffix(fileName, filepath.Ext(fileName))
}

type rtorrentStateFile struct {
	Custom struct {
		AddTime     string `bencode:"addtime"`
		SeedingTime string `bencode:"seedingtime"`
	} `bencode:"custom"`
	Directory         string `bencode:"directory"`
	TimestampFinished int64  `bencode:"timestamp.finished"`
}

func decodeRTorrentState(torrentPath string) (*rtorrentStateFile, error) {
	dat, err := os.ReadFile(torrentPath + ".rtorrent")
	if err != nil {
		return nil, err
	}

	var state rtorrentStateFile
	if err := bencode.DecodeBytes(dat, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func decodeDelugeFastresume(path string) (map[string]interface{}, error) {
	dat, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var resume map[string]interface{}
	if err := bencode.DecodeBytes(dat, &resume); err != nil {
		return nil, err
	}
	return resume, nil
}
