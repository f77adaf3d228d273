// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package reuse decides whether an existing .torrent can be attached to a
// new upload instead of hashing the content again. The validator checks one
// candidate against the release's file layout; the locator orchestrates the
// scan across configured torrent clients.
package reuse

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/anacrolix/torrent/metainfo"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/preflight/internal/domain"
	"github.com/autobrr/preflight/internal/torrentclient"
	"github.com/autobrr/preflight/pkg/hashutil"
	"github.com/autobrr/preflight/pkg/pathcmp"
)

// Piece-geometry thresholds. These are tracker-convention numbers enforced
// as exact literals by the trackers themselves; do not "clean them up".
const (
	pieceCountSoftLimit = 5000
	pieceSizeSoftLimit  = 4294304 // ~4 MiB

	pieceCountMidLimit = 8000
	pieceSizeMidLimit  = 8488608 // ~8 MiB

	pieceCountHardLimit = 12000

	pieceSizeFloor = 32768 // 32 KiB

	torrentFileSizeLimitKiB = 250
)

// Origin describes the client a candidate came from: the client family
// decides hash-case normalization, and the path mapping translates the
// uploader's paths into the client's own convention.
type Origin struct {
	Kind        string
	PathMapping torrentclient.PathMapping
}

// Validate decides whether one candidate .torrent can be reused verbatim for
// the release. Structural checks run first; piece-geometry checks only gate
// candidates that already match structurally, because geometry is
// meaningless for the wrong content.
func Validate(release *domain.ReleaseDescriptor, candidate domain.TorrentCandidate, origin Origin) domain.ReuseVerdict {
	hash, torrentPath := normalizeHash(candidate.InfoHash, candidate.TorrentPath, origin.Kind)

	verdict := domain.ReuseVerdict{Path: torrentPath}

	if _, err := os.Stat(torrentPath); err != nil {
		verdict.Reason = "torrent file not found"
		return verdict
	}

	mi, err := metainfo.LoadFromFile(torrentPath)
	if err != nil {
		log.Debug().Err(err).Str("path", torrentPath).Msg("could not read torrent file")
		verdict.Reason = "unreadable torrent file"
		return verdict
	}
	info, err := mi.UnmarshalInfo()
	if err != nil {
		log.Debug().Err(err).Str("path", torrentPath).Msg("could not unmarshal torrent info")
		verdict.Reason = "malformed torrent metadata"
		return verdict
	}

	files := torrentFilePaths(&info)

	var valid, wrongFile bool

	switch {
	case hashMatchesRelease(release, hash):
		// Identical info-hash means identical content and layout; the
		// structural checks are trivially satisfied.
		valid = true

	case release.IsDisc() || (release.KeepFolder && release.IsDir):
		// The release kept its original folder layout, so any structural
		// drift since the torrent was made is conclusive.
		valid = info.BestName() == release.Name &&
			strings.Contains(commonPath(files), release.FolderName())
		if !valid {
			verdict.Reason = "modified file structure"
		}

	case len(files) == 1 && len(release.Files) == 1:
		torrentFile := files[0]
		if path.Base(torrentFile) == filepath.Base(release.Files[0]) {
			if torrentFile == path.Base(torrentFile) {
				valid = true
			} else {
				// Same file name but nested inside a folder: the torrent
				// carries structure the release does not have.
				wrongFile = true
			}
		}
		if !valid && !wrongFile {
			verdict.Reason = "file name mismatch"
		}

	case len(files) == len(release.Files):
		torrentPrefix := commonPath(files)
		actualPrefix := mapLocalPath(commonPath(release.Files), release.Path, origin.PathMapping)
		valid = strings.Contains(actualPrefix, torrentPrefix)
		if !valid {
			verdict.Reason = "path prefix mismatch"
		}

	default:
		verdict.Reason = "file count mismatch"
	}

	if !valid && !wrongFile {
		return verdict
	}

	torrentFileKiB := float64(0)
	if fi, err := os.Stat(torrentPath); err == nil {
		torrentFileKiB = float64(fi.Size()) / 1024
	}

	pieces := info.NumPieces()
	pieceLen := info.PieceLength
	maxPiece := release.MaxPieceSizeMiB

	switch {
	case pieces >= pieceCountSoftLimit && pieceLen < pieceSizeSoftLimit && (maxPiece == 0 || maxPiece >= 4):
		verdict.Reason = "needs less than 5000 pieces at a 4 MiB piece size"
	case pieces >= pieceCountMidLimit && pieceLen < pieceSizeMidLimit && (maxPiece == 0 || maxPiece >= 8) && !release.PreferSmallPieces:
		verdict.Reason = "needs less than 8000 pieces at an 8 MiB piece size"
	case maxPiece == 0 && pieces >= pieceCountHardLimit:
		verdict.Reason = "more than 12000 pieces"
	case pieceLen < pieceSizeFloor:
		verdict.Reason = "piece size too small to reuse"
	case maxPiece == 0 && torrentFileKiB > torrentFileSizeLimitKiB:
		verdict.Reason = "torrent file exceeds 250 KiB"
	case wrongFile:
		verdict.Reason = "unexpected files in torrent"
	default:
		verdict.Valid = true
	}

	return verdict
}

// normalizeHash applies the client family's hash case convention and
// substitutes the normalized spelling into the candidate path, because the
// client APIs are case-sensitive in incompatible ways.
func normalizeHash(hash, torrentPath, kind string) (string, string) {
	normalized := hashutil.ForClientKind(hash, kind)
	if normalized != "" {
		torrentPath = strings.ReplaceAll(torrentPath, hashutil.NormalizeUpper(hash), normalized)
		torrentPath = strings.ReplaceAll(torrentPath, hashutil.Normalize(hash), normalized)
	}
	return normalized, torrentPath
}

func hashMatchesRelease(release *domain.ReleaseDescriptor, hash string) bool {
	return hashutil.Equal(release.InfoHash, hash) || hashutil.Equal(release.CrossHash, hash)
}

// torrentFilePaths returns the declared file paths, rooted under the torrent
// name for multi-file torrents so they compare like on-disk paths.
func torrentFilePaths(info *metainfo.Info) []string {
	if len(info.Files) == 0 {
		return []string{info.BestName()}
	}

	root := info.BestName()
	paths := make([]string, 0, len(info.Files))
	for i := range info.Files {
		parts := info.Files[i].BestPath()
		if root != "" && (len(parts) == 0 || parts[0] != root) {
			parts = append([]string{root}, parts...)
		}
		paths = append(paths, path.Join(parts...))
	}
	return paths
}

// commonPath returns the deepest directory prefix shared by all paths, or
// the single path itself.
func commonPath(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	if len(paths) == 1 {
		return pathcmp.Normalize(paths[0])
	}

	prefix := strings.Split(pathcmp.Normalize(paths[0]), "/")
	for _, p := range paths[1:] {
		parts := strings.Split(pathcmp.Normalize(p), "/")
		if len(parts) < len(prefix) {
			prefix = prefix[:len(parts)]
		}
		for i := range prefix {
			if prefix[i] != parts[i] {
				prefix = prefix[:i]
				break
			}
		}
	}
	return strings.Join(prefix, "/")
}

// mapLocalPath rewrites the release-side prefix using the client's
// local-to-remote path mapping, so a client on a different host or mount is
// compared using its own path convention.
func mapLocalPath(prefix, releasePath string, mapping torrentclient.PathMapping) string {
	local, remote := mapping.Resolve(releasePath)
	if local == "" || strings.EqualFold(local, remote) {
		return pathcmp.Normalize(prefix)
	}
	if !pathcmp.ContainsFold(releasePath, local) {
		return pathcmp.Normalize(prefix)
	}
	return pathcmp.Normalize(strings.ReplaceAll(prefix, local, remote))
}
