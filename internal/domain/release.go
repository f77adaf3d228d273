// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package domain holds the value types passed between the reuse, bdinfo and
// dupes services. Release and candidate state is carried explicitly in these
// structs rather than in a shared mutable map.
package domain

import "path/filepath"

// DiscKind identifies the disc source of a release, if any.
type DiscKind string

const (
	DiscNone   DiscKind = ""
	DiscBluRay DiscKind = "BDMV"
	DiscDVD    DiscKind = "DVD"
	DiscHDDVD  DiscKind = "HDDVD"
)

// ReleaseDescriptor describes the local release being prepared for upload.
// It is immutable for the duration of one upload attempt.
type ReleaseDescriptor struct {
	// Path is the filesystem path to the release content (file or directory).
	Path string

	// WorkDir is the per-release working directory. Exported .torrent files
	// are cached here keyed by info-hash, and BDInfo summaries are read from it.
	WorkDir string

	// Name is the release name used for candidate comparison.
	Name string

	// Files is the ordered list of media file paths on disk.
	Files []string

	Disc  DiscKind
	IsDir bool

	// KeepFolder mirrors the --keep-folder flag: the original folder layout
	// must be preserved, so structural validation follows the disc rules.
	KeepFolder bool

	// InfoHash is a known info-hash for this content, when the release was
	// grabbed from a client. CrossHash is a secondary hash from a cross-seed.
	InfoHash  string
	CrossHash string

	// TotalSize is the content size in bytes. For non-disc releases this is
	// the size of the first media file, matching what trackers report.
	TotalSize int64

	// MaxPieceSizeMiB is the maximum-allowed-piece-size policy in MiB.
	// Zero means no policy is set.
	MaxPieceSizeMiB int

	// PreferSmallPieces relaxes the 8000-piece geometry check for callers
	// that deliberately hunt for small-pieced torrents.
	PreferSmallPieces bool

	// AudioTag is the language/audio tag of the release name (e.g.
	// "MULTI.VFF", "VOSTFR"). Consulted by the French tier rule.
	AudioTag string
}

// FolderName returns the base directory name of the release content.
func (r *ReleaseDescriptor) FolderName() string {
	return filepath.Base(r.Path)
}

// IsDisc reports whether the release is a disc source.
func (r *ReleaseDescriptor) IsDisc() bool {
	return r.Disc != DiscNone
}

// PiecePreference encodes how much the caller cares about piece size when
// hunting for a reusable torrent. The zero value means "first valid wins".
type PiecePreference struct {
	// SmallPieces enables the two-tier ideal/best-effort search: candidates
	// at or under the small-piece threshold return immediately, anything
	// else is retained as a running best match.
	SmallPieces bool

	// MaxMiB is an optional tracker-specific ceiling: a valid candidate with
	// a piece size strictly under MaxMiB is treated as ideal. Zero disables
	// the ceiling.
	MaxMiB int
}

// Active reports whether the preference influences the search at all.
func (p PiecePreference) Active() bool {
	return p.SmallPieces || p.MaxMiB > 0
}
