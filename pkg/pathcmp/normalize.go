// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package pathcmp provides path normalization helpers for comparing torrent
// file layouts against on-disk layouts. Torrent metainfo paths are always
// forward-slashed, so comparisons use path semantics (not filepath).
package pathcmp

import (
	"path"
	"strings"
)

// Normalize prepares a file path for comparison by converting backslashes
// to forward slashes, cleaning redundant elements, and trimming trailing
// slashes. Windows drive roots keep their trailing slash (C:/).
func Normalize(p string) string {
	if p == "" {
		return ""
	}
	p = strings.ReplaceAll(p, "\\", "/")

	// path.Clean would turn C:/ into C:, which no longer compares equal to
	// a drive-rooted prefix.
	if len(p) >= 2 && isDriveLetter(p[0]) && p[1] == ':' {
		drive := p[:2]
		rest := p[2:]
		if rest == "" {
			return drive
		}
		rest = path.Clean(rest)
		if rest == "/" || rest == "." {
			return drive + "/"
		}
		return drive + rest
	}

	p = path.Clean(p)
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}

// NormalizeFold is a case-folded Normalize for case-insensitive comparisons.
func NormalizeFold(p string) string {
	return strings.ToLower(Normalize(p))
}

// ContainsFold reports whether haystack contains needle after both sides are
// normalized and case-folded.
func ContainsFold(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	return strings.Contains(NormalizeFold(haystack), NormalizeFold(needle))
}

func isDriveLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
