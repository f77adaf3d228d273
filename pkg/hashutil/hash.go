// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package hashutil normalizes torrent info hashes. Client APIs disagree on
// hash casing: qBittorrent and Deluge report lowercase, rTorrent names its
// session files in uppercase, and trackers return either.
package hashutil

import "strings"

// Normalize trims whitespace and lowercases a hash. Returns an empty string
// for blank input.
func Normalize(hash string) string {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return ""
	}
	return strings.ToLower(hash)
}

// NormalizeUpper trims whitespace and uppercases a hash.
func NormalizeUpper(hash string) string {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return ""
	}
	return strings.ToUpper(hash)
}

// ForClientKind applies the case convention of the given client family.
// Unknown kinds get the hash back trimmed but otherwise untouched.
func ForClientKind(hash, kind string) string {
	switch kind {
	case "qbit", "qbittorrent", "deluge", "transmission":
		return Normalize(hash)
	case "rtorrent":
		return NormalizeUpper(hash)
	default:
		return strings.TrimSpace(hash)
	}
}

// Equal compares two hashes ignoring case. An empty hash never equals
// anything, absence of a hash is not an identity.
func Equal(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}

// Dedupe lowercases a hash list, dropping blanks and duplicates while
// preserving first-occurrence order.
func Dedupe(hashes []string) []string {
	if len(hashes) == 0 {
		return nil
	}

	result := make([]string, 0, len(hashes))
	seen := make(map[string]struct{}, len(hashes))
	for _, hash := range hashes {
		normalized := Normalize(hash)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		result = append(result, normalized)
	}
	return result
}
