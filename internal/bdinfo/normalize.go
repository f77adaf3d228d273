// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package bdinfo normalizes BDInfo disc reports and diffs a local report
// against a dupe candidate's report. Candidate reports usually arrive inside
// a tracker's free-text description field, so markup and per-rip cosmetic
// noise is stripped from both sides before any line is compared.
package bdinfo

import (
	"regexp"
	"strings"
)

var (
	// "/ DN -31dB" playlist-normalization suffixes differ between playlist
	// rips of the same disc without indicating different content.
	playlistVariationRe = regexp.MustCompile(`(?i)/\s*DN\s*-\d+dB`)

	// Bitrate figures on subtitle and presentation-graphics lines routinely
	// differ by rounding between two rips of the identical disc.
	bitrateVariationRe = regexp.MustCompile(`(?i)\d+(?:[.,]\d+)?(\s*kbps)`)

	bbcodeRe    = regexp.MustCompile(`\[[^\]]*\]`)
	htmlTagRe   = regexp.MustCompile(`<[^>]*>`)
	lineBreakRe = regexp.MustCompile(`(?i)<br\s*/?>`)
	paraCloseRe = regexp.MustCompile(`(?i)</p\s*>`)
)

// stripFormatting removes BBCode and HTML markup, converting explicit HTML
// line breaks to newlines first so line structure survives.
func stripFormatting(content string) string {
	content = lineBreakRe.ReplaceAllString(content, "\n")
	content = paraCloseRe.ReplaceAllString(content, "\n")
	content = bbcodeRe.ReplaceAllString(content, "")
	content = htmlTagRe.ReplaceAllString(content, "")
	return content
}

// stripPlaylistVariations removes technical variations that differ between
// playlists of the same disc but represent the same media content.
func stripPlaylistVariations(text string) string {
	if text == "" {
		return ""
	}

	text = playlistVariationRe.ReplaceAllString(text, "")

	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		lower := strings.ToLower(line)

		if strings.Contains(lower, "presentation graphics") || strings.Contains(lower, "subtitle:") {
			line = strings.TrimRight(bitrateVariationRe.ReplaceAllString(line, "$1"), " \t")
			if strings.HasSuffix(line, "kbps") {
				line = strings.TrimRight(strings.TrimSuffix(line, "kbps"), " \t")
			}
			if strings.HasSuffix(line, "/") {
				line = strings.TrimRight(strings.TrimSuffix(line, "/"), " \t")
			}
		}

		// Leading "*" marks the default track, cosmetic only.
		if strings.HasPrefix(line, "*") {
			line = strings.TrimLeft(line[1:], " \t")
		}

		cleaned = append(cleaned, line)
	}

	return strings.Join(cleaned, "\n")
}

// technicalLines filters content down to video/audio/subtitle/graphics track
// lines and collapses internal whitespace, so prose sections of a report
// never enter the diff. In strict mode (full playlist reports) lines must
// additionally carry an explicit track keyword.
func technicalLines(content string, strict bool) []string {
	var results []string

	for _, line := range strings.Split(content, "\n") {
		clean := strings.TrimSpace(line)
		lower := strings.ToLower(clean)

		if !strings.Contains(lower, "kbps") &&
			!strings.Contains(lower, "presentation graphics") &&
			!strings.Contains(lower, "subtitle:") {
			continue
		}
		if strict &&
			!strings.Contains(clean, "Video:") &&
			!strings.Contains(clean, "Audio:") &&
			!strings.Contains(clean, "Subtitle:") {
			continue
		}

		results = append(results, strings.Join(strings.Fields(clean), " "))
	}

	return results
}
