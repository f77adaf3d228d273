// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package bdinfo

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/preflight/internal/domain"
)

const (
	summaryFile         = "BD_SUMMARY_00.txt"
	extendedSummaryFile = "BD_SUMMARY_EXT_00.txt"
)

// Report holds the local disc summaries produced during release preparation.
// Either side may be empty when the corresponding file was never written.
type Report struct {
	Summary  string
	Extended string
}

// LoadReport reads the brief and extended BDInfo summaries from the release
// working directory. Missing files yield empty strings, not errors.
func LoadReport(workDir string) Report {
	read := func(name string) string {
		data, err := os.ReadFile(filepath.Join(workDir, name))
		if err != nil {
			if !os.IsNotExist(err) {
				log.Debug().Err(err).Str("file", name).Msg("could not read disc summary")
			}
			return ""
		}
		return string(data)
	}

	return Report{
		Summary:  read(summaryFile),
		Extended: read(extendedSummaryFile),
	}
}

// CandidateText locates BDInfo content within a dupe candidate. Trackers
// either expose a dedicated field or bury the report in the description.
func CandidateText(c *domain.TorrentCandidate) string {
	if c.BDInfoText != "" {
		return c.BDInfoText
	}
	for _, keyword := range []string{"Disc Title:", "Disc Label:", "Disc Size: "} {
		if strings.Contains(c.Desc, keyword) {
			return c.Desc
		}
	}
	return ""
}

// relevantLines normalizes both sides and selects which local summary to
// compare against. When the candidate text is a full playlist report, the
// plain summary is used locally: an extended-vs-extended comparison of two
// different playlists from the same disc produces excessive false diffs.
func relevantLines(local Report, candidateText string) (source, target []string) {
	cleanDup := stripPlaylistVariations(stripFormatting(candidateText))
	cleanSum := stripPlaylistVariations(local.Summary)
	cleanExt := stripPlaylistVariations(local.Extended)

	isExtended := strings.Contains(cleanDup, "PLAYLIST REPORT:") || strings.Contains(cleanDup, "DISC INFO:")
	isFull := isExtended && strings.Contains(cleanDup, "Video:")

	target = technicalLines(cleanDup, isFull)

	sourceContent := cleanSum
	if isExtended && !isFull {
		sourceContent = cleanExt
	}
	source = technicalLines(sourceContent, false)

	return source, target
}
