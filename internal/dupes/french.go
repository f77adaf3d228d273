// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package dupes

import (
	"regexp"
	"strings"

	"github.com/autobrr/preflight/internal/domain"
)

// French trackers rank releases by language tier: a release with French
// audio always supersedes a subtitles-only (VOSTFR) or original-audio (VO)
// version of the same content. Tags at or above frenchAudioThreshold
// indicate French audio is present.
var frenchLangHierarchy = map[string]int{
	"MULTI":      7,
	"VFF":        6,
	"VFQ":        6,
	"VF2":        6,
	"VOF":        5,
	"TRUEFRENCH": 4,
	"FRENCH":     3,
	"VOSTFR":     2,
	"VO":         1,
}

const frenchAudioThreshold = 3

var frenchTagPatterns = buildFrenchTagPatterns()

func buildFrenchTagPatterns() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(frenchLangHierarchy))
	for tag := range frenchLangHierarchy {
		// The tag must be delimited by dots, spaces, hyphens, underscores,
		// or string boundaries so VO does not match inside VOSTFR and
		// FRENCH does not match inside TRUEFRENCH.
		patterns[tag] = regexp.MustCompile(`(?:^|[\.\s\-_])(` + regexp.QuoteMeta(tag) + `)(?:[\.\s\-_]|$)`)
	}
	return patterns
}

// ExtractFrenchTag returns the highest-ranked French language tag found in a
// release name and its hierarchy level, or ("", 0) when none is present.
func ExtractFrenchTag(name string) (string, int) {
	upper := strings.ToUpper(name)
	bestTag := ""
	bestLevel := 0
	for tag, level := range frenchLangHierarchy {
		if level > bestLevel && frenchTagPatterns[tag].MatchString(upper) {
			bestTag = tag
			bestLevel = level
		}
	}
	return bestTag, bestLevel
}

// ApplyFrenchHierarchy filters and flags candidates based on the language
// tier of the upload versus each existing release.
//
// When the upload has French audio, existing releases that lack it are
// inferior and dropped from the candidate list. When the upload lacks
// French audio, existing releases that have it are flagged as superseding
// so they stay blocking dupes regardless of other exclusion criteria.
func ApplyFrenchHierarchy(uploadAudio string, candidates []domain.TorrentCandidate) []domain.TorrentCandidate {
	// Silent films are a category of their own, not subject to tier checks.
	if strings.HasPrefix(uploadAudio, "MUET") {
		return candidates
	}

	_, uploadLevel := ExtractFrenchTag(uploadAudio)
	if uploadLevel == 0 {
		// Compound audio strings like "MULTI.VFF" hide the tag behind dots.
		for _, part := range strings.Split(uploadAudio, ".") {
			if _, lv := ExtractFrenchTag(part); lv > uploadLevel {
				uploadLevel = lv
			}
		}
	}

	if uploadLevel >= frenchAudioThreshold {
		filtered := candidates[:0:0]
		for _, cand := range candidates {
			_, existingLevel := ExtractFrenchTag(cand.Name)
			// An untagged candidate could be anything, safer to keep it.
			if existingLevel >= frenchAudioThreshold || existingLevel == 0 {
				filtered = append(filtered, cand)
			}
		}
		return filtered
	}

	for i := range candidates {
		_, existingLevel := ExtractFrenchTag(candidates[i].Name)
		if existingLevel >= frenchAudioThreshold && !candidates[i].HasFlag(domain.FlagFrenchSupersede) {
			candidates[i].Flags = append(candidates[i].Flags, domain.FlagFrenchSupersede)
		}
	}
	return candidates
}
