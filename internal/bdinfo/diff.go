// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package bdinfo

import (
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/autobrr/preflight/internal/domain"
)

// Compare diffs the local disc report against a candidate's report text and
// returns classified, priority-ordered entries plus added/removed counts.
func Compare(local Report, candidateText string) domain.DiffResult {
	source, target := relevantLines(local, candidateText)
	return diffLines(source, target)
}

func diffLines(source, target []string) domain.DiffResult {
	var result domain.DiffResult

	dmp := diffmatchpatch.New()
	srcText := strings.Join(source, "\n") + "\n"
	dstText := strings.Join(target, "\n") + "\n"

	srcChars, dstChars, lineArray := dmp.DiffLinesToChars(srcText, dstText)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(srcChars, dstChars, false), lineArray)

	for _, d := range diffs {
		var op domain.DiffOp
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			op = domain.DiffMatch
		case diffmatchpatch.DiffDelete:
			op = domain.DiffRemoved
		case diffmatchpatch.DiffInsert:
			op = domain.DiffAdded
		}

		for _, line := range strings.Split(d.Text, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			result.Entries = append(result.Entries, domain.DiffEntry{Op: op, Line: line})
			switch op {
			case domain.DiffAdded:
				result.Added++
			case domain.DiffRemoved:
				result.Removed++
			}
		}
	}

	// Frame-rate differences almost always mean genuinely different source
	// material, so they sort ahead of everything; cosmetic subtitle and
	// graphics track lines sort last.
	sort.SliceStable(result.Entries, func(i, j int) bool {
		ti, tj := lineTier(result.Entries[i].Line), lineTier(result.Entries[j].Line)
		if ti != tj {
			return ti < tj
		}
		return strings.ToLower(result.Entries[i].Line) < strings.ToLower(result.Entries[j].Line)
	})

	return result
}

func lineTier(line string) int {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "fps"):
		return 0
	case strings.Contains(lower, "subtitle"), strings.Contains(lower, "presentation graphics"):
		return 2
	default:
		return 1
	}
}

// Warning renders the reviewer-facing caution for one compared candidate.
// A diff with zero differences is a stronger signal than a real diff: it
// means the candidate is probably the exact same disc.
func Warning(releaseName, candidateText string, result domain.DiffResult) string {
	if candidateText == "" {
		return "no BDInfo found for " + releaseName
	}
	if !result.HasChanges() {
		return "no differences found against " + releaseName
	}
	return ""
}
