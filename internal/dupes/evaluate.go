// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package dupes

import (
	"fmt"

	"github.com/autobrr/preflight/internal/bdinfo"
	"github.com/autobrr/preflight/internal/domain"
)

// matchState accumulates identity signals while candidates are filtered.
type matchState struct {
	filenameMatch  bool
	fileCountMatch bool
	sizeMatch      bool
	superseded     bool

	trumpable  *domain.TorrentCandidate
	seasonPack *domain.TorrentCandidate

	matchedName     string
	matchedLink     string
	matchedDownload string
	matchedID       string
	matchedReason   string
}

// remember persists details of the candidate that triggered a match so the
// decision and cross-seed steps can refer back to it.
func (s *matchState) remember(cand domain.TorrentCandidate, reason string) {
	s.matchedName = cand.Name
	if cand.Link != "" {
		s.matchedLink = cand.Link
	}
	if cand.Download != "" {
		s.matchedDownload = cand.Download
	}
	if cand.ID != "" {
		s.matchedID = cand.ID
	}
	s.matchedReason = reason
}

// CandidateDiff pairs a surviving disc candidate with its report diff.
type CandidateDiff struct {
	Candidate domain.TorrentCandidate
	Result    domain.DiffResult
	Warning   string
}

// Evaluation is the pure output of the dupe state machine for one tracker:
// every signal needed to reach a terminal decision, with the ambiguous
// outcomes left for a Resolver instead of being prompted inline.
type Evaluation struct {
	Tracker    string
	Candidates []domain.TorrentCandidate

	ExactMatch  bool
	SizeMatch   bool
	Superseded  bool
	TrumpTarget *domain.TorrentCandidate
	TrumpReason string

	SeasonPack *domain.TorrentCandidate
	Diffs      []CandidateDiff
	Warnings   []string

	matchedName     string
	matchedDownload string
	matchedID       string
}

// HasAmbiguousTrump reports whether a trump question needs resolving: the
// tracker flagged a candidate trumpable, or the upload is an exact match of
// an existing torrent.
func (e *Evaluation) HasAmbiguousTrump() bool {
	return e.TrumpTarget != nil || e.ExactMatch
}

// Options adjusts the evaluation for tracker conventions.
type Options struct {
	// FrenchHierarchy enables the language-tier supersede rule used by
	// French trackers.
	FrenchHierarchy bool
}

// Evaluate runs filtering, identity matching, and disc-report diffing for
// one tracker's candidate list. It performs no prompting and no I/O beyond
// reading the local disc report, so the state machine is testable in
// isolation.
func Evaluate(release *domain.ReleaseDescriptor, candidates []domain.TorrentCandidate, tracker string, opts Options) *Evaluation {
	eval := &Evaluation{Tracker: tracker}
	if len(candidates) == 0 {
		return eval
	}

	if opts.FrenchHierarchy {
		audio := release.AudioTag
		if audio == "" {
			audio = release.Name
		}
		candidates = ApplyFrenchHierarchy(audio, candidates)
	}

	p := profileRelease(release)

	var state matchState
	eval.Candidates = filterCandidates(p, candidates, &state)

	eval.ExactMatch = state.filenameMatch && state.fileCountMatch
	eval.SizeMatch = state.sizeMatch
	eval.Superseded = state.superseded
	eval.SeasonPack = state.seasonPack
	eval.matchedName = state.matchedName
	eval.matchedDownload = state.matchedDownload
	eval.matchedID = state.matchedID

	if state.trumpable != nil || eval.ExactMatch {
		eval.TrumpTarget = state.trumpable
		if eval.ExactMatch {
			eval.TrumpReason = domain.TrumpExactMatch
		} else {
			eval.TrumpReason = domain.TrumpTrumpableRelease
		}
		if eval.TrumpTarget == nil && state.matchedID != "" {
			for i := range eval.Candidates {
				if eval.Candidates[i].ID == state.matchedID {
					eval.TrumpTarget = &eval.Candidates[i]
					break
				}
			}
		}
	}

	if release.Disc == domain.DiscBluRay {
		eval.Diffs = discDiffs(release, eval.Candidates)
	}

	if eval.Superseded {
		eval.Warnings = append(eval.Warnings, "an existing release with French audio supersedes this upload")
	}
	if eval.SeasonPack != nil {
		eval.Warnings = append(eval.Warnings, fmt.Sprintf("a season pack containing this episode exists: %s", eval.SeasonPack.Name))
	}

	return eval
}

// discDiffs compares the local disc report against every candidate that
// exposes disc-info text.
func discDiffs(release *domain.ReleaseDescriptor, candidates []domain.TorrentCandidate) []CandidateDiff {
	report := bdinfo.LoadReport(release.WorkDir)
	if report.Summary == "" {
		return nil
	}

	var diffs []CandidateDiff
	for _, cand := range candidates {
		text := bdinfo.CandidateText(&cand)
		if text == "" {
			continue
		}
		result := bdinfo.Compare(report, text)
		diffs = append(diffs, CandidateDiff{
			Candidate: cand,
			Result:    result,
			Warning:   bdinfo.Warning(release.Name, text, result),
		})
	}
	return diffs
}
