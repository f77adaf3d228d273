// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

// Candidate flags set by tracker adapters before the dupe check runs.
const (
	// FlagFrenchSupersede marks a candidate whose French audio tier ranks
	// above the release's own, making it a blocking dupe on French trackers.
	FlagFrenchSupersede = "french_lang_supersede"

	FlagDV  = "DV"
	FlagHDR = "HDR"
)

// TorrentCandidate describes one discovered .torrent, either exported from a
// torrent client or returned by a tracker search. Read-only once constructed.
type TorrentCandidate struct {
	Name string

	// InfoHash as reported by the origin. Case convention varies by client
	// family and must be normalized before comparison.
	InfoHash string

	// Files is the declared file list. FileCount may exceed len(Files) when
	// the origin only reports a count.
	Files     []string
	FileCount int

	// Size is the declared content size in bytes, zero when unknown.
	Size int64

	PieceLength int64
	PieceCount  int

	// TorrentPath is the on-disk location of the .torrent file, when known.
	TorrentPath string

	// Origin is the client or tracker name this candidate came from.
	Origin string

	// Trumpable is set when the tracker explicitly flags the existing
	// release as eligible for replacement.
	Trumpable bool

	// Link is a human-facing details URL, Download a fetchable .torrent URL.
	Link     string
	Download string

	ID         string
	TypeID     string
	ResID      string
	Internal   bool
	BDInfoText string
	Desc       string

	Flags []string
}

// HasFlag reports whether the candidate carries the given tracker flag.
func (c *TorrentCandidate) HasFlag(flag string) bool {
	for _, f := range c.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// ReuseVerdict is the result of validating one candidate against a release.
type ReuseVerdict struct {
	// Valid is true only when every structural and geometry check passed.
	Valid bool

	// Path is the resolved .torrent path after hash-case normalization.
	Path string

	// Reason names the first failed check, empty when Valid.
	Reason string
}

// DecisionAction is the terminal state of a dupe decision.
type DecisionAction string

const (
	ActionUpload DecisionAction = "upload"
	ActionSkip   DecisionAction = "skip"
	ActionTrump  DecisionAction = "trump"
)

// Trump reasons recorded on a positive trump decision.
const (
	TrumpExactMatch       = "exact_match"
	TrumpTrumpableRelease = "trumpable_release"
)

// DupeDecision is the final output of the orchestrator for one tracker.
// Created once per (release, tracker) pair and never mutated afterward.
type DupeDecision struct {
	Tracker string
	Action  DecisionAction

	// TrumpReason and TrumpTargetID are set when Action is ActionTrump.
	TrumpReason   string
	TrumpTargetID string

	// CrossSeed is a download link to seed against instead of re-uploading,
	// recorded independently of the action whenever a candidate is almost
	// certainly the same encode.
	CrossSeed string

	Warnings []string
}
