// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

// DiffOp classifies one line of a BDInfo comparison.
type DiffOp string

const (
	DiffMatch   DiffOp = "match"
	DiffAdded   DiffOp = "added"
	DiffRemoved DiffOp = "removed"
)

// DiffEntry is one output row of the BDInfo differ.
type DiffEntry struct {
	Op   DiffOp
	Line string
}

// DiffResult is the ordered comparison of a local disc report against a
// candidate's report, plus aggregate change counts. Added and Removed both
// being zero is the "probably an exact disc match" signal.
type DiffResult struct {
	Entries []DiffEntry
	Added   int
	Removed int
}

// HasChanges reports whether any line differed between the two reports.
func (d DiffResult) HasChanges() bool {
	return d.Added > 0 || d.Removed > 0
}
