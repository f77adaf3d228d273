// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/autobrr/preflight/internal/domain"
	"github.com/autobrr/preflight/internal/dupes"
)

// promptResolver answers ambiguous dupe outcomes by asking on the terminal.
type promptResolver struct {
	cmd *cobra.Command
	in  *bufio.Reader
}

func newPromptResolver(cmd *cobra.Command) *promptResolver {
	return &promptResolver{
		cmd: cmd,
		in:  bufio.NewReader(os.Stdin),
	}
}

func (r *promptResolver) ConfirmTrump(ctx context.Context, eval *dupes.Evaluation) (bool, error) {
	if eval.TrumpTarget != nil {
		r.cmd.Println("Trumpable torrent found:")
		r.cmd.Printf("  %s\n", formatCandidate(*eval.TrumpTarget))
	} else {
		r.cmd.Println("Exact match found:")
		for _, cand := range eval.Candidates {
			r.cmd.Printf("  %s\n", formatCandidate(cand))
		}
	}
	r.cmd.Println("You will have the option to report the trumped torrent if you upload.")
	return r.askYesNo(ctx, fmt.Sprintf("Are you trumping this release on %s?", eval.Tracker))
}

func (r *promptResolver) ConfirmUpload(ctx context.Context, eval *dupes.Evaluation) (bool, error) {
	r.cmd.Printf("Check if these are actually dupes on %s:\n", eval.Tracker)
	for _, cand := range eval.Candidates {
		r.cmd.Printf("  %s\n", formatCandidate(cand))
	}

	for _, diff := range eval.Diffs {
		r.cmd.Printf("\nBDInfo comparison against %s:\n", diff.Candidate.Name)
		printDiff(r.cmd, diff.Result)
		if diff.Warning != "" {
			r.cmd.Printf("  %s\n", diff.Warning)
		}
	}
	for _, warning := range eval.Warnings {
		r.cmd.Printf("  warning: %s\n", warning)
	}

	return r.askYesNo(ctx, fmt.Sprintf("Upload to %s anyway?", eval.Tracker))
}

// askYesNo reads a y/n answer, defaulting to no. An interrupted prompt
// cancels the whole decision rather than assuming an answer.
func (r *promptResolver) askYesNo(ctx context.Context, question string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.cmd.Printf("%s [y/N]: ", question)
	line, err := r.in.ReadString('\n')
	if err != nil {
		return false, err
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func formatCandidate(cand domain.TorrentCandidate) string {
	var sb strings.Builder
	sb.WriteString(cand.Name)
	if cand.Link != "" {
		sb.WriteString(" - ")
		sb.WriteString(cand.Link)
	}
	if cand.Trumpable {
		sb.WriteString(" [trumpable]")
	}
	return sb.String()
}

func printDiff(cmd *cobra.Command, result domain.DiffResult) {
	if !result.HasChanges() {
		cmd.Println("  no differences found, this looks like the same disc")
		return
	}
	for _, entry := range result.Entries {
		switch entry.Op {
		case domain.DiffAdded:
			cmd.Printf("  + %s\n", entry.Line)
		case domain.DiffRemoved:
			cmd.Printf("  - %s\n", entry.Line)
		default:
			cmd.Printf("    %s\n", entry.Line)
		}
	}
	cmd.Printf("  %d added, %d removed\n", result.Added, result.Removed)
}
