// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "preflight",
		Short: "Torrent reuse and duplicate detection for tracker uploads",
		Long: `preflight decides whether a release already has a usable .torrent
sitting in one of your clients, and whether uploading it to a tracker
would create a duplicate, a cross-seed, or a trump of an inferior copy.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(RunCheckCommand())
	rootCmd.AddCommand(RunReuseCommand())
	rootCmd.AddCommand(RunVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func RunVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("preflight %s", version)
			if commit != "" {
				cmd.Printf(" (%s)", commit)
			}
			if date != "" {
				cmd.Printf(" built %s", date)
			}
			cmd.Println()
		},
	}
}
