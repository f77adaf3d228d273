// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/autobrr/preflight/internal/config"
	"github.com/autobrr/preflight/internal/domain"
	"github.com/autobrr/preflight/internal/dupes"
	"github.com/autobrr/preflight/internal/logger"
	"github.com/autobrr/preflight/internal/reuse"
	"github.com/autobrr/preflight/internal/torrentclient"
)

func RunCheckCommand() *cobra.Command {
	var (
		configPath    string
		candidatesDir string
		trackers      []string
		infoHash      string
		crossHash     string
		audioTag      string
		keepFolder    bool
		unattended    bool
	)

	cmd := &cobra.Command{
		Use:   "check <path>",
		Short: "Run reuse and duplicate checks for a release",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New(configPath, version)
			if err != nil {
				return err
			}
			if unattended {
				cfg.Config.Unattended = true
			}
			logger.Setup(cfg.Config)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			release, err := describeRelease(args[0], cfg.Config.WorkDir)
			if err != nil {
				return err
			}
			release.InfoHash = infoHash
			release.CrossHash = crossHash
			release.AudioTag = audioTag
			release.KeepFolder = keepFolder
			release.PreferSmallPieces = cfg.Config.PreferSmallPieces
			release.MaxPieceSizeMiB = cfg.Config.MaxPieceSizeMiB

			backends, err := torrentclient.NewBackends(cfg.Config.Clients)
			if err != nil {
				return err
			}

			locator := reuse.NewLocator()
			pref := domain.PiecePreference{
				SmallPieces: cfg.Config.PreferSmallPieces,
				MaxMiB:      cfg.Config.MaxPieceSizeMiB,
			}
			// A single-tracker run can honor that tracker's piece policy.
			if len(trackers) == 1 {
				pref = cfg.Config.PiecePreferenceFor(trackers[0])
			}
			if path, found := locator.FindReusable(ctx, release, backends, pref); found {
				cmd.Printf("Reusable torrent: %s\n", path)
			} else {
				cmd.Println("No reusable torrent found, a new one must be created")
			}

			var resolver dupes.Resolver
			if cfg.Config.Unattended {
				resolver = dupes.UnattendedResolver{AssumeUpload: cfg.Config.AssumeDupeUpload}
			} else {
				resolver = newPromptResolver(cmd)
			}

			for _, tracker := range trackers {
				searcher := newFileSearcher(candidatesDir, tracker)

				trackerResolver := resolver
				trackerCfg := cfg.Config.Trackers[tracker]
				if trackerCfg.SkipDupeAsking {
					trackerResolver = dupes.UnattendedResolver{AssumeUpload: cfg.Config.AssumeDupeUpload}
				}

				orchestrator := dupes.NewOrchestrator(searcher, trackerResolver, dupes.Options{
					FrenchHierarchy: trackerCfg.FrenchHierarchy,
				})

				decision, err := orchestrator.Decide(ctx, release, tracker)
				if err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					log.Error().Err(err).Str("tracker", tracker).Msg("dupe decision failed")
					continue
				}
				printDecision(cmd, decision)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to config file or directory")
	cmd.Flags().StringVar(&candidatesDir, "candidates-dir", "", "directory with per-tracker candidate lists (<tracker>.json)")
	cmd.Flags().StringSliceVar(&trackers, "tracker", nil, "tracker to run the dupe check against (repeatable)")
	cmd.Flags().StringVar(&infoHash, "info-hash", "", "known info-hash for this content")
	cmd.Flags().StringVar(&crossHash, "cross-hash", "", "secondary info-hash from a cross-seed")
	cmd.Flags().StringVar(&audioTag, "audio-tag", "", "language/audio tag of the release (e.g. MULTI.VFF)")
	cmd.Flags().BoolVar(&keepFolder, "keep-folder", false, "require the original folder layout to be preserved")
	cmd.Flags().BoolVar(&unattended, "unattended", false, "never prompt, apply conservative defaults")

	return cmd
}

// RunReuseCommand runs only the client-side reuse scan, without any dupe
// checking. Useful when the tracker search happens elsewhere.
func RunReuseCommand() *cobra.Command {
	var (
		configPath string
		infoHash   string
		crossHash  string
		keepFolder bool
	)

	cmd := &cobra.Command{
		Use:   "reuse <path>",
		Short: "Scan torrent clients for a reusable .torrent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.New(configPath, version)
			if err != nil {
				return err
			}
			logger.Setup(cfg.Config)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			release, err := describeRelease(args[0], cfg.Config.WorkDir)
			if err != nil {
				return err
			}
			release.InfoHash = infoHash
			release.CrossHash = crossHash
			release.KeepFolder = keepFolder
			release.PreferSmallPieces = cfg.Config.PreferSmallPieces
			release.MaxPieceSizeMiB = cfg.Config.MaxPieceSizeMiB

			backends, err := torrentclient.NewBackends(cfg.Config.Clients)
			if err != nil {
				return err
			}

			pref := domain.PiecePreference{
				SmallPieces: cfg.Config.PreferSmallPieces,
				MaxMiB:      cfg.Config.MaxPieceSizeMiB,
			}
			path, found := reuse.NewLocator().FindReusable(ctx, release, backends, pref)
			if !found {
				cmd.Println("No reusable torrent found")
				return nil
			}
			cmd.Println(path)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to config file or directory")
	cmd.Flags().StringVar(&infoHash, "info-hash", "", "known info-hash for this content")
	cmd.Flags().StringVar(&crossHash, "cross-hash", "", "secondary info-hash from a cross-seed")
	cmd.Flags().BoolVar(&keepFolder, "keep-folder", false, "require the original folder layout to be preserved")

	return cmd
}

func printDecision(cmd *cobra.Command, decision domain.DupeDecision) {
	cmd.Printf("%s: %s\n", decision.Tracker, decision.Action)
	if decision.Action == domain.ActionTrump {
		cmd.Printf("  trump reason: %s", decision.TrumpReason)
		if decision.TrumpTargetID != "" {
			cmd.Printf(" (torrent %s)", decision.TrumpTargetID)
		}
		cmd.Println()
	}
	if decision.CrossSeed != "" {
		cmd.Printf("  cross-seed: %s\n", domain.RedactURL(decision.CrossSeed))
	}
	for _, warning := range decision.Warnings {
		cmd.Printf("  warning: %s\n", warning)
	}
}
