// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package dupes

import (
	"context"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/preflight/internal/domain"
)

// Searcher provides the tracker-side candidate list. Implementations live
// with the per-tracker HTTP glue, outside this package.
type Searcher interface {
	SearchExisting(ctx context.Context, release *domain.ReleaseDescriptor) ([]domain.TorrentCandidate, error)
}

// crossSeedSimilarity is the minimum name-similarity ratio for a size-based
// identity signal to count as the same encode.
const crossSeedSimilarity = 0.9

// Orchestrator runs the dupe decision flow for one tracker at a time.
// Instances are stateless and safe for concurrent use across trackers.
type Orchestrator struct {
	searcher Searcher
	resolver Resolver
	opts     Options
}

func NewOrchestrator(searcher Searcher, resolver Resolver, opts Options) *Orchestrator {
	return &Orchestrator{
		searcher: searcher,
		resolver: resolver,
		opts:     opts,
	}
}

// Decide fetches tracker-side candidates and runs the decision state
// machine to a terminal action. A search failure never blocks the upload:
// duplicate avoidance is a safety net, not a gate.
func (o *Orchestrator) Decide(ctx context.Context, release *domain.ReleaseDescriptor, tracker string) (domain.DupeDecision, error) {
	candidates, err := o.searcher.SearchExisting(ctx, release)
	if err != nil {
		log.Warn().Err(err).Str("tracker", tracker).Msg("dupe search failed")
		return domain.DupeDecision{
			Tracker:  tracker,
			Action:   domain.ActionUpload,
			Warnings: []string{"could not verify existing releases, proceed with caution"},
		}, nil
	}

	return o.DecideFrom(ctx, release, candidates, tracker)
}

// DecideFrom runs the state machine over an already-fetched candidate list.
func (o *Orchestrator) DecideFrom(ctx context.Context, release *domain.ReleaseDescriptor, candidates []domain.TorrentCandidate, tracker string) (domain.DupeDecision, error) {
	eval := Evaluate(release, candidates, tracker, o.opts)

	decision := domain.DupeDecision{
		Tracker:  tracker,
		Action:   domain.ActionUpload,
		Warnings: eval.Warnings,
	}

	if len(eval.Candidates) == 0 && !eval.HasAmbiguousTrump() {
		return decision, nil
	}

	if eval.HasAmbiguousTrump() {
		trump, err := o.resolver.ConfirmTrump(ctx, eval)
		if err != nil {
			return decision, err
		}
		if trump {
			decision.Action = domain.ActionTrump
			decision.TrumpReason = eval.TrumpReason
			if eval.TrumpTarget != nil {
				decision.TrumpTargetID = eval.TrumpTarget.ID
			} else {
				decision.TrumpTargetID = eval.matchedID
			}
			decision.CrossSeed = deriveCrossSeed(release, eval)
			return decision, nil
		}
	}

	if len(eval.Candidates) > 0 {
		upload, err := o.resolver.ConfirmUpload(ctx, eval)
		if err != nil {
			return decision, err
		}
		if !upload {
			decision.Action = domain.ActionSkip
		}
	}

	decision.CrossSeed = deriveCrossSeed(release, eval)
	return decision, nil
}

// deriveCrossSeed returns the download reference of a candidate that is
// almost certainly the same encode, so the client-injection step can seed
// against it instead of creating a second swarm. The derivation is
// independent of the upload/skip/trump outcome.
func deriveCrossSeed(release *domain.ReleaseDescriptor, eval *Evaluation) string {
	for _, cand := range eval.Candidates {
		if cand.Download != "" && cand.InfoHash != "" && strings.EqualFold(cand.InfoHash, release.InfoHash) {
			return cand.Download
		}
	}

	if eval.matchedDownload == "" {
		return ""
	}

	if eval.ExactMatch {
		return eval.matchedDownload
	}

	if eval.SizeMatch {
		target := strings.ToLower(strings.TrimSpace(release.Name))
		for _, cand := range eval.Candidates {
			if nameSimilarity(strings.ToLower(cand.Name), target) > crossSeedSimilarity {
				return eval.matchedDownload
			}
		}
	}

	return ""
}

// nameSimilarity maps Levenshtein distance to a 0..1 ratio, 1 meaning
// identical strings.
func nameSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 1
	}
	distance := fuzzy.LevenshteinDistance(a, b)
	return 1 - float64(distance)/float64(longest)
}
