// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package dupes

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/moistari/rls"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/preflight/internal/domain"
)

// uploadProfile carries the parsed attributes of the release being uploaded,
// computed once per Evaluate call instead of re-parsing per candidate.
type uploadProfile struct {
	release    rls.Release
	name       string
	isDisc     bool
	isDVD      bool
	fileNames  []string
	fileCount  int
	totalSize  int64
	resolution string
	group      string
	hdr        map[string]bool
	isRemux    bool
	isRepack   bool
	isWebDL    bool
	isHDTV     bool
	isUHD      bool
	isTV       bool
}

func profileRelease(release *domain.ReleaseDescriptor) uploadProfile {
	r := rls.ParseString(release.Name)

	p := uploadProfile{
		release:    r,
		name:       release.Name,
		isDisc:     release.IsDisc(),
		isDVD:      release.Disc == domain.DiscDVD,
		fileCount:  len(release.Files),
		totalSize:  release.TotalSize,
		resolution: strings.ToLower(strings.TrimSpace(r.Resolution)),
		group:      strings.ToLower(r.Group),
		hdr:        refineHDRTerms(r.HDR),
		isTV:       r.Series > 0,
	}
	for _, f := range release.Files {
		p.fileNames = append(p.fileNames, filepath.Base(f))
	}

	lower := strings.ToLower(release.Name)
	p.isRemux = strings.Contains(lower, "remux")
	p.isRepack = strings.Contains(lower, "repack")
	p.isUHD = strings.Contains(lower, "uhd")

	source := strings.ToLower(r.Source)
	p.isWebDL = strings.Contains(source, "web")
	p.isHDTV = source == "hdtv"

	return p
}

var webDLTerms = []string{"web-dl", "web -dl", "webdl", "web dl"}
var bluRayTerms = []string{"blu-ray", "blu ray", "bluray", "blu -ray"}

// normalizeName lowercases a release name and splits dotted tokens so
// substring checks behave the same for dotted and spaced naming styles.
func normalizeName(name string) string {
	n := strings.ToLower(name)
	n = strings.ReplaceAll(n, "-", " -")
	n = strings.ReplaceAll(n, ".", " ")
	return n
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}

// refineHDRTerms collapses HDR naming variants to two comparable terms.
func refineHDRTerms(hdr []string) map[string]bool {
	terms := make(map[string]bool)
	for _, h := range hdr {
		upper := strings.ToUpper(h)
		if strings.Contains(upper, "DV") || strings.Contains(upper, "DOVI") {
			terms["DV"] = true
		}
		if strings.Contains(upper, "HDR") {
			terms["HDR"] = true
		}
	}
	return terms
}

func candidateHDRTerms(cand domain.TorrentCandidate, normalized string) map[string]bool {
	terms := make(map[string]bool)
	if len(cand.Flags) > 0 {
		for _, flag := range cand.Flags {
			switch strings.ToUpper(flag) {
			case "DV":
				terms["DV"] = true
			case "HDR", "HDR10", "HDR10+":
				terms["HDR"] = true
			}
		}
		if len(terms) > 0 {
			return terms
		}
	}
	if strings.Contains(normalized, "dv") || strings.Contains(normalized, "dovi") || strings.Contains(normalized, "dolby vision") {
		terms["DV"] = true
	}
	if strings.Contains(normalized, "hdr") {
		terms["HDR"] = true
	}
	return terms
}

// hdrCompatible reports whether two refined HDR term sets describe the same
// transfer characteristics. Dolby Vision layered on an HDR base counts as
// HDR except for web sources, where a DV-only track really is DV-only.
func hdrCompatible(fileHDR, targetHDR map[string]bool, webSource bool) bool {
	simplify := func(terms map[string]bool) map[string]bool {
		out := make(map[string]bool)
		if terms["HDR"] {
			out["HDR"] = true
		}
		if terms["DV"] {
			out["DV"] = true
			if !webSource {
				out["HDR"] = true
			}
		}
		if out["DV"] && out["HDR"] {
			return map[string]bool{"HDR": true}
		}
		return out
	}
	a := simplify(fileHDR)
	b := simplify(targetHDR)
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

var fileExtRe = regexp.MustCompile(`\.\w{2,4}$`)

// exclusionReason returns a non-empty reason when the candidate cannot be a
// dupe of the upload. Everything is a dupe until a rule excludes it.
func exclusionReason(p uploadProfile, cand domain.TorrentCandidate, candRelease rls.Release, normalized string) string {
	if p.isDisc {
		if cand.FileCount > 0 && cand.FileCount < 2 {
			return "file count less than 2 for disc upload"
		}
		// Tracker search sometimes returns loose files for disc queries.
		if !strings.HasSuffix(strings.ToLower(cand.Name), ".m2ts") && fileExtRe.MatchString(cand.Name) {
			return "file extension on disc upload"
		}
	}

	if p.isRepack && !strings.Contains(normalized, "repack") && p.group != "" && strings.Contains(normalized, p.group) {
		return "missing repack"
	}

	if p.isWebDL {
		if strings.Contains(normalized, "hdtv") && !containsAny(normalized, webDLTerms) {
			return "source mismatch: WEB-DL vs HDTV"
		}
		if containsAny(normalized, bluRayTerms) && !containsAny(normalized, webDLTerms) {
			return "source mismatch: WEB-DL vs BluRay"
		}
	} else if containsAny(normalized, webDLTerms) {
		return "source mismatch: non-WEB-DL vs WEB-DL"
	}

	if !p.isDVD {
		if p.resolution != "" && !strings.Contains(strings.ToLower(cand.Name), p.resolution) {
			return "resolution mismatch"
		}
		if !hdrCompatible(candidateHDRTerms(cand, normalized), p.hdr, p.isWebDL) {
			return "hdr mismatch"
		}
	}

	candRemux := strings.Contains(normalized, "remux")
	if p.isRemux && !candRemux {
		return "missing remux"
	}
	if !p.isRemux && candRemux {
		return "candidate is remux but upload is not"
	}

	if p.isUHD != strings.Contains(normalized, "uhd") && p.resolution == "2160p" {
		return "uhd mismatch"
	}

	if p.isTV {
		match, _ := seasonEpisodeMatch(p.release, candRelease)
		if !match {
			return "season/episode mismatch"
		}
	}

	return ""
}

// seasonEpisodeMatch reports whether the candidate covers the same season
// and episode scope as the upload. The second return is true when the
// candidate is a season pack for the upload's season.
func seasonEpisodeMatch(upload, cand rls.Release) (bool, bool) {
	if upload.Series == 0 {
		return true, false
	}
	if cand.Series != upload.Series {
		return false, false
	}

	candIsPack := cand.Episode == 0

	// Season pack upload only matches other season packs.
	if upload.Episode == 0 {
		return candIsPack, candIsPack
	}

	// Episode upload matches the same episode, or a season pack that
	// necessarily contains it.
	if candIsPack {
		return true, true
	}
	return cand.Episode == upload.Episode, false
}

// sizeTolerance is the relative size overage beyond which a competing
// encode stops being a plausible dupe of the same source.
const sizeTolerance = 0.20

// significantlyLarger applies the single-candidate size sanity check for
// 1080p x264 encodes, where grossly different sizes mean different encodes.
func significantlyLarger(p uploadProfile, cand domain.TorrentCandidate, candidateTotal int) bool {
	if candidateTotal != 1 || p.isDisc || p.totalSize == 0 || cand.Size == 0 {
		return false
	}
	if p.resolution != "1080p" {
		return false
	}
	if !strings.Contains(strings.ToLower(p.name), "x264") {
		return false
	}
	diff := float64(p.totalSize-cand.Size) / float64(cand.Size)
	return diff >= sizeTolerance
}

// filterCandidates drops candidates that cannot be dupes of the upload and
// records identity matches (filename, file count, size) on the way through.
func filterCandidates(p uploadProfile, candidates []domain.TorrentCandidate, state *matchState) []domain.TorrentCandidate {
	kept := candidates[:0:0]

	for _, cand := range candidates {
		normalized := normalizeName(cand.Name)
		candRelease := rls.ParseString(cand.Name)

		// A superseding candidate stays a blocking dupe regardless of the
		// exclusion rules, but only when it actually describes the same
		// content scope. Searches return every release of a series, and a
		// MULTI S01 1080p must not block a VOSTFR S04 2160p.
		if cand.HasFlag(domain.FlagFrenchSupersede) && supersedeApplies(p, cand, candRelease) {
			state.remember(cand, domain.FlagFrenchSupersede)
			state.superseded = true
			kept = append(kept, cand)
			continue
		}

		if cand.Trumpable && cand.ResID != "" && strings.EqualFold(cand.ResID, p.resolution) {
			state.trumpable = &cand
			state.remember(cand, "trumpable")
		}

		// Only the candidate that produced the exact match bypasses the
		// exclusion rules; later candidates are still filtered normally.
		if recordIdentityMatches(p, cand, state) {
			kept = append(kept, cand)
			continue
		}

		if reason := exclusionReason(p, cand, candRelease, normalized); reason != "" {
			log.Debug().Str("name", cand.Name).Str("reason", reason).Msg("excluding candidate")
			continue
		}

		if _, isPack := seasonEpisodeMatch(p.release, candRelease); isPack && p.release.Episode > 0 {
			state.seasonPack = &cand
			state.remember(cand, "season_pack_contains_episode")
		}

		if significantlyLarger(p, cand, len(candidates)) {
			log.Debug().Str("name", cand.Name).Msg("excluding candidate, upload is significantly larger")
			continue
		}

		kept = append(kept, cand)
	}

	return kept
}

// supersedeApplies gates the language-tier supersede on resolution and
// season/episode agreement.
func supersedeApplies(p uploadProfile, cand domain.TorrentCandidate, candRelease rls.Release) bool {
	if !p.isDVD && p.resolution != "" && !strings.Contains(strings.ToLower(cand.Name), p.resolution) {
		return false
	}
	if p.isTV {
		if match, _ := seasonEpisodeMatch(p.release, candRelease); !match {
			return false
		}
	}
	return true
}

// recordIdentityMatches updates the match state with filename, file count,
// and size signals from one candidate. It reports whether this candidate
// itself matched on both filename and file count.
func recordIdentityMatches(p uploadProfile, cand domain.TorrentCandidate, state *matchState) bool {
	if !p.isDisc {
		exact := false
		for _, file := range p.fileNames {
			for _, candFile := range cand.Files {
				if strings.EqualFold(file, candFile) {
					state.filenameMatch = true
					state.remember(cand, "filename")
					if cand.FileCount > 0 && cand.FileCount == p.fileCount {
						state.fileCountMatch = true
						state.remember(cand, "file_count")
						exact = true
					}
				}
			}
		}
		// Some trackers return no file lists at all, size is the only
		// identity signal left.
		if len(cand.Files) == 0 && cand.Size != 0 && cand.Size == p.totalSize {
			state.sizeMatch = true
			state.remember(cand, "size")
		}
		return exact
	}

	if cand.Size != 0 && cand.Size == p.totalSize {
		state.sizeMatch = true
		state.remember(cand, "size")
	}
	return false
}
