// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package dupes

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/preflight/internal/domain"
)

const discReport = "Video: MPEG-4 AVC Video / 23982 kbps / 1080p / 23.976 fps / 16:9 / High Profile 4.1\n" +
	"Audio: English / DTS-HD Master Audio / 5.1 / 48 kHz / 3887 kbps / 24-bit"

func movieRelease() *domain.ReleaseDescriptor {
	return &domain.ReleaseDescriptor{
		Path:      "/data/Movie.2020.1080p.BluRay.x264-GRP.mkv",
		Name:      "Movie.2020.1080p.BluRay.x264-GRP",
		Files:     []string{"/data/Movie.2020.1080p.BluRay.x264-GRP.mkv"},
		TotalSize: 8 << 30,
	}
}

func TestEvaluateEmptyCandidates(t *testing.T) {
	eval := Evaluate(movieRelease(), nil, "tracker", Options{})

	assert.Empty(t, eval.Candidates)
	assert.False(t, eval.ExactMatch)
	assert.False(t, eval.HasAmbiguousTrump())
	assert.Empty(t, eval.Warnings)
}

func TestEvaluateExactMatch(t *testing.T) {
	cand := domain.TorrentCandidate{
		Name:      "Movie.2020.1080p.BluRay.x264-OTHER",
		Files:     []string{"Movie.2020.1080p.BluRay.x264-GRP.mkv"},
		FileCount: 1,
		ID:        "42",
		Download:  "https://tracker.example/download/42",
	}

	eval := Evaluate(movieRelease(), []domain.TorrentCandidate{cand}, "tracker", Options{})

	assert.True(t, eval.ExactMatch)
	assert.True(t, eval.HasAmbiguousTrump())
	assert.Equal(t, domain.TrumpExactMatch, eval.TrumpReason)
	require.NotNil(t, eval.TrumpTarget)
	assert.Equal(t, "42", eval.TrumpTarget.ID)
	require.Len(t, eval.Candidates, 1)
}

func TestEvaluateExactMatchOutranksTrumpable(t *testing.T) {
	trumpable := domain.TorrentCandidate{
		Name:      "Movie.2020.1080p.BluRay.x264-OLD",
		Trumpable: true,
		ResID:     "1080p",
		ID:        "7",
	}
	exact := domain.TorrentCandidate{
		Name:      "Movie.2020.1080p.BluRay.x264-OTHER",
		Files:     []string{"Movie.2020.1080p.BluRay.x264-GRP.mkv"},
		FileCount: 1,
		ID:        "42",
		Download:  "https://tracker.example/download/42",
	}

	eval := Evaluate(movieRelease(), []domain.TorrentCandidate{trumpable, exact}, "tracker", Options{})

	assert.True(t, eval.ExactMatch)
	assert.Equal(t, domain.TrumpExactMatch, eval.TrumpReason)
	require.NotNil(t, eval.TrumpTarget)
	assert.Equal(t, "7", eval.TrumpTarget.ID)
	assert.Len(t, eval.Candidates, 2)
}

func TestEvaluateExclusionStillAppliesAfterExactMatch(t *testing.T) {
	exact := domain.TorrentCandidate{
		Name:      "Movie.2020.1080p.BluRay.x264-OTHER",
		Files:     []string{"Movie.2020.1080p.BluRay.x264-GRP.mkv"},
		FileCount: 1,
		ID:        "42",
	}
	wrongRes := domain.TorrentCandidate{Name: "Movie.2020.2160p.BluRay.x265-A"}

	eval := Evaluate(movieRelease(), []domain.TorrentCandidate{exact, wrongRes}, "tracker", Options{})

	assert.True(t, eval.ExactMatch)
	// An earlier exact match must not exempt later candidates from the
	// exclusion rules.
	require.Len(t, eval.Candidates, 1)
	assert.Equal(t, "42", eval.Candidates[0].ID)
}

func TestEvaluateExclusionRules(t *testing.T) {
	tests := []struct {
		name     string
		release  string
		cand     string
		excluded bool
	}{
		{"resolution mismatch", "Movie.2020.1080p.BluRay.x264-GRP", "Movie.2020.2160p.BluRay.x265-A", true},
		{"same resolution kept", "Movie.2020.1080p.BluRay.x264-GRP", "Movie.2020.1080p.BluRay.x264-A", false},
		{"webdl upload vs bluray candidate", "Movie.2020.1080p.WEB-DL.x264-GRP", "Movie.2020.1080p.BluRay.x264-A", true},
		{"webdl upload vs hdtv candidate", "Show.2020.1080p.WEB-DL.x264-GRP", "Show.2020.1080p.HDTV.x264-A", true},
		{"bluray upload vs webdl candidate", "Movie.2020.1080p.BluRay.x264-GRP", "Movie.2020.1080p.WEB-DL.x264-A", true},
		{"remux upload vs encode", "Movie.2020.1080p.BluRay.REMUX.AVC-GRP", "Movie.2020.1080p.BluRay.x264-A", true},
		{"encode upload vs remux", "Movie.2020.1080p.BluRay.x264-GRP", "Movie.2020.1080p.BluRay.REMUX.AVC-A", true},
		{"hdr candidate vs sdr upload", "Movie.2020.2160p.BluRay.x265-GRP", "Movie.2020.2160p.BluRay.HDR.x265-A", true},
		{"episode mismatch", "Show.S01E03.1080p.WEB-DL.x264-GRP", "Show.S01E05.1080p.WEB-DL.x264-A", true},
		{"season mismatch", "Show.S01E03.1080p.WEB-DL.x264-GRP", "Show.S02E03.1080p.WEB-DL.x264-A", true},
		{"same episode kept", "Show.S01E03.1080p.WEB-DL.x264-GRP", "Show.S01E03.1080p.WEB-DL.x264-A", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			release := &domain.ReleaseDescriptor{
				Path:  "/data/" + tt.release + ".mkv",
				Name:  tt.release,
				Files: []string{"/data/" + tt.release + ".mkv"},
			}

			eval := Evaluate(release, []domain.TorrentCandidate{{Name: tt.cand}}, "tracker", Options{})

			if tt.excluded {
				assert.Empty(t, eval.Candidates)
			} else {
				assert.Len(t, eval.Candidates, 1)
			}
		})
	}
}

func TestEvaluateSeasonPackWarning(t *testing.T) {
	release := &domain.ReleaseDescriptor{
		Path:  "/data/Show.S01E03.1080p.WEB-DL.x264-GRP.mkv",
		Name:  "Show.S01E03.1080p.WEB-DL.x264-GRP",
		Files: []string{"/data/Show.S01E03.1080p.WEB-DL.x264-GRP.mkv"},
	}
	pack := domain.TorrentCandidate{Name: "Show.S01.1080p.WEB-DL.x264-GRP"}

	eval := Evaluate(release, []domain.TorrentCandidate{pack}, "tracker", Options{})

	require.NotNil(t, eval.SeasonPack)
	assert.Equal(t, pack.Name, eval.SeasonPack.Name)
	require.Len(t, eval.Candidates, 1)
	assert.Contains(t, eval.Warnings, "a season pack containing this episode exists: Show.S01.1080p.WEB-DL.x264-GRP")
}

func TestEvaluateSeasonPackUploadOnlyMatchesPacks(t *testing.T) {
	release := &domain.ReleaseDescriptor{
		Path:  "/data/Show.S01.1080p.WEB-DL.x264-GRP",
		Name:  "Show.S01.1080p.WEB-DL.x264-GRP",
		Files: []string{"/data/Show.S01.1080p.WEB-DL.x264-GRP/Show.S01E01.mkv"},
	}
	episode := domain.TorrentCandidate{Name: "Show.S01E03.1080p.WEB-DL.x264-A"}

	eval := Evaluate(release, []domain.TorrentCandidate{episode}, "tracker", Options{})

	assert.Empty(t, eval.Candidates)
}

func TestEvaluateTrumpable(t *testing.T) {
	release := movieRelease()

	t.Run("matching resolution id", func(t *testing.T) {
		cand := domain.TorrentCandidate{
			Name:      "Movie.2020.1080p.BluRay.x264-OLD",
			Trumpable: true,
			ResID:     "1080p",
			ID:        "7",
		}

		eval := Evaluate(release, []domain.TorrentCandidate{cand}, "tracker", Options{})

		require.NotNil(t, eval.TrumpTarget)
		assert.Equal(t, "7", eval.TrumpTarget.ID)
		assert.Equal(t, domain.TrumpTrumpableRelease, eval.TrumpReason)
	})

	t.Run("other resolution does not trump", func(t *testing.T) {
		cand := domain.TorrentCandidate{
			Name:      "Movie.2020.1080p.BluRay.x264-OLD",
			Trumpable: true,
			ResID:     "2160p",
			ID:        "7",
		}

		eval := Evaluate(release, []domain.TorrentCandidate{cand}, "tracker", Options{})

		assert.Nil(t, eval.TrumpTarget)
		assert.False(t, eval.HasAmbiguousTrump())
	})
}

func TestEvaluateFrenchSupersede(t *testing.T) {
	release := &domain.ReleaseDescriptor{
		Path:     "/data/Movie.2020.VOSTFR.1080p.WEB-DL.x264-GRP.mkv",
		Name:     "Movie.2020.VOSTFR.1080p.WEB-DL.x264-GRP",
		Files:    []string{"/data/Movie.2020.VOSTFR.1080p.WEB-DL.x264-GRP.mkv"},
		AudioTag: "VOSTFR",
	}

	t.Run("same scope blocks", func(t *testing.T) {
		cand := domain.TorrentCandidate{Name: "Movie.2020.MULTI.1080p.WEB-DL.x264-A"}

		eval := Evaluate(release, []domain.TorrentCandidate{cand}, "tracker", Options{FrenchHierarchy: true})

		assert.True(t, eval.Superseded)
		require.Len(t, eval.Candidates, 1)
		assert.Contains(t, eval.Warnings, "an existing release with French audio supersedes this upload")
	})

	t.Run("different resolution does not block", func(t *testing.T) {
		cand := domain.TorrentCandidate{Name: "Movie.2020.MULTI.2160p.WEB-DL.x265-A"}

		eval := Evaluate(release, []domain.TorrentCandidate{cand}, "tracker", Options{FrenchHierarchy: true})

		assert.False(t, eval.Superseded)
		assert.Empty(t, eval.Candidates)
	})

	t.Run("disabled hierarchy ignores language tiers", func(t *testing.T) {
		cand := domain.TorrentCandidate{Name: "Movie.2020.MULTI.1080p.WEB-DL.x264-A"}

		eval := Evaluate(release, []domain.TorrentCandidate{cand}, "tracker", Options{})

		assert.False(t, eval.Superseded)
	})
}

func TestEvaluateDiscDiffs(t *testing.T) {
	workDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(workDir, "BD_SUMMARY_00.txt"),
		[]byte(discReport), 0o644))

	release := &domain.ReleaseDescriptor{
		Path:      "/data/Movie.2020.COMPLETE.BLURAY-GRP",
		WorkDir:   workDir,
		Name:      "Movie.2020.COMPLETE.BLURAY-GRP",
		Disc:      domain.DiscBluRay,
		Files:     []string{"/data/Movie.2020.COMPLETE.BLURAY-GRP/BDMV/STREAM/00000.m2ts", "/data/Movie.2020.COMPLETE.BLURAY-GRP/BDMV/index.bdmv"},
		TotalSize: 40 << 30,
	}

	cand := domain.TorrentCandidate{
		Name:       "Movie 2020 COMPLETE BLURAY-OTHER",
		FileCount:  120,
		BDInfoText: discReport,
	}

	eval := Evaluate(release, []domain.TorrentCandidate{cand}, "tracker", Options{})

	require.Len(t, eval.Candidates, 1)
	require.Len(t, eval.Diffs, 1)
	assert.False(t, eval.Diffs[0].Result.HasChanges())
	assert.Equal(t, "no differences found against "+release.Name, eval.Diffs[0].Warning)
}
