// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package bdinfo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/preflight/internal/domain"
)

const videoLine = "Video: MPEG-4 AVC Video / 23982 kbps / 1080p / 23.976 fps / 16:9 / High Profile 4.1"
const audioLine = "Audio: English / DTS-HD Master Audio / 5.1 / 48 kHz / 3887 kbps / 24-bit (DTS Core: 5.1 / 48 kHz / 1509 kbps / 24-bit)"

func TestCompareIdenticalReports(t *testing.T) {
	local := Report{Summary: videoLine + "\n" + audioLine}

	result := Compare(local, videoLine+"\n"+audioLine)

	assert.False(t, result.HasChanges())
	assert.Zero(t, result.Added)
	assert.Zero(t, result.Removed)
}

func TestCompareIgnoresSubtitleBitrates(t *testing.T) {
	// Subtitle bitrates differ by rounding between rips of the same disc and
	// must not count as a difference.
	local := Report{Summary: videoLine + "\nSubtitle: English / 32.023 kbps"}

	result := Compare(local, videoLine+"\nSubtitle: English / 35.199 kbps")

	assert.False(t, result.HasChanges())
}

func TestCompareIgnoresCosmeticVariations(t *testing.T) {
	t.Run("default track marker", func(t *testing.T) {
		local := Report{Summary: "* " + audioLine}
		result := Compare(local, audioLine)
		assert.False(t, result.HasChanges())
	})

	t.Run("playlist normalization suffix", func(t *testing.T) {
		local := Report{Summary: audioLine}
		result := Compare(local, audioLine+" / DN -31dB")
		assert.False(t, result.HasChanges())
	})

	t.Run("bbcode and html markup", func(t *testing.T) {
		local := Report{Summary: videoLine + "\n" + audioLine}
		result := Compare(local, "[b]"+videoLine+"[/b]<br/>"+audioLine)
		assert.False(t, result.HasChanges())
	})
}

func TestCompareFrameRateMismatchSortsFirst(t *testing.T) {
	palVideo := "Video: MPEG-4 AVC Video / 23982 kbps / 1080p / 25.000 fps / 16:9 / High Profile 4.1"

	local := Report{Summary: videoLine + "\nSubtitle: French / 20 kbps"}

	result := Compare(local, palVideo+"\nSubtitle: German / 25 kbps")

	require.True(t, result.HasChanges())
	assert.Equal(t, 2, result.Added)
	assert.Equal(t, 2, result.Removed)

	var changed []domain.DiffEntry
	for _, e := range result.Entries {
		if e.Op != domain.DiffMatch {
			changed = append(changed, e)
		}
	}
	require.Len(t, changed, 4)

	// Frame-rate lines lead, subtitle lines trail.
	assert.Contains(t, changed[0].Line, "fps")
	assert.Contains(t, changed[1].Line, "fps")
	assert.Contains(t, changed[2].Line, "Subtitle")
	assert.Contains(t, changed[3].Line, "Subtitle")
}

func TestCompareFullReportUsesPlainSummary(t *testing.T) {
	// A full playlist report from the candidate is compared against the
	// brief local summary, and only explicit track lines count.
	local := Report{
		Summary:  videoLine + "\n" + audioLine,
		Extended: videoLine + "\n" + audioLine + "\nAudio: Commentary / AC3 / 2.0 / 192 kbps",
	}

	candidate := "DISC INFO:\nDisc Title: Some Movie\nTotal Bitrate: 30.99 Mbps\n" +
		"1:30:42.123 25000 kbps\n" +
		videoLine + "\n" + audioLine

	result := Compare(local, candidate)

	assert.False(t, result.HasChanges())
}

func TestCandidateText(t *testing.T) {
	t.Run("dedicated field wins", func(t *testing.T) {
		c := &domain.TorrentCandidate{BDInfoText: "Disc Title: X", Desc: "something else"}
		assert.Equal(t, "Disc Title: X", CandidateText(c))
	})

	t.Run("description with disc markers", func(t *testing.T) {
		c := &domain.TorrentCandidate{Desc: "review text\nDisc Label: SOME_MOVIE\nmore text"}
		assert.Equal(t, c.Desc, CandidateText(c))
	})

	t.Run("plain description is not a report", func(t *testing.T) {
		c := &domain.TorrentCandidate{Desc: "just a review of the movie"}
		assert.Empty(t, CandidateText(c))
	})
}

func TestWarning(t *testing.T) {
	name := "Movie.2020.COMPLETE.BLURAY-GRP"

	assert.Equal(t, "no BDInfo found for "+name, Warning(name, "", domain.DiffResult{}))

	assert.Equal(t, "no differences found against "+name, Warning(name, "Disc Title: X", domain.DiffResult{}))

	withChanges := domain.DiffResult{Added: 1}
	assert.Empty(t, Warning(name, "Disc Title: X", withChanges))
}

func TestLoadReport(t *testing.T) {
	dir := t.TempDir()

	report := LoadReport(dir)
	assert.Empty(t, report.Summary)
	assert.Empty(t, report.Extended)

	require.NoError(t, os.WriteFile(filepath.Join(dir, summaryFile), []byte("brief contents"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, extendedSummaryFile), []byte("extended contents"), 0o644))

	report = LoadReport(dir)
	assert.Equal(t, "brief contents", report.Summary)
	assert.Equal(t, "extended contents", report.Extended)
}
