// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/preflight/internal/domain"
)

func writeFileSized(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
}

func TestDescribeReleaseSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Movie.2020.1080p.BluRay.x264-GRP.mkv")
	writeFileSized(t, path, 4096)

	release, err := describeRelease(path, dir)
	require.NoError(t, err)

	assert.Equal(t, "Movie.2020.1080p.BluRay.x264-GRP", release.Name)
	assert.False(t, release.IsDir)
	assert.Equal(t, []string{path}, release.Files)
	assert.Equal(t, int64(4096), release.TotalSize)
	assert.False(t, release.IsDisc())
}

func TestDescribeReleaseDirectory(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "Show.S01.1080p.WEB-DL.x264-GRP")
	writeFileSized(t, filepath.Join(root, "Show.S01E01.mkv"), 2048)
	writeFileSized(t, filepath.Join(root, "Show.S01E02.mkv"), 4096)
	writeFileSized(t, filepath.Join(root, "release.nfo"), 128)

	release, err := describeRelease(root, dir)
	require.NoError(t, err)

	assert.Equal(t, "Show.S01.1080p.WEB-DL.x264-GRP", release.Name)
	assert.True(t, release.IsDir)
	require.Len(t, release.Files, 2, "non-media files stay out of the inventory")
	// Size is the largest media file, matching what trackers report.
	assert.Equal(t, int64(4096), release.TotalSize)
}

func TestDescribeReleaseBluRayDisc(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "Movie.2020.COMPLETE.BLURAY-GRP")
	writeFileSized(t, filepath.Join(root, "BDMV", "STREAM", "00000.m2ts"), 8192)
	writeFileSized(t, filepath.Join(root, "BDMV", "index.bdmv"), 256)

	release, err := describeRelease(root, dir)
	require.NoError(t, err)

	assert.Equal(t, domain.DiscBluRay, release.Disc)
	// Disc releases carry every file and sum the full content size.
	require.Len(t, release.Files, 2)
	assert.Equal(t, int64(8448), release.TotalSize)
}

func TestDescribeReleaseDVD(t *testing.T) {
	dir := t.TempDir()
	root := filepath.Join(dir, "Movie.2020.PAL.DVD9-GRP")
	writeFileSized(t, filepath.Join(root, "VIDEO_TS", "VTS_01_1.VOB"), 1024)

	release, err := describeRelease(root, dir)
	require.NoError(t, err)

	assert.Equal(t, domain.DiscDVD, release.Disc)
}

func TestDescribeReleaseMissingPath(t *testing.T) {
	_, err := describeRelease(filepath.Join(t.TempDir(), "nope"), "")
	assert.Error(t, err)
}
