// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/autobrr/preflight/internal/domain"
)

var mediaExtensions = map[string]struct{}{
	".mkv":  {},
	".mp4":  {},
	".avi":  {},
	".ts":   {},
	".m2ts": {},
	".vob":  {},
	".iso":  {},
	".evo":  {},
}

// describeRelease builds the release descriptor from a content path: media
// file inventory, total size, and disc detection via the BDMV/VIDEO_TS
// layout markers.
func describeRelease(path, workDir string) (*domain.ReleaseDescriptor, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, errors.Wrap(err, "could not stat release path")
	}

	release := &domain.ReleaseDescriptor{
		Path:    abs,
		WorkDir: workDir,
		Name:    strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs)),
		IsDir:   info.IsDir(),
	}

	if !info.IsDir() {
		release.Files = []string{abs}
		release.TotalSize = info.Size()
		return release, nil
	}

	release.Name = filepath.Base(abs)
	release.Disc = detectDisc(abs)

	// Disc releases compare on the full content size; loose-file releases
	// compare on the main media file, which is what trackers report.
	var largest int64
	err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(p))
		if _, ok := mediaExtensions[ext]; !ok && !release.IsDisc() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		release.Files = append(release.Files, p)
		if release.IsDisc() {
			release.TotalSize += fi.Size()
		} else if fi.Size() > largest {
			largest = fi.Size()
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not walk release directory")
	}
	if !release.IsDisc() {
		release.TotalSize = largest
	}

	sort.Strings(release.Files)
	return release, nil
}

func detectDisc(dir string) domain.DiscKind {
	if _, err := os.Stat(filepath.Join(dir, "BDMV")); err == nil {
		return domain.DiscBluRay
	}
	if _, err := os.Stat(filepath.Join(dir, "VIDEO_TS")); err == nil {
		return domain.DiscDVD
	}
	if _, err := os.Stat(filepath.Join(dir, "HVDVD_TS")); err == nil {
		return domain.DiscHDDVD
	}
	return domain.DiscNone
}
