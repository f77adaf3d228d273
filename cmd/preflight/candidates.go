// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/autobrr/preflight/internal/domain"
)

// fileSearcher reads tracker-side dupe candidates from a per-tracker JSON
// file. The tracker adapters that would normally feed the orchestrator live
// outside this tool; their search output is passed in as a file instead.
type fileSearcher struct {
	dir     string
	tracker string
}

func newFileSearcher(dir, tracker string) *fileSearcher {
	return &fileSearcher{dir: dir, tracker: tracker}
}

type candidateFile struct {
	Name        string   `json:"name"`
	InfoHash    string   `json:"info_hash"`
	Files       []string `json:"files"`
	FileCount   int      `json:"file_count"`
	Size        int64    `json:"size"`
	Trumpable   bool     `json:"trumpable"`
	Link        string   `json:"link"`
	Download    string   `json:"download"`
	ID          string   `json:"id"`
	TypeID      string   `json:"type"`
	ResID       string   `json:"res"`
	Internal    bool     `json:"internal"`
	BDInfoText  string   `json:"bd_info"`
	Description string   `json:"description"`
	Flags       []string `json:"flags"`
}

func (s *fileSearcher) SearchExisting(_ context.Context, _ *domain.ReleaseDescriptor) ([]domain.TorrentCandidate, error) {
	if s.dir == "" {
		return nil, nil
	}

	path := filepath.Join(s.dir, s.tracker+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "could not read candidate list for %s", s.tracker)
	}

	var entries []candidateFile
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.Wrapf(err, "malformed candidate list for %s", s.tracker)
	}

	candidates := make([]domain.TorrentCandidate, 0, len(entries))
	for _, e := range entries {
		fileCount := e.FileCount
		if fileCount == 0 {
			fileCount = len(e.Files)
		}
		candidates = append(candidates, domain.TorrentCandidate{
			Name:       e.Name,
			InfoHash:   e.InfoHash,
			Files:      e.Files,
			FileCount:  fileCount,
			Size:       e.Size,
			Trumpable:  e.Trumpable,
			Link:       e.Link,
			Download:   e.Download,
			ID:         e.ID,
			TypeID:     e.TypeID,
			ResID:      e.ResID,
			Internal:   e.Internal,
			BDInfoText: e.BDInfoText,
			Desc:       e.Description,
			Flags:      e.Flags,
			Origin:     s.tracker,
		})
	}
	return candidates, nil
}
