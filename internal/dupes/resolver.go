// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package dupes

import "context"

// Resolver answers the ambiguous outcomes of an Evaluation. The interactive
// implementation prompts the user, the unattended one applies a fixed
// policy. Keeping prompting behind this interface keeps the state machine
// free of terminal I/O.
type Resolver interface {
	// ConfirmTrump asks whether the upload should trump the existing
	// torrent identified by the evaluation.
	ConfirmTrump(ctx context.Context, eval *Evaluation) (bool, error)

	// ConfirmUpload asks whether the upload should proceed despite the
	// remaining potential dupes.
	ConfirmUpload(ctx context.Context, eval *Evaluation) (bool, error)
}

// UnattendedResolver applies the conservative defaults for runs without a
// terminal: never trump, and skip when potential dupes remain unless the
// caller opted in to uploading over them.
type UnattendedResolver struct {
	// AssumeUpload uploads past plain dupes without confirmation. Trump
	// decisions still default to declined.
	AssumeUpload bool
}

func (r UnattendedResolver) ConfirmTrump(_ context.Context, _ *Evaluation) (bool, error) {
	return false, nil
}

func (r UnattendedResolver) ConfirmUpload(_ context.Context, _ *Evaluation) (bool, error) {
	return r.AssumeUpload, nil
}
