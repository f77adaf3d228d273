// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package torrentclient

import (
	"context"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/pkg/errors"
)

// ErrSearchUnsupported is returned by backends without a torrent list API.
var ErrSearchUnsupported = errors.New("backend does not support torrent search")

const (
	retryAttempts = 3
	retryDelay    = 500 * time.Millisecond
)

// withRetry runs a client operation under the shared retry policy: bounded
// attempts with backoff, aborted as soon as the context is done. Transport
// hiccups are retried; a failure after the last attempt surfaces as one
// wrapped error so multi-client scans can log it and move on.
func withRetry(ctx context.Context, op string, fn func() error) error {
	err := retry.Do(
		fn,
		retry.Attempts(retryAttempts),
		retry.Delay(retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return ctx.Err() == nil
		}),
	)
	if err != nil {
		return errors.Wrap(err, op)
	}
	return nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
