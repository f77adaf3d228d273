// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

import (
	"net/url"
	"strings"
)

// RedactString replaces a secret with asterisks of the same length.
func RedactString(s string) string {
	if len(s) == 0 {
		return ""
	}
	return strings.Repeat("*", len(s))
}

// RedactURL hides the path and query of a tracker URL. Download links embed
// the account passkey, so anything past the host must not reach logs or
// terminal output.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return RedactString(raw)
	}
	redacted := u.Scheme + "://" + u.Host
	if u.Path != "" || u.RawQuery != "" {
		redacted += "/..."
	}
	return redacted
}
