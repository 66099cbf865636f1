// Marquee - Movie Similarity Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package logging

import (
	"net/url"
	"strings"
)

// secretParams are query parameters that must never reach a log line.
var secretParams = []string{"api_key", "apikey", "access_token", "token"}

// MaskSecret masks a credential, showing only the first and last 4 characters.
// Example: "0123456789abcdef0123" -> "0123...0123"
func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 12 {
		return "***"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}

// RedactURL replaces credential query parameters in rawURL with "REDACTED".
// Unparseable input is returned fully masked.
func RedactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "***"
	}
	q := u.Query()
	changed := false
	for key := range q {
		for _, secret := range secretParams {
			if strings.EqualFold(key, secret) {
				q.Set(key, "REDACTED")
				changed = true
			}
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// RedactError returns err's message with every occurrence of secret masked.
// net/http embeds the request URL in transport errors, including the key.
func RedactError(err error, secret string) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if secret == "" {
		return msg
	}
	return strings.ReplaceAll(msg, secret, MaskSecret(secret))
}
