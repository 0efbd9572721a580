package ratelimit

import "strings"

const unknownClient = "unknown"

// meteredPaths are the generation endpoints counted against a client's
// quota. Everything else, including the static UI bundle, bypasses the limiter.
var meteredPaths = map[string]struct{}{
	"/api/ask-ai":          {},
	"/api/test-connection": {},
}

// ClientID derives the limiter key from the X-Forwarded-For header and the
// connection address. The first forwarded hop wins.
func ClientID(forwardedFor, remoteAddr string) string {
	if forwardedFor != "" {
		first, _, _ := strings.Cut(forwardedFor, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if remoteAddr = strings.TrimSpace(remoteAddr); remoteAddr != "" {
		return remoteAddr
	}
	return unknownClient
}

// IsExempt reports whether a request path bypasses the limiter.
func IsExempt(p string) bool {
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	_, metered := meteredPaths[p]
	return !metered
}
