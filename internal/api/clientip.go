package api

import (
	"net/http"
	"strings"
)

// UnknownClient is the shared rate-limit bucket for requests that carry
// no forwarded-address header.
const UnknownClient = "unknown"

// ClientIP derives the best-effort caller address used to key rate
// limiting: the first X-Forwarded-For entry, then CF-Connecting-IP,
// then UnknownClient. The value is never trusted for anything beyond
// throttling and log annotation.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		// The header may carry a proxy chain; the client is first.
		if idx := strings.Index(fwd, ","); idx != -1 {
			fwd = fwd[:idx]
		}
		if ip := strings.TrimSpace(fwd); ip != "" {
			return ip
		}
	}
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		return ip
	}
	return UnknownClient
}
