package common

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP picks the address the rate limiter keys checkout requests by.
// The API sits behind a reverse proxy, so the leftmost X-Forwarded-For hop
// is preferred, then X-Real-IP, and the socket address is the fallback for
// direct connections in development.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
