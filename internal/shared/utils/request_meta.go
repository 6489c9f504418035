package utils

import (
	"net"
	"strings"
)

// ResolveClientIP resolves the client address for session metadata.
// The first entry of a comma-separated X-Forwarded-For value wins; the direct
// peer address is the fallback. Resolution is best-effort: anything that does
// not parse as an IP yields an empty string, never an error, so session
// creation is never blocked by a mangled proxy header.
func ResolveClientIP(forwardedFor, peerAddr string) string {
	candidate := peerAddr
	if forwardedFor != "" {
		candidate = strings.SplitN(forwardedFor, ",", 2)[0]
	}
	candidate = strings.TrimSpace(candidate)
	if ip := net.ParseIP(candidate); ip != nil {
		return ip.String()
	}
	// Peer addresses may carry a port.
	if host, _, err := net.SplitHostPort(candidate); err == nil {
		if ip := net.ParseIP(host); ip != nil {
			return ip.String()
		}
	}
	return ""
}
