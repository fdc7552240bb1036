package gateway

import (
	"net/http"
	"strings"
)

// Identity headers read by the downstream services
const (
	HeaderUserID    = "X-User-Id"
	HeaderUserEmail = "X-User-Email"
	HeaderUserRole  = "X-User-Role"
)

var hopByHopHeaders = []string{
	"Connection",
	"Proxy-Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// ForwardHeaders builds the outbound header set: the original headers without hop-by-hop
// fields and without any caller supplied identity, plus the validated identity if present.
func ForwardHeaders(original http.Header, identity *Identity) http.Header {
	out := original.Clone()
	if out == nil {
		out = make(http.Header)
	}
	removeHopByHop(out)
	out.Del("Host")
	out.Del("Content-Length")

	out.Del(HeaderUserID)
	out.Del(HeaderUserEmail)
	out.Del(HeaderUserRole)
	if identity != nil {
		out.Set(HeaderUserID, identity.ID)
		out.Set(HeaderUserEmail, identity.Email)
		out.Set(HeaderUserRole, identity.Role)
	}
	return out
}

// ResponseHeaders returns the downstream headers safe to relay to the caller
func ResponseHeaders(downstream http.Header) http.Header {
	out := downstream.Clone()
	if out == nil {
		return make(http.Header)
	}
	removeHopByHop(out)
	out.Del("Content-Length")
	return out
}

func removeHopByHop(h http.Header) {
	for _, value := range h.Values("Connection") {
		for _, name := range strings.Split(value, ",") {
			if name = strings.TrimSpace(name); name != "" {
				h.Del(name)
			}
		}
	}
	for _, name := range hopByHopHeaders {
		h.Del(name)
	}
}
