package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
)

// ProxyTrust lists the peers whose forwarding headers are believed. Everyone else is
// identified by the connection's own address.
type ProxyTrust struct {
	nets []*net.IPNet
}

// NewProxyTrust accepts CIDRs or bare IPs. Unparseable entries are logged and ignored.
func NewProxyTrust(entries []string, logger *slog.Logger) ProxyTrust {
	var p ProxyTrust
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if !strings.Contains(entry, "/") {
			if ip := net.ParseIP(entry); ip != nil && ip.To4() != nil {
				entry += "/32"
			} else {
				entry += "/128"
			}
		}
		_, n, err := net.ParseCIDR(entry)
		if err != nil {
			logger.Warn("Ignoring invalid trusted proxy", "entry", entry, slog.Any("error", err))
			continue
		}
		p.nets = append(p.nets, n)
	}
	return p
}

func (p ProxyTrust) trusts(ip net.IP) bool {
	for _, n := range p.nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// ClientIP resolves the originating address. X-Forwarded-For is walked from the right and
// the first hop that is not a trusted proxy wins. Returns "" when RemoteAddr is unusable.
func (p ProxyTrust) ClientIP(r *http.Request) string {
	peer := peerIP(r.RemoteAddr)
	if peer == nil {
		return ""
	}
	if !p.trusts(peer) {
		return peer.String()
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			ip := net.ParseIP(strings.TrimSpace(hops[i]))
			if ip == nil {
				break
			}
			if !p.trusts(ip) {
				return ip.String()
			}
		}
	}
	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
		return ip.String()
	}
	return peer.String()
}

// RealIP rewrites RemoteAddr to the resolved client address so logging and rate limiting
// see the same caller.
func RealIP(trust ProxyTrust) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ip := trust.ClientIP(r); ip != "" {
				r.RemoteAddr = ip
			}
			next.ServeHTTP(w, r)
		})
	}
}

func peerIP(remoteAddr string) net.IP {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return net.ParseIP(host)
	}
	return net.ParseIP(remoteAddr)
}
