package middleware

import (
	"log/slog"
	"net/http"
	"net/netip"
	"strings"

	"github.com/JonMunkholm/contactfinder/internal/core"
)

// TrustedRealIP resolves the client address and stores it on the request
// context (see core.ClientIPFromContext).
//
// X-Real-IP and X-Forwarded-For are honoured ONLY when the connection comes
// from one of trustedCIDRs. Otherwise the socket address is used, so clients
// cannot spoof their way past the per-IP rate limiter.
func TrustedRealIP(trustedCIDRs []string) func(http.Handler) http.Handler {
	trusted := parsePrefixes(trustedCIDRs)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client, ok := parseAddr(r.RemoteAddr)

			if ok && isTrusted(client, trusted) {
				if fwd, found := forwardedFor(r, trusted); found {
					client = fwd
					r.RemoteAddr = fwd.String()
				}
			}

			ip := r.RemoteAddr
			if ok {
				ip = client.String()
			}
			ctx := core.ContextWithClientIP(r.Context(), ip)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientIP returns the address resolved by TrustedRealIP, falling back to
// the socket address when the middleware did not run.
func ClientIP(r *http.Request) string {
	if ip := core.ClientIPFromContext(r.Context()); ip != "" {
		return ip
	}
	if a, ok := parseAddr(r.RemoteAddr); ok {
		return a.String()
	}
	return r.RemoteAddr
}

func parsePrefixes(cidrs []string) []netip.Prefix {
	var out []netip.Prefix
	for _, c := range cidrs {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if p, err := netip.ParsePrefix(c); err == nil {
			out = append(out, p.Masked())
			continue
		}
		// A bare address trusts exactly that host.
		a, err := netip.ParseAddr(c)
		if err != nil {
			slog.Warn("realip: invalid trusted proxy, skipping", "cidr", c, "error", err)
			continue
		}
		out = append(out, netip.PrefixFrom(a, a.BitLen()))
	}
	return out
}

// forwardedFor prefers X-Real-IP, then the rightmost X-Forwarded-For hop
// that is not itself a trusted proxy. Hops left of that one were supplied by
// the client and cannot be believed.
func forwardedFor(r *http.Request, trusted []netip.Prefix) (netip.Addr, bool) {
	if rip := strings.TrimSpace(r.Header.Get("X-Real-IP")); rip != "" {
		a, err := netip.ParseAddr(rip)
		return a.Unmap(), err == nil
	}

	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	var last netip.Addr
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		a, err := netip.ParseAddr(hop)
		if err != nil {
			break
		}
		last = a.Unmap()
		if !isTrusted(last, trusted) {
			return last, true
		}
	}
	// Every parsed hop was a trusted proxy: the leftmost one is the origin.
	return last, last.IsValid()
}

func parseAddr(addr string) (netip.Addr, bool) {
	if ap, err := netip.ParseAddrPort(addr); err == nil {
		return ap.Addr().Unmap(), true
	}
	if a, err := netip.ParseAddr(addr); err == nil {
		return a.Unmap(), true
	}
	return netip.Addr{}, false
}

func isTrusted(a netip.Addr, trusted []netip.Prefix) bool {
	for _, p := range trusted {
		if p.Contains(a) {
			return true
		}
	}
	return false
}
