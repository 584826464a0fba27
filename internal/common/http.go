package common

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ProxyTrust resolves the client address of a request. Forwarding headers are
// honoured only when the immediate peer is a trusted proxy.
type ProxyTrust struct {
	prefixes []netip.Prefix
}

// ParseProxyTrust parses CIDRs or bare addresses of trusted reverse proxies.
func ParseProxyTrust(cidrs []string) (ProxyTrust, error) {
	var t ProxyTrust
	for _, raw := range cidrs {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if !strings.Contains(raw, "/") {
			addr, err := netip.ParseAddr(raw)
			if err != nil {
				return ProxyTrust{}, fmt.Errorf("trusted proxy %q: %w", raw, err)
			}
			t.prefixes = append(t.prefixes, netip.PrefixFrom(addr.Unmap(), addr.Unmap().BitLen()))
			continue
		}
		prefix, err := netip.ParsePrefix(raw)
		if err != nil {
			return ProxyTrust{}, fmt.Errorf("trusted proxy %q: %w", raw, err)
		}
		t.prefixes = append(t.prefixes, prefix.Masked())
	}
	return t, nil
}

func (t ProxyTrust) trusted(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, p := range t.prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// ClientIP returns the peer address, or, when the peer is trusted, the right-most
// untrusted hop of X-Forwarded-For.
func (t ProxyTrust) ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	peer := remoteHost(r.RemoteAddr)
	addr, err := netip.ParseAddr(peer)
	if err != nil || !t.trusted(addr) {
		return peer
	}
	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		hopAddr, err := netip.ParseAddr(hop)
		if err != nil {
			break
		}
		if !t.trusted(hopAddr) {
			return hopAddr.Unmap().String()
		}
	}
	return peer
}

func remoteHost(remoteAddr string) string {
	remoteAddr = strings.TrimSpace(remoteAddr)
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
