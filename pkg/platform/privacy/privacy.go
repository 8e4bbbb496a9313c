// Package privacy reduces client addresses to network prefixes before they
// reach request logs. Access logs of a care facility sit next to resident
// records, so host addresses are never written verbatim.
package privacy

import (
	"net/netip"
	"strings"
)

const (
	ipv4Bits = 24
	ipv6Bits = 48
)

// AnonymizeIP masks an address to its /24 (IPv4) or /48 (IPv6) network and
// returns it in prefix form, e.g. "192.168.1.0/24". It returns "unknown" for
// an empty input and "invalid" when the value is not an address.
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "invalid"
	}
	addr = addr.Unmap()
	bits := ipv6Bits
	if addr.Is4() {
		bits = ipv4Bits
	}
	prefix, err := addr.Prefix(bits)
	if err != nil {
		return "invalid"
	}
	return prefix.String()
}

// HostFromRemoteAddr extracts the address part of an http.Request
// RemoteAddr ("host:port" or a bare host).
func HostFromRemoteAddr(remote string) string {
	if ap, err := netip.ParseAddrPort(remote); err == nil {
		return ap.Addr().Unmap().String()
	}
	if addr, err := netip.ParseAddr(strings.Trim(remote, "[]")); err == nil {
		return addr.Unmap().String()
	}
	return ""
}
