// Package privacy provides helpers for keeping personal data out of logs
// and audit records. IP addresses are reduced to a network prefix and
// national identifiers to their trailing digits.
package privacy

import (
	"net"
	"strings"
)

// AnonymizeIP reduces an IP address to a coarse network prefix.
// IPv4 addresses keep the first three octets, IPv6 addresses the /48 prefix.
func AnonymizeIP(raw string) string {
	ip := net.ParseIP(strings.TrimSpace(raw))
	if ip == nil {
		return "invalid"
	}

	if v4 := ip.To4(); v4 != nil {
		masked := v4.Mask(net.CIDRMask(24, 32))
		return masked.String() + "/24"
	}

	masked := ip.Mask(net.CIDRMask(48, 128))
	return masked.String() + "/48"
}

// MaskNationalID hides all but the last three characters of an identifier.
// Short identifiers are masked entirely.
func MaskNationalID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	if len(id) <= 3 {
		return strings.Repeat("*", len(id))
	}
	return strings.Repeat("*", len(id)-3) + id[len(id)-3:]
}
