package util

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// IsValidIP checks if a string is a valid IPv4 or IPv6 address
func IsValidIP(ipStr string) bool {
	return net.ParseIP(ipStr) != nil
}

// IsValidIPv4 checks if a string is a valid IPv4 address
func IsValidIPv4(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	return ip != nil && ip.To4() != nil
}

const maxASN = 4294967295 // max uint32, 4-byte ASN range

// ParseASN parses an AS number in asplain ("65000") or asdot ("1.10") notation
// and returns its numeric value.
func ParseASN(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("AS number is empty")
	}
	if hi, lo, ok := strings.Cut(s, "."); ok {
		h, err := strconv.ParseUint(hi, 10, 16)
		if err != nil {
			return 0, fmt.Errorf("invalid asdot AS number %q", s)
		}
		l, err := strconv.ParseUint(lo, 10, 16)
		if err != nil {
			return 0, fmt.Errorf("invalid asdot AS number %q", s)
		}
		asn := uint32(h)<<16 | uint32(l)
		if asn == 0 {
			return 0, fmt.Errorf("AS number must be between 1 and %d, got %s", maxASN, s)
		}
		return asn, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid AS number %q", s)
	}
	if v < 1 || v > maxASN {
		return 0, fmt.Errorf("AS number must be between 1 and %d, got %d", maxASN, v)
	}
	return uint32(v), nil
}

// ValidateASN checks if an AS number string is valid (1 to 4294967295)
func ValidateASN(asn string) error {
	_, err := ParseASN(asn)
	return err
}

// InRange reports whether v lies in [lo, hi]
func InRange(v, lo, hi int) bool {
	return v >= lo && v <= hi
}
