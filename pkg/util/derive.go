package util

import (
	"regexp"
	"sort"
	"strings"
)

var parseInterfaceRegexp = regexp.MustCompile(`^([A-Za-z-]+)(\d.*)$`)

// ParseInterfaceName extracts the interface type and the number part
// e.g. ("Loopback", "0") for Loopback0, ("GigabitEthernet", "0/0/1.100") for Gi0/0/1.100
func ParseInterfaceName(name string) (ifType string, num string) {
	matches := parseInterfaceRegexp.FindStringSubmatch(strings.TrimSpace(name))
	if len(matches) == 3 {
		return matches[1], matches[2]
	}
	return name, ""
}

// Interface name mappings (abbreviation -> IOS full name)
var (
	shortToLong = map[string]string{
		"lo":   "Loopback",
		"gi":   "GigabitEthernet",
		"te":   "TenGigabitEthernet",
		"fa":   "FastEthernet",
		"eth":  "Ethernet",
		"po":   "Port-channel",
		"vl":   "Vlan",
		"vlan": "Vlan",
		"tu":   "Tunnel",
		"nve":  "nve",
	}

	// shortToLongSorted contains abbreviation keys sorted longest-first
	// so that "vlan" is matched before "vl" in NormalizeInterfaceName.
	shortToLongSorted []string
)

func init() {
	shortToLongSorted = make([]string, 0, len(shortToLong))
	for k := range shortToLong {
		shortToLongSorted = append(shortToLongSorted, k)
	}
	sort.Slice(shortToLongSorted, func(i, j int) bool {
		if len(shortToLongSorted[i]) != len(shortToLongSorted[j]) {
			return len(shortToLongSorted[i]) > len(shortToLongSorted[j])
		}
		return shortToLongSorted[i] < shortToLongSorted[j]
	})
}

// NormalizeInterfaceName expands abbreviated IOS interface names
// lo0 -> Loopback0, Gi0/1 -> GigabitEthernet0/1, po10 -> Port-channel10.
// Names that already use a full type, or unknown types, are returned unchanged.
func NormalizeInterfaceName(name string) string {
	name = strings.TrimSpace(name)
	ifType, num := ParseInterfaceName(name)
	if num == "" {
		return name
	}
	lower := strings.ToLower(ifType)
	for _, full := range shortToLong {
		if strings.EqualFold(ifType, full) {
			return full + num
		}
	}
	for _, abbr := range shortToLongSorted {
		if lower == abbr {
			return shortToLong[abbr] + num
		}
	}
	return name
}
