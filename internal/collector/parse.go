package collector

import (
	"net/netip"
	"regexp"
	"strconv"
	"strings"

	"github.com/xixi-furry/ikuai-komari-agent-docker/internal/model"
)

var (
	diskCapacityRe = regexp.MustCompile(`\((\d+(?:\.\d+)?)GB\)`)

	// shared address space is not routable on the internet.
	carrierGradeNAT = netip.MustParsePrefix("100.64.0.0/10")
)

// averagePercent averages percentage strings such as "12.5%", entries that
// do not parse are skipped. The second return value is false when no entry parsed.
func averagePercent(values []string) (float64, bool) {
	var (
		sum float64
		n   int
	)

	for _, v := range values {
		f, ok := parsePercent(v)
		if !ok {
			continue
		}

		sum += f
		n++
	}

	if n == 0 {
		return 0, false
	}

	return sum / float64(n), true
}

func parsePercent(s string) (float64, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0, false
	}

	return f, true
}

// parseDiskCapacity returns the byte size of the first "(<n>GB)" in s, 0 when there is none.
func parseDiskCapacity(s string) uint64 {
	m := diskCapacityRe.FindStringSubmatch(s)
	if m == nil {
		return 0
	}

	gb, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}

	return model.GiBToBytes(gb)
}

// isPublicAddress reports whether addr, optionally in CIDR form, is a routable IPv4 or IPv6 address.
func isPublicAddress(addr string) bool {
	ip, err := netip.ParseAddr(addressOnly(addr))
	if err != nil {
		return false
	}

	ip = ip.Unmap()

	switch {
	case ip.IsPrivate(),
		ip.IsLoopback(),
		ip.IsLinkLocalUnicast(),
		ip.IsLinkLocalMulticast(),
		ip.IsMulticast(),
		ip.IsUnspecified(),
		carrierGradeNAT.Contains(ip):
		return false
	}

	return true
}

func isPublicIPv4(addr string) bool {
	ip, err := netip.ParseAddr(addressOnly(addr))
	if err != nil || !ip.Unmap().Is4() {
		return false
	}

	return isPublicAddress(addr)
}

func clampPercent(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 100:
		return 100
	}

	return f
}
