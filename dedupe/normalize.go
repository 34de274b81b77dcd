package dedupe

import (
	"sort"
	"strconv"
	"strings"
)

// Normalize computes the canonical key used by NetworkAware comparison, per
// spec §4.2. Rules are applied in order; the first match wins:
//
//  1. IPv4 dotted-quad, each octet 0-255 -> canonical form with leading
//     zeros stripped.
//  2. A string starting with an ASCII digit, with the rest made only of
//     digits, commas, hyphens or whitespace -> the maximal digit runs,
//     parsed as integers, sorted ascending, joined with commas.
//  3. Otherwise -> lowercased with all ASCII whitespace removed.
func Normalize(s string) string {
	if ip, ok := normalizeIPv4(s); ok {
		return ip
	}
	if ports, ok := normalizeDigitRun(s); ok {
		return ports
	}
	return normalizeLowercase(s)
}

func normalizeIPv4(s string) (string, bool) {
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return "", false
	}
	octets := make([]int, 4)
	for i, p := range parts {
		if p == "" || len(p) > 3 {
			return "", false
		}
		for _, r := range p {
			if r < '0' || r > '9' {
				return "", false
			}
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > 255 {
			return "", false
		}
		octets[i] = n
	}
	return strconv.Itoa(octets[0]) + "." + strconv.Itoa(octets[1]) + "." +
		strconv.Itoa(octets[2]) + "." + strconv.Itoa(octets[3]), true
}

func normalizeDigitRun(s string) (string, bool) {
	if s == "" || s[0] < '0' || s[0] > '9' {
		return "", false
	}
	for _, r := range s {
		if !(r >= '0' && r <= '9') && r != ',' && r != '-' && !isASCIISpace(byte(r)) {
			return "", false
		}
	}

	var nums []int
	var cur strings.Builder
	flush := func() {
		if cur.Len() == 0 {
			return
		}
		n, err := strconv.Atoi(cur.String())
		if err == nil {
			nums = append(nums, n)
		}
		cur.Reset()
	}
	for _, r := range s {
		if r >= '0' && r <= '9' {
			cur.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()

	sort.Ints(nums)
	strs := make([]string, len(nums))
	for i, n := range nums {
		strs[i] = strconv.Itoa(n)
	}
	return strings.Join(strs, ","), true
}

func normalizeLowercase(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isASCIISpace(c) {
			continue
		}
		b.WriteByte(c)
	}
	return strings.ToLower(b.String())
}

func isASCIISpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}
