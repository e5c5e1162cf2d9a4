package helpers

import "strings"

// SplitAndTrim splits s by sep, trims whitespace around each part and drops
// empty parts.
func SplitAndTrim(s, sep string) []string {
	var out []string
	for _, p := range strings.Split(s, sep) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// MBToBytes converts a size expressed in megabytes to bytes, truncating
// fractional bytes.
func MBToBytes(mb float64) int64 {
	return int64(mb * 1024 * 1024)
}
