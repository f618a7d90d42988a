package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// NextSequentialID returns prefix-N where N is one past the highest numeric
// suffix among existing keys with the same prefix. Gaps left by deletes are
// never reused.
func NextSequentialID(prefix string, existing []string) string {
	max := 0
	for _, key := range existing {
		rest, ok := strings.CutPrefix(key, prefix+"-")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(rest)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s-%d", prefix, max+1)
}

// ValidKey reports whether s can be used as a single store path segment.
func ValidKey(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	return !strings.ContainsAny(s, "/.#$[]")
}
