package validate

import (
	"regexp"
	"strings"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

// ID validates a simple resource identifier (product ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// IDs validates a batch of product ids; fails on the first bad one.
func IDs(in []string) ([]string, bool) {
	if len(in) == 0 || len(in) > 100 {
		return nil, false
	}
	out := make([]string, 0, len(in))
	for _, raw := range in {
		id, ok := ID(raw)
		if !ok {
			return nil, false
		}
		out = append(out, id)
	}
	return out, true
}

// Quantity checks a strict positive quantity. Unlike a clamping helper,
// an out-of-range value is reported to the caller, not repaired.
func Quantity(n int) (int, bool) {
	if n < 1 || n > 999 {
		return 0, false
	}
	return n, true
}

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 50 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Password enforces a simple length window for login checks.
func Password(s string) bool {
	l := len(s)
	return l >= 8 && l <= 64
}
