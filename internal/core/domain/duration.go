package domain

import (
	"strconv"
	"strings"
	"time"

	"go.trai.ch/zerr"
)

var durationUnits = map[byte]time.Duration{
	's': time.Second,
	'm': time.Minute,
	'h': time.Hour,
	'd': 24 * time.Hour,
}

// ParseDuration parses the duration syntax accepted by the cache flags: a
// non-negative integer followed by one of the unit suffixes s, m, h or d.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return 0, zerr.With(ErrInvalidDuration, "token", s)
	}

	unit, ok := durationUnits[s[len(s)-1]]
	if !ok {
		return 0, zerr.With(ErrInvalidDuration, "token", s)
	}

	count, err := strconv.ParseUint(s[:len(s)-1], 10, 32)
	if err != nil {
		return 0, zerr.With(ErrInvalidDuration, "token", s)
	}

	return time.Duration(count) * unit, nil
}
