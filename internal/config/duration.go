package config

import (
	"fmt"
	"strings"
	"time"
)

// DurationOrDefault parses value as a duration, using fallback when value
// is blank.
func DurationOrDefault(value, fallback string) (time.Duration, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		s = strings.TrimSpace(fallback)
	}
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return d, nil
}
