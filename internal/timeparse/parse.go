package timeparse

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Parse converts a human-readable interval like "1h 30m", "90s", "1.5h" or a
// bare number of seconds like "600" into seconds.
func Parse(input string) (int, error) {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("negative interval %q", input)
		}
		return int(n), nil
	}

	totalSeconds := 0
	for _, unit := range []struct {
		suffix  string
		seconds float64
	}{{"h", 3600}, {"m", 60}, {"s", 1}} {
		if !strings.Contains(s, unit.suffix) {
			continue
		}
		parts := strings.SplitN(s, unit.suffix, 2)
		value, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil || value < 0 {
			return 0, fmt.Errorf("invalid interval %q", input)
		}
		totalSeconds += int(value * unit.seconds)
		s = strings.TrimSpace(parts[1])
	}
	if s != "" {
		return 0, fmt.Errorf("invalid interval %q", input)
	}
	return totalSeconds, nil
}

// Duration is Parse returning a time.Duration.
func Duration(input string) (time.Duration, error) {
	secs, err := Parse(input)
	if err != nil {
		return 0, err
	}
	return time.Duration(secs) * time.Second, nil
}
