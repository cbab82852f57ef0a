package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var durationPart = regexp.MustCompile(`(\d+)([dhms])`)

// ParseDuration parses a duration string supporting standard Go durations and extended units (d for days).
// Examples: "500ms", "2s", "1h30m", "2d"
func ParseDuration(s string) (time.Duration, error) {
	input := strings.TrimSpace(s)
	if input == "" {
		return 0, fmt.Errorf("duration is empty")
	}
	if d, err := time.ParseDuration(input); err == nil {
		return d, nil
	}

	matches := durationPart.FindAllStringSubmatchIndex(input, -1)
	if len(matches) == 0 {
		return 0, fmt.Errorf("invalid duration: %s", input)
	}

	totalLen := 0
	total := time.Duration(0)
	for _, match := range matches {
		totalLen += match[1] - match[0]
		value, err := strconv.ParseInt(input[match[2]:match[3]], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", input)
		}
		switch input[match[4]:match[5]] {
		case "d":
			total += 24 * time.Hour * time.Duration(value)
		case "h":
			total += time.Hour * time.Duration(value)
		case "m":
			total += time.Minute * time.Duration(value)
		case "s":
			total += time.Second * time.Duration(value)
		}
	}
	if totalLen != len(input) {
		return 0, fmt.Errorf("invalid duration: %s", input)
	}
	return total, nil
}
