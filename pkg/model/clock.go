package model

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Wall-clock values travel as zero-padded strings so lexicographic
// comparison matches chronological order in MongoDB filters.
const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

var clockRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ParseClock converts an "HH:MM" time-of-day into minutes since midnight.
func ParseClock(s string) (int, error) {
	if !clockRegex.MatchString(s) {
		return 0, fmt.Errorf("invalid time of day %q, expected HH:MM", s)
	}
	h, _ := strconv.Atoi(s[:2])
	m, _ := strconv.Atoi(s[3:])
	return h*60 + m, nil
}

// FormatClock is the inverse of ParseClock.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func ValidClock(s string) bool {
	return clockRegex.MatchString(s)
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
