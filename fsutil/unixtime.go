package fsutil

import (
	"strconv"
	"strings"
	"time"
)

// ToUnixTime returns t in whole seconds since the epoch, clamped at 0.
func ToUnixTime(t time.Time) int64 {
	sec := t.Unix()
	if sec < 0 {
		return 0
	}
	return sec
}

// FromUnixTime converts seconds since the epoch to local time.
func FromUnixTime(sec int64) time.Time {
	return time.Unix(sec, 0).Local()
}

// ParseUnixTime parses a decimal seconds value and falls back to the current
// time when s is not a valid integer.
func ParseUnixTime(s string) time.Time {
	sec, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return time.Now()
	}
	return FromUnixTime(sec)
}

// TimestampedName splices "_<unix seconds>" between base and ext.
func TimestampedName(base string, t time.Time, ext string) string {
	return base + "_" + strconv.FormatInt(ToUnixTime(t), 10) + ext
}
