package util

import (
	"fmt"
	"math"
	"sync"
	"time"
)

const (
	// DateFormat is the display format for dates.
	DateFormat = "2006-01-02"

	// DateTimeFormat is the display format for fault timestamps.
	DateTimeFormat = "2006-01-02 15:04"
)

// Clock supplies the current time. Services take a Clock so tests can pin it.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock is a manually driven Clock.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixedClock returns a clock stopped at t.
func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{now: t}
}

// Now returns the clock's current time.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set moves the clock to t.
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// FormatDate formats a time as a date string.
func FormatDate(t time.Time) string {
	return t.Format(DateFormat)
}

// FormatDateTime formats a time for display.
func FormatDateTime(t time.Time) string {
	return t.Format(DateTimeFormat)
}

// FormatOptional formats t, or returns placeholder when t is nil.
func FormatOptional(t *time.Time, placeholder string) string {
	if t == nil {
		return placeholder
	}
	return FormatDateTime(*t)
}

// ParseDate parses a date string.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateFormat, s)
}

// ParseDateTime parses a display timestamp as UTC.
func ParseDateTime(s string) (time.Time, error) {
	return time.Parse(DateTimeFormat, s)
}

// FormatHours renders fractional hours as "2h 15m". Negative values keep
// their sign.
func FormatHours(h float64) string {
	sign := ""
	if h < 0 {
		sign = "-"
		h = -h
	}
	total := int(math.Round(h * 60))
	hours, mins := total/60, total%60
	switch {
	case hours == 0:
		return fmt.Sprintf("%s%dm", sign, mins)
	case mins == 0:
		return fmt.Sprintf("%s%dh", sign, hours)
	default:
		return fmt.Sprintf("%s%dh %02dm", sign, hours, mins)
	}
}

// StartOfDay returns midnight of the given day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// RelativeTimeString returns a short description such as "3 hours ago".
func RelativeTimeString(t time.Time, now time.Time) string {
	diff := now.Sub(t)
	if diff < 0 {
		return "in the future"
	}

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return plural(int(diff.Minutes()), "minute") + " ago"
	case diff < 24*time.Hour:
		return plural(int(diff.Hours()), "hour") + " ago"
	case diff < 48*time.Hour:
		return "yesterday"
	case diff < 30*24*time.Hour:
		return plural(int(diff.Hours()/24), "day") + " ago"
	default:
		return plural(int(diff.Hours()/24/30), "month") + " ago"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
