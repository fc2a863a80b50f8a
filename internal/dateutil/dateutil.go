package dateutil

import (
	"errors"
	"time"
)

// KeyLayout is the canonical calendar-day key format. All day-level
// comparisons in the habit engine happen on these keys, in UTC.
const KeyLayout = "2006-01-02"

var ErrInvalidDateKey = errors.New("invalid date key")

// Clock abstracts "now" so day-boundary logic is testable.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system time.
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

// KeyOf returns the day key for t in UTC.
func KeyOf(t time.Time) string {
	return t.UTC().Format(KeyLayout)
}

// TodayKey returns the current day key.
func TodayKey(clock Clock) string {
	return KeyOf(clock.Now())
}

// YesterdayKey returns the day key for the previous calendar day.
func YesterdayKey(clock Clock) string {
	return KeyOf(clock.Now().AddDate(0, 0, -1))
}

// ParseKey parses a day key back into a UTC midnight time.
func ParseKey(key string) (time.Time, error) {
	t, err := time.ParseInLocation(KeyLayout, key, time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalidDateKey
	}
	return t, nil
}

// SameCalendarDay reports whether two keys name the same calendar day.
// Keys are canonical, so this is string equality once both parse.
func SameCalendarDay(a, b string) (bool, error) {
	if _, err := ParseKey(a); err != nil {
		return false, err
	}
	if _, err := ParseKey(b); err != nil {
		return false, err
	}
	return a == b, nil
}

// KeysBetween returns the day keys in (after, until], oldest first.
// Calendar arithmetic handles month and year boundaries. An empty or
// inverted range yields nil.
func KeysBetween(after, until string) ([]string, error) {
	start, err := ParseKey(after)
	if err != nil {
		return nil, err
	}
	end, err := ParseKey(until)
	if err != nil {
		return nil, err
	}

	var keys []string
	for d := start.AddDate(0, 0, 1); !d.After(end); d = d.AddDate(0, 0, 1) {
		keys = append(keys, KeyOf(d))
	}
	return keys, nil
}
