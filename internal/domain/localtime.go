package domain

import (
	"fmt"
	"log"
	"time"
)

// Clock resolves stored or user-supplied timestamps into the user's local
// calendar. Every timestamp in the system routes through a single Clock so
// the zone conversion happens exactly once per value.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// NewClock returns a Clock for the given zone. A nil location means the
// process's local zone.
func NewClock(loc *time.Location) *Clock {
	if loc == nil {
		loc = time.Local
	}
	return &Clock{loc: loc, now: time.Now}
}

// NewClockAt returns a Clock with a fixed now, for tests.
func NewClockAt(loc *time.Location, now time.Time) *Clock {
	c := NewClock(loc)
	c.now = func() time.Time { return now }
	return c
}

// Now returns the current instant in the clock's zone.
func (c *Clock) Now() time.Time {
	return c.now().In(c.loc)
}

// Layouts accepted for naive timestamps, i.e. wall-clock strings with no
// zone marker. They are read directly in the clock's zone, never shifted.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Parse turns a timestamp string into an instant. Strings carrying an
// explicit offset (RFC 3339, trailing Z) are converted to the clock's zone
// exactly once; naive strings are interpreted as wall-clock time in that
// zone with no conversion at all.
func (c *Clock) Parse(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(c.loc), nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, c.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("malformed timestamp %q", s)
}

// ParseOrNow is Parse with the degraded-mode contract for stored data: a
// malformed timestamp falls back to now with a logged warning instead of
// failing, so corrupted historical rows still render.
func (c *Clock) ParseOrNow(s string) time.Time {
	t, err := c.Parse(s)
	if err != nil {
		log.Printf("healthlog: %v, falling back to now", err)
		return c.Now()
	}
	return t
}

// LocalMoment is an explicit local calendar reading of an instant.
type LocalMoment struct {
	Year   int
	Month  time.Month
	Day    int
	Hour   int
	Minute int
	Second int
}

// Key returns the canonical day key, YYYY-MM-DD zero-padded.
func (m LocalMoment) Key() string {
	return fmt.Sprintf("%04d-%02d-%02d", m.Year, int(m.Month), m.Day)
}

// Local reads the calendar fields of t in the clock's zone.
func (c *Clock) Local(t time.Time) LocalMoment {
	lt := t.In(c.loc)
	return LocalMoment{
		Year:   lt.Year(),
		Month:  lt.Month(),
		Day:    lt.Day(),
		Hour:   lt.Hour(),
		Minute: lt.Minute(),
		Second: lt.Second(),
	}
}

// DayKey returns the local calendar day of t. Bucketing by this key is what
// keeps a 01:39 UTC instant on the previous local day under a negative
// offset; it must never be derived from UTC calendar fields.
func (c *Clock) DayKey(t time.Time) string {
	return c.Local(t).Key()
}

// ValidDayKey reports whether s is a well-formed YYYY-MM-DD key.
func ValidDayKey(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
