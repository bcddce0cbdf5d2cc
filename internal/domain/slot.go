package domain

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// ClockTime is a time of day in minutes since midnight.
type ClockTime int

const minutesPerDay = 24 * 60

const clockLayout = "15:04"

// ParseClock parses "HH:MM". "24:00" is accepted as the end of the day.
func ParseClock(s string) (ClockTime, error) {
	if s == "24:00" {
		return minutesPerDay, nil
	}
	t, err := time.Parse(clockLayout, s)
	if err != nil || len(s) != len(clockLayout) {
		return 0, fmt.Errorf("invalid time %q: %w", s, ErrInvalidTimeRange)
	}
	return ClockOf(t), nil
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// ClockOf returns the time of day of t, truncated to the minute.
func ClockOf(t time.Time) ClockTime {
	return ClockTime(t.Hour()*60 + t.Minute())
}

// ParseDate parses a calendar date in DateLayout as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, ErrInvalidTimeRange)
	}
	return d, nil
}

// DateOf strips the time of day from t, keeping its calendar date.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Slot is a half-open [Start, End) window on one date.
type Slot struct {
	Date  time.Time
	Start ClockTime
	End   ClockTime
}

func NewSlot(date time.Time, start, end ClockTime) (Slot, error) {
	if end <= start || start < 0 || end > minutesPerDay {
		return Slot{}, ErrInvalidTimeRange
	}
	return Slot{Date: DateOf(date), Start: start, End: end}, nil
}

// Overlaps uses half-open intersection, so touching boundaries do not conflict.
func (s Slot) Overlaps(o Slot) bool {
	return s.Date.Equal(o.Date) && s.Start < o.End && o.Start < s.End
}

// EndsAfter reports whether the slot is still current or upcoming at now.
func (s Slot) EndsAfter(now time.Time) bool {
	today := DateOf(now)
	if s.Date.After(today) {
		return true
	}
	return s.Date.Equal(today) && s.End > ClockOf(now)
}

func (s Slot) String() string {
	return fmt.Sprintf("%s %s-%s", s.Date.Format(DateLayout), s.Start, s.End)
}
