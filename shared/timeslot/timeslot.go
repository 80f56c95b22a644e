// Package timeslot converts 12-hour clock strings such as "9:30 AM" into
// minutes since midnight and compares the resulting half-open intervals.
package timeslot

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	MinutesPerHour = 60
	MinutesPerDay  = 24 * MinutesPerHour

	hoursPerMeridiem = 12
)

var (
	ErrMalformedClock = errors.New("malformed clock time")
	ErrInvalidRange   = errors.New("start time must be before end time")

	clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s?([AP]M)$`)
)

// ParseClock returns the minutes since midnight for "h:mm AM|PM".
// 12 AM is midnight and 12 PM is noon.
func ParseClock(value string) (int, error) {
	match := clockPattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(value)))
	if match == nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedClock, value)
	}

	hours, _ := strconv.Atoi(match[1])
	minutes, _ := strconv.Atoi(match[2])

	if hours < 1 || hours > hoursPerMeridiem || minutes >= MinutesPerHour {
		return 0, fmt.Errorf("%w: %q", ErrMalformedClock, value)
	}

	hours %= hoursPerMeridiem
	if match[3] == "PM" {
		hours += hoursPerMeridiem
	}

	return hours*MinutesPerHour + minutes, nil
}

// FormatClock renders minutes since midnight as "h:mm AM|PM".
func FormatClock(minutes int) string {
	minutes = ((minutes % MinutesPerDay) + MinutesPerDay) % MinutesPerDay

	hours := minutes / MinutesPerHour
	meridiem := "AM"

	if hours >= hoursPerMeridiem {
		meridiem = "PM"
	}

	hours %= hoursPerMeridiem
	if hours == 0 {
		hours = hoursPerMeridiem
	}

	return fmt.Sprintf("%d:%02d %s", hours, minutes%MinutesPerHour, meridiem)
}

// FormatTime renders the wall clock of t as "h:mm AM|PM".
func FormatTime(t time.Time) string {
	return FormatClock(MinuteOfDay(t))
}

// MinuteOfDay returns the minutes elapsed since midnight in t's location.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*MinutesPerHour + t.Minute()
}

// At returns the instant minutes after midnight, in loc, of the calendar day
// carried by day. Only day's year, month and date are used.
func At(day time.Time, minutes int, loc *time.Location) time.Time {
	year, month, date := day.Date()

	return time.Date(year, month, date, 0, 0, 0, 0, loc).Add(time.Duration(minutes) * time.Minute)
}

// Interval is a half-open range of minutes [Start, End).
type Interval struct {
	Start int
	End   int
}

// NewInterval parses both clock strings. The start must precede the end.
func NewInterval(start, end string) (Interval, error) {
	startMinute, err := ParseClock(start)
	if err != nil {
		return Interval{}, err
	}

	endMinute, err := ParseClock(end)
	if err != nil {
		return Interval{}, err
	}

	interval := Interval{Start: startMinute, End: endMinute}
	if !interval.Valid() {
		return Interval{}, fmt.Errorf("%w: %s - %s", ErrInvalidRange, start, end)
	}

	return interval, nil
}

func (i Interval) Valid() bool {
	return i.Start < i.End
}

// Overlaps reports whether the two ranges share at least one minute.
// Ranges that only touch at a boundary do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start < other.End && i.End > other.Start
}

func (i Interval) String() string {
	return FormatClock(i.Start) + " - " + FormatClock(i.End)
}
