package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the storage and key format for civil dates.
const DateLayout = "2006-01-02"

// DaysPerWeek is the number of days in a plan page.
const DaysPerWeek = 7

// DateOf truncates t to its civil date, expressed at midnight UTC.
// All plan dates in the system are normalised through this function so that
// day arithmetic never crosses a DST boundary.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateKey formats the civil date of t as YYYY-MM-DD.
func DateKey(t time.Time) string {
	return DateOf(t).Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD string into a civil date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t, nil
}

// AddDays returns the civil date n days after t.
func AddDays(t time.Time, n int) time.Time {
	d := DateOf(t)
	return time.Date(d.Year(), d.Month(), d.Day()+n, 0, 0, 0, 0, time.UTC)
}

// WeekStart returns the first day of the week containing t, where weeks begin
// on first.
func WeekStart(t time.Time, first time.Weekday) time.Time {
	d := DateOf(t)
	diff := (int(d.Weekday()) - int(first) + DaysPerWeek) % DaysPerWeek
	return AddDays(d, -diff)
}

// WeekdayOffset returns how many days t lies after the start of its week.
func WeekdayOffset(t time.Time, first time.Weekday) int {
	return (int(t.Weekday()) - int(first) + DaysPerWeek) % DaysPerWeek
}

// ParseWeekday accepts English weekday names ("sunday", "Mon") and returns the
// matching time.Weekday.
func ParseWeekday(s string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := d.String()
		if strings.EqualFold(s, name) || strings.EqualFold(s, name[:3]) {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", s)
}
