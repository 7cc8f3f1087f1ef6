package domain

import (
	"fmt"
	"strconv"
	"time"
)

// Day is a view entity for one board column. It is never persisted.
type Day struct {
	ID           string // YYYY-MM-DD
	FullDate     time.Time
	Name         string // "Sunday"
	ShortDate    string // "DD/MM"
	DayOfMonth   string
	ShortDayName string // "SUN"
}

// NewDay is the single constructor for Day values.
func NewDay(t time.Time) Day {
	d := DateOf(t)
	name := d.Weekday().String()
	return Day{
		ID:           d.Format(DateLayout),
		FullDate:     d,
		Name:         name,
		ShortDate:    fmt.Sprintf("%02d/%02d", d.Day(), int(d.Month())),
		DayOfMonth:   strconv.Itoa(d.Day()),
		ShortDayName: upper3(name),
	}
}

func upper3(s string) string {
	b := []byte(s[:3])
	for i, c := range b {
		if 'a' <= c && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}
