package domain

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	hoursPattern   = regexp.MustCompile(`(\d+\.?\d*)\s*h`)
	minutesPattern = regexp.MustCompile(`(\d+)\s*m`)
	clockPattern   = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
)

// FormatClock renders seconds as H:MM:SS, or H:MM when withSeconds is false.
// Negative input renders as zero.
func FormatClock(seconds int, withSeconds bool) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	if !withSeconds {
		return fmt.Sprintf("%d:%02d", h, m)
	}
	return fmt.Sprintf("%d:%02d:%02d", h, m, seconds%60)
}

// ParseDuration converts user input such as "1h 30m", "90m", "1.5h", "02:30"
// or a bare number of minutes into seconds. Unrecognised input yields 0.
func ParseDuration(input string) int {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0
	}
	if m := clockPattern.FindStringSubmatch(input); m != nil {
		h, _ := strconv.Atoi(m[1])
		min, _ := strconv.Atoi(m[2])
		return h*3600 + min*60
	}

	var total float64
	hm := hoursPattern.FindStringSubmatch(input)
	mm := minutesPattern.FindStringSubmatch(input)
	if hm != nil {
		h, _ := strconv.ParseFloat(hm[1], 64)
		total += h * 3600
	}
	if mm != nil {
		min, _ := strconv.Atoi(mm[1])
		total += float64(min) * 60
	}
	if hm == nil && mm == nil {
		if f, err := strconv.ParseFloat(input, 64); err == nil {
			total = f * 60
		}
	}
	return int(math.Round(total))
}
