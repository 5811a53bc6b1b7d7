// Package jalali converts between the canonical UTC storage timestamps
// and the Jalali (shamsi) calendar used for all date display and
// date-filter input.
package jalali

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	ptime "github.com/yaa110/go-persian-calendar"
)

// Location is the fixed local timezone used for rendering and for
// interpreting date-filter input.
var Location = ptime.Iran()

// ParseDate parses a shamsi date in YYYY/MM/DD form and returns the
// first instant of that calendar day, converted to UTC.
func ParseDate(value string) (time.Time, error) {
	year, month, day, err := splitDate(value)
	if err != nil {
		return time.Time{}, err
	}
	pt := ptime.Date(year, ptime.Month(month), day, 0, 0, 0, 0, Location)
	// ptime.Date normalizes out-of-range components; reject them instead.
	if pt.Year() != year || int(pt.Month()) != month || pt.Day() != day {
		return time.Time{}, fmt.Errorf("invalid shamsi date %q", value)
	}
	return pt.Time().UTC(), nil
}

// ParseEndOfDay parses a shamsi date and returns the last second of that
// calendar day (23:59:59 local), converted to UTC. Date-range filters
// are inclusive of the full end day.
func ParseEndOfDay(value string) (time.Time, error) {
	start, err := ParseDate(value)
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(24*time.Hour - time.Second), nil
}

// FormatDate renders a timestamp as a shamsi YYYY/MM/DD string.
func FormatDate(t time.Time) string {
	return ptime.New(t.In(Location)).Format("yyyy/MM/dd")
}

// FormatDateTime renders a timestamp as a shamsi date with local time.
func FormatDateTime(t time.Time) string {
	return ptime.New(t.In(Location)).Format("yyyy/MM/dd HH:mm")
}

// StartOfLocalDay truncates a timestamp to the start of its local
// calendar day, returned in UTC. Used to bucket trend series by day.
func StartOfLocalDay(t time.Time) time.Time {
	local := t.In(Location)
	pt := ptime.New(local)
	return ptime.Date(pt.Year(), pt.Month(), pt.Day(), 0, 0, 0, 0, Location).Time().UTC()
}

func splitDate(value string) (year, month, day int, err error) {
	parts := strings.Split(strings.TrimSpace(value), "/")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("date %q is not in YYYY/MM/DD form", value)
	}
	nums := make([]int, 3)
	for i, part := range parts {
		n, convErr := strconv.Atoi(part)
		if convErr != nil {
			return 0, 0, 0, fmt.Errorf("date %q is not in YYYY/MM/DD form", value)
		}
		nums[i] = n
	}
	if nums[1] < 1 || nums[1] > 12 || nums[2] < 1 || nums[2] > 31 || nums[0] < 1 {
		return 0, 0, 0, fmt.Errorf("invalid shamsi date %q", value)
	}
	return nums[0], nums[1], nums[2], nil
}
