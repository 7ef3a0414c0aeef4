package trigger

import (
	"fmt"
	"strconv"
	"strings"
)

var weekdayNames = [7]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// Describe renders a short human-readable sentence for the most common
// schedule shapes. Anything more exotic falls back to quoting the raw
// expression.
func (p *ParsedCron) Describe() string {
	minute, hour, dom, month, dow := p.fields[0], p.fields[1], p.fields[2], p.fields[3], p.fields[4]

	if month != "*" {
		return p.customSchedule()
	}

	m, minuteFixed := parseFixed(minute)
	h, hourFixed := parseFixed(hour)

	switch {
	case minute == "*" && hour == "*" && dom == "*" && dow == "*":
		return "Every minute"

	case strings.HasPrefix(minute, "*/") && hour == "*" && dom == "*" && dow == "*":
		if n, err := strconv.Atoi(minute[2:]); err == nil {
			if n == 1 {
				return "Every minute"
			}
			return fmt.Sprintf("Every %d minutes", n)
		}

	case minuteFixed && hour == "*" && dom == "*" && dow == "*":
		return fmt.Sprintf("Every hour at minute %d", m)

	case minuteFixed && hourFixed && dom == "*" && dow == "*":
		return fmt.Sprintf("Every day at %s", formatClock(h, m))

	case minuteFixed && hourFixed && dom == "*" && isFixed(dow):
		d, _ := parseFixed(dow)
		return fmt.Sprintf("Every %s at %s", weekdayNames[d], formatClock(h, m))

	case minuteFixed && hourFixed && isFixed(dom) && dow == "*":
		day, _ := parseFixed(dom)
		return fmt.Sprintf("Monthly on day %d at %s", day, formatClock(h, m))
	}

	return p.customSchedule()
}

func (p *ParsedCron) customSchedule() string {
	return fmt.Sprintf("Custom schedule: %s", p.Expression)
}

func isFixed(field string) bool {
	_, ok := parseFixed(field)
	return ok
}

func parseFixed(field string) (int, bool) {
	n, err := strconv.Atoi(field)
	if err != nil {
		return 0, false
	}
	return n, true
}

// formatClock renders a 12-hour clock time, e.g. (8, 0) -> "8:00 AM".
func formatClock(hour, minute int) string {
	suffix := "AM"
	h := hour
	switch {
	case hour == 0:
		h = 12
	case hour == 12:
		suffix = "PM"
	case hour > 12:
		h = hour - 12
		suffix = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", h, minute, suffix)
}
