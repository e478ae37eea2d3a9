// Package schedule interprets the cron expressions attached to models.
// Nothing is ever scheduled; expressions are only parsed for display and
// validation.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Validate reports whether expr is a standard five-field cron expression
// or a descriptor such as @daily.
func Validate(expr string) error {
	if strings.TrimSpace(expr) == "" {
		return fmt.Errorf("schedule is required")
	}
	if _, err := parser.Parse(expr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return nil
}

// Next returns the first activation of expr strictly after from.
func Next(expr string, from time.Time) (time.Time, error) {
	sched, err := parser.Parse(expr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return sched.Next(from), nil
}

var weekdays = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

var descriptors = map[string]string{
	"@yearly":   "Yearly",
	"@annually": "Yearly",
	"@monthly":  "Monthly",
	"@weekly":   "Weekly",
	"@daily":    "Daily",
	"@midnight": "Daily",
	"@hourly":   "Hourly",
}

// Describe returns a short human description of common expressions and
// falls back to the expression itself.
func Describe(expr string) string {
	expr = strings.TrimSpace(expr)
	if d, ok := descriptors[expr]; ok {
		return d
	}

	fields := strings.Fields(expr)
	if len(fields) != 5 || Validate(expr) != nil {
		return expr
	}
	minute, hour, dom, month, dow := fields[0], fields[1], fields[2], fields[3], fields[4]
	if dom != "*" || month != "*" {
		return expr
	}

	if n, ok := strings.CutPrefix(hour, "*/"); ok && isNumber(minute) && dow == "*" {
		if n == "1" {
			return "Hourly"
		}
		return "Every " + n + " hours"
	}
	if hour == "*" && isNumber(minute) && dow == "*" {
		return "Hourly"
	}
	if !isNumber(minute) || !isNumber(hour) {
		return expr
	}

	h, _ := strconv.Atoi(hour)
	m, _ := strconv.Atoi(minute)
	at := fmt.Sprintf("%02d:%02d", h, m)
	switch {
	case dow == "*":
		return "Daily at " + at
	case isNumber(dow):
		d, _ := strconv.Atoi(dow)
		return "Weekly on " + weekdays[d%7] + " at " + at
	default:
		return expr
	}
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.Atoi(s)
	return err == nil
}
