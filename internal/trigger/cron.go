package trigger

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// cronParser is a standard 5-field cron expression parser
// (minute hour day-of-month month day-of-week).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

var fieldNames = [5]string{"minute", "hour", "day-of-month", "month", "day-of-week"}

var fieldBounds = [5]struct{ min, max int }{
	{0, 59}, // minute
	{0, 23}, // hour
	{1, 31}, // day-of-month
	{1, 12}, // month
	{0, 6},  // day-of-week
}

// InvalidCronError identifies the cron field that failed validation.
// Field is "expression" when the expression as a whole is malformed.
type InvalidCronError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidCronError) Error() string {
	return fmt.Sprintf("invalid cron %s %q: %s", e.Field, e.Value, e.Reason)
}

// ParsedCron is a validated cron expression together with its compiled
// schedule. Construct via ValidateCron only.
type ParsedCron struct {
	Expression string
	fields     [5]string
	schedule   cron.Schedule
}

// ValidateCron parses a 5-field POSIX cron expression. Each field may be "*",
// a number, a comma-list, a "/step", or an "a-b" range. Out-of-range values
// and malformed syntax are rejected with a typed error naming the field.
func ValidateCron(expression string) (*ParsedCron, error) {
	expr := strings.TrimSpace(expression)
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return nil, &InvalidCronError{
			Field:  "expression",
			Value:  expression,
			Reason: fmt.Sprintf("expected 5 fields, got %d", len(fields)),
		}
	}

	var parsed ParsedCron
	parsed.Expression = expr
	for i, field := range fields {
		if err := validateField(i, field); err != nil {
			return nil, err
		}
		parsed.fields[i] = field
	}

	sched, err := cronParser.Parse(expr)
	if err != nil {
		// Field-level checks passed but the parser still rejected the
		// expression (e.g. reversed ranges).
		return nil, &InvalidCronError{Field: "expression", Value: expression, Reason: err.Error()}
	}
	parsed.schedule = sched
	return &parsed, nil
}

func validateField(idx int, field string) error {
	name := fieldNames[idx]
	for _, item := range strings.Split(field, ",") {
		if item == "" {
			return &InvalidCronError{Field: name, Value: field, Reason: "empty list item"}
		}

		base := item
		if slash := strings.IndexByte(item, '/'); slash >= 0 {
			base = item[:slash]
			step := item[slash+1:]
			n, err := strconv.Atoi(step)
			if err != nil || n < 1 {
				return &InvalidCronError{Field: name, Value: field, Reason: fmt.Sprintf("bad step %q", step)}
			}
		}

		if base == "*" {
			continue
		}

		if dash := strings.IndexByte(base, '-'); dash >= 0 {
			lo, hi := base[:dash], base[dash+1:]
			if err := validateNumber(idx, field, lo); err != nil {
				return err
			}
			if err := validateNumber(idx, field, hi); err != nil {
				return err
			}
			continue
		}

		if err := validateNumber(idx, field, base); err != nil {
			return err
		}
	}
	return nil
}

func validateNumber(idx int, field, s string) error {
	name := fieldNames[idx]
	n, err := strconv.Atoi(s)
	if err != nil {
		return &InvalidCronError{Field: name, Value: field, Reason: fmt.Sprintf("not a number: %q", s)}
	}
	b := fieldBounds[idx]
	if n < b.min || n > b.max {
		return &InvalidCronError{
			Field:  name,
			Value:  field,
			Reason: fmt.Sprintf("%d out of range %d-%d", n, b.min, b.max),
		}
	}
	return nil
}

// NextRun returns the earliest instant strictly after from at which the
// expression matches, evaluated in the given IANA timezone and returned in
// UTC. DST shifts and month/year rollover are handled by the underlying cron
// schedule because it operates on a zoned wall clock.
func (p *ParsedCron) NextRun(timezone string, from time.Time) (time.Time, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("load timezone %q: %w", timezone, err)
	}

	next := p.schedule.Next(from.In(loc))
	// The underlying schedule returns the zero time when the expression can
	// never match a real date, e.g. "0 0 30 2 *" (Feb 30). Surface that as a
	// validation failure instead of handing out a zero instant.
	if next.IsZero() || !next.After(from) {
		return time.Time{}, &InvalidCronError{
			Field:  "expression",
			Value:  p.Expression,
			Reason: "expression never matches a real date",
		}
	}
	return next.UTC(), nil
}
