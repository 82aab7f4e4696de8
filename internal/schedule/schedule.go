// Package schedule turns the cron strings found in the configuration into
// robfig/cron schedules.
//
// Two forms are accepted: regular cron expressions (five fields, an optional
// leading seconds field, descriptors such as @daily, and a CRON_TZ= prefix)
// and a plain daily wall-clock time such as "03:00" or "03:00:30".
package schedule

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

var parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ErrNeverFires is returned for expressions with no future activation
var ErrNeverFires = errors.New("cron expression never fires")

var clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)

// Parse parses a cron expression or a daily HH:MM[:SS] time
func Parse(expr string) (cron.Schedule, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("empty cron expression")
	}

	spec, err := normalize(expr)
	if err != nil {
		return nil, err
	}

	sched, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}

	// robfig gives up after five years and returns the zero time
	if sched.Next(time.Now()).IsZero() {
		return nil, fmt.Errorf("%w: %q", ErrNeverFires, expr)
	}
	return sched, nil
}

// Next returns the first activation of expr strictly after now
func Next(expr string, now time.Time) (time.Time, error) {
	sched, err := Parse(expr)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(now), nil
}

// Upcoming returns the next n activations of expr after now
func Upcoming(expr string, now time.Time, n int) ([]time.Time, error) {
	sched, err := Parse(expr)
	if err != nil {
		return nil, err
	}

	if n <= 0 {
		return []time.Time{}, nil
	}

	times := make([]time.Time, 0, n)
	t := now
	for i := 0; i < n; i++ {
		t = sched.Next(t)
		if t.IsZero() {
			break
		}
		times = append(times, t)
	}
	return times, nil
}

// normalize rewrites a daily clock time into a six-field cron spec and
// maps day-of-week 7 to Sunday. Anything else is handed to the cron parser.
func normalize(expr string) (string, error) {
	m := clockPattern.FindStringSubmatch(expr)
	if m == nil {
		return sundaySeven(expr), nil
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	second := 0
	if m[3] != "" {
		second, _ = strconv.Atoi(m[3])
	}

	if hour > 23 || minute > 59 || second > 59 {
		return "", fmt.Errorf("invalid time of day %q", expr)
	}

	return fmt.Sprintf("%d %d %d * * *", second, minute, hour), nil
}

// sundaySeven rewrites 7 in the day-of-week field to 0, including
// ranges ending in 7 ("5-7" becomes "5-6,0").
func sundaySeven(expr string) string {
	fields := strings.Fields(expr)

	prefix := 0
	if len(fields) > 0 && (strings.HasPrefix(fields[0], "CRON_TZ=") || strings.HasPrefix(fields[0], "TZ=")) {
		prefix = 1
	}
	if n := len(fields) - prefix; n != 5 && n != 6 {
		return expr
	}

	last := len(fields) - 1
	parts := strings.Split(fields[last], ",")
	changed := false
	for i, part := range parts {
		switch {
		case part == "7":
			parts[i] = "0"
			changed = true
		case strings.HasSuffix(part, "-7") && !strings.Contains(part, "/"):
			start := strings.TrimSuffix(part, "-7")
			if start == "7" {
				parts[i] = "0"
			} else {
				parts[i] = start + "-6,0"
			}
			changed = true
		}
	}
	if !changed {
		return expr
	}

	fields[last] = strings.Join(parts, ",")
	return strings.Join(fields, " ")
}
