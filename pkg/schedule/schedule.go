// Package schedule computes when a data source is next due for an automatic
// sync from its {frequency, time-of-day} schedule.
package schedule

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ecochain/ecochain/pkg/ecoerrors"
	"github.com/ecochain/ecochain/pkg/models"
)

var timeOfDayRe = regexp.MustCompile(`^([01]?\d|2[0-3]):[0-5]\d$`)

// ValidateTimeOfDay checks a "HH:MM" schedule time.
func ValidateTimeOfDay(s string) error {
	if !timeOfDayRe.MatchString(s) {
		return ecoerrors.Newf(ecoerrors.ErrorTypeConfig, "invalid schedule time %q, expected HH:MM", s)
	}
	return nil
}

// NextSync returns the next sync instant after now.
//
// The clock is first set to the schedule's time of day; if that instant is
// already past it advances one day. Weekly then rolls forward to the end of
// the current week, and monthly advances one month from the daily result.
// The weekly rule intentionally reproduces the long-standing behavior the
// product shipped with rather than "same weekday next week".
func NextSync(now time.Time, s models.Schedule) time.Time {
	hour, minute := parseTimeOfDay(s.Time)

	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if next.Before(now) {
		next = next.AddDate(0, 0, 1)
	}

	switch s.Frequency {
	case models.FrequencyWeekly:
		next = next.AddDate(0, 0, 7-int(next.Weekday()))
	case models.FrequencyMonthly:
		next = next.AddDate(0, 1, 0)
	}

	return next
}

// Apply recomputes a source's NextSync from its schedule: set when enabled,
// cleared when disabled. Callers use it after every create, update and
// successful sync so the nextSync/enabled invariant holds.
func Apply(ds *models.DataSource, now time.Time) {
	if ds.Schedule.Enabled {
		next := NextSync(now, ds.Schedule)
		ds.NextSync = &next
	} else {
		ds.NextSync = nil
	}
}

func parseTimeOfDay(s string) (hour, minute int) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0
	}
	hour, _ = strconv.Atoi(parts[0])
	minute, _ = strconv.Atoi(parts[1])
	if hour < 0 || hour > 23 {
		hour = 0
	}
	if minute < 0 || minute > 59 {
		minute = 0
	}
	return hour, minute
}
