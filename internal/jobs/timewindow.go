package jobs

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// IsNewWeek reports whether a weekly recomputation window has opened: the
// local day is Monday and the local hour equals the daily anchor hour. A
// sweep landing in any other hour skips weekly recomputation; there is no
// cross-period catch-up.
func IsNewWeek(now time.Time, anchorHour int) bool {
	return now.Weekday() == time.Monday && now.Hour() == anchorHour
}

// IsNewMonth reports whether a monthly recomputation window has opened: the
// first day of the month at the daily anchor hour.
func IsNewMonth(now time.Time, anchorHour int) bool {
	return now.Day() == 1 && now.Hour() == anchorHour
}

// dailyCronSpec renders the anchor hour as a standard cron spec
func dailyCronSpec(hour int) string {
	return fmt.Sprintf("0 %d * * *", hour)
}

// parseDailySchedule resolves the daily sweep schedule: the override spec
// when configured, otherwise the anchor hour.
func parseDailySchedule(override string, anchorHour int) (cron.Schedule, error) {
	spec := override
	if spec == "" {
		spec = dailyCronSpec(anchorHour)
	}

	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid daily sweep cron %q: %w", spec, err)
	}
	return schedule, nil
}
