package estimate

import "time"

// IsWeekend reports whether t falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// SnapForward moves a weekend date to the following Monday.
func SnapForward(t time.Time) time.Time {
	for IsWeekend(t) {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

// AddBusinessDays adds n weekdays to t. Saturdays and Sundays are skipped;
// holidays are not considered. n <= 0 returns t snapped to a weekday.
func AddBusinessDays(t time.Time, n int) time.Time {
	if n <= 0 {
		return SnapForward(t)
	}
	for n > 0 {
		t = t.AddDate(0, 0, 1)
		if !IsWeekend(t) {
			n--
		}
	}
	return t
}
