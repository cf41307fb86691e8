package calculator

import "time"

// BusinessLocation is the timezone settlement dates are computed in.
// Pakistan Standard Time has no daylight saving, so a fixed zone is exact.
var BusinessLocation = time.FixedZone("PKT", 5*60*60)

// IsWeekend reports whether t falls on a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// AddWeekdays advances date by n business days in BusinessLocation, skipping
// Saturdays and Sundays, and returns midnight of the resulting day.
// Bank holidays are not considered.
func AddWeekdays(date time.Time, n int) time.Time {
	d := date.In(BusinessLocation)
	d = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, BusinessLocation)

	for added := 0; added < n; {
		d = d.AddDate(0, 0, 1)
		if !IsWeekend(d) {
			added++
		}
	}
	return d
}

// DayBounds returns the first and last millisecond of t's calendar day in loc.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	t = t.In(loc)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1).Add(-time.Millisecond)
	return start, end
}

// SettlementDate formats t as the YYYY-MM-DD business date it settles on.
func SettlementDate(t time.Time) string {
	return t.In(BusinessLocation).Format("2006-01-02")
}
