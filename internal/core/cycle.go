package core

import "time"

// The billing cycle is a rolling monthly window anchored to a configurable
// day of the month (1-31). Anchor days beyond a month's length clamp to the
// last day of that month, so an anchor of 31 yields April 30.

// ShiftByMonths moves reference by whole months while keeping the cycle
// anchor day, clamping to the target month's length. The returned date is a
// UTC midnight date.
func ShiftByMonths(reference time.Time, months, cycleDay int) time.Time {
	idx := int(reference.Month()) - 1 + months
	year := reference.Year() + floorDiv(idx, 12)
	month := floorMod(idx, 12) + 1
	day := cycleDay
	if max := DaysInMonth(year, month); day > max {
		day = max
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// CurrentCycleWindow returns the half-open window [start, end) containing
// today. start <= today < end holds for every valid cycleDay in [1, 31].
func CurrentCycleWindow(today time.Time, cycleDay int) (start, end time.Time) {
	today = DateOnly(today)
	start = ShiftByMonths(today, 0, cycleDay)
	if start.After(today) {
		// The anchor day has not arrived yet this month.
		start = ShiftByMonths(today, -1, cycleDay)
	}
	end = ShiftByMonths(start, 1, cycleDay)
	return start, end
}

// TrailingCycleStarts returns count cycle-start dates ending at currentStart,
// oldest first.
func TrailingCycleStarts(currentStart time.Time, cycleDay, count int) []time.Time {
	starts := make([]time.Time, 0, count)
	for offset := count - 1; offset >= 0; offset-- {
		starts = append(starts, ShiftByMonths(currentStart, -offset, cycleDay))
	}
	return starts
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DateOnly truncates t to a UTC midnight date.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FirstOfMonth returns the first day of t's month, the default cycle anchor
// for newly created settings.
func FirstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// floorDiv divides rounding toward negative infinity, matching calendar
// month borrowing for negative offsets.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	m := a % b
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}
