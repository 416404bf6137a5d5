package calendar

// GridSize is the fixed cell count of the month view: 6 rows of 7 days.
// The grid is always exactly this size regardless of month length or
// weekday alignment, so the view never jumps between 4, 5 and 6 rows.
const GridSize = 42

// BuildGrid returns the 42 calendar days displayed for the month containing
// anchor, in strictly ascending order: the trailing days of the previous
// month back to the preceding Sunday, every day of the anchor month, then
// days of the following month up to the fixed size. Pure function of
// anchor's year+month.
func BuildGrid(anchor CivilDate) []CivilDate {
	first := anchor.FirstOfMonth()
	pad := first.Weekday() // 0=Sunday, also the number of leading cells

	days := make([]CivilDate, 0, GridSize)

	for i := pad; i > 0; i-- {
		days = append(days, first.AddDays(-i))
	}

	for i := 0; i < first.DaysInMonth(); i++ {
		days = append(days, first.AddDays(i))
	}

	next := first.AddMonths(1)
	for i := 0; len(days) < GridSize; i++ {
		days = append(days, next.AddDays(i))
	}

	return days
}

// InMonth reports whether day belongs to anchor's displayed month.
func InMonth(day, anchor CivilDate) bool {
	return day.Year == anchor.Year && day.Month == anchor.Month
}
