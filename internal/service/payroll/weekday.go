package payroll

import "time"

// isoWeekday maps time.Weekday (Sunday=0) to ISO numbering (Monday=1 ... Sunday=7).
func isoWeekday(d time.Weekday) int {
	if d == time.Sunday {
		return 7
	}
	return int(d)
}
