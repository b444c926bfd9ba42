package core

import "time"

// DefaultBillingCycleDay is the day of month on which a credit card cycle starts and its bill falls due.
const DefaultBillingCycleDay = 5

// DateRange is an inclusive span of calendar dates.
type DateRange struct {
	Start Date `json:"startDate"`
	End   Date `json:"endDate"`
}

func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return InvalidArgument("date range bounds are required")
	}
	if r.Start.After(r.End) {
		return InvalidArgument("start date %s is after end date %s", r.Start, r.End)
	}
	return nil
}

func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// MonthRange returns the first and last day of the given month.
// The last day is "day 0 of the next month", so month lengths and leap years fall out of time.Date.
func MonthRange(year, month int) DateRange {
	return DateRange{
		Start: NewDate(year, month, 1),
		End:   NewDate(year, month+1, 0),
	}
}

// MonthToDate spans from the first of today's month through today.
func MonthToDate(today Date) DateRange {
	return DateRange{Start: NewDate(today.Year(), int(today.Month()), 1), End: today}
}

// PreviousMonth returns the calendar month before the one containing now.
func PreviousMonth(now time.Time) (year, month int) {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	prev := first.AddDate(0, -1, 0)
	return prev.Year(), int(prev.Month())
}

// BillingCycle is a credit card statement window plus the date its bill is due.
type BillingCycle struct {
	DateRange
	DueDate Date `json:"dueDate"`
}

// CurrentBillingCycle returns the cycle that contains today. Cycles run from cycleDay of one
// month through cycleDay-1 of the next; the bill is due on the cycleDay following the cycle end.
func CurrentBillingCycle(today Date, cycleDay int) BillingCycle {
	if cycleDay < 1 || cycleDay > 28 {
		cycleDay = DefaultBillingCycleDay
	}
	year, month := today.Year(), int(today.Month())
	if today.Day() < cycleDay {
		month--
	}
	start := NewDate(year, month, cycleDay)
	end := NewDate(year, month+1, cycleDay-1)
	return BillingCycle{
		DateRange: DateRange{Start: start, End: end},
		DueDate:   end.AddDays(1),
	}
}
