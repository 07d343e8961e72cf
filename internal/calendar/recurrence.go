package calendar

import (
	"errors"
	"time"
)

// Frequency is how far a recurring series jumps after each matching date.
type Frequency string

const (
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
)

var ErrInvalidFrequency = errors.New("recurrence type must be weekly or monthly")

func (f Frequency) Valid() bool {
	return f == Weekly || f == Monthly
}

// PeriodCount is the number of calendar periods the range touches:
// weekly floor(days/7)+1, monthly yearDiff*12+monthDiff+1. It is independent of
// how many sessions actually get booked.
func PeriodCount(f Frequency, start, end Date) int {
	switch f {
	case Weekly:
		days := int(end.Time().Sub(start.Time()).Hours() / 24)
		return floorDiv(days, 7) + 1
	case Monthly:
		return (end.Year-start.Year)*12 + int(end.Month-start.Month) + 1
	default:
		return 0
	}
}

// Occurrences walks from start to end (inclusive) one day at a time until it
// finds a date on weekday, records it, then jumps 7 days (weekly) or one
// calendar month (monthly) from that date and keeps walking. Monthly series
// therefore drift with month lengths; that is intentional.
func Occurrences(f Frequency, weekday time.Weekday, start, end Date) ([]Date, error) {
	if !f.Valid() {
		return nil, ErrInvalidFrequency
	}

	var out []Date
	current := start
	for !current.After(end) {
		if current.Weekday() != weekday {
			current = current.AddDays(1)
			continue
		}
		out = append(out, current)
		if f == Weekly {
			current = current.AddDays(7)
		} else {
			current = current.AddMonths(1)
		}
	}
	return out, nil
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
