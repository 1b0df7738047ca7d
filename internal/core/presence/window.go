package presence

import (
	"fmt"
	"time"

	"github.com/brightshift/clockin-system/internal/core/domain"
)

// MonthLayout is the accepted format of month filters.
const MonthLayout = "2006-01"

// ParseMonth parses a YYYY-MM filter and returns the half-open range
// [start, end) covering that calendar month in loc.
func ParseMonth(month string, loc *time.Location) (start, end time.Time, err error) {
	if loc == nil {
		loc = time.Local
	}
	start, err = time.ParseInLocation(MonthLayout, month, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: invalid month format, use YYYY-MM", domain.ErrInvalidInput)
	}
	return start, start.AddDate(0, 1, 0), nil
}

// FilterRange keeps well-formed events with start <= timestamp < end and
// returns them in ascending timestamp order.
func FilterRange(events []domain.ClockEvent, start, end time.Time) []domain.ClockEvent {
	out := make([]domain.ClockEvent, 0)
	for _, e := range events {
		if e.Malformed() || e.Timestamp.Before(start) || !e.Timestamp.Before(end) {
			continue
		}
		out = append(out, e)
	}
	SortChronological(out)
	return out
}
