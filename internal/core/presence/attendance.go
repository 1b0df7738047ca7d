package presence

import (
	"slices"
	"time"

	"github.com/brightshift/clockin-system/internal/core/domain"
)

// Evaluator classifies the roster as on time, late or absent for the day of
// the evaluation instant. Hours and dates are interpreted in Location.
type Evaluator struct {
	ShiftStartHour int
	GraceMinutes   int
	Location       *time.Location
}

func (ev Evaluator) location() *time.Location {
	if ev.Location == nil {
		return time.Local
	}
	return ev.Location
}

// Window returns the shift start and the late threshold for the day of now.
func (ev Evaluator) Window(now time.Time) (shiftStart, lateThreshold time.Time) {
	local := now.In(ev.location())
	shiftStart = time.Date(local.Year(), local.Month(), local.Day(), ev.ShiftStartHour, 0, 0, 0, ev.location())
	return shiftStart, shiftStart.Add(time.Duration(ev.GraceMinutes) * time.Minute)
}

// Evaluate computes the late and absent sets at now. Before the shift starts
// both sets are empty.
func (ev Evaluator) Evaluate(roster []domain.Worker, events []domain.ClockEvent, now time.Time) domain.AttendanceReport {
	report := domain.AttendanceReport{Late: []string{}, Absent: []string{}}

	shiftStart, lateThreshold := ev.Window(now)
	if now.Before(shiftStart) {
		return report
	}

	firstIn := ev.firstClockIns(events, now)
	for _, w := range roster {
		first, ok := firstIn[w.ID]
		switch {
		case !ok && !now.Before(lateThreshold):
			report.Absent = append(report.Absent, w.Name)
		case ok && first.After(lateThreshold):
			report.Late = append(report.Late, w.Name)
		}
	}

	slices.Sort(report.Late)
	slices.Sort(report.Absent)
	return report
}

// firstClockIns maps worker ids to their earliest clock-in on the calendar
// day of now.
func (ev Evaluator) firstClockIns(events []domain.ClockEvent, now time.Time) map[string]time.Time {
	loc := ev.location()
	y, m, d := now.In(loc).Date()

	first := make(map[string]time.Time)
	for _, e := range events {
		if e.Action != domain.ActionClockIn || e.Malformed() {
			continue
		}
		ey, em, ed := e.Timestamp.In(loc).Date()
		if ey != y || em != m || ed != d {
			continue
		}
		if cur, ok := first[e.WorkerID]; !ok || e.Timestamp.Before(cur) {
			first[e.WorkerID] = e.Timestamp
		}
	}
	return first
}
