package presence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/brightshift/clockin-system/internal/core/domain"
)

var roster = []domain.Worker{
	{ID: "alice", Name: "Alice"},
	{ID: "bob", Name: "Bob"},
}

func nineAM() Evaluator {
	return Evaluator{ShiftStartHour: 9, GraceMinutes: 15, Location: time.UTC}
}

func at(h, m, s int) time.Time {
	return time.Date(2026, 10, 19, h, m, s, 0, time.UTC)
}

func TestEvaluate_BeforeShiftStartIsEmpty(t *testing.T) {
	report := nineAM().Evaluate(roster, nil, at(8, 59, 59))

	assert.Empty(t, report.Late)
	assert.Empty(t, report.Absent)
	assert.NotNil(t, report.Late)
	assert.NotNil(t, report.Absent)
}

func TestEvaluate_GracePeriodNotYetFlagged(t *testing.T) {
	report := nineAM().Evaluate(roster, nil, at(9, 14, 59))

	assert.Empty(t, report.Absent)
}

func TestEvaluate_AbsentAfterThreshold(t *testing.T) {
	events := []domain.ClockEvent{ev("1", "bob", domain.ActionClockIn, at(8, 50, 0))}

	report := nineAM().Evaluate(roster, events, at(9, 20, 0))

	assert.Equal(t, []string{"Alice"}, report.Absent)
	assert.Empty(t, report.Late)
}

func TestEvaluate_AbsentAtExactThreshold(t *testing.T) {
	report := nineAM().Evaluate(roster, nil, at(9, 15, 0))

	assert.Equal(t, []string{"Alice", "Bob"}, report.Absent)
}

func TestEvaluate_LateAfterThreshold(t *testing.T) {
	events := []domain.ClockEvent{
		ev("1", "bob", domain.ActionClockIn, at(9, 20, 1)),
		ev("2", "alice", domain.ActionClockIn, at(8, 0, 0)),
	}

	report := nineAM().Evaluate(roster, events, at(10, 0, 0))

	assert.Equal(t, []string{"Bob"}, report.Late)
	assert.Empty(t, report.Absent)
}

func TestEvaluate_BoundaryIsOnTime(t *testing.T) {
	events := []domain.ClockEvent{
		ev("1", "bob", domain.ActionClockIn, at(9, 15, 0)),
		ev("2", "alice", domain.ActionClockIn, at(9, 0, 0)),
	}

	report := nineAM().Evaluate(roster, events, at(10, 0, 0))

	assert.Empty(t, report.Late)
	assert.Empty(t, report.Absent)
}

func TestEvaluate_UsesEarliestClockInOfToday(t *testing.T) {
	events := []domain.ClockEvent{
		ev("1", "bob", domain.ActionClockIn, at(9, 40, 0)),
		ev("2", "bob", domain.ActionClockIn, at(9, 5, 0)),
		ev("3", "alice", domain.ActionClockIn, at(8, 55, 0)),
	}

	report := nineAM().Evaluate(roster, events, at(10, 0, 0))
	assert.Empty(t, report.Late)
}

func TestEvaluate_IgnoresYesterdayAndClockOuts(t *testing.T) {
	events := []domain.ClockEvent{
		ev("1", "alice", domain.ActionClockIn, at(8, 0, 0).AddDate(0, 0, -1)),
		ev("2", "bob", domain.ActionClockOut, at(8, 0, 0)),
	}

	report := nineAM().Evaluate(roster, events, at(9, 30, 0))
	assert.Equal(t, []string{"Alice", "Bob"}, report.Absent)
}

func TestEvaluate_SortedCaseSensitive(t *testing.T) {
	workers := []domain.Worker{{ID: "z", Name: "zed"}, {ID: "b", Name: "Bea"}, {ID: "a", Name: "amy"}}

	report := nineAM().Evaluate(workers, nil, at(12, 0, 0))
	assert.Equal(t, []string{"Bea", "amy", "zed"}, report.Absent)
}

func TestEvaluate_InterpretsHoursInLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	ev9 := Evaluator{ShiftStartHour: 9, GraceMinutes: 15, Location: loc}
	// 14:10 UTC is 09:10 local: still inside the grace period.
	now := time.Date(2026, 10, 19, 14, 10, 0, 0, time.UTC)

	report := ev9.Evaluate(roster, nil, now)
	assert.Empty(t, report.Absent)

	report = ev9.Evaluate(roster, nil, now.Add(10*time.Minute))
	assert.Equal(t, []string{"Alice", "Bob"}, report.Absent)
}
