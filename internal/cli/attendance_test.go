package cli

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightshift/clockin-system/internal/core/domain"
	"github.com/brightshift/clockin-system/internal/core/presence"
)

func TestRenderAttendance(t *testing.T) {
	ev := presence.Evaluator{ShiftStartHour: 9, GraceMinutes: 15, Location: time.UTC}
	now := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		report domain.AttendanceReport
	}{
		{
			name:   "attendance_flagged",
			report: domain.AttendanceReport{Late: []string{"Bob"}, Absent: []string{"Carol", "Dan"}},
		},
		{
			name:   "attendance_empty",
			report: domain.AttendanceReport{Late: []string{}, Absent: []string{}},
		},
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, renderAttendance(&buf, now, ev, &tt.report))
			g.Assert(t, tt.name, buf.Bytes())
		})
	}
}

func TestAttendanceCommandJSON(t *testing.T) {
	lookuper, _ := testEnv(t)

	out, err := execute(t, lookuper, "--format", "json", "attendance")
	require.NoError(t, err)

	var report domain.AttendanceReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Empty(t, report.Late)
	assert.Empty(t, report.Absent)
}
