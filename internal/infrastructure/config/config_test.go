package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverFile, cfg.Storage.Driver)
	assert.Equal(t, "./data", cfg.Storage.DataDir)
	assert.Equal(t, 5*time.Second, cfg.Storage.LockTimeout)
	assert.Equal(t, 12, cfg.Retention.Months)
	assert.Equal(t, 9, cfg.Attendance.ShiftStartHour)
	assert.Equal(t, 15, cfg.Attendance.GraceMinutes)
	assert.Equal(t, 12*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "data/clockin.db", cfg.SQLiteFile())
	assert.True(t, cfg.IsDevelopment())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"STORAGE_DRIVER":      "sqlite",
		"SQLITE_PATH":         "/var/lib/clockin/db.sqlite",
		"RETENTION_MONTHS":    "3",
		"SHIFT_START_HOUR":    "7",
		"ATTENDANCE_TIMEZONE": "UTC",
		"MANAGER_PASSCODE":    "1234",
		"JWT_SECRET":          "s3cret",
	}))
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "/var/lib/clockin/db.sqlite", cfg.SQLiteFile())
	assert.Equal(t, 3, cfg.Retention.Months)
	assert.Equal(t, 7, cfg.Attendance.ShiftStartHour)
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestLoadFrom_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown driver":      {"STORAGE_DRIVER": "postgres"},
		"mongo without redis": {"STORAGE_DRIVER": "mongo"},
		"hour out of range":   {"SHIFT_START_HOUR": "24"},
		"negative grace":      {"SHIFT_GRACE_MINUTES": "-1"},
		"bad timezone":        {"ATTENDANCE_TIMEZONE": "Mars/Olympus"},
		"passcode w/o secret": {"MANAGER_PASSCODE": "1234"},
		"malformed duration":  {"TOKEN_TTL": "soon"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFrom(context.Background(), envconfig.MapLookuper(env))
			assert.Error(t, err)
		})
	}
}
