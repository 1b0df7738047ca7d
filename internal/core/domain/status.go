package domain

import "time"

// Status is the presence state derived from the event log.
type Status string

const (
	StatusClockedIn  Status = "clocked-in"
	StatusClockedOut Status = "clocked-out"
)

// DerivedStatus is computed from the log on every read; it is never stored.
type DerivedStatus struct {
	Status        Status     `json:"status"`
	LastAction    *Action    `json:"lastAction"`
	LastTimestamp *time.Time `json:"lastTimestamp"`
}

// AttendanceReport lists the workers flagged for the current day.
type AttendanceReport struct {
	Late   []string `json:"late"`
	Absent []string `json:"absent"`
}
