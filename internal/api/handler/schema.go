package handler

import (
	"time"

	"github.com/brightshift/clockin-system/internal/core/domain"
	"github.com/brightshift/clockin-system/internal/core/ports"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type loginRequest struct {
	Passcode string `json:"passcode" validate:"required"`
}

type createWorkerRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type clockRequest struct {
	WorkerID string `json:"workerId"                 validate:"required"`
	Action   string `json:"action,omitempty"         validate:"omitempty,oneof=clock-in clock-out"`
	// IdempotencyKey is only read from batch items; single requests use the
	// Idempotency-Key header.
	IdempotencyKey string `json:"idempotencyKey,omitempty" validate:"omitempty,max=128"`
}

// --- Response types ---

type tokenResponse struct {
	Token string `json:"token"`
}

type workerResponse struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Status        domain.Status  `json:"status"`
	LastAction    *domain.Action `json:"lastAction"`
	LastTimestamp *time.Time     `json:"lastTimestamp"`
}

type eventResponse struct {
	ID         string        `json:"id"`
	WorkerID   string        `json:"workerId"`
	WorkerName string        `json:"workerName"`
	Action     domain.Action `json:"action"`
	Timestamp  *time.Time    `json:"timestamp"`
}

type clockResponse struct {
	eventResponse
	Status   domain.Status `json:"status"`
	Replayed bool          `json:"replayed,omitempty"`
}

type acceptedResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}

type attendanceResponse struct {
	Late   []string `json:"late"`
	Absent []string `json:"absent"`
}

// --- Mappers ---

func toWorkerResponse(ws ports.WorkerStatus) workerResponse {
	return workerResponse{
		ID:            ws.ID,
		Name:          ws.Name,
		Status:        ws.Status,
		LastAction:    ws.LastAction,
		LastTimestamp: ws.LastTimestamp,
	}
}

func toEventResponse(e domain.ClockEvent) eventResponse {
	r := eventResponse{
		ID:         e.ID,
		WorkerID:   e.WorkerID,
		WorkerName: e.WorkerName,
		Action:     e.Action,
	}
	if !e.Malformed() {
		ts := e.Timestamp
		r.Timestamp = &ts
	}
	return r
}

func toEventResponses(events []domain.ClockEvent) []eventResponse {
	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toEventResponse(e))
	}
	return out
}

func toClockInput(r clockRequest) ports.ClockInput {
	return ports.ClockInput{
		WorkerID:       r.WorkerID,
		Action:         r.Action,
		IdempotencyKey: r.IdempotencyKey,
	}
}
