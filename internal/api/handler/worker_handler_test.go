package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/brightshift/clockin-system/internal/core/domain"
	"github.com/brightshift/clockin-system/internal/core/ports"
)

func TestWorkerHandler_List(t *testing.T) {
	in := domain.ActionClockIn
	ts := time.Date(2026, 10, 19, 8, 58, 0, 0, time.UTC)
	clock := &stubClockService{
		statusesFn: func(ctx context.Context) ([]ports.WorkerStatus, error) {
			return []ports.WorkerStatus{
				{Worker: domain.Worker{ID: "ana", Name: "Ana"}, DerivedStatus: domain.DerivedStatus{Status: domain.StatusClockedIn, LastAction: &in, LastTimestamp: &ts}},
				{Worker: domain.Worker{ID: "bob", Name: "Bob"}, DerivedStatus: domain.DerivedStatus{Status: domain.StatusClockedOut}},
			}, nil
		},
	}
	handler := NewWorkerHandler(&stubRosterService{}, clock)

	c, rec := newTestContext(http.MethodGet, "/v1/workers", "")
	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("expected 2 workers, got %d", len(resp))
	}
	if resp[0]["status"] != "clocked-in" || resp[0]["lastAction"] != "clock-in" {
		t.Fatalf("unexpected ana payload: %v", resp[0])
	}
	if resp[1]["lastAction"] != nil || resp[1]["lastTimestamp"] != nil {
		t.Fatalf("expected null last fields for bob: %v", resp[1])
	}
}

func TestWorkerHandler_Create(t *testing.T) {
	roster := &stubRosterService{
		createFn: func(ctx context.Context, name string) (*domain.Worker, error) {
			return &domain.Worker{ID: "ana-lopez", Name: name}, nil
		},
	}
	handler := NewWorkerHandler(roster, &stubClockService{})

	c, rec := newTestContext(http.MethodPost, "/v1/workers", `{"name":"Ana López"}`)
	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	c, _ = newTestContext(http.MethodPost, "/v1/workers", `{"name":""}`)
	assertHTTPError(t, handler.Create(c), http.StatusUnprocessableEntity)
}

func TestWorkerHandler_Create_Conflict(t *testing.T) {
	roster := &stubRosterService{
		createFn: func(ctx context.Context, name string) (*domain.Worker, error) {
			return nil, domain.ErrWorkerExists
		},
	}
	handler := NewWorkerHandler(roster, &stubClockService{})

	c, _ := newTestContext(http.MethodPost, "/v1/workers", `{"name":"Ana"}`)
	if err := handler.Create(c); !errors.Is(err, domain.ErrWorkerExists) {
		t.Fatalf("expected ErrWorkerExists, got %v", err)
	}
}

func TestWorkerHandler_Delete(t *testing.T) {
	var deleted string
	roster := &stubRosterService{
		deleteFn: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	handler := NewWorkerHandler(roster, &stubClockService{})

	c, rec := newTestContext(http.MethodDelete, "/v1/workers/ana", "")
	c.SetParamNames("id")
	c.SetParamValues("ana")
	if err := handler.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent || deleted != "ana" {
		t.Fatalf("expected 204 deleting ana, got %d deleting %q", rec.Code, deleted)
	}
}

func TestWorkerHandler_History(t *testing.T) {
	clock := &stubClockService{
		historyFn: func(ctx context.Context, workerID string, days int) ([]domain.ClockEvent, error) {
			if workerID != "ana" || days != 3 {
				t.Fatalf("unexpected args: %s %d", workerID, days)
			}
			return []domain.ClockEvent{{ID: "e2", WorkerID: "ana", Action: domain.ActionClockOut, Timestamp: time.Now()}}, nil
		},
	}
	handler := NewWorkerHandler(&stubRosterService{}, clock)

	c, rec := newTestContext(http.MethodGet, "/v1/workers/ana/history?days=3", "")
	c.SetParamNames("id")
	c.SetParamValues("ana")
	if err := handler.History(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, _ = newTestContext(http.MethodGet, "/v1/workers/ana/history?days=-1", "")
	assertHTTPError(t, handler.History(c), http.StatusBadRequest)
}
