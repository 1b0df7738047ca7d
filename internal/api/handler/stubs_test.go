package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/brightshift/clockin-system/internal/core/domain"
	"github.com/brightshift/clockin-system/internal/core/ports"
)

type stubAuthService struct {
	loginFn func(ctx context.Context, passcode string) (string, error)
}

func (s *stubAuthService) Login(ctx context.Context, passcode string) (string, error) {
	return s.loginFn(ctx, passcode)
}

type stubClockService struct {
	clockFn    func(ctx context.Context, in ports.ClockInput) (*ports.ClockResult, error)
	statusesFn func(ctx context.Context) ([]ports.WorkerStatus, error)
	historyFn  func(ctx context.Context, workerID string, days int) ([]domain.ClockEvent, error)
	exportFn   func(ctx context.Context, month string) ([]domain.ClockEvent, error)
}

func (s *stubClockService) Clock(ctx context.Context, in ports.ClockInput) (*ports.ClockResult, error) {
	return s.clockFn(ctx, in)
}

func (s *stubClockService) Statuses(ctx context.Context) ([]ports.WorkerStatus, error) {
	return s.statusesFn(ctx)
}

func (s *stubClockService) History(ctx context.Context, workerID string, days int) ([]domain.ClockEvent, error) {
	return s.historyFn(ctx, workerID, days)
}

func (s *stubClockService) Export(ctx context.Context, month string) ([]domain.ClockEvent, error) {
	return s.exportFn(ctx, month)
}

func (s *stubClockService) Compact(context.Context) (int, error) {
	return 0, nil
}

type stubRosterService struct {
	createFn func(ctx context.Context, name string) (*domain.Worker, error)
	deleteFn func(ctx context.Context, id string) error
}

func (s *stubRosterService) List(context.Context) ([]domain.Worker, error) {
	return nil, errors.New("not used")
}

func (s *stubRosterService) Create(ctx context.Context, name string) (*domain.Worker, error) {
	return s.createFn(ctx, name)
}

func (s *stubRosterService) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

type stubDispatcher struct {
	got []ports.ClockInput
	err error
}

func (d *stubDispatcher) EnqueueBatch(_ context.Context, batch []ports.ClockInput) (int, error) {
	if d.err != nil {
		return 0, d.err
	}
	d.got = append(d.got, batch...)
	return len(batch), nil
}

type stubAttendanceService struct {
	report *domain.AttendanceReport
	err    error
}

func (s *stubAttendanceService) Today(context.Context) (*domain.AttendanceReport, error) {
	return s.report, s.err
}

// newTestContext builds an echo context with the production validator.
func newTestContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// assertHTTPError fails unless err is an *echo.HTTPError with the given code.
func assertHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	if he.Code != code {
		t.Fatalf("expected %d, got %d (%v)", code, he.Code, he.Message)
	}
}
