// Package app assembles storage, services and the HTTP router from
// configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/brightshift/clockin-system/internal/api"
	"github.com/brightshift/clockin-system/internal/core/presence"
	"github.com/brightshift/clockin-system/internal/core/service"
	"github.com/brightshift/clockin-system/internal/infrastructure/config"
	"github.com/brightshift/clockin-system/internal/infrastructure/queue"
)

const shutdownTimeout = 10 * time.Second

// App holds the wired services for the server and the CLI commands.
type App struct {
	Config     *config.Config
	Log        zerolog.Logger
	Storage    *Storage
	Location   *time.Location
	Evaluator  presence.Evaluator
	Clock      *service.ClockService
	Roster     *service.RosterService
	Attendance *service.AttendanceService
	Auth       *service.AuthService
}

// New opens storage and builds the services. Callers must Close the App.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	storage, err := OpenStorage(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	auth, err := service.NewAuthService(cfg.ManagerPasscode, cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		_ = storage.Close(ctx)
		return nil, err
	}
	if cfg.ManagerPasscode == "" {
		log.Warn().Msg("MANAGER_PASSCODE is empty; manager login is disabled")
	}

	evaluator := presence.Evaluator{
		ShiftStartHour: cfg.Attendance.ShiftStartHour,
		GraceMinutes:   cfg.Attendance.GraceMinutes,
		Location:       loc,
	}

	return &App{
		Config:    cfg,
		Log:       log,
		Storage:   storage,
		Location:  loc,
		Evaluator: evaluator,
		Clock: service.NewClockService(storage.Events, storage.Roster, storage.Dedup, service.ClockOptions{
			MonthsToKeep: cfg.Retention.Months,
			Location:     loc,
		}, log),
		Roster:     service.NewRosterService(storage.Roster, log),
		Attendance: service.NewAttendanceService(storage.Events, storage.Roster, evaluator, cfg.Retention.Months, nil, log),
		Auth:       auth,
	}, nil
}

// Close releases storage connections.
func (a *App) Close(ctx context.Context) error {
	return a.Storage.Close(ctx)
}

// Router builds the HTTP API around the App's services.
func (a *App) Router(dispatcher *queue.Dispatcher) *echo.Echo {
	return api.NewRouter(api.Dependencies{
		Log:        a.Log,
		JWTSecret:  a.Config.JWTSecret,
		Auth:       a.Auth,
		Roster:     a.Roster,
		Clock:      a.Clock,
		Attendance: a.Attendance,
		Dispatcher: dispatcher,
		Location:   a.Location,
		Health:     a.Storage.Health,
	})
}

// Serve runs the HTTP server and the batch dispatcher until ctx is
// cancelled. The server stops accepting requests first; batch requests it
// already acknowledged are then processed before Serve returns.
func (a *App) Serve(ctx context.Context) error {
	dispatcher := queue.NewDispatcher(a.Config.Batch.Workers, a.Clock, a.Log)
	dispatcher.Start(context.Background())
	defer func() {
		dispatcher.Close()
		dispatcher.Wait()
		a.Log.Info().Msg("batch queue drained")
	}()

	e := a.Router(dispatcher)
	addr := ":" + a.Config.Port

	errCh := make(chan error, 1)
	go func() {
		a.Log.Info().Str("addr", addr).Str("driver", a.Config.Storage.Driver).Msg("server listening")
		errCh <- e.Start(addr)
	}()

	select {
	case <-ctx.Done():
		a.Log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
