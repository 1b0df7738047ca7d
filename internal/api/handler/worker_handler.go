package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/brightshift/clockin-system/internal/core/ports"
)

// WorkerHandler serves the roster and per-worker presence.
type WorkerHandler struct {
	roster ports.RosterService
	clock  ports.ClockService
}

func NewWorkerHandler(roster ports.RosterService, clock ports.ClockService) *WorkerHandler {
	return &WorkerHandler{roster: roster, clock: clock}
}

// List handles GET /v1/workers: the roster with each worker's current status.
//
// @Summary      List workers with their status
// @Tags         workers
// @Produce      json
// @Success      200  {array}   workerResponse
// @Failure      503  {object}  errorResponse
// @Router       /v1/workers [get]
func (h *WorkerHandler) List(c echo.Context) error {
	statuses, err := h.clock.Statuses(c.Request().Context())
	if err != nil {
		return err
	}
	out := make([]workerResponse, 0, len(statuses))
	for _, ws := range statuses {
		out = append(out, toWorkerResponse(ws))
	}
	return c.JSON(http.StatusOK, out)
}

// Create handles POST /v1/workers.
//
// @Summary      Register a worker
// @Tags         workers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createWorkerRequest  true  "Worker"
// @Success      201   {object}  domain.Worker
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/workers [post]
func (h *WorkerHandler) Create(c echo.Context) error {
	var req createWorkerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	w, err := h.roster.Create(c.Request().Context(), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, w)
}

// Delete handles DELETE /v1/workers/:id. The worker's events are kept.
//
// @Summary      Remove a worker
// @Tags         workers
// @Security     BearerAuth
// @Param        id   path  string  true  "Worker id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /v1/workers/{id} [delete]
func (h *WorkerHandler) Delete(c echo.Context) error {
	if err := h.roster.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// History handles GET /v1/workers/:id/history?days=N: most recent first.
//
// @Summary      Worker history
// @Tags         workers
// @Produce      json
// @Param        id    path   string  true   "Worker id"
// @Param        days  query  int     false  "Window in days (default 10)"
// @Success      200   {array}   eventResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/workers/{id}/history [get]
func (h *WorkerHandler) History(c echo.Context) error {
	days, err := queryInt(c, "days")
	if err != nil {
		return err
	}
	events, err := h.clock.History(c.Request().Context(), c.Param("id"), days)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toEventResponses(events))
}
