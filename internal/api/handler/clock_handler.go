package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/brightshift/clockin-system/internal/core/ports"
)

// ClockDispatcher is the interface the handler uses to enqueue batch requests.
type ClockDispatcher interface {
	EnqueueBatch(ctx context.Context, batch []ports.ClockInput) (int, error)
}

// ClockHandler records clock actions.
type ClockHandler struct {
	service    ports.ClockService
	dispatcher ClockDispatcher
}

func NewClockHandler(service ports.ClockService, dispatcher ClockDispatcher) *ClockHandler {
	return &ClockHandler{service: service, dispatcher: dispatcher}
}

// Clock handles POST /v1/clock: records one action synchronously.
//
// @Summary      Clock a worker in or out
// @Description  Without an action the worker's current status is toggled.
// @Tags         clock
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string        false  "Replays the first result for a repeated key"
// @Param        body             body      clockRequest  true   "Clock request"
// @Success      201              {object}  clockResponse
// @Success      200              {object}  clockResponse  "Replayed"
// @Failure      400              {object}  errorResponse
// @Failure      404              {object}  errorResponse
// @Failure      422              {object}  errorResponse
// @Failure      503              {object}  errorResponse
// @Router       /v1/clock [post]
func (h *ClockHandler) Clock(c echo.Context) error {
	var req clockRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	key, err := idempotencyKey(c)
	if err != nil {
		return err
	}

	in := toClockInput(req)
	in.IdempotencyKey = key
	res, err := h.service.Clock(c.Request().Context(), in)
	if err != nil {
		return err
	}

	status := http.StatusCreated
	if res.Replayed {
		status = http.StatusOK
	}
	return c.JSON(status, clockResponse{
		eventResponse: toEventResponse(res.Event),
		Status:        res.Status.Status,
		Replayed:      res.Replayed,
	})
}

// Batch handles POST /v1/clock/batch: enqueues requests and returns 202.
// Requests for the same worker are applied in the order given.
//
// @Summary      Clock a batch of workers asynchronously
// @Tags         clock
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      []clockRequest  true  "Clock requests"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /v1/clock/batch [post]
func (h *ClockHandler) Batch(c echo.Context) error {
	var reqs []clockRequest
	if err := c.Bind(&reqs); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if len(reqs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "batch cannot be empty")
	}

	inputs := make([]ports.ClockInput, 0, len(reqs))
	for i, req := range reqs {
		if err := c.Validate(&req); err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity,
				fmt.Sprintf("request[%d]: %s", i, err.Error()))
		}
		inputs = append(inputs, toClockInput(req))
	}

	n, err := h.dispatcher.EnqueueBatch(c.Request().Context(), inputs)
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable,
			fmt.Sprintf("queue unavailable: accepted %d of %d requests", n, len(inputs)))
	}
	return c.JSON(http.StatusAccepted, acceptedResponse{
		Message: "clock requests accepted",
		Count:   n,
	})
}
