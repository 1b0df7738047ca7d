package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/brightshift/clockin-system/internal/core/ports"
	"github.com/brightshift/clockin-system/internal/infrastructure/export"
)

const mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// LogHandler exports the raw event log.
type LogHandler struct {
	service  ports.ClockService
	location *time.Location
}

// NewLogHandler returns a LogHandler rendering spreadsheet dates in loc.
func NewLogHandler(service ports.ClockService, loc *time.Location) *LogHandler {
	if loc == nil {
		loc = time.Local
	}
	return &LogHandler{service: service, location: loc}
}

// Export handles GET /v1/logs?month=YYYY-MM&format=json|xlsx.
//
// @Summary      Export the event log
// @Description  Events sorted oldest first. A month limits the export to that calendar month and turns the response into a download.
// @Tags         logs
// @Produce      json
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        month   query  string  false  "Calendar month, YYYY-MM"
// @Param        format  query  string  false  "json (default) or xlsx"
// @Success      200     {array}   eventResponse
// @Failure      400     {object}  errorResponse
// @Failure      503     {object}  errorResponse
// @Router       /v1/logs [get]
func (h *LogHandler) Export(c echo.Context) error {
	month := strings.TrimSpace(c.QueryParam("month"))
	format := strings.ToLower(strings.TrimSpace(c.QueryParam("format")))
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "xlsx" {
		return echo.NewHTTPError(http.StatusBadRequest, "format must be json or xlsx")
	}

	events, err := h.service.Export(c.Request().Context(), month)
	if err != nil {
		return err
	}

	if format == "xlsx" {
		var buf bytes.Buffer
		if err := export.WriteXLSX(&buf, events, h.location); err != nil {
			return err
		}
		setAttachment(c, export.FileName(month, "xlsx"))
		return c.Blob(http.StatusOK, mimeXLSX, buf.Bytes())
	}

	if month != "" {
		setAttachment(c, export.FileName(month, "json"))
	}
	return c.JSON(http.StatusOK, toEventResponses(events))
}

func setAttachment(c echo.Context, name string) {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
}
