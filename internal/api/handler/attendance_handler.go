package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/brightshift/clockin-system/internal/core/ports"
)

type AttendanceHandler struct {
	service ports.AttendanceService
}

func NewAttendanceHandler(service ports.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

// Today handles GET /v1/attendance: late and absent workers right now.
//
// @Summary      Today's attendance
// @Tags         attendance
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  attendanceResponse
// @Failure      503  {object}  errorResponse
// @Router       /v1/attendance [get]
func (h *AttendanceHandler) Today(c echo.Context) error {
	report, err := h.service.Today(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, attendanceResponse{Late: report.Late, Absent: report.Absent})
}
