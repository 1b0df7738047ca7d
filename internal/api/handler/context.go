package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// HeaderIdempotencyKey lets kiosks retry a clock request without recording
// it twice.
const HeaderIdempotencyKey = "Idempotency-Key"

// idempotencyKey returns the trimmed Idempotency-Key header, rejecting
// values too long to be a client-generated key.
func idempotencyKey(c echo.Context) (string, error) {
	key := strings.TrimSpace(c.Request().Header.Get(HeaderIdempotencyKey))
	if len(key) > 128 {
		return "", echo.NewHTTPError(http.StatusBadRequest, "idempotency key too long")
	}
	return key, nil
}

// queryInt parses an optional positive integer query parameter. Missing
// values return 0.
func queryInt(c echo.Context, name string) (int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be a positive integer")
	}
	return n, nil
}
