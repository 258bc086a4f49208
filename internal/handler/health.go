package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health is a simple liveness endpoint for the kiosk supervisor script.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
