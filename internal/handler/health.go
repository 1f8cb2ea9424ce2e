package handler // declare the package name; contains HTTP handlers

import (
    "net/http" // net/http provides status codes and response helpers

    "github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Health is the liveness probe used by load balancers.  It reports the
// number of open editing sessions next to a plain "ok" status.
func (h *EditorHandler) Health(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{"status": "ok", "sessions": h.Registry.Len()})
}
