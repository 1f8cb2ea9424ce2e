package handler // handler contains the echo handlers of the layout API

import (
    "errors"   // errors.Is / errors.As against domain sentinels
    "net/http" // status code constants
    "strconv"  // path parameter parsing
    "strings"  // label normalisation

    "github.com/labstack/echo/v4"
    "github.com/rs/zerolog"

    "github.com/iliyamo/seating-designer/internal/editor"
    "github.com/iliyamo/seating-designer/internal/logging"
    "github.com/iliyamo/seating-designer/internal/model"
)

func errLog() *zerolog.Logger {
    lg := logging.Component("handler")
    return &lg
}

// statusFor maps a domain error to the HTTP status it is answered with.
func statusFor(err error) int {
    var te *model.TransportError
    switch {
    case errors.Is(err, editor.ErrSessionNotFound):
        return http.StatusNotFound
    case errors.Is(err, editor.ErrSubmitInFlight):
        return http.StatusConflict
    case model.IsValidation(err), errors.Is(err, model.ErrTooManyRows):
        return http.StatusBadRequest
    case errors.As(err, &te):
        return http.StatusBadGateway // the backing layout API failed
    default:
        return http.StatusInternalServerError
    }
}

// fail writes {"error": msg} with the status matching err.  Server-side
// failures are logged and answered with generic when no safe message exists.
func fail(c echo.Context, err error, generic string) error {
    status := statusFor(err)
    if status >= http.StatusInternalServerError {
        errLog().Error().Err(err).Str("path", c.Path()).Msg("request failed")
    }
    msg := model.UserMessage(err, generic)
    if errors.Is(err, editor.ErrSessionNotFound) || errors.Is(err, editor.ErrSubmitInFlight) {
        msg = err.Error()
    }
    return c.JSON(status, echo.Map{"error": msg})
}

func badRequest(c echo.Context, msg string) error {
    return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

// rowParam reads the :row path parameter.  Rows are addressed either by
// zero-based index or by their letter label.
func rowParam(c echo.Context) (int, bool) {
    raw := strings.TrimSpace(c.Param("row"))
    if n, err := strconv.Atoi(raw); err == nil {
        return n, true
    }
    if len(raw) == 1 {
        ch := strings.ToUpper(raw)[0]
        if ch >= 'A' && ch <= 'Z' {
            return int(ch - 'A'), true
        }
    }
    return 0, false
}

// slotParam reads the :slot path parameter.
func slotParam(c echo.Context) (int, bool) {
    n, err := strconv.Atoi(c.Param("slot"))
    return n, err == nil
}
