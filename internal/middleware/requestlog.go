package middleware

import (
    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"

    "github.com/iliyamo/seating-designer/internal/logging"
)

// RequestLogger logs one structured line per request through zerolog.
func RequestLogger() echo.MiddlewareFunc {
    lg := logging.Component("http")
    return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
        LogMethod:   true,
        LogURI:      true,
        LogStatus:   true,
        LogLatency:  true,
        LogRemoteIP: true,
        LogError:    true,
        HandleError: true,
        LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
            ev := lg.Info()
            if v.Error != nil || v.Status >= 500 {
                ev = lg.Error().Err(v.Error)
            }
            ev.Str("method", v.Method).
                Str("uri", v.URI).
                Int("status", v.Status).
                Dur("latency", v.Latency).
                Str("ip", v.RemoteIP).
                Str("user", UserID(c)).
                Msg("request")
            return nil
        },
    })
}
