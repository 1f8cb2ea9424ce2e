package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4" // import the Echo web framework to handle routing

    "github.com/iliyamo/seating-designer/internal/handler"    // handlers implementing each endpoint
    "github.com/iliyamo/seating-designer/internal/middleware" // JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only the health check.
func RegisterRoutes(e *echo.Echo, h *handler.EditorHandler) {
    e.GET("/healthz", h.Health)
}

// RegisterLayout registers the persistence endpoints called by designer
// clients.  Both require a bearer token with the OPERATOR or ADMIN role;
// extra middlewares (rate limiting) run after authentication so limits
// can be keyed per user.
func RegisterLayout(e *echo.Echo, h *handler.LayoutHandler, jwtSecret string, mws ...echo.MiddlewareFunc) {
    g := e.Group("", guarded(jwtSecret, mws)...)
    g.GET("/layout", h.GetLayout)
    g.POST("/layout", h.SaveLayout)
}

// RegisterEditor registers the editing session endpoints under /v1.
func RegisterEditor(e *echo.Echo, h *handler.EditorHandler, jwtSecret string, mws ...echo.MiddlewareFunc) {
    g := e.Group("/v1", guarded(jwtSecret, mws)...)

    // session lifecycle
    g.POST("/screens/:screen_id/editor", h.Open)
    g.GET("/editor/:sid", h.Get)
    g.DELETE("/editor/:sid", h.Close)
    g.POST("/editor/:sid/reload", h.Reload)
    g.POST("/editor/:sid/submit", h.Submit)

    // rows; :row is a zero-based index or a letter label
    g.POST("/editor/:sid/rows", h.AddRow)
    g.PUT("/editor/:sid/rows/:row", h.EditRow)
    g.DELETE("/editor/:sid/rows/:row", h.RemoveRow)
    g.POST("/editor/:sid/rows/:row/edit", h.BeginEdit)
    g.DELETE("/editor/:sid/rows/:row/edit", h.CancelEdit)

    // aisle gaps
    g.POST("/editor/:sid/rows/:row/gaps/:slot", h.InsertGap)
    g.DELETE("/editor/:sid/rows/:row/gaps/:slot", h.RemoveGap)
}

// guarded prepends authentication and the role check to mws.
func guarded(jwtSecret string, mws []echo.MiddlewareFunc) []echo.MiddlewareFunc {
    return append([]echo.MiddlewareFunc{
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole(middleware.RoleOperator, middleware.RoleAdmin),
    }, mws...)
}
