package handler

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/seating-designer/internal/editor"
    "github.com/iliyamo/seating-designer/internal/middleware"
    "github.com/iliyamo/seating-designer/internal/model"
    q "github.com/iliyamo/seating-designer/internal/queue"
    "github.com/iliyamo/seating-designer/internal/service"
)

// EventPublisher announces stored layouts.  service.Publisher satisfies it.
type EventPublisher interface {
    PublishLayoutSaved(ctx context.Context, event q.LayoutSavedEvent) error
}

// LayoutHandler serves the persistence endpoints GET /layout and
// POST /layout on top of a layout store.
type LayoutHandler struct {
    Store   editor.Store   // MySQL repository, usually behind the Redis cache
    Events  EventPublisher // optional; nil disables layout.saved events
    Timeout time.Duration  // bound on each store call; zero means none
    now     func() time.Time
}

// NewLayoutHandler returns a handler over store.  It panics on a nil store.
func NewLayoutHandler(store editor.Store, events EventPublisher, timeout time.Duration) *LayoutHandler {
    if store == nil {
        panic("nil store passed to NewLayoutHandler")
    }
    return &LayoutHandler{Store: store, Events: events, Timeout: timeout, now: time.Now}
}

// saveRequest is the POST /layout body.
type saveRequest struct {
    Data   []model.Row `json:"data"`
    Screen string      `json:"screen"`
}

// GetLayout handles GET /layout?screenId=.  Rows come back sorted by label;
// a screen with nothing stored yields an empty array.
func (h *LayoutHandler) GetLayout(c echo.Context) error {
    screenID := strings.TrimSpace(c.QueryParam("screenId"))
    if screenID == "" {
        return badRequest(c, "screenId is required")
    }
    ctx, cancel := h.bound(c.Request().Context())
    defer cancel()

    rows, err := h.Store.Fetch(ctx, screenID)
    if err != nil {
        return fail(c, err, "could not load layout")
    }
    model.SortByLabel(rows)
    return c.JSON(http.StatusOK, model.Layout{Rows: rows})
}

// SaveLayout handles POST /layout.  The whole layout of the screen is
// replaced.  Rows are sorted by label and then must satisfy every layout
// invariant; nothing is stored otherwise.
func (h *LayoutHandler) SaveLayout(c echo.Context) error {
    var body saveRequest
    if err := c.Bind(&body); err != nil {
        return badRequest(c, "invalid request body")
    }
    screenID := strings.TrimSpace(body.Screen)
    if screenID == "" {
        return badRequest(c, "screen is required")
    }
    layout := model.Layout{Rows: body.Data}
    model.SortByLabel(layout.Rows)
    if err := layout.Validate(); err != nil {
        return fail(c, err, "invalid layout")
    }

    ctx, cancel := h.bound(c.Request().Context())
    defer cancel()
    if err := h.Store.Replace(ctx, screenID, layout.Rows); err != nil {
        return fail(c, err, "could not save layout")
    }

    if h.Events != nil {
        event := service.NewLayoutSavedEvent(screenID, middleware.UserID(c), layout, h.now())
        if err := h.Events.PublishLayoutSaved(ctx, event); err != nil {
            // the layout is stored; a lost audit event is not worth failing the request
            errLog().Warn().Err(err).Str("screen", screenID).Msg("layout.saved not published")
        }
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "layout saved", "rows": layout.Len()})
}

func (h *LayoutHandler) bound(ctx context.Context) (context.Context, context.CancelFunc) {
    if h.Timeout <= 0 {
        return context.WithCancel(ctx)
    }
    return context.WithTimeout(ctx, h.Timeout)
}
