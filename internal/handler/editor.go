package handler

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/seating-designer/internal/editor"
    "github.com/iliyamo/seating-designer/internal/model"
)

// EditorHandler exposes editing sessions over HTTP.  Every mutation answers
// with the full session view so clients never have to reconcile state.
type EditorHandler struct {
    Registry *editor.Registry
}

// NewEditorHandler returns a handler over reg.  It panics on a nil registry.
func NewEditorHandler(reg *editor.Registry) *EditorHandler {
    if reg == nil {
        panic("nil registry passed to NewEditorHandler")
    }
    return &EditorHandler{Registry: reg}
}

// sessionView is the JSON shape of a session.
type sessionView struct {
    SessionID     string        `json:"session_id"`
    ScreenID      string        `json:"screen_id"`
    Layout        model.Layout  `json:"layout"`
    Summary       model.Summary `json:"summary"`
    Editing       *string       `json:"editing"`              // label of the row holding the edit focus
    LastPersisted *model.Layout `json:"last_persisted"`       // nil until a load or submit succeeds
    LoadError     string        `json:"load_error,omitempty"` // set when opening or reloading failed
}

func viewOf(s *editor.Session) sessionView {
    l := s.Layout()
    v := sessionView{
        SessionID: s.ID(),
        ScreenID:  s.ScreenID(),
        Layout:    l,
        Summary:   l.Summary(),
    }
    if i, ok := s.Editing(); ok && i < l.Len() {
        label := l.Rows[i].Label
        v.Editing = &label
    }
    if p, ok := s.LastPersisted(); ok {
        v.LastPersisted = &p
    }
    return v
}

// rowRequest is the body of add and commit calls.
type rowRequest struct {
    SeatCount int        `json:"seat_count"`
    Tier      model.Tier `json:"tier"`
}

// Open handles POST /v1/screens/:screen_id/editor.  A failed load still
// creates the (empty) session and reports the failure in load_error.
func (h *EditorHandler) Open(c echo.Context) error {
    screenID := strings.TrimSpace(c.Param("screen_id"))
    if screenID == "" {
        return badRequest(c, "screen_id is required")
    }
    s, err := h.Registry.Open(c.Request().Context(), screenID)
    if s == nil {
        return fail(c, err, "could not open editing session")
    }
    v := viewOf(s)
    if err != nil {
        v.LoadError = model.UserMessage(err, "layout service unavailable")
    }
    return c.JSON(http.StatusCreated, v)
}

// Get handles GET /v1/editor/:sid.
func (h *EditorHandler) Get(c echo.Context) error {
    s, err := h.Registry.Get(c.Param("sid"))
    if err != nil {
        return fail(c, err, "")
    }
    return c.JSON(http.StatusOK, viewOf(s))
}

// Close handles DELETE /v1/editor/:sid.  Unsaved edits are discarded.
func (h *EditorHandler) Close(c echo.Context) error {
    if err := h.Registry.Close(c.Param("sid")); err != nil {
        return fail(c, err, "")
    }
    return c.NoContent(http.StatusNoContent)
}

// Reload handles POST /v1/editor/:sid/reload, the manual retry after a
// failed load.  Local edits are replaced by the stored layout.
func (h *EditorHandler) Reload(c echo.Context) error {
    s, err := h.Registry.Get(c.Param("sid"))
    if err != nil {
        return fail(c, err, "")
    }
    if err := s.Load(c.Request().Context()); err != nil {
        v := viewOf(s)
        v.LoadError = model.UserMessage(err, "layout service unavailable")
        return c.JSON(statusFor(err), v)
    }
    return c.JSON(http.StatusOK, viewOf(s))
}

// AddRow handles POST /v1/editor/:sid/rows.
func (h *EditorHandler) AddRow(c echo.Context) error {
    s, err := h.Registry.Get(c.Param("sid"))
    if err != nil {
        return fail(c, err, "")
    }
    var body rowRequest
    if err := c.Bind(&body); err != nil {
        return badRequest(c, "invalid request body")
    }
    if _, err := s.AddRow(body.SeatCount, body.Tier); err != nil {
        return fail(c, err, "could not add row")
    }
    return c.JSON(http.StatusCreated, viewOf(s))
}

// BeginEdit handles POST /v1/editor/:sid/rows/:row/edit.
func (h *EditorHandler) BeginEdit(c echo.Context) error {
    return h.withRow(c, func(s *editor.Session, row int) error {
        return s.BeginEdit(row)
    })
}

// CancelEdit handles DELETE /v1/editor/:sid/rows/:row/edit.
func (h *EditorHandler) CancelEdit(c echo.Context) error {
    s, err := h.Registry.Get(c.Param("sid"))
    if err != nil {
        return fail(c, err, "")
    }
    s.CancelEdit()
    return c.JSON(http.StatusOK, viewOf(s))
}

// EditRow handles PUT /v1/editor/:sid/rows/:row.  The row's seats are
// regenerated from 1 and its gaps are dropped.
func (h *EditorHandler) EditRow(c echo.Context) error {
    var body rowRequest
    if err := c.Bind(&body); err != nil {
        return badRequest(c, "invalid request body")
    }
    return h.withRow(c, func(s *editor.Session, row int) error {
        _, err := s.EditRow(row, body.SeatCount, body.Tier)
        return err
    })
}

// RemoveRow handles DELETE /v1/editor/:sid/rows/:row.
func (h *EditorHandler) RemoveRow(c echo.Context) error {
    return h.withRow(c, func(s *editor.Session, row int) error {
        return s.RemoveRow(row)
    })
}

// InsertGap handles POST /v1/editor/:sid/rows/:row/gaps/:slot.
func (h *EditorHandler) InsertGap(c echo.Context) error {
    slot, ok := slotParam(c)
    if !ok {
        return badRequest(c, "invalid slot")
    }
    return h.withRow(c, func(s *editor.Session, row int) error {
        return s.InsertGapBefore(row, slot)
    })
}

// RemoveGap handles DELETE /v1/editor/:sid/rows/:row/gaps/:slot.
func (h *EditorHandler) RemoveGap(c echo.Context) error {
    slot, ok := slotParam(c)
    if !ok {
        return badRequest(c, "invalid slot")
    }
    return h.withRow(c, func(s *editor.Session, row int) error {
        return s.RemoveGapAt(row, slot)
    })
}

// Submit handles POST /v1/editor/:sid/submit.
func (h *EditorHandler) Submit(c echo.Context) error {
    s, err := h.Registry.Get(c.Param("sid"))
    if err != nil {
        return fail(c, err, "")
    }
    if err := s.Submit(c.Request().Context()); err != nil {
        return fail(c, err, "failed to save layout")
    }
    return c.JSON(http.StatusOK, viewOf(s))
}

// withRow resolves the session and :row, runs op and answers with the view.
func (h *EditorHandler) withRow(c echo.Context, op func(s *editor.Session, row int) error) error {
    s, err := h.Registry.Get(c.Param("sid"))
    if err != nil {
        return fail(c, err, "")
    }
    row, ok := rowParam(c)
    if !ok {
        return badRequest(c, "invalid row")
    }
    if err := op(s, row); err != nil {
        return fail(c, err, "operation failed")
    }
    return c.JSON(http.StatusOK, viewOf(s))
}
