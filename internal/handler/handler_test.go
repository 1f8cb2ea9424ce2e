package handler

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "net/http"
    "net/http/httptest"
    "strings"
    "sync"
    "testing"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/seating-designer/internal/editor"
    "github.com/iliyamo/seating-designer/internal/model"
    q "github.com/iliyamo/seating-designer/internal/queue"
)

type memStore struct {
    mu         sync.Mutex
    rows       map[string][]model.Row
    fetchErr   error
    replaceErr error
    replaced   int
}

func newMemStore() *memStore { return &memStore{rows: map[string][]model.Row{}} }

func (m *memStore) Fetch(_ context.Context, screenID string) ([]model.Row, error) {
    m.mu.Lock()
    defer m.mu.Unlock()
    if m.fetchErr != nil {
        return nil, m.fetchErr
    }
    return model.Layout{Rows: m.rows[screenID]}.Clone().Rows, nil
}

func (m *memStore) Replace(_ context.Context, screenID string, rows []model.Row) error {
    m.mu.Lock()
    defer m.mu.Unlock()
    m.replaced++
    if m.replaceErr != nil {
        return m.replaceErr
    }
    m.rows[screenID] = model.Layout{Rows: rows}.Clone().Rows
    return nil
}

type eventSink struct {
    events []q.LayoutSavedEvent
    err    error
}

func (s *eventSink) PublishLayoutSaved(_ context.Context, e q.LayoutSavedEvent) error {
    s.events = append(s.events, e)
    return s.err
}

func newServer(store *memStore, events EventPublisher) *echo.Echo {
    e := echo.New()
    lh := NewLayoutHandler(store, events, time.Second)
    lh.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
    e.GET("/layout", lh.GetLayout)
    e.POST("/layout", lh.SaveLayout)

    eh := NewEditorHandler(editor.NewRegistry(store))
    e.GET("/healthz", eh.Health)
    e.POST("/v1/screens/:screen_id/editor", eh.Open)
    e.GET("/v1/editor/:sid", eh.Get)
    e.DELETE("/v1/editor/:sid", eh.Close)
    e.POST("/v1/editor/:sid/reload", eh.Reload)
    e.POST("/v1/editor/:sid/rows", eh.AddRow)
    e.POST("/v1/editor/:sid/rows/:row/edit", eh.BeginEdit)
    e.DELETE("/v1/editor/:sid/rows/:row/edit", eh.CancelEdit)
    e.PUT("/v1/editor/:sid/rows/:row", eh.EditRow)
    e.DELETE("/v1/editor/:sid/rows/:row", eh.RemoveRow)
    e.POST("/v1/editor/:sid/rows/:row/gaps/:slot", eh.InsertGap)
    e.DELETE("/v1/editor/:sid/rows/:row/gaps/:slot", eh.RemoveGap)
    e.POST("/v1/editor/:sid/submit", eh.Submit)
    return e
}

func do(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
    var req *http.Request
    if body == "" {
        req = httptest.NewRequest(method, path, nil)
    } else {
        req = httptest.NewRequest(method, path, strings.NewReader(body))
        req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    }
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    return rec
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
    t.Helper()
    var body map[string]string
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
    return body["error"]
}

func TestGetLayout_SortedAndEmpty(t *testing.T) {
    store := newMemStore()
    store.rows["7"] = []model.Row{
        {Label: "B", Seats: []model.Slot{model.SeatSlot(1)}, Tier: model.TierGold},
        {Label: "A", Seats: []model.Slot{model.SeatSlot(1), model.Gap, model.SeatSlot(2)}, Tier: model.TierDiamond},
    }
    e := newServer(store, nil)

    rec := do(e, http.MethodGet, "/layout?screenId=7", "")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.JSONEq(t, `[{"label":"A","seats":[1,"",2],"tier":"Diamond"},{"label":"B","seats":[1],"tier":"Gold"}]`, rec.Body.String())

    rec = do(e, http.MethodGet, "/layout?screenId=unknown", "")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.JSONEq(t, `[]`, rec.Body.String())

    rec = do(e, http.MethodGet, "/layout", "")
    assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSaveLayout_Stores(t *testing.T) {
    store := newMemStore()
    sink := &eventSink{}
    e := newServer(store, sink)

    rec := do(e, http.MethodPost, "/layout",
        `{"screen":"7","data":[{"label":"B","seats":[1,2,3],"tier":"gold"},{"label":"A","seats":[1,"",2],"tier":"Diamond"}]}`)
    require.Equal(t, http.StatusOK, rec.Code)
    assert.JSONEq(t, `{"message":"layout saved","rows":2}`, rec.Body.String())

    rows := store.rows["7"]
    require.Len(t, rows, 2)
    assert.Equal(t, "A", rows[0].Label)
    assert.True(t, rows[0].Seats[1].IsGap())
    assert.Equal(t, model.TierGold, rows[1].Tier)

    require.Len(t, sink.events, 1)
    assert.Equal(t, "7", sink.events[0].ScreenID)
    assert.Equal(t, 5, sink.events[0].Seats)
    assert.Equal(t, 1, sink.events[0].Gaps)
    assert.Equal(t, "2026-03-01T12:00:00Z", sink.events[0].SavedAt)
}

func TestSaveLayout_PublishFailureStillSaves(t *testing.T) {
    store := newMemStore()
    e := newServer(store, &eventSink{err: errors.New("broker down")})

    rec := do(e, http.MethodPost, "/layout", `{"screen":"7","data":[{"label":"A","seats":[1],"tier":"Silver"}]}`)
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Len(t, store.rows["7"], 1)
}

func TestSaveLayout_Rejects(t *testing.T) {
    thirtyOne := make([]string, 31)
    for i := range thirtyOne {
        thirtyOne[i] = "1"
    }
    tests := []struct {
        name string
        body string
        want string
    }{
        {"bad json", `{`, "invalid request body"},
        {"no screen", `{"data":[{"label":"A","seats":[1],"tier":"Gold"}]}`, "screen is required"},
        {"empty", `{"screen":"7","data":[]}`, "empty layout"},
        {"bad tier", `{"screen":"7","data":[{"label":"A","seats":[1],"tier":"Bronze"}]}`, "tier must be"},
        {"label hole", `{"screen":"7","data":[{"label":"A","seats":[1],"tier":"Gold"},{"label":"C","seats":[1],"tier":"Gold"}]}`, "label"},
        {"only gaps", `{"screen":"7","data":[{"label":"A","seats":["",""],"tier":"Gold"}]}`, "seat"},
        {"too many seats", `{"screen":"7","data":[{"label":"A","seats":[` + strings.Join(thirtyOne, ",") + `],"tier":"Gold"}]}`, "seat"},
        {"negative seat", `{"screen":"7","data":[{"label":"A","seats":[-1],"tier":"Gold"}]}`, "invalid request body"},
    }
    for _, tc := range tests {
        t.Run(tc.name, func(t *testing.T) {
            store := newMemStore()
            rec := do(newServer(store, nil), http.MethodPost, "/layout", tc.body)
            assert.Equal(t, http.StatusBadRequest, rec.Code)
            assert.Contains(t, errorOf(t, rec), tc.want)
            assert.Zero(t, store.replaced)
        })
    }
}

func TestSaveLayout_StorageFailure(t *testing.T) {
    store := newMemStore()
    store.replaceErr = errors.New("deadlock")
    rec := do(newServer(store, nil), http.MethodPost, "/layout", `{"screen":"7","data":[{"label":"A","seats":[1],"tier":"Gold"}]}`)
    assert.Equal(t, http.StatusInternalServerError, rec.Code)
    assert.Equal(t, "could not save layout", errorOf(t, rec))
}

type view struct {
    SessionID string        `json:"session_id"`
    ScreenID  string        `json:"screen_id"`
    Layout    model.Layout  `json:"layout"`
    Summary   model.Summary `json:"summary"`
    Editing   *string       `json:"editing"`
    Persisted *model.Layout `json:"last_persisted"`
    LoadError string        `json:"load_error"`
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) view {
    t.Helper()
    var v view
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
    return v
}

func TestEditor_Flow(t *testing.T) {
    store := newMemStore()
    e := newServer(store, nil)

    rec := do(e, http.MethodPost, "/v1/screens/9/editor", "")
    require.Equal(t, http.StatusCreated, rec.Code)
    v := decodeView(t, rec)
    require.NotEmpty(t, v.SessionID)
    assert.Equal(t, "9", v.ScreenID)
    assert.Zero(t, v.Layout.Len())
    base := "/v1/editor/" + v.SessionID

    rec = do(e, http.MethodPost, base+"/rows", `{"seat_count":4,"tier":"Gold"}`)
    require.Equal(t, http.StatusCreated, rec.Code)
    rec = do(e, http.MethodPost, base+"/rows", `{"seat_count":3,"tier":"silver"}`)
    require.Equal(t, http.StatusCreated, rec.Code)
    v = decodeView(t, rec)
    assert.Equal(t, []string{"A", "B"}, v.Layout.Labels())
    assert.Equal(t, 7, v.Summary.Seats)

    rec = do(e, http.MethodPost, base+"/rows/A/gaps/2", "")
    require.Equal(t, http.StatusOK, rec.Code)
    v = decodeView(t, rec)
    assert.True(t, v.Layout.Rows[0].Seats[2].IsGap())
    assert.Equal(t, 3, v.Layout.Rows[0].Seats[3].Number())

    rec = do(e, http.MethodDelete, base+"/rows/0/gaps/1", "")
    assert.Equal(t, http.StatusBadRequest, rec.Code)
    assert.Contains(t, errorOf(t, rec), "not a gap")

    rec = do(e, http.MethodPost, base+"/rows/b/edit", "")
    require.Equal(t, http.StatusOK, rec.Code)
    v = decodeView(t, rec)
    require.NotNil(t, v.Editing)
    assert.Equal(t, "B", *v.Editing)

    rec = do(e, http.MethodPost, base+"/rows", `{"seat_count":2,"tier":"Gold"}`)
    assert.Equal(t, http.StatusBadRequest, rec.Code)

    rec = do(e, http.MethodPut, base+"/rows/B", `{"seat_count":5,"tier":"Recliner"}`)
    require.Equal(t, http.StatusOK, rec.Code)
    v = decodeView(t, rec)
    assert.Nil(t, v.Editing)
    assert.Equal(t, 5, v.Layout.Rows[1].SeatCount())
    assert.Equal(t, model.TierRecliner, v.Layout.Rows[1].Tier)

    rec = do(e, http.MethodPost, base+"/submit", "")
    require.Equal(t, http.StatusOK, rec.Code)
    v = decodeView(t, rec)
    require.NotNil(t, v.Persisted)
    assert.Equal(t, 2, v.Persisted.Len())
    assert.Len(t, store.rows["9"], 2)

    rec = do(e, http.MethodDelete, base+"/rows/A", "")
    require.Equal(t, http.StatusOK, rec.Code)
    v = decodeView(t, rec)
    assert.Equal(t, []string{"A"}, v.Layout.Labels())
    assert.Equal(t, model.TierRecliner, v.Layout.Rows[0].Tier)

    rec = do(e, http.MethodPost, base+"/reload", "")
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Equal(t, 2, decodeView(t, rec).Layout.Len())

    rec = do(e, http.MethodDelete, base, "")
    assert.Equal(t, http.StatusNoContent, rec.Code)
    rec = do(e, http.MethodGet, base, "")
    assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEditor_Errors(t *testing.T) {
    store := newMemStore()
    e := newServer(store, nil)
    v := decodeView(t, do(e, http.MethodPost, "/v1/screens/9/editor", ""))
    base := "/v1/editor/" + v.SessionID

    rec := do(e, http.MethodPost, base+"/submit", "")
    assert.Equal(t, http.StatusBadRequest, rec.Code)
    assert.Equal(t, "empty layout", errorOf(t, rec))
    assert.Zero(t, store.replaced)

    for _, n := range []string{"0", "31"} {
        rec = do(e, http.MethodPost, base+"/rows", `{"seat_count":`+n+`,"tier":"Gold"}`)
        assert.Equal(t, http.StatusBadRequest, rec.Code)
    }
    rec = do(e, http.MethodPost, base+"/rows", `{"seat_count":3,"tier":"Bronze"}`)
    assert.Equal(t, http.StatusBadRequest, rec.Code)

    rec = do(e, http.MethodDelete, base+"/rows/3", "")
    assert.Equal(t, http.StatusBadRequest, rec.Code)
    rec = do(e, http.MethodDelete, base+"/rows/zz", "")
    assert.Equal(t, "invalid row", errorOf(t, rec))

    rec = do(e, http.MethodGet, "/v1/editor/nope", "")
    assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEditor_OpenReportsLoadError(t *testing.T) {
    store := newMemStore()
    store.fetchErr = &model.TransportError{Status: 503, Message: "maintenance"}
    e := newServer(store, nil)

    rec := do(e, http.MethodPost, "/v1/screens/9/editor", "")
    require.Equal(t, http.StatusCreated, rec.Code)
    v := decodeView(t, rec)
    assert.Equal(t, "maintenance", v.LoadError)
    assert.Zero(t, v.Layout.Len())

    rec = do(e, http.MethodPost, "/v1/editor/"+v.SessionID+"/reload", "")
    assert.Equal(t, http.StatusBadGateway, rec.Code)

    store.fetchErr = nil
    rec = do(e, http.MethodPost, "/v1/editor/"+v.SessionID+"/reload", "")
    assert.Equal(t, http.StatusOK, rec.Code)
}

func TestEditor_SubmitTransportError(t *testing.T) {
    store := newMemStore()
    store.replaceErr = &model.TransportError{Status: 400, Message: "layout rejected"}
    e := newServer(store, nil)
    v := decodeView(t, do(e, http.MethodPost, "/v1/screens/9/editor", ""))
    base := "/v1/editor/" + v.SessionID
    require.Equal(t, http.StatusCreated, do(e, http.MethodPost, base+"/rows", `{"seat_count":2,"tier":"Gold"}`).Code)

    rec := do(e, http.MethodPost, base+"/submit", "")
    assert.Equal(t, http.StatusBadGateway, rec.Code)
    assert.Equal(t, "layout rejected", errorOf(t, rec))
}

func TestHealth(t *testing.T) {
    rec := do(newServer(newMemStore(), nil), http.MethodGet, "/healthz", "")
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.JSONEq(t, `{"status":"ok","sessions":0}`, rec.Body.String())
}

func TestFail_StatusAndMessage(t *testing.T) {
    tests := []struct {
        name   string
        err    error
        status int
        want   string
    }{
        {"unknown session", editor.ErrSessionNotFound, http.StatusNotFound, "editing session not found"},
        {"submit in flight", editor.ErrSubmitInFlight, http.StatusConflict, "a submit for this screen is already in progress"},
        {"validation", fmt.Errorf("%w (got 0)", model.ErrInvalidSeatCount), http.StatusBadRequest, "seat count must be between 1 and 30 (got 0)"},
        {"too many rows", model.ErrTooManyRows, http.StatusBadRequest, "layout cannot hold more than 26 rows"},
        {"transport without message", &model.TransportError{Status: 503}, http.StatusBadGateway, "fallback"},
        {"transport with message", &model.TransportError{Status: 400, Message: "bad row"}, http.StatusBadGateway, "bad row"},
        {"internal", errors.New("db closed"), http.StatusInternalServerError, "fallback"},
    }
    e := echo.New()
    for _, tc := range tests {
        t.Run(tc.name, func(t *testing.T) {
            rec := httptest.NewRecorder()
            c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
            require.NoError(t, fail(c, tc.err, "fallback"))
            assert.Equal(t, tc.status, rec.Code)
            assert.Equal(t, tc.want, errorOf(t, rec))
        })
    }
}
