package queue

import (
    "os"
    "path/filepath"
    "strings"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestHandleMessage_AppendsLine(t *testing.T) {
    dir := filepath.Join(t.TempDir(), "logs")
    body := `{"screen_id":"7","rows":2,"seats":10,"gaps":1,"seats_by_tier":{"Gold":6,"Diamond":4},"saved_by":"42","saved_at":"2026-01-02T10:00:00Z"}`

    require.NoError(t, handleMessage([]byte(body), dir))
    require.NoError(t, handleMessage([]byte(body), dir))

    raw, err := os.ReadFile(filepath.Join(dir, "layout.log"))
    require.NoError(t, err)
    lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
    require.Len(t, lines, 2)
    assert.Equal(t, `[2026-01-02T10:00:00Z] Layout saved | screen="7" | by=42 | rows=2 | seats=10 | gaps=1 | tiers=[Diamond=4,Gold=6]`, lines[0])
}

func TestHandleMessage_Rejects(t *testing.T) {
    dir := t.TempDir()
    assert.Error(t, handleMessage([]byte(`not json`), dir))
    assert.Error(t, handleMessage([]byte(`{"rows":1}`), dir))

    _, err := os.Stat(filepath.Join(dir, "layout.log"))
    assert.True(t, os.IsNotExist(err))
}
