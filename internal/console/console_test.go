package console

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/seating-designer/internal/editor"
	"github.com/iliyamo/seating-designer/internal/model"
)

type memStore struct {
	rows     []model.Row
	replaces int
}

func (m *memStore) Fetch(context.Context, string) ([]model.Row, error) {
	return model.Layout{Rows: m.rows}.Clone().Rows, nil
}

func (m *memStore) Replace(_ context.Context, _ string, rows []model.Row) error {
	m.replaces++
	m.rows = model.Layout{Rows: rows}.Clone().Rows
	return nil
}

func TestParse(t *testing.T) {
	tests := []struct {
		line string
		want Command
	}{
		{"add 10 gold", Command{Op: OpAdd, SeatCount: 10, Tier: model.TierGold}},
		{"A 3 Diamond", Command{Op: OpAdd, SeatCount: 3, Tier: model.TierDiamond}},
		{"edit b", Command{Op: OpEdit, Row: 1}},
		{"edit 4", Command{Op: OpEdit, Row: 4}},
		{"commit 5 recliner", Command{Op: OpCommit, SeatCount: 5, Tier: model.TierRecliner}},
		{"set C 2 Silver", Command{Op: OpSet, Row: 2, SeatCount: 2, Tier: model.TierSilver}},
		{"rm a", Command{Op: OpRemove, Row: 0}},
		{"gap A 3", Command{Op: OpGap, Row: 0, Slot: 3}},
		{"ungap 1 0", Command{Op: OpUngap, Row: 1, Slot: 0}},
		{"  submit ", Command{Op: OpSubmit}},
		{"q", Command{Op: OpQuit}},
	}
	for _, tc := range tests {
		t.Run(tc.line, func(t *testing.T) {
			got, err := Parse(tc.line)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	for _, line := range []string{
		"", "fly", "add 10", "add ten gold", "add 10 bronze", "edit", "edit ??", "gap A x", "show all", "set A 3",
	} {
		_, err := Parse(line)
		assert.Error(t, err, line)
	}
}

func TestRender(t *testing.T) {
	l := model.Layout{Rows: []model.Row{
		{Label: "A", Seats: []model.Slot{model.SeatSlot(1), model.Gap, model.SeatSlot(2)}, Tier: model.TierDiamond},
		{Label: "B", Seats: []model.Slot{model.SeatSlot(1), model.SeatSlot(2)}, Tier: model.TierGold},
	}}
	var buf bytes.Buffer
	Render(&buf, l, 1)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], " A [Diamond]"))
	assert.Contains(t, lines[0], " 1  _  2")
	assert.True(t, strings.HasPrefix(lines[1], "*B [Gold]"))
	assert.Equal(t, "2 rows, 4 seats, 1 gaps | Gold=2 Diamond=2", lines[2])

	buf.Reset()
	Render(&buf, model.Layout{}, -1)
	assert.Equal(t, "(no rows)\n", buf.String())
}

func run(t *testing.T, store *memStore, script string) (string, *editor.Session) {
	t.Helper()
	var out bytes.Buffer
	s := editor.NewSession("5", store, editor.WithNotifier(editor.WriterNotifier{W: &out}))
	require.NoError(t, s.Load(context.Background()))
	require.NoError(t, New(s, strings.NewReader(script), &out).Run(context.Background()))
	return out.String(), s
}

func TestRun_BuildAndSubmit(t *testing.T) {
	store := &memStore{}
	out, s := run(t, store, strings.Join([]string{
		"add 4 Diamond",
		"add 6 gold",
		"gap A 2",
		"submit",
		"quit",
	}, "\n"))

	assert.Contains(t, out, "row A added")
	assert.Contains(t, out, "row B added")
	assert.Contains(t, out, "[success] layout saved (2 rows)")
	assert.NotContains(t, out, "unsaved")
	assert.Equal(t, 1, store.replaces)
	require.Len(t, store.rows, 2)
	assert.True(t, store.rows[0].Seats[2].IsGap())
	assert.Equal(t, 2, s.Layout().Len())
}

func TestRun_RemoveAsksFirst(t *testing.T) {
	store := &memStore{rows: []model.Row{
		{Label: "A", Seats: []model.Slot{model.SeatSlot(1)}, Tier: model.TierGold},
		{Label: "B", Seats: []model.Slot{model.SeatSlot(1)}, Tier: model.TierSilver},
	}}
	out, s := run(t, store, "rm A\nn\nrm A\nyes\n")

	assert.Contains(t, out, "Remove row A? [y/N]")
	assert.Contains(t, out, "kept")
	assert.Equal(t, []string{"A"}, s.Layout().Labels())
	assert.Equal(t, model.TierSilver, s.Layout().Rows[0].Tier)
	assert.Contains(t, out, "leaving with unsaved changes")
}

func TestRun_EditFlowAndRejections(t *testing.T) {
	store := &memStore{}
	out, s := run(t, store, strings.Join([]string{
		"commit 3 gold",
		"add 0 gold",
		"add 3 gold",
		"edit A",
		"add 2 gold",
		"commit 5 recliner",
		"ungap A 0",
		"submit",
	}, "\n"))

	assert.Contains(t, out, ErrNoEdit.Error())
	assert.Contains(t, out, "[error] seat count must be between 1 and 30")
	assert.Contains(t, out, "editing row A")
	assert.Contains(t, out, "[error] another row is being edited")
	assert.Contains(t, out, "[error] slot is not a gap")

	l := s.Layout()
	require.Equal(t, 1, l.Len())
	assert.Equal(t, 5, l.Rows[0].SeatCount())
	assert.Equal(t, model.TierRecliner, l.Rows[0].Tier)
	_, editing := s.Editing()
	assert.False(t, editing)
	assert.Equal(t, 1, store.replaces)
}

func TestRun_EmptySubmit(t *testing.T) {
	store := &memStore{}
	out, _ := run(t, store, "submit\n")
	assert.Contains(t, out, "[error] empty layout")
	assert.Zero(t, store.replaces)
}

func TestApply_ConfirmerOverride(t *testing.T) {
	store := &memStore{rows: []model.Row{{Label: "A", Seats: []model.Slot{model.SeatSlot(1)}, Tier: model.TierGold}}}
	s := editor.NewSession("5", store)
	require.NoError(t, s.Load(context.Background()))

	var asked string
	c := New(s, strings.NewReader(""), &bytes.Buffer{}).WithConfirmer(ConfirmFunc(func(p string) (bool, error) {
		asked = p
		return true, nil
	}))
	require.NoError(t, c.Apply(context.Background(), Command{Op: OpRemove, Row: 0}))
	assert.Equal(t, "Remove row A?", asked)
	assert.Zero(t, s.Layout().Len())
}

func TestWithTerminal_PicksConfirmer(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close(); _ = w.Close() })

	s := editor.NewSession("5", &memStore{})
	piped := New(s, strings.NewReader(""), &bytes.Buffer{}).WithTerminal(int(r.Fd()))
	_, isForm := piped.confirm.(FormConfirmer)
	assert.False(t, isForm, "piped input keeps the line prompt")

	orig := isTerminal
	t.Cleanup(func() { isTerminal = orig })
	isTerminal = func(int) bool { return true }

	tty := New(s, strings.NewReader(""), &bytes.Buffer{}).WithTerminal(0)
	assert.IsType(t, FormConfirmer{}, tty.confirm)
}
