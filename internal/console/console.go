package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/iliyamo/seating-designer/internal/editor"
	"github.com/iliyamo/seating-designer/internal/model"
)

// Confirmer asks the operator a yes/no question.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) (bool, error)

func (f ConfirmFunc) Confirm(prompt string) (bool, error) { return f(prompt) }

// Console drives a session from line-oriented input.
type Console struct {
	session *editor.Session
	in      *bufio.Scanner
	out     io.Writer
	confirm Confirmer
}

// New returns a console reading commands from in and writing to out.  Row
// removal is confirmed with a y/N line on the same input unless
// WithConfirmer or WithTerminal picks another prompt.
// The session should notify through editor.WriterNotifier on out so
// rejected operations are shown to the operator.
func New(s *editor.Session, in io.Reader, out io.Writer) *Console {
	c := &Console{session: s, in: bufio.NewScanner(in), out: out}
	c.confirm = ConfirmFunc(c.prompt)
	return c
}

// WithConfirmer replaces the confirmation prompt.
func (c *Console) WithConfirmer(cf Confirmer) *Console {
	c.confirm = cf
	return c
}

// prompt reads y/yes (any case) as consent; anything else, including end
// of input, declines.
func (c *Console) prompt(q string) (bool, error) {
	fmt.Fprintf(c.out, "%s [y/N] ", q)
	if !c.in.Scan() {
		return false, c.in.Err()
	}
	ans := strings.ToLower(strings.TrimSpace(c.in.Text()))
	return ans == "y" || ans == "yes", nil
}

// Run processes commands until quit, end of input or ctx is cancelled.
// Unsaved edits are reported before leaving.
func (c *Console) Run(ctx context.Context) error {
	c.show()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(c.out, "> ")
		if !c.in.Scan() {
			c.leave()
			return c.in.Err()
		}
		line := strings.TrimSpace(c.in.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cmd, err := Parse(line)
		if err != nil {
			fmt.Fprintln(c.out, err)
			continue
		}
		if cmd.Op == OpQuit {
			c.leave()
			return nil
		}
		// rejections reach the operator through the session notifier
		_ = c.Apply(ctx, cmd)
	}
}

// ErrNoEdit is returned by commit when no row holds the edit focus.
var ErrNoEdit = errors.New("no row is being edited; use edit <row> first")

// Apply runs one command against the session.  The layout is printed
// after every successful change.
func (c *Console) Apply(ctx context.Context, cmd Command) error {
	s := c.session
	var err error
	switch cmd.Op {
	case OpAdd:
		var row model.Row
		if row, err = s.AddRow(cmd.SeatCount, cmd.Tier); err == nil {
			fmt.Fprintf(c.out, "row %s added\n", row.Label)
		}
	case OpEdit:
		if err = s.BeginEdit(cmd.Row); err == nil {
			fmt.Fprintf(c.out, "editing row %s; commit <seats> <tier> or cancel\n", s.Layout().Rows[cmd.Row].Label)
			return nil
		}
	case OpCommit:
		i, ok := s.Editing()
		if !ok {
			fmt.Fprintln(c.out, ErrNoEdit)
			return ErrNoEdit
		}
		_, err = s.EditRow(i, cmd.SeatCount, cmd.Tier)
	case OpSet:
		_, err = s.EditRow(cmd.Row, cmd.SeatCount, cmd.Tier)
	case OpCancel:
		s.CancelEdit()
	case OpRemove:
		l := s.Layout()
		if cmd.Row < 0 || cmd.Row >= l.Len() {
			err = s.RemoveRow(cmd.Row) // reports the range error
			break
		}
		ok, cerr := c.confirm.Confirm(fmt.Sprintf("Remove row %s?", l.Rows[cmd.Row].Label))
		if cerr != nil {
			return cerr
		}
		if !ok {
			fmt.Fprintln(c.out, "kept")
			return nil
		}
		err = s.RemoveRow(cmd.Row)
	case OpGap:
		err = s.InsertGapBefore(cmd.Row, cmd.Slot)
	case OpUngap:
		err = s.RemoveGapAt(cmd.Row, cmd.Slot)
	case OpShow:
	case OpReload:
		err = s.Load(ctx)
	case OpSubmit:
		return s.Submit(ctx)
	case OpHelp:
		fmt.Fprint(c.out, helpText)
		return nil
	default:
		err = fmt.Errorf("unsupported command %q", cmd.Op)
		fmt.Fprintln(c.out, err)
		return err
	}
	if err != nil {
		return err
	}
	c.show()
	return nil
}

func (c *Console) show() {
	i, ok := c.session.Editing()
	if !ok {
		i = -1
	}
	Render(c.out, c.session.Layout(), i)
}

func (c *Console) leave() {
	cur := c.session.Layout()
	saved, ok := c.session.LastPersisted()
	if cur.Len() > 0 && (!ok || !sameLayout(cur, saved)) {
		fmt.Fprintln(c.out, "leaving with unsaved changes")
	}
}

func sameLayout(a, b model.Layout) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := range a.Rows {
		ra, rb := a.Rows[i], b.Rows[i]
		if ra.Label != rb.Label || ra.Tier != rb.Tier || len(ra.Seats) != len(rb.Seats) {
			return false
		}
		for j := range ra.Seats {
			if ra.Seats[j] != rb.Seats[j] {
				return false
			}
		}
	}
	return true
}
