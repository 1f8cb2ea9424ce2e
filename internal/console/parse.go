// Package console is the operator's text front end to an editing session:
// it parses one command per line, applies it to the session and renders
// the layout after every change.
package console

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/iliyamo/seating-designer/internal/model"
)

// Op names a console command.
type Op string

const (
	OpAdd    Op = "add"
	OpEdit   Op = "edit"
	OpCommit Op = "commit"
	OpSet    Op = "set"
	OpCancel Op = "cancel"
	OpRemove Op = "rm"
	OpGap    Op = "gap"
	OpUngap  Op = "ungap"
	OpShow   Op = "show"
	OpSubmit Op = "submit"
	OpReload Op = "reload"
	OpHelp   Op = "help"
	OpQuit   Op = "quit"
)

var aliases = map[string]Op{
	"a": OpAdd, "e": OpEdit, "c": OpCommit, "remove": OpRemove, "del": OpRemove,
	"ls": OpShow, "p": OpShow, "save": OpSubmit, "s": OpSubmit, "?": OpHelp,
	"q": OpQuit, "exit": OpQuit,
}

// Command is one parsed input line.
type Command struct {
	Op        Op
	Row       int
	Slot      int
	SeatCount int
	Tier      model.Tier
}

var errUsage = errors.New("usage")

// Parse reads a command line.  Rows may be given as a letter label or a
// zero-based index; slots are zero-based indexes.
func Parse(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, errUsage
	}
	name := strings.ToLower(fields[0])
	op, ok := aliases[name]
	if !ok {
		op = Op(name)
	}
	args := fields[1:]
	cmd := Command{Op: op}

	var err error
	switch op {
	case OpAdd, OpCommit:
		if len(args) != 2 {
			return cmd, fmt.Errorf("%w: %s <seats> <tier>", errUsage, op)
		}
		cmd.SeatCount, cmd.Tier, err = parseRowSpec(args[0], args[1])
	case OpSet:
		if len(args) != 3 {
			return cmd, fmt.Errorf("%w: set <row> <seats> <tier>", errUsage)
		}
		if cmd.Row, err = parseRow(args[0]); err == nil {
			cmd.SeatCount, cmd.Tier, err = parseRowSpec(args[1], args[2])
		}
	case OpEdit, OpRemove:
		if len(args) != 1 {
			return cmd, fmt.Errorf("%w: %s <row>", errUsage, op)
		}
		cmd.Row, err = parseRow(args[0])
	case OpGap, OpUngap:
		if len(args) != 2 {
			return cmd, fmt.Errorf("%w: %s <row> <slot>", errUsage, op)
		}
		if cmd.Row, err = parseRow(args[0]); err == nil {
			cmd.Slot, err = strconv.Atoi(args[1])
			if err != nil {
				err = fmt.Errorf("slot must be a number, got %q", args[1])
			}
		}
	case OpCancel, OpShow, OpSubmit, OpReload, OpHelp, OpQuit:
		if len(args) != 0 {
			return cmd, fmt.Errorf("%w: %s takes no arguments", errUsage, op)
		}
	default:
		return cmd, fmt.Errorf("unknown command %q (try help)", fields[0])
	}
	return cmd, err
}

func parseRow(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	if len(s) == 1 {
		ch := strings.ToUpper(s)[0]
		if ch >= 'A' && ch <= 'Z' {
			return int(ch - 'A'), nil
		}
	}
	return 0, fmt.Errorf("row must be a letter or an index, got %q", s)
}

func parseRowSpec(count, tier string) (int, model.Tier, error) {
	n, err := strconv.Atoi(count)
	if err != nil {
		return 0, "", fmt.Errorf("seat count must be a number, got %q", count)
	}
	t, err := model.ParseTier(tier)
	if err != nil {
		return 0, "", err
	}
	return n, t, nil
}

const helpText = `commands:
  add <seats> <tier>         append a row (tiers: Recliner, Silver, Gold, Diamond)
  edit <row>                 open a row for editing
  commit <seats> <tier>      apply the edit to the open row (gaps are dropped)
  set <row> <seats> <tier>   edit a row directly
  cancel                     close the open edit without changes
  rm <row>                   remove a row (asks first)
  gap <row> <slot>           insert an aisle gap before slot
  ungap <row> <slot>         remove the gap at slot
  show                       print the layout
  reload                     discard local edits and load the stored layout
  submit                     save the layout
  quit                       leave without saving
rows are letters (A) or indexes (0); slots are indexes from 0
`
