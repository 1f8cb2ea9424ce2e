package model

import (
	"errors"
	"fmt"
)

// ValidationError reports a local, pre-network rejection of an editing or
// submit operation.  The layout is never mutated when one is returned and
// the message is meant to be shown to the operator as is.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// ProgrammerError reports a request the layout model cannot represent at
// all, such as a 27th row in the single-letter label space.
type ProgrammerError struct {
	Msg string
}

func (e *ProgrammerError) Error() string { return e.Msg }

// TransportError is returned by persistence collaborators when a load or
// submit fails on the wire.  Message carries the collaborator's own error
// text when it supplied one.
type TransportError struct {
	Status  int    // HTTP status, 0 when the request never completed
	Message string // message extracted from the response body, may be empty
	Err     error  // underlying cause, may be nil
}

func (e *TransportError) Error() string {
	switch {
	case e.Message != "" && e.Status != 0:
		return fmt.Sprintf("layout api: %d: %s", e.Status, e.Message)
	case e.Message != "":
		return "layout api: " + e.Message
	case e.Err != nil:
		return "layout api: " + e.Err.Error()
	default:
		return fmt.Sprintf("layout api: unexpected status %d", e.Status)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

var (
	ErrInvalidSeatCount = &ValidationError{Msg: fmt.Sprintf("seat count must be between %d and %d", MinSeatsPerRow, MaxSeatsPerRow)}
	ErrInvalidTier      = &ValidationError{Msg: "tier must be one of Recliner, Silver, Gold, Diamond"}
	ErrEmptyLayout      = &ValidationError{Msg: "empty layout"}
	ErrRowOutOfRange    = &ValidationError{Msg: "row index out of range"}
	ErrSlotOutOfRange   = &ValidationError{Msg: "slot index out of range"}
	ErrNotAGap          = &ValidationError{Msg: "slot is not a gap"}
	ErrEditInProgress   = &ValidationError{Msg: "another row is being edited"}
	ErrLabelSequence    = &ValidationError{Msg: "row labels must run contiguously from A"}

	ErrTooManyRows = &ProgrammerError{Msg: fmt.Sprintf("layout cannot hold more than %d rows", MaxRows)}
)

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsProgrammer reports whether err is, or wraps, a ProgrammerError.
func IsProgrammer(err error) bool {
	var pe *ProgrammerError
	return errors.As(err, &pe)
}

// UserMessage returns the text an operator should see for err.  Validation
// errors keep their own message, transport errors prefer the collaborator's
// message and everything else falls back to generic.
func UserMessage(err error, generic string) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return err.Error()
	}
	var pe *ProgrammerError
	if errors.As(err, &pe) {
		return pe.Msg
	}
	var te *TransportError
	if errors.As(err, &te) && te.Message != "" {
		return te.Message
	}
	return generic
}
