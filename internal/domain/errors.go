package domain

import (
	"fmt"
)

// Error is a business rejection. None of them are transient; callers must
// fix the input or re-read state instead of retrying.
type Error struct {
	msg string
}

func (e *Error) Error() string { return e.msg }

// Expected marks rejections as part of normal operation so they are not
// logged as failures.
func (e *Error) Expected() bool { return true }

func newError(msg string) *Error { return &Error{msg: msg} }

var (
	ErrNotFound              = newError("not found")
	ErrConflict              = newError("conflict")
	ErrInvalidTransition     = newError("invalid state transition")
	ErrInvalidAmount         = newError("invalid amount")
	ErrInvalidArgument       = newError("invalid argument")
	ErrInsufficientBalance   = newError("insufficient available balance")
	ErrInsufficientPending   = newError("insufficient pending balance")
	ErrInvalidMilestoneSplit = newError("milestone percentages must be whole numbers summing to 100")

	ErrUnitUnavailable  = fmt.Errorf("%w: unit unavailable", ErrConflict)
	ErrAlreadyGenerated = fmt.Errorf("%w: installments already generated", ErrConflict)
)
