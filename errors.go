package main

import (
	"errors"
	"fmt"

	"github.com/cellforth/cellforth/internal/mem"
)

// Faults reported by the VM; match them with errors.Is.
var (
	ErrOutOfBounds      = errors.New("out of bounds")
	ErrStackOverflow    = errors.New("stack overflow")
	ErrStackUnderflow   = errors.New("stack underflow")
	ErrUnknownWord      = errors.New("unknown word")
	ErrUnknownPrimitive = errors.New("unknown primitive")
	ErrNoOpenDefinition = errors.New("no open definition")
	ErrNestedDefinition = errors.New("nested definition")
	ErrInvalidName      = errors.New("invalid name")
	ErrCompileOnly      = errors.New("compile only word")
	ErrDivideByZero     = errors.New("division by zero")
	ErrUnexpectedEOF    = errors.New("unexpected end of input")
	ErrImageMismatch    = errors.New("image mismatch")
	ErrHalted           = errors.New("vm halted")
)

// BoundsError is an arena access outside of [0, capacity), or an attempt to
// execute outside of the dictionary.
type BoundsError struct {
	Addr uint
	Op   string
}

func (err BoundsError) Error() string { return fmt.Sprintf("%v @%v out of bounds", err.Op, err.Addr) }
func (err BoundsError) Unwrap() error { return ErrOutOfBounds }

func boundsError(err error) error {
	var be mem.BoundsError
	if errors.As(err, &be) {
		return BoundsError(be)
	}
	return err
}

// StackError is an overflow or underflow of the named stack.
type StackError struct {
	Stack string
	Err   error
}

func (err StackError) Error() string { return fmt.Sprintf("%v %v", err.Stack, err.Err) }
func (err StackError) Unwrap() error { return err.Err }

// UnknownWordError is a token that is neither a literal nor a visible word.
type UnknownWordError struct{ Token string }

func (err UnknownWordError) Error() string { return fmt.Sprintf("unknown word %q", err.Token) }
func (err UnknownWordError) Unwrap() error { return ErrUnknownWord }

// PrimitiveError is a dispatch to an unregistered primitive index.
type PrimitiveError struct{ Index Cell }

func (err PrimitiveError) Error() string { return fmt.Sprintf("unknown primitive #%v", err.Index) }
func (err PrimitiveError) Unwrap() error { return ErrUnknownPrimitive }

func boolCell(b bool) Cell {
	if b {
		return 1
	}
	return 0
}
