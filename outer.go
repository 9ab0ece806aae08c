package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/cellforth/cellforth/internal/runeio"
)

// LiteralParser recognizes a literal token, returning its cell value.
type LiteralParser func(token string) (Cell, bool)

// DecimalLiteral parses an optional minus sign followed by ASCII digits.
// Negative values are stored in two's complement; values that fit in neither
// a signed nor an unsigned cell are rejected.
func DecimalLiteral(token string) (Cell, bool) {
	digits := token
	if len(digits) > 0 && digits[0] == '-' {
		digits = digits[1:]
	}
	if digits == "" {
		return 0, false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(token, 10, 64)
	if err != nil || n < math.MinInt32 || n > math.MaxUint32 {
		return 0, false
	}
	return Cell(n), true
}

// RuneLiteral parses rune literals like 'a', control names like <ESC>, and
// caret forms like ^[.
func RuneLiteral(token string) (Cell, bool) {
	r, err := runeio.ParseRune(token)
	if err != nil {
		return 0, false
	}
	return Cell(r), true
}

func (vm *VM) literal(token string) (Cell, bool) {
	for _, parse := range vm.parsers {
		if val, ok := parse(token); ok {
			return val, true
		}
	}
	return 0, false
}

// interpret handles one token: literals are pushed or compiled, words are
// executed or compiled, and anything else is an unknown word. Nothing is
// mutated before a token is resolved.
func (vm *VM) interpret(ctx context.Context, token string) {
	vm.logf(">", "%v", token)

	if val, ok := vm.literal(token); ok {
		if vm.compiling() {
			vm.compileLiteral(val)
		} else {
			vm.push(val)
		}
		return
	}

	entry := vm.find(token)
	if entry == 0 {
		vm.halt(UnknownWordError{token})
	}

	if !vm.compiling() {
		vm.execute(ctx, entry)
	} else if vm.load(entry+fieldImmediate) != 0 {
		defer vm.withLogPrefix("  ")()
		vm.execute(ctx, entry)
	} else {
		vm.compile(entry)
	}
}

// InterpretWord interprets a single token as if it had been read from input.
func (vm *VM) InterpretWord(ctx context.Context, token string) error {
	return vm.session("interpret", func() { vm.interpret(ctx, token) })
}

func (vm *VM) run(ctx context.Context) error {
	if vm.err != nil {
		return vm.err
	}
	for !vm.Halted() {
		if err := ctx.Err(); err != nil {
			return err
		}

		token, eol, err := vm.in.Token()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
		vm.eol = eol

		var unknown UnknownWordError
		if err := vm.InterpretWord(ctx, token); errors.As(err, &unknown) {
			vm.unknownWord(err)
			if err := vm.skipLine(); err != nil {
				return err
			}
		} else if errors.Is(err, ErrHalted) {
			return nil
		} else if err != nil {
			return err
		}

		if vm.eol && vm.prompt && !vm.Halted() {
			if _, err := io.WriteString(vm.out, " ok\n"); err != nil {
				return err
			}
			if err := vm.out.Flush(); err != nil {
				return err
			}
		}
	}
	return nil
}

// unknownWord reports an unknown word on the output, in the way of a Forth
// interpreter, and records it with its input location.
func (vm *VM) unknownWord(err error) {
	var unknown UnknownWordError
	errors.As(err, &unknown)
	loc := vm.in.Location()
	if vm.eol {
		loc = vm.in.Last.Location
	}
	vm.logf("#", "%v: %v", loc, err)
	fmt.Fprintf(vm.out, "%v ?\n", unknown.Token)
	vm.faults = append(vm.faults, fmt.Errorf("%v: %w", loc, err))
}
