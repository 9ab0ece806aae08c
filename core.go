package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cellforth/cellforth/internal/fileinput"
	"github.com/cellforth/cellforth/internal/flushio"
	"github.com/cellforth/cellforth/internal/panicerr"
	"github.com/cellforth/cellforth/internal/runeio"
)

// ioCore holds everything about a VM that is not arena state: the token
// source, output, logging, and resources to release on Close.
type ioCore struct {
	logging
	in      fileinput.Input
	out     flushio.WriteFlusher
	closers []io.Closer

	eol    bool
	prompt bool
}

// Close releases any files still held by the VM, including input streams
// that were queued but never read.
func (core *ioCore) Close() (err error) {
	if core.out != nil {
		err = core.out.Flush()
	}
	if cerr := core.in.Close(); err == nil {
		err = cerr
	}
	for i := len(core.closers) - 1; i >= 0; i-- {
		if cerr := core.closers[i].Close(); err == nil {
			err = cerr
		}
	}
	core.closers = nil
	return err
}

func (core *ioCore) halt(err error) {
	// ignore any panics while trying to flush output
	func() {
		defer func() { recover() }()
		if core.out != nil {
			if ferr := core.out.Flush(); err == nil {
				err = ferr
			}
		}
	}()

	// ignore any panics while logging
	func() {
		defer func() { recover() }()
		core.logf("#", "halt error: %v", err)
	}()

	panic(haltError{err})
}

func (core *ioCore) haltif(err error) {
	if err != nil {
		core.halt(err)
	}
}

func (core *ioCore) writeRune(r rune) {
	_, err := runeio.WriteANSIRune(core.out, r)
	core.haltif(err)
}

func (core *ioCore) writeString(s string) {
	_, err := io.WriteString(core.out, s)
	core.haltif(err)
}

// nextToken reads a token for a parsing word like ":".
func (core *ioCore) nextToken() string {
	token, eol, err := core.in.Token()
	if err == io.EOF {
		core.halt(ErrUnexpectedEOF)
	}
	core.haltif(err)
	core.eol = eol
	return token
}

// skipLine abandons whatever remains of the line being scanned.
func (core *ioCore) skipLine() error {
	if core.eol {
		return nil
	}
	core.eol = true
	if err := core.in.SkipLine(); err != io.EOF {
		return err
	}
	return nil
}

type haltError struct{ error }

func (err haltError) Error() string {
	if err.error != nil {
		return fmt.Sprintf("halted: %v", err.error)
	}
	return "halted"
}
func (err haltError) Unwrap() error { return err.error }

// catch runs f, returning any error that it halted with.
func catch(name string, f func()) error {
	err := panicerr.Catch(name, func() error {
		f()
		return nil
	})
	var he haltError
	if errors.As(err, &he) {
		err = he.error
	}
	return err
}

type logging struct {
	logfn func(mess string, args ...interface{})

	markWidth int
}

func (log *logging) withLogPrefix(prefix string) func() {
	logfn := log.logfn
	if logfn == nil {
		return func() {}
	}
	log.logfn = func(mess string, args ...interface{}) {
		logfn(prefix+mess, args...)
	}
	return func() {
		log.logfn = logfn
	}
}

func (log *logging) logf(mark, mess string, args ...interface{}) {
	if log.logfn == nil {
		return
	}
	if n := log.markWidth - len(mark); n > 0 {
		for _, r := range mark {
			mark = strings.Repeat(string(r), n) + mark
			break
		}
	} else if n < 0 {
		log.markWidth = len(mark)
	}
	if len(args) > 0 {
		mess = fmt.Sprintf(mess, args...)
	}
	log.logfn("%v %v", mark, mess)
}
