package main

import (
	"context"
	"errors"
	"io"

	"github.com/cellforth/cellforth/internal/panicerr"
)

// New creates a VM: the builtin and any WithPrimitive primitives are
// registered, then the arena is either laid out and bootstrapped, or restored
// from a WithImage image.
func New(opts ...VMOption) (*VM, error) {
	vm := &VM{}
	defaultOptions.apply(vm)
	VMOptions(opts...).apply(vm)
	if vm.err != nil {
		err := vm.err
		vm.Close()
		return nil, err
	}
	if err := catch("boot", vm.boot); err != nil {
		vm.Close()
		return nil, err
	}
	return vm, nil
}

func (vm *VM) boot() {
	for _, b := range builtins {
		vm.Register(b.name, b.fn)
	}
	for _, def := range vm.extra {
		vm.Register(def.name, def.fn)
	}

	if vm.image != nil {
		vm.haltif(vm.restore(vm.image))
		vm.image = nil
		return
	}

	vm.layout()
	vm.bootstrap()
	for i, def := range vm.extra {
		vm.definePrimitive(def.name, def.immediate, Cell(len(builtins)+i))
	}
}

// Run interprets tokens from the input queue until it is exhausted, the VM
// halts, or ctx is done. Unknown words are reported and skipped, see Faults;
// any other fault ends the session and is returned.
func (vm *VM) Run(ctx context.Context) error {
	err := panicerr.Recover("VM", func() error {
		return vm.run(ctx)
	})
	if ferr := vm.out.Flush(); err == nil {
		err = ferr
	}
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var he haltError
	if errors.As(err, &he) {
		err = he.error
	}
	return err
}

// WithInput queues readers as input for Run; they are read in order and
// closed once consumed if they implement io.Closer.
func WithInput(rs ...io.Reader) VMOption { return inputOption(rs) }

// WithOutput sets the destination of words like emit and ".".
func WithOutput(w io.Writer) VMOption { return withOutput(w) }

// WithTee copies output to w in addition to any prior output.
func WithTee(w io.Writer) VMOption { return teeOption{w} }

// WithCapacity sets the arena size in cells.
func WithCapacity(cells uint) VMOption { return withCapacity(cells) }

// WithStackSizes sets the data and return stack capacities in cells; zero
// keeps the default.
func WithStackSizes(data, ret uint) VMOption { return withStackSizes(data, ret) }

// WithLiteralParsers replaces the literal syntaxes recognized by the outer
// interpreter; they are tried in order.
func WithLiteralParsers(parsers ...LiteralParser) VMOption {
	return withLiteralParsers(parsers...)
}

// WithPrimitive adds a primitive word after the builtin ones.
func WithPrimitive(name string, immediate bool, fn PrimitiveFunc) VMOption {
	return primitiveDef{name, immediate, fn}
}

// WithImage restores the arena from an image written by SaveImage instead of
// bootstrapping a fresh dictionary.
func WithImage(r io.Reader) VMOption { return imageOption{r} }

// WithPrompt enables an " ok" prompt after each line of input.
func WithPrompt(prompt bool) VMOption { return promptOption(prompt) }

// WithCloser registers a resource to close along with the VM.
func WithCloser(cl io.Closer) VMOption { return closerOption{cl} }

// WithLogf enables trace logging.
func WithLogf(logfn func(mess string, args ...interface{})) VMOption { return withLogfn(logfn) }
