package main

import (
	"bytes"
	"io"

	"github.com/cellforth/cellforth/internal/flushio"
)

// VMOption customizes a VM under construction by New.
type VMOption interface{ apply(vm *VM) }

// VMOptions combines any number of options into one, nil values are ignored.
func VMOptions(opts ...VMOption) VMOption {
	var res options
	for _, opt := range opts {
		switch impl := opt.(type) {
		case nil:
		case options:
			res = append(res, impl...)
		default:
			res = append(res, impl)
		}
	}
	if len(res) == 1 {
		return res[0]
	}
	return res
}

type options []VMOption

func (opts options) apply(vm *VM) {
	for _, opt := range opts {
		opt.apply(vm)
	}
}

var defaultOptions = VMOptions(
	withOutput(io.Discard),
	withCapacity(DefaultCapacity),
	withStackSizes(DefaultDataStack, DefaultReturnStack),
	withLiteralParsers(DecimalLiteral),
)

type withLogfn func(mess string, args ...interface{})

func (logfn withLogfn) apply(vm *VM) {
	vm.logfn = logfn
}

type inputOption []io.Reader
type outputOption struct{ io.Writer }
type teeOption struct{ io.Writer }
type capacityOption uint
type stackSizesOption struct{ data, ret uint }
type literalParsersOption []LiteralParser
type imageOption struct{ r io.Reader }
type promptOption bool
type closerOption struct{ io.Closer }

func withOutput(w io.Writer) outputOption { return outputOption{w} }
func withCapacity(n uint) capacityOption  { return capacityOption(n) }
func withStackSizes(data, ret uint) stackSizesOption {
	return stackSizesOption{data, ret}
}
func withLiteralParsers(parsers ...LiteralParser) literalParsersOption {
	return literalParsersOption(parsers)
}

func (rs inputOption) apply(vm *VM) {
	vm.in.Queue = append(vm.in.Queue, rs...)
}

func (o outputOption) apply(vm *VM) {
	if vm.out != nil {
		vm.out.Flush()
	}
	vm.out = flushio.NewWriteFlusher(o.Writer)
}

func (o teeOption) apply(vm *VM) {
	vm.out = flushio.WriteFlushers(vm.out, flushio.NewWriteFlusher(o.Writer))
}

func (n capacityOption) apply(vm *VM) {
	if n == 0 {
		n = DefaultCapacity
	}
	vm.mem.Capacity = uint(n)
}

func (sz stackSizesOption) apply(vm *VM) {
	if sz.data != 0 {
		vm.dataSize = Cell(sz.data)
	}
	if sz.ret != 0 {
		vm.retSize = Cell(sz.ret)
	}
}

func (ps literalParsersOption) apply(vm *VM) {
	vm.parsers = append([]LiteralParser(nil), ps...)
}

func (def primitiveDef) apply(vm *VM) {
	vm.extra = append(vm.extra, def)
}

func (o imageOption) apply(vm *VM) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(o.r); err != nil {
		vm.err = err
		return
	}
	vm.image = buf.Bytes()
}

func (p promptOption) apply(vm *VM) {
	vm.prompt = bool(p)
}

func (o closerOption) apply(vm *VM) {
	vm.closers = append(vm.closers, o.Closer)
}
