package main

import (
	"fmt"
	"io"
)

func (vm *VM) compiling() bool { return vm.load(regState) != 0 }

// beginDefinition opens a hidden entry, so that the word being defined is
// not visible to its own body; see recurse.
func (vm *VM) beginDefinition(name string) {
	if vm.open != 0 {
		vm.halt(fmt.Errorf("%w: %q inside %q", ErrNestedDefinition, name, vm.name(vm.open)))
	}
	vm.open = vm.define(name, true, false, false, 0)
	vm.stor(regState, 1)
}

func (vm *VM) endDefinition() {
	if vm.open == 0 {
		vm.halt(ErrNoOpenDefinition)
	}
	vm.compile(vm.load(regExit))
	vm.stor(vm.open+fieldHidden, 0)
	vm.open = 0
	vm.stor(regState, 0)
}

func (vm *VM) compileLiteral(val Cell) { vm.compile(vm.load(regLit), val) }

func (vm *VM) compileOnly(name string) {
	if !vm.compiling() {
		vm.halt(fmt.Errorf("%w: %v", ErrCompileOnly, name))
	}
}

// BeginDefinition opens a new hidden compound entry; words are then compiled
// into its body until EndDefinition.
func (vm *VM) BeginDefinition(name string) error {
	return vm.guard("begin", func() { vm.beginDefinition(name) })
}

// EndDefinition terminates the open definition with EXIT and makes it
// visible.
func (vm *VM) EndDefinition() error {
	return vm.guard("end", vm.endDefinition)
}

// Compile appends raw cells at here.
func (vm *VM) Compile(values ...Cell) error {
	return vm.guard("compile", func() { vm.compile(values...) })
}

// CompileWord appends a reference to entry.
func (vm *VM) CompileWord(entry Cell) error {
	return vm.guard("compile", func() {
		if !vm.isEntry(entry) {
			vm.halt(BoundsError{Addr: uint(entry), Op: "entry"})
		}
		vm.compile(entry)
	})
}

// CompileLiteral appends code that pushes val when run.
func (vm *VM) CompileLiteral(val Cell) error {
	return vm.guard("compile", func() { vm.compileLiteral(val) })
}

// Compiling reports whether a definition is open.
func (vm *VM) Compiling() bool { return vm.open != 0 }

func (vm *VM) colon() { vm.beginDefinition(vm.nextToken()) }

func (vm *VM) semicolon() { vm.endDefinition() }

func (vm *VM) immediate() {
	latest := vm.load(regLatest)
	if latest == 0 {
		vm.halt(ErrNoOpenDefinition)
	}
	vm.stor(latest+fieldImmediate, 1)
}

// Control structures keep their forward references on the data stack while
// compiling: the address of an operand cell still to be patched, or the
// target of a backward branch.

func (vm *VM) compileIf() {
	vm.compileOnly("if")
	vm.compile(vm.load(regZBranch))
	vm.push(vm.here())
	vm.compile(0)
}

func (vm *VM) compileElse() {
	vm.compileOnly("else")
	vm.compile(vm.load(regBranch))
	fwd := vm.here()
	vm.compile(0)
	vm.stor(vm.pop(), vm.here())
	vm.push(fwd)
}

func (vm *VM) compileThen() {
	vm.compileOnly("then")
	vm.stor(vm.pop(), vm.here())
}

func (vm *VM) compileBegin() {
	vm.compileOnly("begin")
	vm.push(vm.here())
}

func (vm *VM) compileUntil() {
	vm.compileOnly("until")
	vm.compile(vm.load(regZBranch), vm.pop())
}

func (vm *VM) compileAgain() {
	vm.compileOnly("again")
	vm.compile(vm.load(regBranch), vm.pop())
}

func (vm *VM) recurse() {
	if vm.open == 0 {
		vm.halt(ErrNoOpenDefinition)
	}
	vm.compile(vm.open)
}

func (vm *VM) parenComment() {
	eol, err := vm.in.SkipDelimited(')')
	if err == io.EOF {
		err = ErrUnexpectedEOF
	}
	vm.haltif(err)
	vm.eol = eol
}

func (vm *VM) lineComment() { vm.haltif(vm.skipLine()) }
