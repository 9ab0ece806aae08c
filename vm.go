package main

import (
	"errors"
	"fmt"

	"github.com/cellforth/cellforth/internal/mem"
)

// Cell is the machine word: every register, stack slot, dictionary field and
// code reference is one Cell.
type Cell = mem.Cell

// Register cells at the bottom of the arena.
const (
	regHere     = 1
	regLatest   = 2
	regSP       = 3
	regRP       = 4
	regState    = 5
	regExit     = 6
	regLit      = 7
	regDataBase = 8
	regDataSize = 9
	regRetBase  = 10
	regRetSize  = 11
	regDictBase = 12
	regBranch   = 13
	regZBranch  = 14

	numRegs = 16
)

var regNames = [numRegs]string{
	regHere:     "here",
	regLatest:   "latest",
	regSP:       "sp",
	regRP:       "rp",
	regState:    "state",
	regExit:     "exit",
	regLit:      "lit",
	regDataBase: "dataBase",
	regDataSize: "dataSize",
	regRetBase:  "retBase",
	regRetSize:  "retSize",
	regDictBase: "dictBase",
	regBranch:   "branch",
	regZBranch:  "0branch",
}

// Default memory layout.
const (
	DefaultCapacity    = 1 << 16
	DefaultDataStack   = 256
	DefaultReturnStack = 256
)

// VM is an indirect threaded code machine over a fixed capacity cell arena.
// The arena holds the registers, both stacks, and the dictionary.
type VM struct {
	ioCore

	mem mem.Cells

	ip     Cell // next code cell to fetch, 0 when idle
	open   Cell // entry being compiled, 0 when interpreting
	halted bool
	err    error // sticky fatal fault

	dataSize, retSize Cell

	prims   []primitive
	extra   []primitiveDef
	parsers []LiteralParser
	image   []byte
	imageID string
	faults  []error
}

func (vm *VM) load(addr Cell) Cell {
	val, err := vm.mem.Load(uint(addr))
	if err != nil {
		vm.halt(boundsError(err))
	}
	return val
}

func (vm *VM) loadInto(addr Cell, buf []Cell) {
	if err := vm.mem.LoadInto(uint(addr), buf); err != nil {
		vm.halt(boundsError(err))
	}
}

func (vm *VM) stor(addr Cell, values ...Cell) {
	if addr == 0 && len(values) > 0 {
		vm.halt(BoundsError{Addr: 0, Op: "stor"})
	}
	if err := vm.mem.Stor(uint(addr), values...); err != nil {
		vm.halt(boundsError(err))
	}
}

// Load reads an arena cell, halting the VM if addr is out of bounds.
// For use by primitives.
func (vm *VM) Load(addr Cell) Cell { return vm.load(addr) }

// Stor writes arena cells, halting the VM if any is out of bounds.
// For use by primitives.
func (vm *VM) Stor(addr Cell, values ...Cell) { vm.stor(addr, values...) }

// Read returns the arena cell at addr.
func (vm *VM) Read(addr Cell) (val Cell, err error) {
	err = vm.guard("read", func() { val = vm.load(addr) })
	return val, err
}

// Write stores val into the arena cell at addr. Cell 0 is reserved.
func (vm *VM) Write(addr, val Cell) error {
	return vm.guard("write", func() { vm.stor(addr, val) })
}

// Capacity returns the number of cells in the arena.
func (vm *VM) Capacity() uint { return vm.mem.Capacity }

// Halted reports whether the session has ended, either normally or due to a
// fatal fault.
func (vm *VM) Halted() bool { return vm.halted || vm.err != nil }

// Err returns the fatal fault that ended the session, if any.
func (vm *VM) Err() error { return vm.err }

// Faults returns the recoverable faults reported by Run so far.
func (vm *VM) Faults() []error { return vm.faults }

// guard runs f, returning any fault it halted with. Faults caught by guard do
// not end the session; see session.
func (vm *VM) guard(name string, f func()) error {
	if vm.err != nil {
		return vm.err
	}
	return catch(name, f)
}

// session runs f as part of program execution: faults other than unknown
// words are fatal and sticky.
func (vm *VM) session(name string, f func()) error {
	if vm.err != nil {
		return vm.err
	}
	if vm.halted {
		return ErrHalted
	}
	err := catch(name, f)
	if err != nil && !errors.Is(err, ErrUnknownWord) {
		vm.err = err
		vm.ip = 0
	}
	return err
}

// layout initializes the registers of an empty arena.
func (vm *VM) layout() {
	capacity := uint64(vm.mem.Capacity)
	if uint64(numRegs)+uint64(vm.dataSize)+uint64(vm.retSize) >= capacity {
		vm.halt(fmt.Errorf("%w: %v cell arena has no room for a dictionary after %v+%v stack cells",
			ErrOutOfBounds, capacity, vm.dataSize, vm.retSize))
	}
	dataBase := Cell(numRegs)
	retBase := dataBase + vm.dataSize
	dictBase := retBase + vm.retSize
	vm.stor(regHere, dictBase, 0, dataBase-1, retBase-1, 0)
	vm.stor(regDataBase, dataBase, vm.dataSize, retBase, vm.retSize, dictBase)
}
