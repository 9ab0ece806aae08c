package main

// stackRegs names the registers describing one stack region.
type stackRegs struct {
	name string
	base Cell
	size Cell
	top  Cell
}

var (
	dataStack = stackRegs{"data", regDataBase, regDataSize, regSP}
	retStack  = stackRegs{"return", regRetBase, regRetSize, regRP}
)

func (vm *VM) bounds(s stackRegs) (base, size, top Cell) {
	return vm.load(s.base), vm.load(s.size), vm.load(s.top)
}

func (vm *VM) pushOn(s stackRegs, val Cell) {
	base, size, top := vm.bounds(s)
	switch next := top + 1; {
	case next < base:
		vm.halt(StackError{s.name, ErrStackUnderflow})
	case next >= base+size:
		vm.halt(StackError{s.name, ErrStackOverflow})
	default:
		vm.stor(next, val)
		vm.stor(s.top, next)
	}
}

func (vm *VM) popFrom(s stackRegs) Cell {
	base, size, top := vm.bounds(s)
	switch {
	case top < base:
		vm.halt(StackError{s.name, ErrStackUnderflow})
	case top >= base+size:
		vm.halt(StackError{s.name, ErrStackOverflow})
	}
	val := vm.load(top)
	vm.stor(s.top, top-1)
	return val
}

func (vm *VM) peekOn(s stackRegs) Cell {
	base, size, top := vm.bounds(s)
	switch {
	case top < base:
		vm.halt(StackError{s.name, ErrStackUnderflow})
	case top >= base+size:
		vm.halt(StackError{s.name, ErrStackOverflow})
	}
	return vm.load(top)
}

func (vm *VM) depthOf(s stackRegs) Cell {
	base, _, top := vm.bounds(s)
	if top+1 < base {
		return 0
	}
	return top + 1 - base
}

func (vm *VM) valuesOf(s stackRegs) []Cell {
	base, size, top := vm.bounds(s)
	if top >= base+size {
		top = base + size - 1
	}
	values := []Cell{}
	if top+1 > base {
		values = make([]Cell, top+1-base)
		vm.loadInto(base, values)
	}
	return values
}

func (vm *VM) push(val Cell)  { vm.pushOn(dataStack, val) }
func (vm *VM) pop() Cell      { return vm.popFrom(dataStack) }
func (vm *VM) pushr(val Cell) { vm.pushOn(retStack, val) }
func (vm *VM) popr() Cell     { return vm.popFrom(retStack) }
func (vm *VM) peekr() Cell    { return vm.peekOn(retStack) }

func (vm *VM) pokeR(val Cell) {
	top := vm.load(regRP)
	if top < vm.load(regRetBase) {
		vm.halt(StackError{retStack.name, ErrStackUnderflow})
	}
	vm.stor(top, val)
}

// Push pushes a value onto the data stack, halting the VM on overflow.
// For use by primitives.
func (vm *VM) Push(val Cell) { vm.push(val) }

// Pop pops a value from the data stack, halting the VM on underflow.
// For use by primitives.
func (vm *VM) Pop() Cell { return vm.pop() }

// PushData pushes val onto the data stack.
func (vm *VM) PushData(val Cell) error {
	return vm.guard("push", func() { vm.push(val) })
}

// PopData pops the top of the data stack.
func (vm *VM) PopData() (val Cell, err error) {
	err = vm.guard("pop", func() { val = vm.pop() })
	return val, err
}

// PushReturn pushes val onto the return stack.
func (vm *VM) PushReturn(val Cell) error {
	return vm.guard("pushr", func() { vm.pushr(val) })
}

// PopReturn pops the top of the return stack.
func (vm *VM) PopReturn() (val Cell, err error) {
	err = vm.guard("popr", func() { val = vm.popr() })
	return val, err
}

// Data returns a copy of the data stack, bottom first.
func (vm *VM) Data() []Cell { return vm.stackValues(dataStack) }

// Return returns a copy of the return stack, bottom first.
func (vm *VM) Return() []Cell { return vm.stackValues(retStack) }

func (vm *VM) stackValues(s stackRegs) (values []Cell) {
	if err := catch(s.name, func() { values = vm.valuesOf(s) }); err != nil {
		return nil
	}
	return values
}
