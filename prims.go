package main

// PrimitiveFunc implements a primitive word. It operates on the VM through
// its halting accessors like Push and Pop.
type PrimitiveFunc func(vm *VM)

type primitive struct {
	name string
	fn   PrimitiveFunc
}

type primitiveDef struct {
	name      string
	immediate bool
	fn        PrimitiveFunc
}

// Register appends fn to the primitive table, returning its index. The name
// is used by dumps and to verify images; it is not linked into the
// dictionary, see DefinePrimitive.
func (vm *VM) Register(name string, fn PrimitiveFunc) Cell {
	vm.prims = append(vm.prims, primitive{name, fn})
	return Cell(len(vm.prims) - 1)
}

// DefinePrimitive registers fn and links a dictionary entry that runs it.
func (vm *VM) DefinePrimitive(name string, immediate bool, fn PrimitiveFunc) (entry Cell, err error) {
	err = vm.guard("define", func() {
		entry = vm.definePrimitive(name, immediate, vm.Register(name, fn))
	})
	return entry, err
}

func (vm *VM) definePrimitive(name string, immediate bool, index Cell) Cell {
	entry := vm.define(name, false, immediate, true, 0)
	vm.compile(index)
	return entry
}

func (vm *VM) callPrimitive(index Cell) {
	if uint(index) >= uint(len(vm.prims)) {
		vm.halt(PrimitiveError{index})
	}
	vm.prims[index].fn(vm)
}

func (vm *VM) primName(index Cell) string {
	if uint(index) < uint(len(vm.prims)) {
		return vm.prims[index].name
	}
	return ""
}
