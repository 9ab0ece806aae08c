package main

import "context"

// execute runs entry from the top level: a sentinel return address of 0 is
// pushed, so that the outermost return leaves ip at 0.
func (vm *VM) execute(ctx context.Context, entry Cell) {
	vm.pushr(0)
	vm.dispatch(entry)
	for vm.ip != 0 && !vm.halted {
		vm.step()
		vm.haltif(ctx.Err())
	}
}

func (vm *VM) step() {
	at := vm.ip
	if at < vm.load(regDictBase) {
		vm.halt(BoundsError{Addr: uint(at), Op: "exec"})
	}
	vm.pushr(at + 1)
	entry := vm.load(at)
	if vm.logfn != nil {
		vm.logf("exec", "@%v %v -- r:%v s:%v", at, vm.refName(entry), vm.Return(), vm.Data())
	}
	vm.dispatch(entry)
}

func (vm *VM) dispatch(entry Cell) {
	if !vm.isEntry(entry) {
		vm.halt(BoundsError{Addr: uint(entry), Op: "dispatch"})
	}
	body := vm.load(vm.codeField(entry))
	if vm.load(entry+fieldPrimitive) == 0 {
		vm.ip = body
		return
	}
	vm.callPrimitive(vm.load(body))
	if !vm.halted {
		vm.ret()
	}
}

// ret resumes at the address on top of the return stack; returning with an
// empty return stack ends the session.
func (vm *VM) ret() {
	if vm.depthOf(retStack) == 0 {
		vm.halted = true
		vm.ip = 0
		return
	}
	vm.ip = vm.popr()
}

// operand returns the address of the inline operand following the reference
// that is currently executing.
func (vm *VM) operand() Cell {
	addr := vm.peekr()
	if addr < vm.load(regDictBase) {
		vm.halt(BoundsError{Addr: uint(addr), Op: "operand"})
	}
	return addr
}

func (vm *VM) refName(entry Cell) string {
	if vm.isEntry(entry) {
		return vm.name(entry)
	}
	return "?"
}

// Execute runs the word at entry to completion.
func (vm *VM) Execute(ctx context.Context, entry Cell) error {
	return vm.session("execute", func() { vm.execute(ctx, entry) })
}
