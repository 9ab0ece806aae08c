package main

import (
	"fmt"
	"strings"
)

type builtin struct {
	name      string
	immediate bool
	fn        PrimitiveFunc
}

// builtins is the bootstrap primitive table; indices are stable, since they
// are stored in primitive bodies and saved images.
var builtins []builtin

func init() {
	builtins = []builtin{
		{"exit", false, (*VM).exit},
		{"lit", false, (*VM).lit},
		{"dup", false, (*VM).dup},
		{"drop", false, (*VM).drop},
		{"+", false, (*VM).add},
		{"-", false, (*VM).sub},
		{"!", false, (*VM).store},
		{"@", false, (*VM).fetch},

		{"swap", false, (*VM).swap},
		{"over", false, (*VM).over},
		{"rot", false, (*VM).rot},
		{"*", false, (*VM).mul},
		{"/", false, (*VM).div},
		{"mod", false, (*VM).mod},
		{"<0", false, (*VM).less0},
		{"=", false, (*VM).equal},
		{"1+", false, (*VM).inc},
		{"nop", false, (*VM).nop},
		{">r", false, (*VM).toR},
		{"r>", false, (*VM).fromR},
		{"r@", false, (*VM).rFetch},
		{"depth", false, (*VM).depth},
		{"rdepth", false, (*VM).rdepth},
		{"emit", false, (*VM).emit},
		{".", false, (*VM).dot},
		{"cr", false, (*VM).cr},
		{"here", false, (*VM).pushHere},
		{",", false, (*VM).comma},
		{"allot", false, (*VM).allot},
		{"words", false, (*VM).printWords},
		{"bye", false, (*VM).bye},
		{"branch", false, (*VM).branch},
		{"0branch", false, (*VM).zbranch},

		{":", true, (*VM).colon},
		{";", true, (*VM).semicolon},
		{"immediate", true, (*VM).immediate},
		{"if", true, (*VM).compileIf},
		{"else", true, (*VM).compileElse},
		{"then", true, (*VM).compileThen},
		{"begin", true, (*VM).compileBegin},
		{"until", true, (*VM).compileUntil},
		{"again", true, (*VM).compileAgain},
		{"recurse", true, (*VM).recurse},
		{"(", true, (*VM).parenComment},
		{"\\", true, (*VM).lineComment},
	}
}

// bootstrap links an entry for every builtin and records the entries that
// the compiler refers to in the registers.
func (vm *VM) bootstrap() {
	for i, b := range builtins {
		entry := vm.definePrimitive(b.name, b.immediate, Cell(i))
		switch b.name {
		case "exit":
			vm.stor(regExit, entry)
		case "lit":
			vm.stor(regLit, entry)
		case "branch":
			vm.stor(regBranch, entry)
		case "0branch":
			vm.stor(regZBranch, entry)
		}
	}
}

func (vm *VM) exit() { vm.ret() }

func (vm *VM) lit() {
	addr := vm.operand()
	vm.push(vm.load(addr))
	vm.pokeR(addr + 1)
}

func (vm *VM) dup() {
	a := vm.pop()
	vm.push(a)
	vm.push(a)
}

func (vm *VM) drop() { vm.pop() }

func (vm *VM) add() {
	b, a := vm.pop(), vm.pop()
	vm.push(a + b)
}

func (vm *VM) sub() {
	b, a := vm.pop(), vm.pop()
	vm.push(a - b)
}

// ( val addr -- )
func (vm *VM) store() {
	addr, val := vm.pop(), vm.pop()
	vm.stor(addr, val)
}

func (vm *VM) fetch() { vm.push(vm.load(vm.pop())) }

func (vm *VM) swap() {
	b, a := vm.pop(), vm.pop()
	vm.push(b)
	vm.push(a)
}

func (vm *VM) over() {
	b, a := vm.pop(), vm.pop()
	vm.push(a)
	vm.push(b)
	vm.push(a)
}

// ( a b c -- b c a )
func (vm *VM) rot() {
	c, b, a := vm.pop(), vm.pop(), vm.pop()
	vm.push(b)
	vm.push(c)
	vm.push(a)
}

func (vm *VM) mul() {
	b, a := vm.pop(), vm.pop()
	vm.push(a * b)
}

// Division is signed, truncating toward zero.
func (vm *VM) div() {
	b, a := int32(vm.pop()), int32(vm.pop())
	if b == 0 {
		vm.halt(ErrDivideByZero)
	}
	vm.push(Cell(a / b))
}

func (vm *VM) mod() {
	b, a := int32(vm.pop()), int32(vm.pop())
	if b == 0 {
		vm.halt(ErrDivideByZero)
	}
	vm.push(Cell(a % b))
}

func (vm *VM) less0() { vm.push(boolCell(int32(vm.pop()) < 0)) }

func (vm *VM) equal() {
	b, a := vm.pop(), vm.pop()
	vm.push(boolCell(a == b))
}

func (vm *VM) inc() { vm.push(vm.pop() + 1) }

func (vm *VM) nop() {}

// The return stack words work beneath their own resume address, which is on
// top of the return stack while they run.

func (vm *VM) toR() {
	resume := vm.popr()
	vm.pushr(vm.pop())
	vm.pushr(resume)
}

func (vm *VM) fromR() {
	resume := vm.popr()
	val := vm.popr()
	vm.pushr(resume)
	vm.push(val)
}

func (vm *VM) rFetch() {
	resume := vm.popr()
	val := vm.peekr()
	vm.pushr(resume)
	vm.push(val)
}

func (vm *VM) depth() { vm.push(vm.depthOf(dataStack)) }

// rdepth does not count its own resume address.
func (vm *VM) rdepth() { vm.push(vm.depthOf(retStack) - 1) }

func (vm *VM) emit() { vm.writeRune(rune(vm.pop())) }

func (vm *VM) dot() { vm.writeString(fmt.Sprintf("%d ", int32(vm.pop()))) }

func (vm *VM) cr() { vm.writeRune('\n') }

func (vm *VM) pushHere() { vm.push(vm.here()) }

func (vm *VM) comma() { vm.compile(vm.pop()) }

func (vm *VM) allot() {
	n := vm.pop()
	vm.reserve(n)
	vm.stor(regHere, vm.here()+n)
}

func (vm *VM) printWords() {
	vm.writeString(strings.Join(vm.words(), " "))
	vm.writeRune('\n')
}

func (vm *VM) bye() { vm.halted = true }

func (vm *VM) branch() { vm.pokeR(vm.load(vm.operand())) }

func (vm *VM) zbranch() {
	flag, addr := vm.pop(), vm.operand()
	if flag == 0 {
		vm.pokeR(vm.load(addr))
	} else {
		vm.pokeR(addr + 1)
	}
}
