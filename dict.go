package main

import "fmt"

// Dictionary entry header fields, relative to the entry offset. The name
// length cell is followed by one cell per rune, then by the code field.
const (
	fieldNext = iota
	fieldHidden
	fieldImmediate
	fieldPrimitive
	fieldName
)

func (vm *VM) here() Cell { return vm.load(regHere) }

// reserve halts unless n more cells fit at here.
func (vm *VM) reserve(n Cell) {
	here := vm.here()
	if end := here + n; end < here || uint(end) > vm.mem.Capacity {
		vm.halt(BoundsError{Addr: uint(here) + uint(n) - 1, Op: "compile"})
	}
}

func (vm *VM) compile(values ...Cell) {
	here := vm.here()
	vm.reserve(Cell(len(values)))
	vm.stor(here, values...)
	vm.stor(regHere, here+Cell(len(values)))
}

func (vm *VM) codeField(entry Cell) Cell {
	return entry + fieldName + 1 + vm.load(entry+fieldName)
}

// define links a new entry at here; a zero code points just past the code
// field, where the caller compiles the body.
func (vm *VM) define(name string, hidden, immediate, primitive bool, code Cell) Cell {
	if name == "" {
		vm.halt(fmt.Errorf("%w: empty name", ErrInvalidName))
	}
	runes := []rune(name)
	vm.reserve(fieldName + 1 + Cell(len(runes)) + 1)

	entry := vm.here()
	vm.compile(
		vm.load(regLatest),
		boolCell(hidden),
		boolCell(immediate),
		boolCell(primitive),
		Cell(len(runes)))
	for _, r := range runes {
		vm.compile(Cell(r))
	}
	if code == 0 {
		code = vm.here() + 1
	}
	vm.compile(code)
	vm.stor(regLatest, entry)
	vm.logf("def", "@%v %q", entry, name)
	return entry
}

func (vm *VM) find(name string) Cell {
	runes := []rune(name)
	for entry := vm.load(regLatest); entry != 0; entry = vm.load(entry + fieldNext) {
		if vm.load(entry+fieldHidden) == 0 && vm.nameIs(entry, runes) {
			return entry
		}
	}
	return 0
}

func (vm *VM) nameIs(entry Cell, runes []rune) bool {
	if vm.load(entry+fieldName) != Cell(len(runes)) {
		return false
	}
	for i, r := range runes {
		if vm.load(entry+fieldName+1+Cell(i)) != Cell(r) {
			return false
		}
	}
	return true
}

func (vm *VM) name(entry Cell) string {
	n := vm.load(entry + fieldName)
	buf := make([]Cell, n)
	vm.loadInto(entry+fieldName+1, buf)
	runes := make([]rune, n)
	for i, c := range buf {
		runes[i] = rune(c)
	}
	return string(runes)
}

// entries returns every linked entry, newest first.
func (vm *VM) entries() (entries []Cell) {
	for entry := vm.load(regLatest); entry != 0; entry = vm.load(entry + fieldNext) {
		entries = append(entries, entry)
	}
	return entries
}

func (vm *VM) isEntry(entry Cell) bool {
	return entry >= vm.load(regDictBase) && entry < vm.here()
}

// Define prepends a compound entry to the dictionary and returns its offset.
// A zero code makes the body start right after the header, so that it can be
// filled with Compile.
func (vm *VM) Define(name string, hidden, immediate bool, code Cell) (entry Cell, err error) {
	err = vm.guard("define", func() { entry = vm.define(name, hidden, immediate, false, code) })
	return entry, err
}

// Find returns the newest visible entry named name.
func (vm *VM) Find(name string) (entry Cell, found bool) {
	vm.guard("find", func() { entry = vm.find(name) })
	return entry, entry != 0
}

// Name returns the name of the entry at entry.
func (vm *VM) Name(entry Cell) (name string, err error) {
	err = vm.guard("name", func() { name = vm.name(entry) })
	return name, err
}

// Hide makes an entry invisible to Find.
func (vm *VM) Hide(entry Cell) error { return vm.setFlag(entry, fieldHidden, true) }

// Unhide makes an entry visible to Find again.
func (vm *VM) Unhide(entry Cell) error { return vm.setFlag(entry, fieldHidden, false) }

func (vm *VM) setFlag(entry, field Cell, set bool) error {
	return vm.guard("flag", func() {
		if !vm.isEntry(entry) {
			vm.halt(BoundsError{Addr: uint(entry), Op: "entry"})
		}
		vm.stor(entry+field, boolCell(set))
	})
}

// Words returns the names of all visible entries, newest first.
func (vm *VM) Words() (names []string) {
	vm.guard("words", func() { names = vm.words() })
	return names
}

func (vm *VM) words() (names []string) {
	for _, entry := range vm.entries() {
		if vm.load(entry+fieldHidden) == 0 {
			names = append(names, vm.name(entry))
		}
	}
	return names
}
