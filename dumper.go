package main

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// Dump writes a human readable rendition of the VM: registers, stacks, and
// the dictionary with compound bodies decoded.
func (vm *VM) Dump(w io.Writer) error {
	return catch("dump", func() {
		dump := vmDumper{vm: vm, out: w}
		dump.dump()
	})
}

type fmtBuf interface {
	Len() int
	Write(p []byte) (n int, err error)
	WriteByte(c byte) error
	WriteRune(r rune) (n int, err error)
	WriteString(s string) (n int, err error)
}

// lineBuffer writes complete lines, adding the final line feed.
type lineBuffer struct{ bytes.Buffer }

func (buf *lineBuffer) WriteTo(w io.Writer) (int64, error) {
	buf.WriteByte('\n')
	return buf.Buffer.WriteTo(w)
}

type vmDumper struct {
	vm  *VM
	out io.Writer

	addrWidth int
	words     []Cell // ascending
}

func (dump *vmDumper) dump() {
	vm := dump.vm
	fmt.Fprintf(dump.out, "# VM Dump\n")
	fmt.Fprintf(dump.out, "  ip: %v\n", vm.ip)
	if vm.open != 0 {
		fmt.Fprintf(dump.out, "  open: %v\n", vm.name(vm.open))
	}
	if vm.halted {
		fmt.Fprintf(dump.out, "  halted\n")
	}
	if vm.err != nil {
		fmt.Fprintf(dump.out, "  error: %v\n", vm.err)
	}
	if vm.imageID != "" {
		fmt.Fprintf(dump.out, "  image: %v\n", vm.imageID)
	}

	dump.addrWidth = len(strconv.FormatUint(uint64(vm.mem.Capacity), 10))
	dump.dumpRegisters()
	fmt.Fprintf(dump.out, "  data: %v\n", vm.valuesOf(dataStack))
	fmt.Fprintf(dump.out, "  return: %v\n", vm.valuesOf(retStack))
	dump.dumpDict()
}

func (dump *vmDumper) dumpRegisters() {
	fmt.Fprintf(dump.out, "# Registers\n")
	for addr, name := range regNames {
		if name != "" {
			fmt.Fprintf(dump.out, "  @% *v %v %v\n", dump.addrWidth, addr, dump.vm.load(Cell(addr)), name)
		}
	}
}

func (dump *vmDumper) dumpDict() {
	vm := dump.vm
	fmt.Fprintf(dump.out, "# Dictionary @%v\n", vm.load(regDictBase))

	dump.words = vm.entries()
	sort.Slice(dump.words, func(i, j int) bool { return dump.words[i] < dump.words[j] })

	var buf lineBuffer
	for i, entry := range dump.words {
		end := vm.here()
		if i+1 < len(dump.words) {
			end = dump.words[i+1]
		}
		fmt.Fprintf(&buf, "  @% *v ", dump.addrWidth, entry)
		dump.formatEntry(&buf, entry, end)
		buf.WriteTo(dump.out)
	}
	fmt.Fprintf(dump.out, "  here: %v\n", vm.here())
}

func (dump *vmDumper) formatEntry(buf fmtBuf, entry, end Cell) {
	vm := dump.vm
	buf.WriteString(": ")
	buf.WriteString(vm.name(entry))

	code := vm.codeField(entry)
	body := vm.load(code)
	if vm.load(entry+fieldPrimitive) != 0 {
		index := vm.load(body)
		fmt.Fprintf(buf, " primitive(%v %q)", index, vm.primName(index))
	} else {
		for addr := body; addr < end; {
			buf.WriteByte(' ')
			addr = dump.formatCode(buf, addr, end)
		}
	}
	if vm.load(entry+fieldImmediate) != 0 {
		buf.WriteString(" immediate")
	}
	if vm.load(entry+fieldHidden) != 0 {
		buf.WriteString(" hidden")
	}
}

func (dump *vmDumper) formatCode(buf fmtBuf, addr, end Cell) Cell {
	vm := dump.vm
	ref := vm.load(addr)
	addr++

	i := sort.Search(len(dump.words), func(i int) bool { return dump.words[i] >= ref })
	if i >= len(dump.words) || dump.words[i] != ref {
		buf.WriteString(strconv.FormatUint(uint64(ref), 10))
		return addr
	}

	buf.WriteString(vm.name(ref))
	switch ref {
	case vm.load(regLit):
		if addr < end {
			fmt.Fprintf(buf, "(%d)", int32(vm.load(addr)))
			addr++
		}
	case vm.load(regBranch), vm.load(regZBranch):
		if addr < end {
			fmt.Fprintf(buf, "(@%v)", vm.load(addr))
			addr++
		}
	}
	return addr
}
