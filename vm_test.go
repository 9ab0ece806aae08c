package main

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cellforth/cellforth/internal/fileinput"
	"github.com/cellforth/cellforth/internal/logio"
)

type vmTestCases []vmTestCase

func (vmts vmTestCases) run(t *testing.T) {
	{
		var exclusive []vmTestCase
		for _, vmt := range vmts {
			if vmt.exclusive {
				exclusive = append(exclusive, vmt)
			}
		}
		if len(exclusive) > 0 {
			vmts = exclusive
		}
	}
	for _, vmt := range vmts {
		if !t.Run(vmt.name, vmt.run) {
			return
		}
	}
}

func vmTest(name string) (vmt vmTestCase) {
	vmt.name = name
	return vmt
}

type vmTestCase struct {
	name    string
	opts    []interface{}
	setup   []func(vm *VM)
	ops     []func(vm *VM)
	expect  []func(t *testing.T, vm *VM, out string)
	timeout time.Duration
	wantErr error

	exclusive bool
}

func (vmt vmTestCase) exclusiveTest() vmTestCase {
	vmt.exclusive = true
	return vmt
}

func (vmt vmTestCase) withOptions(opts ...VMOption) vmTestCase {
	for _, opt := range opts {
		vmt.opts = append(vmt.opts, opt)
	}
	return vmt
}

func (vmt vmTestCase) withStack(values ...Cell) vmTestCase {
	vmt.setup = append(vmt.setup, func(vm *VM) {
		for _, val := range values {
			vm.push(val)
		}
	})
	return vmt
}

func (vmt vmTestCase) withMemAt(addr Cell, values ...Cell) vmTestCase {
	vmt.setup = append(vmt.setup, func(vm *VM) {
		vm.stor(addr, values...)
	})
	return vmt
}

func (vmt vmTestCase) withInput(input string) vmTestCase {
	vmt.opts = append(vmt.opts, func(t *testing.T) VMOption {
		return WithInput(fileinput.NamedReader(t.Name()+"/input", strings.NewReader(input)))
	})
	return vmt
}

func (vmt vmTestCase) do(ops ...func(vm *VM)) vmTestCase {
	vmt.ops = append(vmt.ops, ops...)
	return vmt
}

func (vmt vmTestCase) withTimeout(timeout time.Duration) vmTestCase {
	vmt.timeout = timeout
	return vmt
}

func (vmt vmTestCase) expectError(err error) vmTestCase {
	vmt.wantErr = err
	return vmt
}

func (vmt vmTestCase) expectStack(values ...Cell) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM, _ string) {
		if values == nil {
			values = []Cell{}
		}
		assert.Equal(t, values, vm.Data(), "expected stack values")
	})
	return vmt
}

func (vmt vmTestCase) expectRStack(values ...Cell) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM, _ string) {
		if values == nil {
			values = []Cell{}
		}
		assert.Equal(t, values, vm.Return(), "expected return stack values")
	})
	return vmt
}

func (vmt vmTestCase) expectMemAt(addr Cell, values ...Cell) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM, _ string) {
		for i, value := range values {
			a := addr + Cell(i)
			got, err := vm.Read(a)
			if assert.NoError(t, err, "unexpected read error @%v", a) {
				assert.Equal(t, value, got, "expected memory value @%v", a)
			}
		}
	})
	return vmt
}

// expectWord checks a dictionary entry as rendered by the dumper, e.g.
// ": double dup + exit".
func (vmt vmTestCase) expectWord(name, rendered string) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM, _ string) {
		entry, found := vm.Find(name)
		if !assert.True(t, found, "expected word %q to be defined", name) {
			return
		}
		assert.Equal(t, rendered, renderEntry(vm, entry), "expected word %q", name)
	})
	return vmt
}

func (vmt vmTestCase) expectOutput(output string) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, _ *VM, out string) {
		assert.Equal(t, output, out, "expected output")
	})
	return vmt
}

func (vmt vmTestCase) expectFaults(tokens ...string) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM, _ string) {
		var got []string
		for _, fault := range vm.Faults() {
			var unknown UnknownWordError
			if assert.True(t, errors.As(fault, &unknown), "expected unknown word fault, got %v", fault) {
				got = append(got, unknown.Token)
			}
		}
		assert.Equal(t, tokens, got, "expected faulted tokens")
	})
	return vmt
}

func (vmt vmTestCase) expectHalted() vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM, _ string) {
		assert.True(t, vm.Halted(), "expected VM to be halted")
	})
	return vmt
}

func (vmt vmTestCase) run(t *testing.T) {
	defer func(then time.Time) {
		label := "PASS"
		if t.Failed() {
			label = "FAIL"
		}
		t.Logf("%v\t%v\t%v", label, t.Name(), time.Since(then))
	}(time.Now())

	if testFails(func(ft *testing.T) {
		vm, out := vmt.buildVM(ft, t)
		vmt.runVMTest(context.Background(), ft, vm, out)
	}) {
		vm, out := vmt.buildVM(t, t, WithLogf(t.Logf))
		vmt.runVMTest(context.Background(), t, vm, out)
	}
}

func (vmt vmTestCase) runVMTest(ctx context.Context, t *testing.T, vm *VM, out *strings.Builder) {
	if vm == nil {
		return
	}
	const defaultTimeout = time.Second
	timeout := vmt.timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if t.Failed() {
			dumpToTest(t, vm)
		}
	}()

	if err := vmt.runVM(ctx, vm); vmt.wantErr != nil {
		assert.True(t, errors.Is(err, vmt.wantErr), "expected error: %v\ngot: %+v", vmt.wantErr, err)
	} else {
		assert.NoError(t, err, "unexpected VM run error")
	}

	if !t.Failed() {
		for _, expect := range vmt.expect {
			expect(t, vm, out.String())
		}
	}
}

func (vmt vmTestCase) runVM(ctx context.Context, vm *VM) (rerr error) {
	defer func() {
		if err := vm.Close(); err != nil && rerr == nil {
			rerr = fmt.Errorf("vm.Close failed: %w", err)
		}
	}()

	if len(vmt.ops) == 0 {
		return vm.Run(ctx)
	}

	names := make([]string, len(vmt.ops))
	for i, op := range vmt.ops {
		names[i] = runtime.FuncForPC(reflect.ValueOf(op).Pointer()).Name()
	}
	return vm.session("vmTestCase.ops", func() {
		for i, op := range vmt.ops {
			vm.logf(">", "do[%v] %v", i, names[i])
			op(vm)
			vm.haltif(ctx.Err())
		}
	})
}

// buildVM constructs the VM under test, reporting construction failures to
// report rather than to t, which may be a probe.
func (vmt vmTestCase) buildVM(t, report *testing.T, extra ...VMOption) (*VM, *strings.Builder) {
	out := &strings.Builder{}
	opts := []VMOption{WithOutput(out)}
	for _, o := range vmt.opts {
		switch impl := o.(type) {
		case func(t *testing.T) VMOption:
			opts = append(opts, impl(report))
		case VMOption:
			opts = append(opts, impl)
		default:
			t.Errorf("unsupported vmTestCase opt type %T", o)
			return nil, out
		}
	}
	opts = append(opts, extra...)

	vm, err := New(opts...)
	if !assert.NoError(t, err, "unexpected New error") {
		return nil, out
	}
	for _, setup := range vmt.setup {
		require.NoError(t, vm.guard("setup", func() { setup(vm) }), "unexpected setup error")
	}
	return vm, out
}

func newTestVM(t *testing.T, opts ...VMOption) *VM {
	vm, err := New(append([]VMOption{WithLogf(t.Logf)}, opts...)...)
	require.NoError(t, err, "unexpected New error")
	t.Cleanup(func() {
		if t.Failed() {
			dumpToTest(t, vm)
		}
		vm.Close()
	})
	return vm
}

func interpretAll(ctx context.Context, vm *VM, tokens ...string) error {
	for _, token := range tokens {
		if err := vm.InterpretWord(ctx, token); err != nil {
			return fmt.Errorf("%q: %w", token, err)
		}
	}
	return nil
}

func renderEntry(vm *VM, entry Cell) (s string) {
	var buf strings.Builder
	if err := catch("render", func() {
		dump := vmDumper{vm: vm}
		dump.words = vm.entries()
		reverseCells(dump.words)
		end := vm.here()
		for _, e := range dump.words {
			if e > entry {
				end = e
				break
			}
		}
		dump.formatEntry(&buf, entry, end)
	}); err != nil {
		return err.Error()
	}
	return buf.String()
}

func reverseCells(cells []Cell) {
	for i, j := 0, len(cells)-1; i < j; i, j = i+1, j-1 {
		cells[i], cells[j] = cells[j], cells[i]
	}
}

func dumpToTest(t *testing.T, vm *VM) {
	lw := logio.Writer{Logf: t.Logf, Prefix: "dump: "}
	defer lw.Close()
	vm.Dump(&lw)
}

//// utilities

func testFails(fn func(t *testing.T)) bool {
	var fakeT testing.T
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn(&fakeT)
	}()
	<-done
	return fakeT.Failed()
}

func lines(parts ...string) string {
	return strings.Join(parts, "\n") + "\n"
}

func cells(values ...int) []Cell {
	res := make([]Cell, len(values))
	for i, val := range values {
		res[i] = Cell(val)
	}
	return res
}
