package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVM_dictionary(t *testing.T) {
	t.Run("shadowing", func(t *testing.T) {
		vm := newTestVM(t)
		older, err := vm.Define("x", false, false, 0)
		require.NoError(t, err)
		newer, err := vm.Define("x", false, false, 0)
		require.NoError(t, err)
		assert.Greater(t, newer, older)

		found, ok := vm.Find("x")
		assert.True(t, ok)
		assert.Equal(t, newer, found, "expected the newest entry")

		require.NoError(t, vm.Hide(newer))
		found, _ = vm.Find("x")
		assert.Equal(t, older, found, "expected the older entry once the newer is hidden")

		require.NoError(t, vm.Unhide(newer))
		found, _ = vm.Find("x")
		assert.Equal(t, newer, found, "expected the newer entry once unhidden")
	})

	t.Run("hidden", func(t *testing.T) {
		vm := newTestVM(t)
		entry, err := vm.Define("h", true, false, 0)
		require.NoError(t, err)
		_, found := vm.Find("h")
		assert.False(t, found, "expected hidden entry to be skipped")
		require.NoError(t, vm.Unhide(entry))
		_, found = vm.Find("h")
		assert.True(t, found)
	})

	t.Run("exact names", func(t *testing.T) {
		vm := newTestVM(t)
		_, found := vm.Find("dup")
		assert.True(t, found)
		for _, name := range []string{"DUP", "du", "dupe", ""} {
			_, found := vm.Find(name)
			assert.False(t, found, "expected no match for %q", name)
		}

		entry, err := vm.Define("→λ", false, false, 0)
		require.NoError(t, err)
		found2, ok := vm.Find("→λ")
		assert.True(t, ok)
		assert.Equal(t, entry, found2)
		name, err := vm.Name(entry)
		require.NoError(t, err)
		assert.Equal(t, "→λ", name)
	})

	t.Run("invalid name", func(t *testing.T) {
		vm := newTestVM(t)
		latest, _ := vm.Read(regLatest)
		_, err := vm.Define("", false, false, 0)
		assert.True(t, errors.Is(err, ErrInvalidName), "expected invalid name, got %v", err)
		after, _ := vm.Read(regLatest)
		assert.Equal(t, latest, after, "expected dictionary to be unchanged")
		assert.False(t, vm.Halted(), "expected API faults to not halt the VM")
	})

	t.Run("no room", func(t *testing.T) {
		vm := newTestVM(t, WithCapacity(2048))
		here, _ := vm.Read(regHere)
		_, err := vm.Define(string(make([]rune, 2048)), false, false, 0)
		assert.True(t, errors.Is(err, ErrOutOfBounds), "expected out of bounds, got %v", err)
		after, _ := vm.Read(regHere)
		assert.Equal(t, here, after, "expected nothing to be compiled")
	})

	t.Run("words", func(t *testing.T) {
		vm := newTestVM(t)
		words := vm.Words()
		require.Len(t, words, len(builtins))
		assert.Equal(t, "exit", words[len(words)-1])

		_, err := vm.Define("zzz", false, false, 0)
		require.NoError(t, err)
		_, err = vm.Define("secret", true, false, 0)
		require.NoError(t, err)
		words = vm.Words()
		assert.Equal(t, "zzz", words[0], "expected newest first")
		assert.NotContains(t, words, "secret")
	})

	t.Run("define with code", func(t *testing.T) {
		vm := newTestVM(t)
		double, err := vm.Define("double", false, false, 0)
		require.NoError(t, err)
		dup, _ := vm.Find("dup")
		add, _ := vm.Find("+")
		exit, _ := vm.Find("exit")
		require.NoError(t, vm.Compile(dup, add, exit))

		// an alias sharing the body of double
		body, err := vm.Read(vm.codeField(double))
		require.NoError(t, err)
		_, err = vm.Define("twice", false, false, body)
		require.NoError(t, err)

		require.NoError(t, interpretAll(context.Background(), vm, "4", "twice"))
		assert.Equal(t, []Cell{8}, vm.Data())
	})
}

func TestVM_definitionShadowing(t *testing.T) {
	vmTestCases{
		vmTest("redefinition").withInput(": x 1 ; : x 2 ; x").expectStack(2),
		vmTest("redefinition refers to prior").withInput(": x 1 ; : x x 1+ ; x").expectStack(2),
		vmTest("builtin shadowed").withInput(": dup 7 ; 1 dup").expectStack(1, 7),
		vmTest("not visible while open").withInput(": fact fact ;").
			expectFaults("fact").
			expectOutput("fact ?\n"),
	}.run(t)
}
