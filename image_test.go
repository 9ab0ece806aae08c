package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVM_image(t *testing.T) {
	ctx := context.Background()

	var saved bytes.Buffer
	{
		vm := newTestVM(t, WithInput(strings.NewReader(": double dup + ;")))
		require.NoError(t, vm.Run(ctx))
		require.NoError(t, vm.SaveImage(&saved))
	}

	img, err := ReadImage(bytes.NewReader(saved.Bytes()))
	require.NoError(t, err)
	_, err = uuid.Parse(img.ID)
	assert.NoError(t, err, "expected a uuid image id")
	assert.Empty(t, img.Parent)
	assert.Equal(t, uint(DefaultCapacity), img.Capacity)
	require.Len(t, img.Primitives, len(builtins))
	assert.Equal(t, "exit", img.Primitives[0])
	assert.Equal(t, "lit", img.Primitives[1])

	var out strings.Builder
	vm := newTestVM(t,
		WithImage(bytes.NewReader(saved.Bytes())),
		WithInput(strings.NewReader("5 double .")),
		WithOutput(&out))
	require.NoError(t, vm.Run(ctx))
	assert.Equal(t, "10 ", out.String())
	assert.Equal(t, img.ID, vm.imageID)

	var resaved bytes.Buffer
	require.NoError(t, vm.SaveImage(&resaved))
	img2, err := ReadImage(&resaved)
	require.NoError(t, err)
	assert.NotEqual(t, img.ID, img2.ID, "expected every save to get a new id")
	assert.Equal(t, img.ID, img2.Parent)
}

func TestVM_imageCanonical(t *testing.T) {
	vm := newTestVM(t)
	img := vm.Snapshot()
	a, err := imageEncMode.Marshal(img)
	require.NoError(t, err)
	b, err := imageEncMode.Marshal(img)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestVM_LoadImage(t *testing.T) {
	ctx := context.Background()

	var saved bytes.Buffer
	src := newTestVM(t, WithStackSizes(8, 8))
	require.NoError(t, interpretAll(ctx, src, "1", "2"))
	require.NoError(t, src.SaveImage(&saved))

	vm := newTestVM(t)
	require.NoError(t, vm.LoadImage(&saved))
	assert.Equal(t, []Cell{1, 2}, vm.Data(), "expected stacks to be restored")
	require.NoError(t, vm.InterpretWord(ctx, "+"))
	assert.Equal(t, []Cell{3}, vm.Data())
	dataSize, _ := vm.Read(regDataSize)
	assert.Equal(t, Cell(8), dataSize, "expected the saved layout")
	assert.Equal(t, Cell(8), vm.dataSize)
}

func TestVM_imageMismatch(t *testing.T) {
	saveWith := func(t *testing.T, opts ...VMOption) []byte {
		var buf bytes.Buffer
		vm := newTestVM(t, opts...)
		require.NoError(t, vm.SaveImage(&buf))
		return buf.Bytes()
	}
	nop := func(vm *VM) {}

	for _, tc := range []struct {
		name  string
		image []byte
		opts  []VMOption
	}{
		{"missing primitive", saveWith(t, WithPrimitive("probe", false, nop)), nil},
		{"renamed primitive", saveWith(t, WithPrimitive("a", false, nop)), []VMOption{WithPrimitive("b", false, nop)}},
		{"bad id", mustMarshal(t, &Image{ID: "nope", Capacity: 1}), nil},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(append(tc.opts, WithImage(bytes.NewReader(tc.image)))...)
			assert.True(t, errors.Is(err, ErrImageMismatch), "expected image mismatch, got %v", err)
		})
	}

	t.Run("extra primitives are fine", func(t *testing.T) {
		image := saveWith(t)
		vm, err := New(WithPrimitive("probe", false, nop), WithImage(bytes.NewReader(image)))
		require.NoError(t, err)
		vm.Close()
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := New(WithImage(strings.NewReader("not an image")))
		assert.Error(t, err)
	})
}

func mustMarshal(t *testing.T, img *Image) []byte {
	data, err := imageEncMode.Marshal(img)
	require.NoError(t, err)
	return data
}
