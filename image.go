package main

import (
	"bytes"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/cellforth/cellforth/internal/mem"
)

// Image is a saved arena: registers, stacks and dictionary, along with the
// names of the primitives that its primitive bodies index.
type Image struct {
	ID         string     `cbor:"id"`
	Parent     string     `cbor:"parent,omitempty"`
	Capacity   uint       `cbor:"capacity"`
	Primitives []string   `cbor:"primitives"`
	Pages      []mem.Page `cbor:"pages"`
}

var imageEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("image: failed to create CBOR enc mode: %v", err))
	}
	imageEncMode = em
}

// ReadImage decodes an image written by SaveImage.
func ReadImage(r io.Reader) (*Image, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}
	return decodeImage(buf.Bytes())
}

func decodeImage(data []byte) (*Image, error) {
	var img Image
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("image: unmarshal: %w", err)
	}
	if _, err := uuid.Parse(img.ID); err != nil {
		return nil, fmt.Errorf("%w: invalid id %q: %v", ErrImageMismatch, img.ID, err)
	}
	return &img, nil
}

// Snapshot captures the arena under a new image id. An open definition is
// not captured as such: its hidden entry is saved, but the image restores
// into interpreting state.
func (vm *VM) Snapshot() *Image {
	img := &Image{
		ID:         uuid.NewString(),
		Parent:     vm.imageID,
		Capacity:   vm.mem.Capacity,
		Primitives: make([]string, len(vm.prims)),
		Pages:      vm.mem.Pages(),
	}
	for i, prim := range vm.prims {
		img.Primitives[i] = prim.name
	}
	return img
}

// SaveImage writes a Snapshot of the VM to w.
func (vm *VM) SaveImage(w io.Writer) error {
	img := vm.Snapshot()
	data, err := imageEncMode.Marshal(img)
	if err != nil {
		return fmt.Errorf("image: marshal: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	vm.logf("#", "saved image %v", img.ID)
	return nil
}

// LoadImage replaces the arena of the VM with an image read from r. The
// primitive tables must agree.
func (vm *VM) LoadImage(r io.Reader) error {
	img, err := ReadImage(r)
	if err != nil {
		return err
	}
	return vm.guard("image", func() { vm.haltif(vm.restoreImage(img)) })
}

func (vm *VM) restore(data []byte) error {
	img, err := decodeImage(data)
	if err != nil {
		return err
	}
	return vm.restoreImage(img)
}

func (vm *VM) restoreImage(img *Image) error {
	if len(img.Primitives) > len(vm.prims) {
		return fmt.Errorf("%w: image %v needs %v primitives, have %v",
			ErrImageMismatch, img.ID, len(img.Primitives), len(vm.prims))
	}
	for i, name := range img.Primitives {
		if have := vm.prims[i].name; have != name {
			return fmt.Errorf("%w: image %v primitive #%v is %q, have %q",
				ErrImageMismatch, img.ID, i, name, have)
		}
	}
	if img.Capacity == 0 {
		return fmt.Errorf("%w: image %v has no capacity", ErrImageMismatch, img.ID)
	}

	var cells mem.Cells
	cells.Capacity = img.Capacity
	if err := cells.Restore(img.Pages); err != nil {
		return fmt.Errorf("%w: image %v: %v", ErrImageMismatch, img.ID, boundsError(err))
	}
	vm.mem = cells
	vm.imageID = img.ID
	vm.ip, vm.open, vm.halted = 0, 0, false
	vm.dataSize = vm.load(regDataSize)
	vm.retSize = vm.load(regRetSize)
	if vm.compiling() {
		vm.stor(regState, 0)
	}
	vm.logf("#", "restored image %v", img.ID)
	return nil
}
