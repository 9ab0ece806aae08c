package mem

import "fmt"

// PagedCore tracks the page table of a lazily allocated, fixed capacity
// memory. Pages are allocated on first store; unallocated ranges read as zero.
type PagedCore struct {
	// PageSize specifies the length for newly allocated pages.
	PageSize uint

	// Capacity bounds the address space to [0, Capacity); zero means unbounded.
	Capacity uint

	bases []uint
	sizes []uint
}

// BoundsError indicates that a load or store fell outside of [0, Capacity).
type BoundsError struct {
	Addr uint
	Op   string
}

func (be BoundsError) Error() string {
	return fmt.Sprintf("%v @%v out of bounds", be.Op, be.Addr)
}

func (m *PagedCore) findPage(addr uint) int {
	i, j := 0, len(m.bases)
	for i < j {
		h := int(uint(i+j)>>1) + 1
		if h < len(m.bases) && m.bases[h] <= addr {
			i = h
		} else {
			j = h - 1
		}
	}
	return i
}

// allocPage returns the page that covers addr, or the page that must be
// created at pageID to cover it; isNew reports the latter case.
func (m *PagedCore) allocPage(pageID int, addr uint) (base, size uint, isNew bool) {
	if pageID == len(m.bases) {
		base = addr / m.PageSize * m.PageSize
		size = m.PageSize
		if i := len(m.bases) - 1; i >= 0 {
			if lastEnd := m.bases[i] + m.sizes[i]; base < lastEnd {
				size -= lastEnd - base
				base = lastEnd
			}
		}
		m.bases = append(m.bases, base)
		m.sizes = append(m.sizes, size)
		return base, size, true
	}

	base = m.bases[pageID]
	if addr < base {
		nextBase := base
		base = addr / m.PageSize * m.PageSize
		size = m.PageSize
		if gap := nextBase - base; size > gap {
			size = gap
		}
		m.bases = append(m.bases, 0)
		m.sizes = append(m.sizes, 0)
		copy(m.bases[pageID+1:], m.bases[pageID:])
		copy(m.sizes[pageID+1:], m.sizes[pageID:])
		m.bases[pageID] = base
		m.sizes[pageID] = size
		return base, size, true
	}

	return base, m.sizes[pageID], false
}

// checkRange validates the half open address range [addr, end).
func (m *PagedCore) checkRange(addr, end uint, op string) error {
	if limit := m.Capacity; limit != 0 {
		if addr >= limit {
			return BoundsError{addr, op}
		}
		if end > limit {
			return BoundsError{end - 1, op}
		}
	}
	return nil
}
