package mem

// Cell is the unit of storage and addressing.
type Cell uint32

// DefaultPageSize provides a default for Cells.PageSize.
const DefaultPageSize = 256

// Cells implements a cell-oriented paged memory with a fixed capacity.
type Cells struct {
	PagedCore
	pages [][]Cell
}

// Size returns an address one position higher than the last position in the
// last page allocated so far.
func (m *Cells) Size() uint {
	if i := len(m.bases) - 1; i >= 0 {
		return m.bases[i] + uint(len(m.pages[i]))
	}
	return 0
}

// Load returns the cell at addr; cells never stored to read as zero.
func (m *Cells) Load(addr uint) (Cell, error) {
	if err := m.checkRange(addr, addr+1, "load"); err != nil {
		return 0, err
	}
	if len(m.pages) == 0 {
		return 0, nil
	}
	pageID := m.findPage(addr)
	base := m.bases[pageID]
	page := m.pages[pageID]
	if i := int(addr) - int(base); 0 <= i && i < len(page) {
		return page[i], nil
	}
	return 0, nil
}

// LoadInto reads len(buf) cells starting at addr, zeroing any part of buf that
// covers unallocated pages. No partial load is done on a bounds error.
func (m *Cells) LoadInto(addr uint, buf []Cell) error {
	if len(buf) == 0 {
		return nil
	}
	end := addr + uint(len(buf))
	if err := m.checkRange(addr, end, "load"); err != nil {
		return err
	}

	for pageID := m.findPage(addr); addr < end && pageID < len(m.bases); pageID++ {
		base := m.bases[pageID]
		if base > end {
			break
		}

		if skip := int(base) - int(addr); skip > 0 {
			if skip >= len(buf) {
				break
			}
			addr += uint(skip)
			for i := range buf[:skip] {
				buf[i] = 0
			}
			buf = buf[skip:]
		}

		page := m.pages[pageID]
		if skip := int(addr) - int(base); skip > 0 {
			if skip >= len(page) {
				continue
			}
			page = page[skip:]
		}

		n := copy(buf, page)
		buf = buf[n:]
		addr += uint(n)
	}

	for i := range buf {
		buf[i] = 0
	}
	return nil
}

// Stor stores values starting at addr, allocating pages as needed.
// No partial store is done on a bounds error.
func (m *Cells) Stor(addr uint, values ...Cell) error {
	if len(values) == 0 {
		return nil
	}
	end := addr + uint(len(values))
	if err := m.checkRange(addr, end, "stor"); err != nil {
		return err
	}
	if m.PageSize == 0 {
		m.PageSize = DefaultPageSize
	}

	for pageID := m.findPage(addr); addr < end; pageID++ {
		base, size, page := m.allocPage(pageID, addr)
		if skip := addr - base; skip > 0 {
			if skip >= size {
				continue
			}
			page = page[skip:]
		}
		n := copy(page, values)
		values = values[n:]
		addr += uint(n)
	}
	return nil
}

func (m *Cells) allocPage(pageID int, addr uint) (base, size uint, page []Cell) {
	base, size, isNew := m.PagedCore.allocPage(pageID, addr)
	if !isNew {
		return base, size, m.pages[pageID]
	}
	page = make([]Cell, size)
	if pageID == len(m.pages) {
		m.pages = append(m.pages, page)
	} else {
		m.pages = append(m.pages, nil)
		copy(m.pages[pageID+1:], m.pages[pageID:])
		m.pages[pageID] = page
	}
	return base, size, page
}
