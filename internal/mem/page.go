package mem

// Page is a copy of one allocated page, used to snapshot and restore memory.
type Page struct {
	Base  uint   `cbor:"base"`
	Cells []Cell `cbor:"cells"`
}

// Pages returns a copy of every allocated page in address order.
func (m *Cells) Pages() []Page {
	pages := make([]Page, len(m.pages))
	for i, page := range m.pages {
		pages[i] = Page{
			Base:  m.bases[i],
			Cells: append([]Cell(nil), page...),
		}
	}
	return pages
}

// Restore discards all allocated pages, then stores every given page.
// Capacity and PageSize are retained.
func (m *Cells) Restore(pages []Page) error {
	m.bases, m.sizes, m.pages = nil, nil, nil
	for _, page := range pages {
		if err := m.Stor(page.Base, page.Cells...); err != nil {
			return err
		}
	}
	return nil
}
