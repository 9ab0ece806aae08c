package runeio

import (
	"bufio"
	"io"
)

// Reader is an io.Reader that also supports reading runes.
type Reader interface {
	io.Reader
	io.RuneReader
}

// NewReader returns r itself if it already reads runes, otherwise a
// bufio.Reader around it. A Name() string method on r is preserved.
func NewReader(r io.Reader) Reader {
	if impl, ok := r.(Reader); ok {
		return impl
	}
	br := bufio.NewReader(r)
	if named, ok := r.(interface{ Name() string }); ok {
		return namedReader{br, named.Name()}
	}
	return br
}

type namedReader struct {
	*bufio.Reader
	name string
}

func (nr namedReader) Name() string { return nr.name }
