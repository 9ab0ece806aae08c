package runeio

import "io"

// WriteANSIRune writes a rune to w: ASCII as a single byte, NEL as "\r\n",
// other C1 controls in their 7-bit escape form (CSI becomes "\x1b["), and
// everything else as utf8.
func WriteANSIRune(w io.Writer, r rune) (n int, err error) {
	switch {
	case r < 0x80:
		if bw, ok := w.(io.ByteWriter); ok {
			return 1, bw.WriteByte(byte(r))
		}
		return w.Write([]byte{byte(r)})
	case r == 0x85:
		return io.WriteString(w, "\r\n")
	case r <= 0x9f:
		return w.Write([]byte{0x1b, byte(r ^ 0xc0)})
	}
	if rw, ok := w.(interface {
		WriteRune(r rune) (n int, err error)
	}); ok {
		return rw.WriteRune(r)
	}
	return io.WriteString(w, string(r))
}
