package fileinput

import (
	"io"
	"strings"
	"unicode"
)

// Token reads the next whitespace delimited token. The delimiting rune is
// consumed; eol reports whether it ended the line (or the input), so that
// callers can tell when a line has been completely consumed.
// Returns io.EOF only when no further token is available.
func (in *Input) Token() (token string, eol bool, err error) {
	var sb strings.Builder
	for {
		r, _, err := in.ReadRune()
		if err != nil {
			return "", true, err
		}
		if !unicode.IsSpace(r) {
			sb.WriteRune(r)
			break
		}
	}
	for {
		r, _, err := in.ReadRune()
		if err == io.EOF {
			return sb.String(), true, nil
		} else if err != nil {
			return sb.String(), true, err
		} else if unicode.IsSpace(r) {
			return sb.String(), r == '\n', nil
		}
		sb.WriteRune(r)
	}
}

// SkipLine discards input through the next line feed.
func (in *Input) SkipLine() error {
	return in.SkipPast('\n')
}

// SkipDelimited discards input through the next occurrence of delim, along
// with the whitespace rune that follows it if any; eol reports whether that
// ended the line (or the input).
func (in *Input) SkipDelimited(delim rune) (eol bool, err error) {
	if err := in.SkipPast(delim); err != nil {
		return false, err
	}
	r, _, err := in.ReadRune()
	if err == io.EOF {
		return true, nil
	} else if err != nil {
		return false, err
	}
	if unicode.IsSpace(r) {
		return r == '\n', nil
	}
	return false, in.UnreadRune()
}

// SkipPast discards input through the next occurrence of delim.
func (in *Input) SkipPast(delim rune) error {
	for {
		r, _, err := in.ReadRune()
		if err != nil {
			return err
		}
		if r == delim {
			return nil
		}
	}
}
