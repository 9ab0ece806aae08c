package runeio

import (
	"errors"
	"strconv"
	"strings"
)

// c0Names holds the classic ASCII control mnemonics, indexed by code point.
var c0Names = [32]string{
	"NUL", "SOH", "STX", "ETX", "EOT", "ENQ", "ACK", "BEL",
	"BS", "HT", "NL", "VT", "NP", "CR", "SO", "SI",
	"DLE", "DC1", "DC2", "DC3", "DC4", "NAK", "SYN", "ETB",
	"CAN", "EM", "SUB", "ESC", "FS", "GS", "RS", "US",
}

// ControlWords maps control mnemonics like "<ESC>" (either case) and caret
// forms like "^[" to their runes.
var ControlWords map[string]rune

func init() {
	ControlWords = make(map[string]rune, 3*len(c0Names)+4)
	add := func(name string, r rune) {
		mnem := "<" + name + ">"
		ControlWords[mnem] = r
		ControlWords[strings.ToLower(mnem)] = r
		if caret := caretForm(r); caret != "" {
			ControlWords[caret] = r
		}
	}
	for i, name := range c0Names {
		add(name, rune(i))
	}
	add("SP", 0x20)
	add("DEL", 0x7f)
}

// caretForm computes the ^-escaped printable form of a control rune.
func caretForm(r rune) string {
	if r < 0x20 || r == 0x7f {
		return "^" + string(r^0x40)
	}
	return ""
}

// ErrInvalidRune is returned by ParseRune for tokens that are not rune literals.
var ErrInvalidRune = errors.New(`rune literal must be "^X" "<NAME>" or 'X'`)

// ParseRune parses a quoted rune literal like 'a' or '\n', a control mnemonic
// like <ESC>, or a caret form like ^[.
func ParseRune(token string) (rune, error) {
	if r, defined := ControlWords[token]; defined {
		return r, nil
	}
	if len(token) < 3 || token[0] != '\'' || token[len(token)-1] != '\'' {
		return 0, ErrInvalidRune
	}
	value, _, tail, err := strconv.UnquoteChar(token[1:], '\'')
	if err != nil {
		return 0, err
	}
	if tail != "'" {
		return 0, ErrInvalidRune
	}
	return value, nil
}
