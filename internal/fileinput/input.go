package fileinput

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/cellforth/cellforth/internal/runeio"
)

// Location names a line in an Input file.
type Location struct {
	Name string
	Line int
}

// Line combines a Location along with a bytes.Buffer holding its text.
type Line struct {
	Location
	bytes.Buffer
}

func (loc Location) String() string { return fmt.Sprintf("%v:%v", loc.Name, loc.Line) }
func (il *Line) String() string     { return fmt.Sprintf("%v %q", il.Location, il.Buffer.String()) }

// Input implements sequential rune reading through a Queue of one or more
// input streams. Both the current and last scanned lines are tracked to
// facilitate user feedback.
type Input struct {
	r     io.Reader
	rr    io.RuneReader
	Queue []io.Reader
	Last  Line
	Scan  Line

	last   rune
	unread bool
}

// ReadRune reads one rune from the current input stream, appending it into
// the current Scan line, and rolling Scan over to Last after line feed.
// The end of each queued stream reads as a line feed, so that tokens never
// span streams; io.EOF is only returned once the queue is exhausted.
func (in *Input) ReadRune() (rune, int, error) {
	if in.unread {
		in.unread = false
		return in.last, utf8.RuneLen(in.last), nil
	}
	for {
		if in.rr == nil && !in.nextIn() {
			return 0, 0, io.EOF
		}
		r, n, err := in.rr.ReadRune()
		if n > 0 {
			in.last = r
			if r == '\n' {
				in.nextLine()
			} else {
				in.Scan.WriteRune(r)
			}
			return r, n, nil
		}
		if err == nil {
			continue
		}
		if err != io.EOF {
			return 0, 0, err
		}
		in.closeIn()
		in.last = '\n'
		return '\n', 0, nil
	}
}

// UnreadRune causes the next ReadRune to return the last rune read again.
// Line tracking is not rewound, so only runes other than line feed should be
// unread.
func (in *Input) UnreadRune() error {
	if in.unread || in.last == 0 {
		return bufio.ErrInvalidUnreadRune
	}
	in.unread = true
	return nil
}

// Location returns the location of the line currently being scanned.
func (in *Input) Location() Location {
	return in.Scan.Location
}

func (in *Input) nextLine() {
	in.Last.Reset()
	in.Last.Location = in.Scan.Location
	in.Last.Write(in.Scan.Bytes())
	in.Scan.Reset()
	in.Scan.Line++
}

func (in *Input) closeIn() {
	if in.Scan.Len() > 0 {
		in.nextLine()
	}
	if cl, ok := in.r.(io.Closer); ok {
		cl.Close()
	}
	in.r, in.rr = nil, nil
}

// Close closes the stream being read along with any still queued, for those
// that implement io.Closer.
func (in *Input) Close() (err error) {
	if in.r != nil {
		if cl, ok := in.r.(io.Closer); ok {
			err = cl.Close()
		}
		in.r, in.rr = nil, nil
	}
	for _, r := range in.Queue {
		if cl, ok := r.(io.Closer); ok {
			if cerr := cl.Close(); err == nil {
				err = cerr
			}
		}
	}
	in.Queue = nil
	in.unread = false
	return err
}

func (in *Input) nextIn() bool {
	if len(in.Queue) == 0 {
		return false
	}
	r := in.Queue[0]
	in.Queue = in.Queue[1:]
	in.r, in.rr = r, runeio.NewReader(r)
	in.Scan.Name = nameOf(r)
	in.Scan.Line = 1
	return true
}

func nameOf(obj interface{}) string {
	if nom, ok := obj.(interface{ Name() string }); ok {
		return nom.Name()
	}
	return fmt.Sprintf("<unnamed %T>", obj)
}

// NamedReader attaches a name to r, used in Input locations.
func NamedReader(name string, r io.Reader) io.Reader {
	return namedReader{r, name}
}

type namedReader struct {
	io.Reader
	name string
}

func (nr namedReader) Name() string { return nr.name }
