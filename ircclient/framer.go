package ircclient

import "bytes"

var terminator = []byte(LineTerminator)

// Framer splits a byte stream into protocol lines.
//
// Only the unterminated tail of the stream is kept between calls, so the
// buffer never grows past the longest line seen.
type Framer struct {
	buf []byte
}

// NewFramer creates an empty framer.
func NewFramer() *Framer {
	return &Framer{}
}

// Feed appends a chunk of the stream.
func (f *Framer) Feed(chunk string) {
	f.buf = append(f.buf, chunk...)
}

// DrainLines returns every complete line buffered so far, terminators
// stripped, and keeps the trailing fragment for the next Feed.
func (f *Framer) DrainLines() []string {
	var lines []string
	start := 0
	for {
		i := bytes.Index(f.buf[start:], terminator)
		if i < 0 {
			break
		}
		lines = append(lines, string(f.buf[start:start+i]))
		start += i + len(terminator)
	}
	if start > 0 {
		f.buf = append(f.buf[:0], f.buf[start:]...)
	}
	return lines
}

// Pending returns the number of buffered bytes not yet part of a complete line.
func (f *Framer) Pending() int {
	return len(f.buf)
}
