package csv

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Sanitize wraps r so that a leading UTF-8 byte order mark is skipped and
// every byte that is not part of a valid UTF-8 sequence reads as '?'.
// Multi-byte characters split across reads are preserved.
func Sanitize(r io.Reader) io.Reader {
	return &utf8Sanitizer{r: &bomSkipper{br: bufio.NewReader(r)}}
}

type bomSkipper struct {
	br      *bufio.Reader
	checked bool
}

func (b *bomSkipper) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true
		if head, err := b.br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
			_, _ = b.br.Discard(len(utf8BOM))
		}
	}
	return b.br.Read(p)
}

type utf8Sanitizer struct {
	r       io.Reader
	buf     [32 * 1024]byte
	pending []byte // incomplete sequence carried into the next read
	out     []byte
	err     error
}

func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	for len(s.out) == 0 {
		if s.err != nil {
			return 0, s.err
		}

		n, err := s.r.Read(s.buf[:])
		data := append(s.pending, s.buf[:n]...)
		s.pending = nil
		if err != nil {
			s.err = err
		}
		s.out, s.pending = sanitizeUTF8(s.out[:0], data, s.err != nil)
	}

	n := copy(p, s.out)
	s.out = s.out[n:]
	return n, nil
}

// sanitizeUTF8 appends data to dst with invalid bytes replaced. Unless
// final is set, an incomplete trailing sequence is returned as tail.
func sanitizeUTF8(dst, data []byte, final bool) (out, tail []byte) {
	for i := 0; i < len(data); {
		c := data[i]
		if c < utf8.RuneSelf {
			dst = append(dst, c)
			i++
			continue
		}
		if !final && !utf8.FullRune(data[i:]) {
			return dst, append([]byte(nil), data[i:]...)
		}
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			dst = append(dst, '?')
			i++
			continue
		}
		dst = append(dst, data[i:i+size]...)
		i += size
	}
	return dst, nil
}
