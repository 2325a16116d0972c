package core

// streaming.go provides the reader chain applied to uploaded gradebook files.
//
// These readers wrap io.Reader so uploads are cleaned while they are parsed:
//
//   - BOMSkippingReader: Removes the UTF-8 BOM (0xEF 0xBB 0xBF) that Excel and
//     our own exports put in front of the text
//   - UTF8Sanitizer: Replaces invalid UTF-8 bytes with '?'
//   - CountingReader: Tracks bytes read and enforces the upload size limit
//
// Use WrapUpload to apply all of them in the correct order.

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// ErrFileTooLarge is returned once an upload exceeds its size limit.
var ErrFileTooLarge = errors.New("file too large")

var bomBytes = []byte{0xEF, 0xBB, 0xBF}

// BOMSkippingReader drops a leading UTF-8 BOM.
type BOMSkippingReader struct {
	br      *bufio.Reader
	checked bool
}

// NewBOMSkippingReader creates a new BOM-skipping reader.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{br: bufio.NewReader(r)}
}

// Read implements io.Reader. The BOM check happens on the first call.
func (r *BOMSkippingReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true
		if head, err := r.br.Peek(len(bomBytes)); err == nil && bytes.Equal(head, bomBytes) {
			if _, err := r.br.Discard(len(bomBytes)); err != nil {
				return 0, err
			}
		}
	}
	return r.br.Read(p)
}

// UTF8Sanitizer replaces invalid UTF-8 bytes with '?' on the fly.
// A multi-byte rune split across two reads is held back until it is complete.
type UTF8Sanitizer struct {
	reader  io.Reader
	pending []byte // start of a rune still waiting for its continuation bytes
	ready   []byte // sanitized bytes that did not fit the caller's buffer
	err     error  // read error held until ready is drained
	scratch [2 * utf8.UTFMax]byte
}

// maxEmptyReads matches the retry bound of bufio.Reader.
const maxEmptyReads = 100

// NewStreamingUTF8Sanitizer creates a new streaming UTF-8 sanitizer.
func NewStreamingUTF8Sanitizer(r io.Reader) *UTF8Sanitizer {
	return &UTF8Sanitizer{
		reader:  r,
		pending: make([]byte, 0, utf8.UTFMax),
	}
}

// Read implements io.Reader. It never returns (0, nil) while the underlying
// reader still has data: an incomplete rune is completed by further reads
// before anything is handed out.
func (s *UTF8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if len(s.ready) > 0 {
		n := copy(p, s.ready)
		s.ready = s.ready[n:]
		return n, nil
	}
	if s.err != nil {
		return 0, s.err
	}

	// A small p may not fit a held-back rune plus new input, so read
	// through scratch and hand the result out in pieces.
	small := len(p) < len(s.scratch)
	dst := p
	if small {
		dst = s.scratch[:]
	}

	for empty := 0; ; {
		n := copy(dst, s.pending)
		s.pending = s.pending[:0]

		m, err := s.reader.Read(dst[n:])
		n += m
		data := dst[:n]
		if err == nil {
			if k := incompleteSuffix(data); k > 0 {
				s.pending = append(s.pending, data[n-k:]...)
				data = data[:n-k]
			}
		}

		if len(data) == 0 {
			if err != nil {
				return 0, err
			}
			if m == 0 {
				if empty++; empty >= maxEmptyReads {
					return 0, io.ErrNoProgress
				}
			}
			continue
		}

		data = data[:sanitizeUTF8(data)]
		if !small {
			return len(data), err
		}

		c := copy(p, data)
		if c < len(data) {
			s.ready = append(s.ready[:0], data[c:]...)
			s.err = err
			return c, nil
		}
		return c, err
	}
}

// incompleteSuffix returns how many trailing bytes start a rune that is not
// yet complete.
func incompleteSuffix(data []byte) int {
	for i := 1; i <= utf8.UTFMax-1 && i <= len(data); i++ {
		if utf8.RuneStart(data[len(data)-i]) {
			if utf8.FullRune(data[len(data)-i:]) {
				return 0
			}
			return i
		}
	}
	return 0
}

// sanitizeUTF8 rewrites data in place and returns the new length.
func sanitizeUTF8(data []byte) int {
	if utf8.Valid(data) {
		return len(data)
	}

	write := 0
	for read := 0; read < len(data); {
		r, size := utf8.DecodeRune(data[read:])
		if r == utf8.RuneError && size == 1 {
			data[write] = '?'
			write++
			read++
			continue
		}
		copy(data[write:], data[read:read+size])
		write += size
		read += size
	}
	return write
}

// CountingReader tracks bytes read and fails once Limit is exceeded.
// A Limit of 0 disables the check.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
	Limit     int64
}

// NewCountingReader creates a counting reader with an optional size limit.
func NewCountingReader(r io.Reader, limit int64) *CountingReader {
	return &CountingReader{reader: r, Limit: limit}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	if r.Limit > 0 && r.BytesRead > r.Limit {
		return n, fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, r.Limit)
	}
	return n, err
}

// WrapUpload wraps an upload body with size accounting. BOM skipping and
// sanitizing are applied by ParseReader itself.
func WrapUpload(r io.Reader, limit int64) *CountingReader {
	return NewCountingReader(r, limit)
}
