package core

// streaming.go provides the byte-level helpers under RecordReader.
//
// Files are never loaded whole; RecordReader pulls one line at a time
// through a bufio.Reader stacked on these wrappers:
//
//   - CountingReader: tracks bytes read for the load statistics
//   - skipBOM: drops a leading UTF-8 BOM (0xEF 0xBB 0xBF) when asked to

import (
	"bufio"
	"bytes"
	"io"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CountingReader wraps an io.Reader to track bytes read.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
}

// NewCountingReader creates a counting reader.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{reader: r}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}

// skipBOM discards a UTF-8 BOM at the current position of br, if present.
// Short inputs are left untouched.
func skipBOM(br *bufio.Reader) error {
	head, err := br.Peek(len(utf8BOM))
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return err
	}
	if bytes.Equal(head, utf8BOM) {
		_, err = br.Discard(len(utf8BOM))
		return err
	}
	return nil
}
