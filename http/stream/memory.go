// Package stream provides message body streams: a seekable in-memory Memory stream and the
// dual-mode Output sink of responses.
package stream

import (
	"fmt"
	"io"

	"github.com/indigo-web/message/errors"
	"github.com/indigo-web/utils/uf"
)

// Stream is the body of a message.
type Stream interface {
	io.Reader
	io.Writer
	io.Seeker
	io.Closer
	fmt.Stringer
	// Size returns the total size of the stream.
	Size() (int64, error)
	// Tell returns the current position of the read/write pointer.
	Tell() (int64, error)
	// EOF reports whether the previous read hit the end of the stream.
	EOF() bool
	Seekable() bool
	Readable() bool
	Writable() bool
	// Rewind seeks to the beginning of the stream.
	Rewind() error
	// Contents returns the rest of the stream, starting from the current position.
	Contents() (string, error)
}

// Memory is a seekable, readable and writable in-memory stream. Writes overwrite the data
// at the current position and extend the stream when needed.
type Memory struct {
	data   []byte
	pos    int64
	eof    bool
	closed bool
}

func NewMemory() *Memory {
	return new(Memory)
}

// FromString returns a stream holding the string, positioned at the beginning.
func FromString(s string) *Memory {
	return FromBytes([]byte(s))
}

// FromBytes returns a stream over a copy of the data, positioned at the beginning.
func FromBytes(b []byte) *Memory {
	return &Memory{data: append([]byte(nil), b...)}
}

func (m *Memory) Read(b []byte) (n int, err error) {
	if m.closed {
		return 0, errors.ErrStreamClosed
	}

	if m.pos >= int64(len(m.data)) {
		m.eof = true
		return 0, io.EOF
	}

	n = copy(b, m.data[m.pos:])
	m.pos += int64(n)
	if m.pos >= int64(len(m.data)) {
		m.eof = true
	}

	return n, nil
}

func (m *Memory) Write(b []byte) (n int, err error) {
	if m.closed {
		return 0, errors.ErrStreamClosed
	}

	end := m.pos + int64(len(b))
	if end > int64(len(m.data)) {
		m.data = append(m.data, make([]byte, end-int64(len(m.data)))...)
	}

	copy(m.data[m.pos:], b)
	m.pos = end

	return len(b), nil
}

func (m *Memory) WriteString(s string) (n int, err error) {
	return m.Write(uf.S2B(s))
}

func (m *Memory) Seek(offset int64, whence int) (int64, error) {
	if m.closed {
		return 0, errors.ErrStreamClosed
	}

	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = m.pos + offset
	case io.SeekEnd:
		abs = int64(len(m.data)) + offset
	default:
		return 0, fmt.Errorf("%w: invalid whence %d", errors.ErrNotSeekable, whence)
	}

	if abs < 0 {
		return 0, fmt.Errorf("%w: negative position %d", errors.ErrNotSeekable, abs)
	}

	m.pos = abs
	m.eof = false

	return abs, nil
}

func (m *Memory) Rewind() error {
	_, err := m.Seek(0, io.SeekStart)
	return err
}

func (m *Memory) Close() error {
	m.closed = true
	m.data = nil
	m.pos = 0

	return nil
}

// Detach closes the stream and returns the data it held.
func (m *Memory) Detach() []byte {
	data := m.data
	m.closed = true
	m.data, m.pos = nil, 0

	return data
}

func (m *Memory) Size() (int64, error) {
	if m.closed {
		return 0, errors.ErrStreamClosed
	}

	return int64(len(m.data)), nil
}

func (m *Memory) Tell() (int64, error) {
	if m.closed {
		return 0, errors.ErrStreamClosed
	}

	return m.pos, nil
}

func (m *Memory) EOF() bool {
	return m.closed || m.eof
}

func (m *Memory) Seekable() bool {
	return !m.closed
}

func (m *Memory) Readable() bool {
	return !m.closed
}

func (m *Memory) Writable() bool {
	return !m.closed
}

func (m *Memory) Contents() (string, error) {
	if m.closed {
		return "", errors.ErrStreamClosed
	}

	if m.pos >= int64(len(m.data)) {
		m.eof = true
		return "", nil
	}

	contents := string(m.data[m.pos:])
	m.pos = int64(len(m.data))
	m.eof = true

	return contents, nil
}

// String returns the whole content regardless of the position. Closed streams are empty.
func (m *Memory) String() string {
	return string(m.data)
}

// Bytes returns the whole content. The slice is valid until the next write.
func (m *Memory) Bytes() []byte {
	return m.data
}

// Clone returns an independent stream with the same content and position.
func (m *Memory) Clone() *Memory {
	return &Memory{
		data:   append([]byte(nil), m.data...),
		pos:    m.pos,
		eof:    m.eof,
		closed: m.closed,
	}
}
