package stream

import (
	"io"

	"github.com/indigo-web/message/errors"
)

// Buffer is the output buffering API of the environment. Global sinks talk to it directly.
type Buffer interface {
	io.Writer
	ObLevel() int
	ObStart() error
	ObContents() (string, error)
	ObLength() (int, error)
	ObClean() error
	ObFlush() error
}

// Output is the body of responses. It works in one of two modes: Local, where the content
// lives in a private Memory stream, and Global, where the content is appended to the live
// output buffer of the environment. In Global mode the sink is write-only and not seekable.
type Output struct {
	buffer Buffer
	local  *Memory
	global bool
	closed bool
}

// NewOutput returns a sink in Local mode. The buffer is used as soon as the sink switches
// into Global mode and may be nil for sinks which never do.
func NewOutput(buffer Buffer) *Output {
	return &Output{
		buffer: buffer,
		local:  NewMemory(),
	}
}

// IsGlobal reports whether the sink writes into the live output buffer.
func (o *Output) IsGlobal() bool {
	return o.global
}

// UseGlobally switches the sink into Global mode. Output buffering is started if it isn't
// yet, then the live buffer is cleaned and refilled with the local content, so it holds
// exactly what the sink held before. The local stream is closed.
func (o *Output) UseGlobally() error {
	if o.closed {
		return errors.ErrStreamClosed
	}

	if o.global {
		return nil
	}

	if o.buffer == nil {
		return errors.ErrOutputUnavailable
	}

	if o.buffer.ObLevel() == 0 {
		if err := o.buffer.ObStart(); err != nil {
			return err
		}
	}

	if err := o.buffer.ObClean(); err != nil {
		return err
	}

	if _, err := o.buffer.Write(o.local.Bytes()); err != nil {
		return err
	}

	_ = o.local.Close()
	o.local = nil
	o.global = true

	return nil
}

// UseLocally switches the sink into Local mode, copying the content of the live buffer into
// a fresh local stream. The live buffer is cleaned only if reset is set.
func (o *Output) UseLocally(reset bool) error {
	if o.closed {
		return errors.ErrStreamClosed
	}

	if !o.global {
		return nil
	}

	contents, err := o.buffer.ObContents()
	if err != nil {
		return err
	}

	if reset {
		if err = o.buffer.ObClean(); err != nil {
			return err
		}
	}

	local := NewMemory()
	_, _ = local.WriteString(contents)
	o.local = local
	o.global = false

	return nil
}

// WithLocalScope returns a Local sink with the content of the receiver. Local sinks return
// themselves, Global ones stay global.
func (o *Output) WithLocalScope(reset bool) (*Output, error) {
	if o.closed {
		return nil, errors.ErrStreamClosed
	}

	if !o.global {
		return o, nil
	}

	scope := &Output{buffer: o.buffer, global: true}
	if err := scope.UseLocally(reset); err != nil {
		return nil, err
	}

	return scope, nil
}

func (o *Output) Read(b []byte) (int, error) {
	if o.closed {
		return 0, errors.ErrStreamClosed
	}

	if o.global {
		return 0, errors.ErrPartialOutputRead
	}

	return o.local.Read(b)
}

func (o *Output) Write(b []byte) (int, error) {
	if o.closed {
		return 0, errors.ErrStreamClosed
	}

	if o.global {
		return o.buffer.Write(b)
	}

	return o.local.Write(b)
}

func (o *Output) Seek(offset int64, whence int) (int64, error) {
	if o.closed {
		return 0, errors.ErrStreamClosed
	}

	if o.global {
		return 0, errors.ErrNotSeekable
	}

	return o.local.Seek(offset, whence)
}

func (o *Output) Rewind() error {
	_, err := o.Seek(0, io.SeekStart)
	return err
}

// Size returns the length of the live buffer in Global mode.
func (o *Output) Size() (int64, error) {
	if o.closed {
		return 0, errors.ErrStreamClosed
	}

	if o.global {
		length, err := o.buffer.ObLength()
		return int64(length), err
	}

	return o.local.Size()
}

// Tell always points at the end of the live buffer in Global mode.
func (o *Output) Tell() (int64, error) {
	if o.closed {
		return 0, errors.ErrStreamClosed
	}

	if o.global {
		length, err := o.buffer.ObLength()
		return int64(length), err
	}

	return o.local.Tell()
}

func (o *Output) EOF() bool {
	if o.closed {
		return true
	}

	if o.global {
		return false
	}

	return o.local.EOF()
}

func (o *Output) Seekable() bool {
	return !o.closed && !o.global
}

func (o *Output) Readable() bool {
	return !o.closed && !o.global
}

func (o *Output) Writable() bool {
	return !o.closed
}

// Contents is rejected in Global mode, as the live buffer can't be read partially. Use
// String instead.
func (o *Output) Contents() (string, error) {
	if o.closed {
		return "", errors.ErrStreamClosed
	}

	if o.global {
		return "", errors.ErrPartialOutputRead
	}

	return o.local.Contents()
}

// String returns the whole content. In Global mode, it's the content of the live buffer.
func (o *Output) String() string {
	if o.closed {
		return ""
	}

	if o.global {
		contents, _ := o.buffer.ObContents()
		return contents
	}

	return o.local.String()
}

// Close releases the local stream. In Global mode, the live buffer is flushed instead.
func (o *Output) Close() error {
	if o.closed {
		return nil
	}

	o.closed = true
	if o.global {
		return o.buffer.ObFlush()
	}

	return o.local.Close()
}

// Detach closes the sink and returns its local stream. Global sinks have none.
func (o *Output) Detach() *Memory {
	local := o.local
	o.local = nil
	o.closed = true

	return local
}

// Clone duplicates the local stream. Global clones share the live buffer, as there's only
// one per environment.
func (o *Output) Clone() *Output {
	clone := &Output{
		buffer: o.buffer,
		global: o.global,
		closed: o.closed,
	}

	if o.local != nil {
		clone.local = o.local.Clone()
	}

	return clone
}
