package status

import (
	"fmt"

	"github.com/indigo-web/message/binding"
	"github.com/indigo-web/message/errors"
)

// Register is the live response status register of the environment.
type Register interface {
	ResponseCode() int
	// SetHeader is used to emit the whole status line in the `HTTP/x y phrase` form.
	SetHeader(line string, replace bool, code int) error
	HeadersSent() (sent bool, file string, line int)
}

// Live mirrors the response status register. The code is always read from the register,
// whereas the reason phrase is remembered locally: if the code in the register was changed
// behind the mirror's back, the default phrase of the new code is reported.
//
// Live is not safe for concurrent use, the same as the environment it mirrors.
type Live struct {
	register Register
	state    binding.State
	written  Line
	snapshot *Line
}

// Bind writes the initial status line through to the register and returns a bound mirror.
func Bind(register Register, initial *Line) (*Live, error) {
	if err := checkSent(register); err != nil {
		return nil, err
	}

	if err := write(register, initial); err != nil {
		return nil, err
	}

	return &Live{register: register, state: binding.Bound, written: *initial}, nil
}

func (l *Live) State() binding.State {
	return l.state
}

func (l *Live) Snapshot() *Line {
	if l.state == binding.Stale {
		return l.snapshot
	}

	code := Code(l.register.ResponseCode())
	phrase := l.written.phrase
	if code != l.written.code || len(phrase) == 0 {
		phrase = Text(code)
	}

	return &Line{code: code, phrase: phrase, version: l.written.version}
}

func (l *Live) Code() Code {
	return l.Snapshot().Code()
}

func (l *Live) ReasonPhrase() Status {
	return l.Snapshot().ReasonPhrase()
}

func (l *Live) ProtocolVersion() string {
	return l.Snapshot().ProtocolVersion()
}

// Detach turns a bound mirror stale and returns its final status line.
func (l *Live) Detach() *Line {
	if l.state == binding.Bound {
		l.turnStale()
	}

	return l.snapshot
}

// Revive returns a new bound mirror initialized from the status line the receiver held at
// the moment it turned stale. Bound mirrors return themselves.
func (l *Live) Revive() (*Live, error) {
	if l.state == binding.Bound {
		return l, nil
	}

	return Bind(l.register, l.snapshot)
}

// SetStatus writes the status through. If nothing changes, the receiver itself is returned
// and stays bound.
func (l *Live) SetStatus(code Code, phrase ...string) (Source, error) {
	if l.state == binding.Stale {
		return nil, errors.ErrStale
	}

	current := l.Snapshot()
	line, err := current.WithStatus(code, phrase...)
	if err != nil {
		return nil, err
	}

	if line == current {
		return l, nil
	}

	return l.replace(line)
}

// SetProtocolVersion writes the new version of the status line through.
func (l *Live) SetProtocolVersion(version string) (Source, error) {
	if l.state == binding.Stale {
		return nil, errors.ErrStale
	}

	current := l.Snapshot()
	line, err := current.WithProtocolVersion(version)
	if err != nil {
		return nil, err
	}

	if line == current {
		return l, nil
	}

	return l.replace(line)
}

func (l *Live) replace(line *Line) (*Live, error) {
	if err := checkSent(l.register); err != nil {
		return nil, err
	}

	before := l.Snapshot()
	if err := write(l.register, line); err != nil {
		return nil, err
	}

	l.snapshot, l.state = before, binding.Stale

	return &Live{register: l.register, state: binding.Bound, written: *line}, nil
}

func (l *Live) turnStale() {
	l.snapshot = l.Snapshot()
	l.state = binding.Stale
}

func write(register Register, line *Line) error {
	return register.SetHeader(line.String(), true, int(line.code))
}

func checkSent(register Register) error {
	if sent, file, line := register.HeadersSent(); sent {
		return fmt.Errorf("%w: output started at %s:%d", errors.ErrHeadersSent, file, line)
	}

	return nil
}
