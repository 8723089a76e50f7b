package status

import (
	"fmt"

	"github.com/indigo-web/message/binding"
	"github.com/indigo-web/message/errors"
	"github.com/indigo-web/message/http/proto"
)

// Source is held by responses instead of a concrete status line. It is satisfied by both
// the plain *Line and the *Live mirror.
type Source interface {
	// Snapshot returns the current status line without changing the state.
	Snapshot() *Line
	// Detach returns the current status line. Bound mirrors turn stale.
	Detach() *Line
	State() binding.State
	SetStatus(code Code, phrase ...string) (Source, error)
	SetProtocolVersion(version string) (Source, error)
}

// Line is an immutable status line: code, reason phrase and the protocol version.
type Line struct {
	code    Code
	phrase  Status
	version string
}

// NewLine returns the default 200 OK status line of HTTP/1.1
func NewLine() *Line {
	return &Line{
		code:    OK,
		phrase:  Text(OK),
		version: proto.HTTP11.Version(),
	}
}

func (l *Line) Code() Code {
	return l.code
}

func (l *Line) ReasonPhrase() Status {
	return l.phrase
}

func (l *Line) ProtocolVersion() string {
	return l.version
}

func (l *Line) String() string {
	return fmt.Sprintf("HTTP/%s %d %s", l.version, l.code, l.phrase)
}

// WithStatus returns a status line with the code and the reason phrase. An empty phrase is
// substituted by the default one of the code, if known. If nothing changes, the receiver
// itself is returned.
func (l *Line) WithStatus(code Code, phrase ...string) (*Line, error) {
	if err := ValidateCode(code); err != nil {
		return nil, err
	}

	var reason Status
	if len(phrase) > 0 {
		reason = phrase[0]
	}

	if len(reason) == 0 {
		reason = Text(code)
	}

	if code == l.code && reason == l.phrase {
		return l, nil
	}

	return &Line{code: code, phrase: reason, version: l.version}, nil
}

// WithProtocolVersion accepts only 1.0, 1.1 and 2. If nothing changes, the receiver itself
// is returned.
func (l *Line) WithProtocolVersion(version string) (*Line, error) {
	if err := proto.Validate(version); err != nil {
		return nil, err
	}

	if version == l.version {
		return l, nil
	}

	return &Line{code: l.code, phrase: l.phrase, version: version}, nil
}

// Snapshot implements Source. Plain lines are immutable, so they are their own snapshot.
func (l *Line) Snapshot() *Line {
	return l
}

// Detach implements Source.
func (l *Line) Detach() *Line {
	return l
}

// State implements Source. Plain lines are never bound.
func (l *Line) State() binding.State {
	return binding.Unbound
}

// SetStatus implements Source via WithStatus.
func (l *Line) SetStatus(code Code, phrase ...string) (Source, error) {
	line, err := l.WithStatus(code, phrase...)
	if err != nil {
		return nil, err
	}

	return line, nil
}

// SetProtocolVersion implements Source via WithProtocolVersion.
func (l *Line) SetProtocolVersion(version string) (Source, error) {
	line, err := l.WithProtocolVersion(version)
	if err != nil {
		return nil, err
	}

	return line, nil
}

// ValidateCode checks the code to lie within [100, 999].
func ValidateCode(code Code) error {
	if code < 100 || code > 999 {
		return fmt.Errorf("%w: %d", errors.ErrInvalidStatusCode, code)
	}

	return nil
}
