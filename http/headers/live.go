package headers

import (
	"fmt"
	"strings"

	"github.com/indigo-web/message/binding"
	"github.com/indigo-web/message/errors"
)

// Source is what message envelopes hold instead of a concrete collection. It is satisfied
// by both the plain *Headers and the *Live mirror, so switching between them on bind or
// detach replaces the dependency instead of branching in every getter.
type Source interface {
	// Snapshot returns the current content as a plain collection without changing the state.
	Snapshot() *Headers
	// Detach returns the current content as a plain collection. Bound mirrors turn stale.
	Detach() *Headers
	State() binding.State
	Set(name string, values ...string) (Source, error)
	Add(name string, values ...string) (Source, error)
	Remove(name string) (Source, error)
}

// Native is the live outgoing header list of the environment.
type Native interface {
	// SetHeader queues a raw header line. When replace is set, previous lines with the same
	// name are dropped. A non-zero code sets the response status as a side effect.
	SetHeader(line string, replace bool, code int) error
	// RemoveHeader drops every queued line with the name. Empty name drops all of them.
	RemoveHeader(name string)
	// HeaderList returns currently queued lines.
	HeaderList() []string
	// HeadersSent reports whether the headers were already committed and where.
	HeadersSent() (sent bool, file string, line int)
}

// Live mirrors the environment's outgoing header list. While bound, getters read the live
// list and modifications write through to it. A modification turns the receiver stale and
// hands the binding over to the returned mirror.
//
// Live is not safe for concurrent use, the same as the environment it mirrors.
type Live struct {
	native   Native
	state    binding.State
	snapshot *Headers
}

// Bind replaces the live header list with the initial collection and returns a bound
// mirror of it.
func Bind(native Native, initial *Headers) (*Live, error) {
	if err := checkSent(native); err != nil {
		return nil, err
	}

	native.RemoveHeader("")
	if err := writeLines(native, initial.Lines()); err != nil {
		return nil, err
	}

	return &Live{native: native, state: binding.Bound}, nil
}

func (l *Live) State() binding.State {
	return l.state
}

func (l *Live) Snapshot() *Headers {
	if l.state == binding.Stale {
		return l.snapshot
	}

	return FromLines(l.native.HeaderList())
}

// Detach turns a bound mirror stale and returns its final content.
func (l *Live) Detach() *Headers {
	if l.state == binding.Bound {
		l.turnStale()
	}

	return l.snapshot
}

// Revive returns a new bound mirror, initialized from the content the receiver held at the
// moment it turned stale. Bound mirrors return themselves.
func (l *Live) Revive() (*Live, error) {
	if l.state == binding.Bound {
		return l, nil
	}

	return Bind(l.native, l.snapshot)
}

func (l *Live) Set(name string, values ...string) (Source, error) {
	if err := l.modifiable(name, values); err != nil {
		return nil, err
	}

	return l.apply(func() error {
		if len(values) == 0 {
			l.native.RemoveHeader(name)
		}

		for i, value := range values {
			if err := l.native.SetHeader(name+": "+value, i == 0, 0); err != nil {
				return err
			}
		}

		return nil
	})
}

func (l *Live) Add(name string, values ...string) (Source, error) {
	if err := l.modifiable(name, values); err != nil {
		return nil, err
	}

	return l.apply(func() error {
		for _, value := range values {
			if err := l.native.SetHeader(name+": "+value, false, 0); err != nil {
				return err
			}
		}

		return nil
	})
}

// Remove returns the receiver itself if there's no such header.
func (l *Live) Remove(name string) (Source, error) {
	if l.state == binding.Stale {
		return nil, errors.ErrStale
	}

	if !l.Snapshot().Has(name) {
		return l, nil
	}

	if err := checkSent(l.native); err != nil {
		return nil, err
	}

	return l.apply(func() error {
		l.native.RemoveHeader(name)
		return nil
	})
}

// apply runs the write against the live list. The receiver turns stale only after the write
// succeeded. On failure the list is restored and the receiver stays bound.
func (l *Live) apply(write func() error) (Source, error) {
	before := FromLines(l.native.HeaderList())
	if err := write(); err != nil {
		l.native.RemoveHeader("")
		if rollback := writeLines(l.native, before.Lines()); rollback != nil {
			return nil, fmt.Errorf("%w (restoring the list: %v)", err, rollback)
		}

		return nil, err
	}

	l.snapshot, l.state = before, binding.Stale
	return l.successor(), nil
}

func (l *Live) modifiable(name string, values []string) error {
	if l.state == binding.Stale {
		return errors.ErrStale
	}

	if err := validate(name, values); err != nil {
		return err
	}

	return checkSent(l.native)
}

func (l *Live) turnStale() {
	l.snapshot = FromLines(l.native.HeaderList())
	l.state = binding.Stale
}

func (l *Live) successor() *Live {
	return &Live{native: l.native, state: binding.Bound}
}

func checkSent(native Native) error {
	if sent, file, line := native.HeadersSent(); sent {
		return fmt.Errorf("%w: output started at %s:%d", errors.ErrHeadersSent, file, line)
	}

	return nil
}

// writeLines queues the lines so that the first line of each name replaces whatever the
// list held before.
func writeLines(native Native, lines []string) error {
	seen := make(map[string]struct{}, len(lines))

	for _, line := range lines {
		name, _, _ := strings.Cut(line, ":")
		name = strings.ToLower(name)
		_, replace := seen[name]
		seen[name] = struct{}{}

		if err := native.SetHeader(line, !replace, 0); err != nil {
			return err
		}
	}

	return nil
}
