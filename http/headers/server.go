package headers

import (
	"sort"
	"strings"

	"github.com/indigo-web/message/binding"
	"github.com/indigo-web/message/errors"
)

// FromServer derives request headers from server variables: HTTP_* entries together with
// CONTENT_TYPE and CONTENT_LENGTH. `HTTP_X_FORWARDED_FOR` becomes `X-Forwarded-For`.
// Entries which don't make a valid header are skipped.
func FromServer(server map[string]string) *Headers {
	keys := make([]string, 0, len(server))
	for key := range server {
		if _, ok := serverKeyName(key); ok {
			keys = append(keys, key)
		}
	}

	sort.Strings(keys)
	h := New()

	for _, key := range keys {
		name, _ := serverKeyName(key)
		value := server[key]
		if len(value) == 0 || validate(name, []string{value}) != nil {
			continue
		}

		h.storage.Add(name, value)
	}

	return h
}

// Server mirrors request headers kept in server variables. While bound, getters derive the
// headers from the map every time and modifications write `HTTP_*` entries back into it.
// Multiple values of a header are joined with a comma. As with Live, a modification turns
// the receiver stale and hands the binding over to the returned mirror.
type Server struct {
	server   map[string]string
	state    binding.State
	snapshot *Headers
}

// BindServer returns a bound mirror of the server variables. If initial isn't nil, header
// entries of the map are replaced by it first.
func BindServer(server map[string]string, initial *Headers) *Server {
	if initial != nil {
		for key := range server {
			if _, ok := serverKeyName(key); ok {
				delete(server, key)
			}
		}

		for _, header := range initial.All() {
			server[nameToServerKey(header.Name)] = strings.Join(header.Values, ", ")
		}
	}

	return &Server{server: server, state: binding.Bound}
}

func (s *Server) State() binding.State {
	return s.state
}

func (s *Server) Snapshot() *Headers {
	if s.state == binding.Stale {
		return s.snapshot
	}

	return FromServer(s.server)
}

// Detach turns a bound mirror stale and returns its final content.
func (s *Server) Detach() *Headers {
	if s.state == binding.Bound {
		s.snapshot, s.state = FromServer(s.server), binding.Stale
	}

	return s.snapshot
}

// Set stores the values joined into a single entry. No values remove the entry.
func (s *Server) Set(name string, values ...string) (Source, error) {
	if err := s.modifiable(name, values); err != nil {
		return nil, err
	}

	return s.apply(func() {
		if len(values) == 0 {
			delete(s.server, nameToServerKey(name))
			return
		}

		s.server[nameToServerKey(name)] = strings.Join(values, ", ")
	})
}

// Add appends the values to the existing entry.
func (s *Server) Add(name string, values ...string) (Source, error) {
	if err := s.modifiable(name, values); err != nil {
		return nil, err
	}

	if len(values) == 0 {
		return s, nil
	}

	return s.apply(func() {
		key := nameToServerKey(name)
		joined := strings.Join(values, ", ")
		if existing := s.server[key]; len(existing) > 0 {
			joined = existing + ", " + joined
		}

		s.server[key] = joined
	})
}

// Remove returns the receiver itself if there's no such header.
func (s *Server) Remove(name string) (Source, error) {
	if s.state == binding.Stale {
		return nil, errors.ErrStale
	}

	if !s.Snapshot().Has(name) {
		return s, nil
	}

	return s.apply(func() {
		delete(s.server, nameToServerKey(name))
	})
}

func (s *Server) modifiable(name string, values []string) error {
	if s.state == binding.Stale {
		return errors.ErrStale
	}

	return validate(name, values)
}

func (s *Server) apply(write func()) (Source, error) {
	before := FromServer(s.server)
	write()
	s.snapshot, s.state = before, binding.Stale

	return &Server{server: s.server, state: binding.Bound}, nil
}

// serverKeyName returns the header name the server variable stands for, if any.
func serverKeyName(key string) (string, bool) {
	switch {
	case strings.HasPrefix(key, "HTTP_"):
		return serverKeyToName(key[len("HTTP_"):]), true
	case key == "CONTENT_TYPE", key == "CONTENT_LENGTH", key == "CONTENT_MD5":
		return serverKeyToName(key), true
	default:
		return "", false
	}
}

func serverKeyToName(key string) string {
	parts := strings.Split(strings.ToLower(key), "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}

	return strings.Join(parts, "-")
}

func nameToServerKey(name string) string {
	key := strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
	switch key {
	case "CONTENT_TYPE", "CONTENT_LENGTH", "CONTENT_MD5":
		return key
	default:
		return "HTTP_" + key
	}
}
