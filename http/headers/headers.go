package headers

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/indigo-web/message/binding"
	"github.com/indigo-web/message/errors"
	"github.com/indigo-web/message/kv"
)

// Header is a single header name in its first-seen casing together with all its values.
type Header struct {
	Name   string
	Values []string
}

// Headers is an immutable, ordered and case-insensitive collection of header values. Every
// modification returns a new collection, leaving the receiver untouched.
type Headers struct {
	storage *kv.Storage
}

func New() *Headers {
	return &Headers{storage: kv.New()}
}

// FromMap builds a collection out of the map. As maps are unordered, names are inserted in
// lexicographical order.
func FromMap(m map[string][]string) (*Headers, error) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}

	sort.Strings(names)
	h := &Headers{storage: kv.NewPrealloc(len(m))}

	for _, name := range names {
		if err := validate(name, m[name]); err != nil {
			return nil, err
		}

		for _, value := range m[name] {
			h.storage.Add(name, value)
		}
	}

	return h, nil
}

// FromLines parses raw header lines in the `Name: value` form. Lines which can't be parsed
// are skipped.
func FromLines(lines []string) *Headers {
	h := &Headers{storage: kv.NewPrealloc(len(lines))}

	for _, line := range lines {
		name, value, ok := strings.Cut(line, ":")
		if !ok || ValidateName(name) != nil {
			continue
		}

		h.storage.Add(name, strings.TrimSpace(value))
	}

	return h
}

// Get returns all the values of the header. Returns nil if the header isn't presented.
func (h *Headers) Get(name string) []string {
	return h.storage.Values(name)
}

// Line returns all the values of the header joined by a comma.
func (h *Headers) Line(name string) string {
	return strings.Join(h.storage.Values(name), ", ")
}

func (h *Headers) Has(name string) bool {
	return h.storage.Has(name)
}

// Len returns the number of unique header names.
func (h *Headers) Len() (n int) {
	for range h.storage.Keys() {
		n++
	}

	return n
}

// All returns every header in order of their first appearance.
func (h *Headers) All() []Header {
	var all []Header
	for name := range h.storage.Keys() {
		all = append(all, Header{
			Name:   name,
			Values: h.storage.Values(name),
		})
	}

	return all
}

// Map returns the headers keyed by their first-seen casing.
func (h *Headers) Map() map[string][]string {
	m := make(map[string][]string)
	for _, header := range h.All() {
		m[header.Name] = header.Values
	}

	return m
}

// Lines renders headers into `Name: value` lines, one per value. Lines of the same header
// are kept together.
func (h *Headers) Lines() []string {
	lines := make([]string, 0, h.storage.Len())
	for _, header := range h.All() {
		for _, value := range header.Values {
			lines = append(lines, header.Name+": "+value)
		}
	}

	return lines
}

// Equal reports whether both collections hold the same names (case-insensitively) with the
// same values in the same order.
func (h *Headers) Equal(other *Headers) bool {
	a, b := h.All(), other.All()
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if !strings.EqualFold(a[i].Name, b[i].Name) || !slices.Equal(a[i].Values, b[i].Values) {
			return false
		}
	}

	return true
}

// With returns a collection where the header's values are replaced by the passed ones.
// Passing no values removes the header.
func (h *Headers) With(name string, values ...string) (*Headers, error) {
	if err := validate(name, values); err != nil {
		return nil, err
	}

	return &Headers{storage: h.storage.Clone().Set(name, values...)}, nil
}

// WithAdded returns a collection where the values are appended to the existing ones.
func (h *Headers) WithAdded(name string, values ...string) (*Headers, error) {
	if err := validate(name, values); err != nil {
		return nil, err
	}

	storage := h.storage.Clone()
	for _, value := range values {
		storage.Add(name, value)
	}

	return &Headers{storage: storage}, nil
}

// Without returns a collection without the header. If there's no such header, the receiver
// itself is returned.
func (h *Headers) Without(name string) *Headers {
	if !h.storage.Has(name) {
		return h
	}

	return &Headers{storage: h.storage.Clone().Delete(name)}
}

// Snapshot implements Source. Plain collections are immutable, so they are their own
// snapshot.
func (h *Headers) Snapshot() *Headers {
	return h
}

// Detach implements Source.
func (h *Headers) Detach() *Headers {
	return h
}

// State implements Source. Plain collections are never bound.
func (h *Headers) State() binding.State {
	return binding.Unbound
}

// Set implements Source via With.
func (h *Headers) Set(name string, values ...string) (Source, error) {
	headers, err := h.With(name, values...)
	if err != nil {
		return nil, err
	}

	return headers, nil
}

// Add implements Source via WithAdded.
func (h *Headers) Add(name string, values ...string) (Source, error) {
	headers, err := h.WithAdded(name, values...)
	if err != nil {
		return nil, err
	}

	return headers, nil
}

// Remove implements Source via Without.
func (h *Headers) Remove(name string) (Source, error) {
	return h.Without(name), nil
}

func validate(name string, values []string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	for _, value := range values {
		if err := ValidateValue(value); err != nil {
			return err
		}
	}

	return nil
}

// ValidateName checks the name against [A-Za-z][A-Za-z0-9]*(-[A-Za-z0-9]+)*
func ValidateName(name string) error {
	if len(name) == 0 || !isAlpha(name[0]) || name[len(name)-1] == '-' {
		return fmt.Errorf("%w: %q", errors.ErrInvalidHeaderName, name)
	}

	for i := 1; i < len(name); i++ {
		switch c := name[i]; {
		case isAlpha(c) || isDigit(c):
		case c == '-' && name[i-1] != '-':
		default:
			return fmt.Errorf("%w: %q", errors.ErrInvalidHeaderName, name)
		}
	}

	return nil
}

// ValidateValue rejects control characters except the horizontal tab.
func ValidateValue(value string) error {
	for i := 0; i < len(value); i++ {
		if c := value[i]; (c < 0x20 && c != '\t') || c == 0x7f {
			return fmt.Errorf("%w: %q", errors.ErrInvalidHeaderValue, value)
		}
	}

	return nil
}

func isAlpha(c byte) bool {
	return (c|0x20) >= 'a' && (c|0x20) <= 'z'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
