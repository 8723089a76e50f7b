// Package http implements immutable HTTP message envelopes: Request, ServerRequest and
// Response. ServerRequest and Response can be bound to the live environment, turning them
// into mirrors of what the environment holds. See BindToEnvironment for details.
package http

import (
	"fmt"
	"strings"

	"github.com/indigo-web/message/errors"
	"github.com/indigo-web/message/http/headers"
	"github.com/indigo-web/message/http/method"
	"github.com/indigo-web/message/http/proto"
	"github.com/indigo-web/message/http/stream"
	"github.com/indigo-web/message/http/uri"
)

// message holds what requests have in common.
type message struct {
	proto   string
	headers headers.Source
	body    stream.Stream
}

func newMessage() message {
	return message{
		proto:   proto.HTTP11.Version(),
		headers: headers.New(),
		body:    stream.NewMemory(),
	}
}

func (m message) ProtocolVersion() string {
	return m.proto
}

// Headers returns all the headers in order of their first appearance.
func (m message) Headers() []headers.Header {
	return m.headers.Snapshot().All()
}

func (m message) Header(name string) []string {
	return m.headers.Snapshot().Get(name)
}

func (m message) HeaderLine(name string) string {
	return m.headers.Snapshot().Line(name)
}

func (m message) HasHeader(name string) bool {
	return m.headers.Snapshot().Has(name)
}

func (m message) Body() stream.Stream {
	return m.body
}

func (m message) withProtocolVersion(version string) (message, error) {
	if err := proto.Validate(version); err != nil {
		return m, err
	}

	m.proto = version
	return m, nil
}

func (m message) withHeader(name string, values ...string) (message, error) {
	h, err := m.headers.Set(name, values...)
	if err != nil {
		return m, err
	}

	m.headers = h
	return m, nil
}

func (m message) withAddedHeader(name string, values ...string) (message, error) {
	h, err := m.headers.Add(name, values...)
	if err != nil {
		return m, err
	}

	m.headers = h
	return m, nil
}

func (m message) withoutHeader(name string) (message, error) {
	h, err := m.headers.Remove(name)
	if err != nil {
		return m, err
	}

	m.headers = h
	return m, nil
}

// request holds what client and server requests have in common.
type request struct {
	message
	method string
	target string
	uri    *uri.URI
}

func newRequest(m string, u *uri.URI) (request, error) {
	if err := method.Validate(m); err != nil {
		return request{}, err
	}

	if u == nil {
		u = uri.New()
	}

	r := request{message: newMessage(), method: m}
	return r.withUri(u, false)
}

func (r request) Method() string {
	return r.method
}

// RequestTarget returns the explicitly set request target or derives the origin form of it
// from the URI.
func (r request) RequestTarget() string {
	if len(r.target) > 0 {
		return r.target
	}

	target := r.uri.Path()
	if len(target) == 0 {
		target = "/"
	}

	if query := r.uri.Query(); len(query) > 0 {
		target += "?" + query
	}

	return target
}

func (r request) Uri() *uri.URI {
	return r.uri
}

func (r request) withMethod(m string) (request, error) {
	if err := method.Validate(m); err != nil {
		return r, err
	}

	r.method = m
	return r, nil
}

func (r request) withRequestTarget(target string) (request, error) {
	if len(target) == 0 || strings.ContainsAny(target, " \t\r\n") {
		return r, fmt.Errorf("%w: %q", errors.ErrInvalidRequestTarget, target)
	}

	r.target = target
	return r, nil
}

// withUri replaces the URI and updates the Host header from it. With preserveHost, the
// header is only set if there was none.
func (r request) withUri(u *uri.URI, preserveHost bool) (request, error) {
	r.uri = u

	host := u.Host()
	if len(host) == 0 || (preserveHost && len(r.HeaderLine(headers.Host)) > 0) {
		return r, nil
	}

	if port := u.Port(); port != 0 {
		host += fmt.Sprintf(":%d", port)
	}

	var err error
	r.message, err = r.withHeader(headers.Host, host)
	return r, err
}
