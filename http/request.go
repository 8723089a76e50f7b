package http

import (
	"github.com/indigo-web/message/http/stream"
	"github.com/indigo-web/message/http/uri"
)

// Request is an outgoing, client-side request. It's a pure value object, every modification
// returns a new instance.
type Request struct {
	request
}

// NewRequest returns a request with the method and the URI. The Host header is derived from
// the URI. Nil URI is the same as an empty one.
func NewRequest(method string, u *uri.URI) (*Request, error) {
	r, err := newRequest(method, u)
	if err != nil {
		return nil, err
	}

	return &Request{request: r}, nil
}

func (r *Request) derive(next request, err error) (*Request, error) {
	if err != nil {
		return nil, err
	}

	if next == r.request {
		return r, nil
	}

	return &Request{request: next}, nil
}

func (r *Request) WithMethod(method string) (*Request, error) {
	return r.derive(r.withMethod(method))
}

// WithRequestTarget overrides the request target derived from the URI, e.g. for the asterisk
// (`*`) or the absolute forms. Whitespaces aren't allowed.
func (r *Request) WithRequestTarget(target string) (*Request, error) {
	return r.derive(r.withRequestTarget(target))
}

// WithUri replaces the URI. Unless preserveHost is set, the Host header is replaced by the
// host of the URI, if it has one. With preserveHost, the header is set only if it's missing.
func (r *Request) WithUri(u *uri.URI, preserveHost bool) (*Request, error) {
	return r.derive(r.withUri(u, preserveHost))
}

func (r *Request) WithProtocolVersion(version string) (*Request, error) {
	next := r.request
	m, err := next.withProtocolVersion(version)
	next.message = m

	return r.derive(next, err)
}

func (r *Request) WithHeader(name string, values ...string) (*Request, error) {
	next := r.request
	m, err := next.withHeader(name, values...)
	next.message = m

	return r.derive(next, err)
}

func (r *Request) WithAddedHeader(name string, values ...string) (*Request, error) {
	next := r.request
	m, err := next.withAddedHeader(name, values...)
	next.message = m

	return r.derive(next, err)
}

func (r *Request) WithoutHeader(name string) *Request {
	next := r.request
	// plain collections never fail to remove a header
	next.message, _ = next.withoutHeader(name)
	req, _ := r.derive(next, nil)

	return req
}

func (r *Request) WithBody(body stream.Stream) *Request {
	next := r.request
	next.body = body
	req, _ := r.derive(next, nil)

	return req
}
