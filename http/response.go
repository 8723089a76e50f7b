package http

import (
	"io"

	"github.com/indigo-web/message/binding"
	"github.com/indigo-web/message/config"
	"github.com/indigo-web/message/env"
	"github.com/indigo-web/message/errors"
	"github.com/indigo-web/message/http/cookie"
	"github.com/indigo-web/message/http/headers"
	"github.com/indigo-web/message/http/status"
	"github.com/indigo-web/message/http/stream"
)

// Response is an immutable response. Every modification returns a new instance, or the
// receiver itself if nothing changes.
//
// A response bound to the environment (see BindToEnvironment) mirrors the live status
// register, the outgoing header list and the output buffer: getters read them and
// modifications write through. Such modification turns the receiver stale, handing the
// binding over to the returned response, so there's only one live response at a time.
type Response struct {
	status  status.Source
	headers headers.Source
	body    stream.Stream
	env     env.Response
	state   binding.State
}

// NewResponse returns a 200 OK response of HTTP/1.1 with default headers from the config and
// an empty local body.
func NewResponse(cfg *config.Config) *Response {
	defaults := make(map[string][]string, len(cfg.Headers.Default))
	for name, value := range cfg.Headers.Default {
		defaults[name] = []string{value}
	}

	h, err := headers.FromMap(defaults)
	if err != nil {
		cfg.Logger.WithError(err).Warn("default response headers are ignored")
		h = headers.New()
	}

	return &Response{
		status:  status.NewLine(),
		headers: h,
		body:    stream.NewOutput(nil),
	}
}

func (r *Response) StatusCode() status.Code {
	return r.status.Snapshot().Code()
}

func (r *Response) ReasonPhrase() status.Status {
	return r.status.Snapshot().ReasonPhrase()
}

func (r *Response) ProtocolVersion() string {
	return r.status.Snapshot().ProtocolVersion()
}

// Headers returns all the headers in order of their first appearance.
func (r *Response) Headers() []headers.Header {
	return r.headers.Snapshot().All()
}

func (r *Response) Header(name string) []string {
	return r.headers.Snapshot().Get(name)
}

func (r *Response) HeaderLine(name string) string {
	return r.headers.Snapshot().Line(name)
}

func (r *Response) HasHeader(name string) bool {
	return r.headers.Snapshot().Has(name)
}

func (r *Response) Body() stream.Stream {
	return r.body
}

// IsStale reports the binding state: binding.Unbound for responses never bound to the
// environment, binding.Bound for the live one and binding.Stale for detached ones.
func (r *Response) IsStale() binding.State {
	return r.state
}

func (r *Response) WithStatus(code status.Code, phrase ...string) (*Response, error) {
	s, err := r.status.SetStatus(code, phrase...)
	if err != nil || s == r.status {
		return r.unchanged(err)
	}

	next := r.successor()
	next.status = s
	return next, nil
}

func (r *Response) WithProtocolVersion(version string) (*Response, error) {
	s, err := r.status.SetProtocolVersion(version)
	if err != nil || s == r.status {
		return r.unchanged(err)
	}

	next := r.successor()
	next.status = s
	return next, nil
}

func (r *Response) WithHeader(name string, values ...string) (*Response, error) {
	h, err := r.headers.Set(name, values...)
	if err != nil {
		return nil, err
	}

	next := r.successor()
	next.headers = h
	return next, nil
}

func (r *Response) WithAddedHeader(name string, values ...string) (*Response, error) {
	h, err := r.headers.Add(name, values...)
	if err != nil {
		return nil, err
	}

	next := r.successor()
	next.headers = h
	return next, nil
}

// WithoutHeader returns the receiver itself if there's no such header.
func (r *Response) WithoutHeader(name string) (*Response, error) {
	h, err := r.headers.Remove(name)
	if err != nil || h == r.headers {
		return r.unchanged(err)
	}

	next := r.successor()
	next.headers = h
	return next, nil
}

// WithCookie adds a Set-Cookie header with the cookie.
func (r *Response) WithCookie(c cookie.Cookie) (*Response, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	return r.WithAddedHeader(headers.SetCookie, c.String())
}

// WithBody replaces the body. For bound responses, the content of the body replaces the
// content of the live output buffer.
func (r *Response) WithBody(body stream.Stream) (*Response, error) {
	if body == r.body {
		return r, nil
	}

	if r.state != binding.Bound {
		next := r.successor()
		next.body = body
		return next, nil
	}

	scope, err := localScope(r.body)
	if err != nil {
		return nil, err
	}

	output, err := globalOutput(r.env, body)
	if err != nil {
		return nil, err
	}

	next := *r
	next.body = output
	r.turnStale(scope)

	return &next, nil
}

// BindToEnvironment writes the status line, the headers and the body of the response
// through to the environment and returns a response mirroring it. The body becomes a
// global output sink. Bound responses return themselves, stale ones must be revived
// instead.
func (r *Response) BindToEnvironment(e env.Response) (*Response, error) {
	switch r.state {
	case binding.Bound:
		return r, nil
	case binding.Stale:
		return nil, errors.ErrStale
	}

	s, err := status.Bind(e, r.status.Snapshot())
	if err != nil {
		return nil, err
	}

	h, err := headers.Bind(e, r.headers.Snapshot())
	if err != nil {
		return nil, err
	}

	output, err := globalOutput(e, r.body)
	if err != nil {
		return nil, err
	}

	return &Response{
		status:  s,
		headers: h,
		body:    output,
		env:     e,
		state:   binding.Bound,
	}, nil
}

// DetachFromEnvironment returns a stale response: an ordinary copy of what the receiver
// mirrors, with a local body. The receiver stays bound. Stale responses and responses which
// were never bound return themselves.
func (r *Response) DetachFromEnvironment() (*Response, error) {
	if r.state != binding.Bound {
		return r, nil
	}

	scope, err := localScope(r.body)
	if err != nil {
		return nil, err
	}

	return &Response{
		status:  r.status.Snapshot(),
		headers: r.headers.Snapshot(),
		body:    scope,
		env:     r.env,
		state:   binding.Stale,
	}, nil
}

// Revive writes the content of a stale response through to the environment it was detached
// from and returns a response mirroring it. Bound responses return themselves.
func (r *Response) Revive() (*Response, error) {
	switch r.state {
	case binding.Unbound:
		return nil, errors.ErrNotBound
	case binding.Bound:
		return r, nil
	}

	unbound := *r
	unbound.state = binding.Unbound

	return unbound.BindToEnvironment(r.env)
}

func (r *Response) unchanged(err error) (*Response, error) {
	if err != nil {
		return nil, err
	}

	return r, nil
}

// successor returns a copy of the receiver. If the receiver is bound, it turns stale.
func (r *Response) successor() *Response {
	next := *r
	if r.state == binding.Bound {
		scope, err := localScope(r.body)
		if err != nil {
			// the output buffer was closed behind our back, so there's nothing to snapshot
			scope = stream.NewOutput(nil)
		}

		r.turnStale(scope)
	}

	return &next
}

// turnStale freezes the receiver with the current content of the environment.
func (r *Response) turnStale(body stream.Stream) {
	r.status = r.status.Snapshot()
	r.headers = r.headers.Snapshot()
	r.body = body
	r.state = binding.Stale
}

// localScope copies the content of the global sink into a local one.
func localScope(body stream.Stream) (stream.Stream, error) {
	output, ok := body.(*stream.Output)
	if !ok {
		return body, nil
	}

	return output.WithLocalScope(false)
}

// globalOutput returns a global sink holding the content of the body.
func globalOutput(e env.Response, body stream.Stream) (*stream.Output, error) {
	if output, ok := body.(*stream.Output); ok && output.IsGlobal() {
		return output, nil
	}

	output := stream.NewOutput(e)
	if _, err := io.WriteString(output, body.String()); err != nil {
		return nil, err
	}

	if err := output.UseGlobally(); err != nil {
		return nil, err
	}

	return output, nil
}
