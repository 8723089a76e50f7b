package http

import (
	"fmt"
	"io"
	"maps"
	"net/url"
	"strconv"
	"strings"

	"github.com/indigo-web/message/binding"
	"github.com/indigo-web/message/config"
	"github.com/indigo-web/message/env"
	"github.com/indigo-web/message/errors"
	"github.com/indigo-web/message/http/attribute"
	"github.com/indigo-web/message/http/body"
	"github.com/indigo-web/message/http/headers"
	"github.com/indigo-web/message/http/method"
	"github.com/indigo-web/message/http/mime"
	"github.com/indigo-web/message/http/proto"
	"github.com/indigo-web/message/http/stream"
	"github.com/indigo-web/message/http/upload"
	"github.com/indigo-web/message/http/uri"
)

// Names of attributes every bound request carries, unless overridden.
const (
	AttrClientIP     = "client_ip"
	AttrIsXHR        = "is_xhr"
	AttrLocalReferer = "local_referer"
)

// ServerRequest is an incoming request together with the environment it came with: server
// variables, cookies, query and post parameters, uploaded files and attributes.
//
// A request bound to the environment (see BindToEnvironment) reads its parameters from the
// environment, either sharing the very same maps (by reference) or their copies. Modifying
// a request bound by reference writes through to the environment. Any modification of a
// bound request turns the receiver stale, handing the binding over to the returned request.
//
// ServerRequest isn't safe for concurrent use, as the parsed body is memoized lazily.
type ServerRequest struct {
	request
	server     map[string]string
	cookies    map[string]string
	query      url.Values
	post       url.Values
	files      upload.Tree
	attributes map[string]any
	parsed     parsedBody
	cfg        *config.Config
	env        env.Request
	byRef      bool
	state      binding.State
}

// parsedBody memoizes the parsed body by the content type and the size of the body it was
// parsed from.
type parsedBody struct {
	pinned      bool
	valid       bool
	contentType string
	size        int64
	value       any
	err         error
}

// NewServerRequest returns a standalone request, not bound to any environment.
func NewServerRequest(cfg *config.Config, method string, u *uri.URI, server map[string]string) (*ServerRequest, error) {
	r, err := newRequest(method, u)
	if err != nil {
		return nil, err
	}

	if server == nil {
		server = make(map[string]string)
	}

	return &ServerRequest{
		request:    r,
		server:     server,
		cookies:    make(map[string]string),
		query:      make(url.Values),
		post:       make(url.Values),
		files:      make(upload.Tree),
		attributes: make(map[string]any),
		cfg:        cfg,
	}, nil
}

// FromEnvironment returns a request bound to the environment.
func FromEnvironment(cfg *config.Config, e env.Request, byReference bool) (*ServerRequest, error) {
	r, err := NewServerRequest(cfg, method.GET, nil, nil)
	if err != nil {
		return nil, err
	}

	return r.BindToEnvironment(e, byReference)
}

// ServerParams returns server variables. Modifying the map is the same as modifying the
// environment, if the request is bound by reference.
func (r *ServerRequest) ServerParams() map[string]string {
	return r.server
}

func (r *ServerRequest) CookieParams() map[string]string {
	return r.cookies
}

func (r *ServerRequest) QueryParams() url.Values {
	return r.query
}

func (r *ServerRequest) UploadedFiles() upload.Tree {
	return r.files
}

// IsStale reports the binding state: binding.Unbound for requests never bound to the
// environment, binding.Bound for the live one and binding.Stale for detached ones.
func (r *ServerRequest) IsStale() binding.State {
	return r.state
}

// Attribute returns the value of the attribute. Resolvers are resolved against the
// request every time.
func (r *ServerRequest) Attribute(name string) (any, error) {
	value, found := r.attributes[name]
	if !found {
		return nil, nil
	}

	if resolver, ok := value.(attribute.Resolver); ok {
		return resolver.Resolve(r)
	}

	return value, nil
}

// AttributeOr returns the value of the attribute, or the fallback if there's no such
// attribute or it failed to resolve.
func (r *ServerRequest) AttributeOr(name string, or any) any {
	value, err := r.Attribute(name)
	if err != nil || value == nil {
		return or
	}

	return value
}

// Attributes returns names of all the attributes.
func (r *ServerRequest) Attributes() []string {
	names := make([]string, 0, len(r.attributes))
	for name := range r.attributes {
		names = append(names, name)
	}

	return names
}

// ParsedBody returns the body parsed according to its content type. The result is memoized
// until either the Content-Type header or the size of the body changes.
//
// Bound POST requests with form content types return post parameters of the environment.
// Otherwise, see body.Parser for supported content types.
func (r *ServerRequest) ParsedBody() (any, error) {
	if r.parsed.pinned {
		return r.parsed.value, nil
	}

	contentType := r.HeaderLine(headers.ContentType)
	size, err := r.body.Size()
	if err != nil {
		return nil, err
	}

	if r.parsed.valid && r.parsed.contentType == contentType && r.parsed.size == size {
		return r.parsed.value, r.parsed.err
	}

	value, err := r.parseBody(contentType)
	r.parsed = parsedBody{
		valid:       true,
		contentType: contentType,
		size:        size,
		value:       value,
		err:         err,
	}

	return value, err
}

func (r *ServerRequest) parseBody(contentType string) (any, error) {
	isForm := mime.IsForm(contentType) || mime.IsMultipart(contentType)
	if r.state != binding.Unbound && r.method == method.POST && isForm {
		return r.post, nil
	}

	return body.NewParser(r.cfg.Logger).Parse(contentType, []byte(r.body.String()))
}

func (r *ServerRequest) WithMethod(m string) (*ServerRequest, error) {
	core, err := r.withMethod(m)
	if err != nil {
		return nil, err
	}

	return r.derive(func(next *ServerRequest) error {
		next.request = core
		return nil
	})
}

func (r *ServerRequest) WithRequestTarget(target string) (*ServerRequest, error) {
	core, err := r.withRequestTarget(target)
	if err != nil {
		return nil, err
	}

	return r.derive(func(next *ServerRequest) error {
		next.request = core
		return nil
	})
}

// WithUri replaces the URI, see Request.WithUri.
func (r *ServerRequest) WithUri(u *uri.URI, preserveHost bool) (*ServerRequest, error) {
	return r.derive(func(next *ServerRequest) error {
		core, err := next.withUri(u, preserveHost)
		if err != nil {
			return err
		}

		next.request = core
		return nil
	})
}

func (r *ServerRequest) WithProtocolVersion(version string) (*ServerRequest, error) {
	m, err := r.withProtocolVersion(version)
	if err != nil {
		return nil, err
	}

	return r.derive(func(next *ServerRequest) error {
		next.message = m
		return nil
	})
}

// WithHeader replaces the header. Requests bound by reference write it through to server
// variables.
func (r *ServerRequest) WithHeader(name string, values ...string) (*ServerRequest, error) {
	return r.derive(func(next *ServerRequest) error {
		m, err := next.withHeader(name, values...)
		if err != nil {
			return err
		}

		next.message = m
		return nil
	})
}

func (r *ServerRequest) WithAddedHeader(name string, values ...string) (*ServerRequest, error) {
	return r.derive(func(next *ServerRequest) error {
		m, err := next.withAddedHeader(name, values...)
		if err != nil {
			return err
		}

		next.message = m
		return nil
	})
}

// WithoutHeader returns the receiver itself if there's no such header.
func (r *ServerRequest) WithoutHeader(name string) (*ServerRequest, error) {
	if !r.HasHeader(name) {
		return r, nil
	}

	return r.derive(func(next *ServerRequest) error {
		m, err := next.withoutHeader(name)
		if err != nil {
			return err
		}

		next.message = m
		return nil
	})
}

func (r *ServerRequest) WithBody(body stream.Stream) (*ServerRequest, error) {
	if body == r.body {
		return r, nil
	}

	return r.derive(func(next *ServerRequest) error {
		next.body = body
		return nil
	})
}

// WithCookieParams replaces cookies. Requests bound by reference write them through.
func (r *ServerRequest) WithCookieParams(cookies map[string]string) (*ServerRequest, error) {
	return r.derive(func(next *ServerRequest) error {
		next.cookies = replaceMap(next.cookies, cookies, r.writesThrough())
		return nil
	})
}

// WithQueryParams replaces query parameters. Requests bound by reference write them through.
func (r *ServerRequest) WithQueryParams(query url.Values) (*ServerRequest, error) {
	return r.derive(func(next *ServerRequest) error {
		next.query = replaceMap(next.query, query, r.writesThrough())
		return nil
	})
}

// WithUploadedFiles replaces uploaded files. Requests bound by reference write them through
// to the raw storage of the environment.
func (r *ServerRequest) WithUploadedFiles(files upload.Tree) (*ServerRequest, error) {
	return r.derive(func(next *ServerRequest) error {
		if r.writesThrough() {
			replaceMap(r.env.UploadedFiles(), upload.Ungroup(files), true)
		}

		next.files = files
		return nil
	})
}

// WithParsedBody pins the parsed body, so it's never parsed from the body anymore. Form
// values of requests bound by reference are written through as post parameters.
func (r *ServerRequest) WithParsedBody(parsed any) (*ServerRequest, error) {
	return r.derive(func(next *ServerRequest) error {
		if values, ok := parsed.(url.Values); ok && r.writesThrough() {
			replaceMap(next.post, values, true)
			parsed = next.post
		}

		next.parsed = parsedBody{pinned: true, value: parsed}
		return nil
	})
}

func (r *ServerRequest) WithAttribute(name string, value any) (*ServerRequest, error) {
	return r.derive(func(next *ServerRequest) error {
		next.attributes = maps.Clone(r.attributes)
		next.attributes[name] = value
		return nil
	})
}

// WithoutAttribute returns the receiver itself if there's no such attribute.
func (r *ServerRequest) WithoutAttribute(name string) (*ServerRequest, error) {
	if _, found := r.attributes[name]; !found {
		return r, nil
	}

	return r.derive(func(next *ServerRequest) error {
		next.attributes = maps.Clone(r.attributes)
		delete(next.attributes, name)
		return nil
	})
}

// BindToEnvironment returns a request built from the environment: the method, the URI, the
// protocol version and headers are derived from server variables, the body is read from the
// input. Parameters are either shared with the environment (byReference) or copied. Headers
// of a request bound by reference mirror the shared server variables.
// Attributes of the receiver are carried over, and the default ones are added.
//
// Bound requests return themselves, stale ones must be revived instead.
func (r *ServerRequest) BindToEnvironment(e env.Request, byReference bool) (*ServerRequest, error) {
	switch r.state {
	case binding.Bound:
		return r, nil
	case binding.Stale:
		return nil, errors.ErrStale
	}

	server := e.ServerParams()
	core, err := requestFromServer(server)
	if err != nil {
		return nil, err
	}

	input, err := io.ReadAll(e.Input())
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	core.body = stream.FromBytes(input)

	files, err := upload.Group(e.UploadedFiles())
	if err != nil {
		return nil, err
	}

	attributes, err := r.defaultAttributes()
	if err != nil {
		return nil, err
	}

	bound := &ServerRequest{
		request:    core,
		server:     server,
		cookies:    e.CookieParams(),
		query:      e.QueryParams(),
		post:       e.PostParams(),
		files:      files,
		attributes: attributes,
		cfg:        r.cfg,
		env:        e,
		byRef:      byReference,
		state:      binding.Bound,
	}

	if byReference {
		bound.headers = headers.BindServer(server, nil)
	} else {
		bound.copyParams()
	}

	return bound, nil
}

// DetachFromEnvironment returns a stale request: an ordinary copy of the receiver holding
// copies of its parameters. The receiver stays bound. Stale requests and requests which were
// never bound return themselves.
func (r *ServerRequest) DetachFromEnvironment() *ServerRequest {
	if r.state != binding.Bound {
		return r
	}

	detached := *r
	detached.copyParams()
	detached.state = binding.Stale

	return &detached
}

// Revive binds a stale request to the environment it was detached from again. Requests
// bound by reference write their parameters through first, so the environment holds exactly
// what the request does. Bound requests return themselves.
func (r *ServerRequest) Revive() (*ServerRequest, error) {
	switch r.state {
	case binding.Unbound:
		return nil, errors.ErrNotBound
	case binding.Bound:
		return r, nil
	}

	revived := *r
	revived.state = binding.Bound

	if r.byRef {
		revived.server = replaceMap(r.env.ServerParams(), r.server, true)
		revived.headers = headers.BindServer(revived.server, r.headers.Snapshot())
		revived.cookies = replaceMap(r.env.CookieParams(), r.cookies, true)
		revived.query = replaceMap(r.env.QueryParams(), r.query, true)
		revived.post = replaceMap(r.env.PostParams(), r.post, true)
		replaceMap(r.env.UploadedFiles(), upload.Ungroup(r.files), true)
	} else {
		revived.copyParams()
	}

	return &revived, nil
}

// derive applies the modification to a copy of the receiver. If the receiver is bound, it
// turns stale, keeping the parameters it had before the modification.
func (r *ServerRequest) derive(modify func(next *ServerRequest) error) (*ServerRequest, error) {
	next := *r
	if r.state != binding.Bound {
		if err := modify(&next); err != nil {
			return nil, err
		}

		return &next, nil
	}

	snapshot := *r
	snapshot.copyParams()

	if err := modify(&next); err != nil {
		return nil, err
	}

	*r = snapshot
	r.state = binding.Stale

	return &next, nil
}

func (r *ServerRequest) writesThrough() bool {
	return r.state == binding.Bound && r.byRef
}

func (r *ServerRequest) copyParams() {
	r.headers = r.headers.Snapshot()
	r.server = maps.Clone(r.server)
	r.cookies = maps.Clone(r.cookies)
	r.query = cloneValues(r.query)
	r.post = cloneValues(r.post)
	r.files = maps.Clone(r.files)
	if values, ok := r.parsed.value.(url.Values); ok {
		r.parsed.value = cloneValues(values)
	}
}

func (r *ServerRequest) defaultAttributes() (map[string]any, error) {
	trust, err := attribute.ParseTrust(r.cfg.Proxy.Trusted)
	if err != nil {
		return nil, err
	}

	attributes := map[string]any{
		AttrClientIP:     attribute.ClientIP{Trusted: trust},
		AttrIsXHR:        attribute.IsXHR{},
		AttrLocalReferer: attribute.LocalReferer{},
	}

	maps.Copy(attributes, r.attributes)
	return attributes, nil
}

// requestFromServer derives the method, the URI, the request target, the protocol version
// and headers from server variables.
func requestFromServer(server map[string]string) (request, error) {
	m := server["REQUEST_METHOD"]
	if len(m) == 0 {
		m = method.GET
	}

	u, err := uriFromServer(server)
	if err != nil {
		return request{}, err
	}

	core, err := newRequest(m, u)
	if err != nil {
		return request{}, err
	}

	core.headers = headers.FromServer(server)
	if target := server["REQUEST_URI"]; len(target) > 0 {
		if core, err = core.withRequestTarget(target); err != nil {
			return request{}, err
		}
	}

	if version := proto.FromString(server["SERVER_PROTOCOL"]).Version(); len(version) > 0 {
		core.proto = version
	}

	return core, nil
}

func uriFromServer(server map[string]string) (*uri.URI, error) {
	scheme := "http"
	if https := server["HTTPS"]; len(https) > 0 && !strings.EqualFold(https, "off") {
		scheme = "https"
	}

	var b strings.Builder
	host := server["HTTP_HOST"]
	if len(host) == 0 {
		host = server["SERVER_NAME"]
		if port := server["SERVER_PORT"]; len(host) > 0 && len(port) > 0 {
			if _, err := strconv.Atoi(port); err == nil {
				host += ":" + port
			}
		}
	}

	if len(host) > 0 {
		b.WriteString(scheme)
		b.WriteString("://")
		b.WriteString(host)
	}

	target := server["REQUEST_URI"]
	if len(target) == 0 || target[0] != '/' {
		target = "/" + target
	}

	b.WriteString(target)

	return uri.Parse(b.String())
}

// replaceMap makes dst hold exactly what src does. Unless inPlace is set, the content of
// src is copied into a new map instead, leaving dst untouched.
func replaceMap[M ~map[K]V, K comparable, V any](dst, src M, inPlace bool) M {
	if !inPlace || dst == nil {
		return maps.Clone(src)
	}

	src = maps.Clone(src)
	clear(dst)
	maps.Copy(dst, src)

	return dst
}

func cloneValues(values url.Values) url.Values {
	if values == nil {
		return nil
	}

	clone := make(url.Values, len(values))
	for key, vals := range values {
		clone[key] = append([]string(nil), vals...)
	}

	return clone
}
