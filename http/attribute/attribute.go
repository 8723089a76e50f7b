// Package attribute provides request attributes computed on demand against the request
// they are looked up from.
package attribute

import (
	"strings"

	"github.com/indigo-web/message/http/headers"
	"github.com/indigo-web/message/http/uri"
)

// Request is the view of a server request resolvers work with.
type Request interface {
	ServerParams() map[string]string
	Header(name string) []string
	HeaderLine(name string) string
	Uri() *uri.URI
}

// Resolver computes the value of an attribute. Attributes holding a Resolver are resolved
// every time they are looked up.
type Resolver interface {
	Resolve(r Request) (any, error)
}

// Static is an attribute with a fixed value.
type Static struct {
	Value any
}

func (s Static) Resolve(Request) (any, error) {
	return s.Value, nil
}

// IsXHR reports whether the request was made by XMLHttpRequest.
type IsXHR struct{}

func (IsXHR) Resolve(r Request) (any, error) {
	return strings.EqualFold(r.HeaderLine(headers.XRequestedWith), "XMLHttpRequest"), nil
}

// LocalReferer resolves into the path and query of the referer if it points to the same host
// the request was made to. Otherwise, the value is nil. With CheckScheme, schemes must match
// as well.
type LocalReferer struct {
	CheckScheme bool
}

func (l LocalReferer) Resolve(r Request) (any, error) {
	raw := r.HeaderLine(headers.Referer)
	if len(raw) == 0 {
		return nil, nil
	}

	referer, err := uri.Parse(raw)
	if err != nil || len(referer.Host()) == 0 {
		return nil, nil
	}

	host := strings.ToLower(r.HeaderLine(headers.Host))
	if len(host) == 0 {
		host = r.Uri().Authority()
	}

	if hostport(referer) != host {
		return nil, nil
	}

	if l.CheckScheme && referer.Scheme() != r.Uri().Scheme() {
		return nil, nil
	}

	local := referer.Path()
	if len(local) == 0 {
		local = "/"
	}

	if len(referer.Query()) > 0 {
		local += "?" + referer.Query()
	}

	return local, nil
}

func hostport(u *uri.URI) string {
	authority := u.Authority()
	if at := strings.LastIndexByte(authority, '@'); at != -1 {
		return authority[at+1:]
	}

	return authority
}
