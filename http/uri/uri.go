// Package uri implements an immutable URI value object. Every component is validated on
// its own and can be replaced independently.
package uri

import (
	"fmt"
	"net/netip"
	"net/url"
	"strconv"
	"strings"

	"github.com/indigo-web/message/errors"
	"github.com/indigo-web/message/internal/hexconv"
)

type URI struct {
	scheme   string
	user     string
	password string
	host     string
	port     int
	path     string
	query    string
	fragment string
}

// New returns an empty URI.
func New() *URI {
	return new(URI)
}

// Parse splits the string into components and validates each of them.
func Parse(raw string) (*URI, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", errors.ErrInvalidURI, raw)
	}

	if len(u.Opaque) > 0 {
		return nil, fmt.Errorf("%w: %q", errors.ErrInvalidURI, raw)
	}

	uri := new(URI)
	if uri, err = uri.WithScheme(u.Scheme); err != nil {
		return nil, err
	}

	if u.User != nil {
		user, password, _ := strings.Cut(rawUserInfo(raw), ":")
		if uri, err = uri.WithUserInfo(user, password); err != nil {
			return nil, err
		}
	}

	host := u.Hostname()
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}

	if uri, err = uri.WithHost(host); err != nil {
		return nil, err
	}

	if rawPort := u.Port(); len(rawPort) > 0 {
		port, err := strconv.Atoi(rawPort)
		if err != nil || port == 0 {
			return nil, fmt.Errorf("%w: %q", errors.ErrInvalidPort, rawPort)
		}

		if uri, err = uri.WithPort(port); err != nil {
			return nil, err
		}
	}

	if uri, err = uri.WithPath(u.EscapedPath()); err != nil {
		return nil, err
	}

	if uri, err = uri.WithQuery(u.RawQuery); err != nil {
		return nil, err
	}

	return uri.WithFragment(u.EscapedFragment())
}

// rawUserInfo returns the userinfo exactly as it's written in the authority, keeping the
// percent-encoding in place.
func rawUserInfo(raw string) string {
	_, authority, _ := strings.Cut(raw, "//")
	if end := strings.IndexAny(authority, "/?#"); end != -1 {
		authority = authority[:end]
	}

	at := strings.LastIndexByte(authority, '@')
	if at == -1 {
		return ""
	}

	return authority[:at]
}

func (u *URI) Scheme() string {
	return u.scheme
}

// UserInfo returns `user[:password]`, or an empty string if there's no user.
func (u *URI) UserInfo() string {
	if len(u.password) > 0 {
		return u.user + ":" + u.password
	}

	return u.user
}

func (u *URI) Host() string {
	return u.host
}

// Port returns the port, or 0 if it's not set or is the default one of the scheme.
func (u *URI) Port() int {
	if port, _ := DefaultPort(u.scheme); port == u.port {
		return 0
	}

	return u.port
}

func (u *URI) Path() string {
	return u.path
}

func (u *URI) Query() string {
	return u.query
}

func (u *URI) Fragment() string {
	return u.fragment
}

// Authority returns `[userinfo@]host[:port]`. Empty if there's no host.
func (u *URI) Authority() string {
	if len(u.host) == 0 {
		return ""
	}

	authority := u.host
	if userinfo := u.UserInfo(); len(userinfo) > 0 {
		authority = userinfo + "@" + authority
	}

	if port := u.Port(); port != 0 {
		authority += ":" + strconv.Itoa(port)
	}

	return authority
}

func (u *URI) WithScheme(scheme string) (*URI, error) {
	scheme = strings.ToLower(scheme)
	if scheme == u.scheme {
		return u, nil
	}

	if _, known := DefaultPort(scheme); len(scheme) > 0 && !known {
		return nil, fmt.Errorf("%w: %q", errors.ErrUnsupportedScheme, scheme)
	}

	clone := *u
	clone.scheme = scheme
	return &clone, nil
}

// WithUserInfo replaces the user and the optional password. An empty user removes both.
func (u *URI) WithUserInfo(user string, password ...string) (*URI, error) {
	var pass string
	if len(password) > 0 && len(user) > 0 {
		pass = password[0]
	}

	if err := validate(user, isUserChar); err != nil {
		return nil, err
	}

	if err := validate(pass, isPasswordChar); err != nil {
		return nil, err
	}

	if user == u.user && pass == u.password {
		return u, nil
	}

	clone := *u
	clone.user, clone.password = user, pass
	return &clone, nil
}

// WithHost replaces the host, which is lower-cased. IPv6 addresses must be enclosed in
// brackets.
func (u *URI) WithHost(host string) (*URI, error) {
	host = strings.ToLower(host)
	if host == u.host {
		return u, nil
	}

	if err := validateHost(host); err != nil {
		return nil, err
	}

	clone := *u
	clone.host = host
	return &clone, nil
}

// WithPort replaces the port. Zero removes it.
func (u *URI) WithPort(port int) (*URI, error) {
	if port < 0 || port > 65535 {
		return nil, fmt.Errorf("%w: %d", errors.ErrInvalidPort, port)
	}

	if port == u.port {
		return u, nil
	}

	clone := *u
	clone.port = port
	return &clone, nil
}

func (u *URI) WithPath(path string) (*URI, error) {
	if path == u.path {
		return u, nil
	}

	if err := validate(path, isPathChar); err != nil {
		return nil, err
	}

	clone := *u
	clone.path = path
	return &clone, nil
}

// WithQuery replaces the query. A leading question mark is dropped.
func (u *URI) WithQuery(query string) (*URI, error) {
	query = strings.TrimPrefix(query, "?")
	if query == u.query {
		return u, nil
	}

	if err := validate(query, isQueryChar); err != nil {
		return nil, err
	}

	clone := *u
	clone.query = query
	return &clone, nil
}

// WithFragment replaces the fragment. A leading hash is dropped.
func (u *URI) WithFragment(fragment string) (*URI, error) {
	fragment = strings.TrimPrefix(fragment, "#")
	if fragment == u.fragment {
		return u, nil
	}

	if err := validate(fragment, isQueryChar); err != nil {
		return nil, err
	}

	clone := *u
	clone.fragment = fragment
	return &clone, nil
}

func (u *URI) String() string {
	var b strings.Builder

	if len(u.scheme) > 0 {
		b.WriteString(u.scheme)
		b.WriteByte(':')
	}

	authority := u.Authority()
	if len(authority) > 0 || u.scheme == "file" {
		b.WriteString("//")
		b.WriteString(authority)
	}

	path := u.path
	switch {
	case len(authority) > 0 && len(path) > 0 && path[0] != '/':
		path = "/" + path
	case len(authority) == 0 && strings.HasPrefix(path, "//"):
		path = "/" + strings.TrimLeft(path, "/")
	}

	b.WriteString(path)

	if len(u.query) > 0 {
		b.WriteByte('?')
		b.WriteString(u.query)
	}

	if len(u.fragment) > 0 {
		b.WriteByte('#')
		b.WriteString(u.fragment)
	}

	return b.String()
}

func validateHost(host string) error {
	if strings.HasPrefix(host, "[") {
		if !strings.HasSuffix(host, "]") {
			return fmt.Errorf("%w: host %q", errors.ErrInvalidURI, host)
		}

		if addr, err := netip.ParseAddr(host[1 : len(host)-1]); err != nil || !addr.Is6() {
			return fmt.Errorf("%w: host %q", errors.ErrInvalidURI, host)
		}

		return nil
	}

	return validate(host, isHostChar)
}

func validate(str string, allowed func(byte) bool) error {
	for i := 0; i < len(str); i++ {
		switch c := str[i]; {
		case c == '%':
			if i+2 >= len(str) || !hexconv.IsHex(str[i+1]) || !hexconv.IsHex(str[i+2]) {
				return fmt.Errorf("%w: malformed percent-encoding in %q", errors.ErrInvalidURI, str)
			}

			i += 2
		case !allowed(c):
			return fmt.Errorf("%w: illegal character %q in %q", errors.ErrInvalidURI, c, str)
		}
	}

	return nil
}
