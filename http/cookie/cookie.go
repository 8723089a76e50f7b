package cookie

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/indigo-web/message/errors"
)

const expiresLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

// Cookie is a single Set-Cookie entry of a response.
type Cookie struct {
	Name    string
	Value   string
	Path    string
	Domain  string
	Expires time.Time
	// MaxAge is a delta in seconds. Zero is omitted, negative values render as Max-Age=0
	// and make the user-agent drop the cookie immediately.
	MaxAge   int
	SameSite SameSite
	Secure   bool
	HttpOnly bool
}

func New(name, value string) Cookie {
	return Cookie{Name: name, Value: value}
}

// String renders the cookie as the value of the Set-Cookie header.
func (c Cookie) String() string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte('=')
	b.WriteString(c.Value)

	if len(c.Path) > 0 {
		b.WriteString("; Path=")
		b.WriteString(c.Path)
	}

	if len(c.Domain) > 0 {
		b.WriteString("; Domain=")
		b.WriteString(c.Domain)
	}

	if !c.Expires.IsZero() {
		b.WriteString("; Expires=")
		b.WriteString(c.Expires.UTC().Format(expiresLayout))
	}

	switch {
	case c.MaxAge > 0:
		b.WriteString("; Max-Age=")
		b.WriteString(strconv.Itoa(c.MaxAge))
	case c.MaxAge < 0:
		b.WriteString("; Max-Age=0")
	}

	if len(c.SameSite) > 0 {
		b.WriteString("; SameSite=")
		b.WriteString(c.SameSite)
	}

	if c.Secure {
		b.WriteString("; Secure")
	}

	if c.HttpOnly {
		b.WriteString("; HttpOnly")
	}

	return b.String()
}

// Validate checks the name to be a valid token and the value to contain neither
// separators nor control characters.
func (c Cookie) Validate() error {
	if len(c.Name) == 0 || strings.ContainsAny(c.Name, "=;, \t") || hasControl(c.Name) {
		return fmt.Errorf("%w: name %q", errors.ErrInvalidCookie, c.Name)
	}

	if strings.ContainsAny(c.Value, "\";, \t") || hasControl(c.Value) {
		return fmt.Errorf("%w: value %q", errors.ErrInvalidCookie, c.Value)
	}

	return nil
}

func hasControl(str string) bool {
	for i := 0; i < len(str); i++ {
		if str[i] < 0x20 || str[i] == 0x7f {
			return true
		}
	}

	return false
}

type Builder struct {
	cookie Cookie
}

// Build is a chainable constructor for cookies.
func Build(name, value string) Builder {
	return Builder{New(name, value)}
}

func (b Builder) Path(path string) Builder {
	b.cookie.Path = path
	return b
}

func (b Builder) Domain(domain string) Builder {
	b.cookie.Domain = domain
	return b
}

func (b Builder) Expires(expires time.Time) Builder {
	b.cookie.Expires = expires
	return b
}

func (b Builder) MaxAge(maxAge int) Builder {
	b.cookie.MaxAge = maxAge
	return b
}

func (b Builder) SameSite(sameSite SameSite) Builder {
	b.cookie.SameSite = sameSite
	return b
}

func (b Builder) Secure(secure bool) Builder {
	b.cookie.Secure = secure
	return b
}

func (b Builder) HttpOnly(httpOnly bool) Builder {
	b.cookie.HttpOnly = httpOnly
	return b
}

func (b Builder) Cookie() Cookie {
	return b.cookie
}

type SameSite = string

const (
	SameSiteLax    SameSite = "Lax"
	SameSiteStrict SameSite = "Strict"
	SameSiteNone   SameSite = "None"
)
