package method

import (
	"fmt"

	"github.com/indigo-web/message/errors"
)

type Method = string

const (
	GET     Method = "GET"
	HEAD    Method = "HEAD"
	POST    Method = "POST"
	PUT     Method = "PUT"
	DELETE  Method = "DELETE"
	CONNECT Method = "CONNECT"
	OPTIONS Method = "OPTIONS"
	TRACE   Method = "TRACE"
	PATCH   Method = "PATCH"
)

// List contains all the well-known HTTP methods.
var List = []Method{GET, HEAD, POST, PUT, DELETE, CONNECT, OPTIONS, TRACE, PATCH}

// IsKnown tells whether the method is one of the well-known ones. The comparison is
// case-sensitive, as methods are.
func IsKnown(m Method) bool {
	for _, known := range List {
		if m == known {
			return true
		}
	}

	return false
}

// Validate checks the method to be a valid token (RFC 9110, 5.6.2). Extension methods are
// allowed.
func Validate(m string) error {
	if len(m) == 0 {
		return fmt.Errorf("%w: %q", errors.ErrInvalidMethod, m)
	}

	for i := 0; i < len(m); i++ {
		if !isTokenChar(m[i]) {
			return fmt.Errorf("%w: %q", errors.ErrInvalidMethod, m)
		}
	}

	return nil
}

func isTokenChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}

	switch c {
	case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	}

	return false
}
