package proto

import (
	"fmt"
	"strings"

	"github.com/indigo-web/message/errors"
)

type Proto uint8

const (
	Unknown Proto = 0
	HTTP10  Proto = 1 << iota
	HTTP11
	HTTP2

	HTTP1 = HTTP10 | HTTP11
)

// String returns the protocol token, e.g. HTTP/1.1
func (p Proto) String() string {
	if v := p.Version(); len(v) > 0 {
		return "HTTP/" + v
	}

	return ""
}

// Version returns the protocol version as it is used by message envelopes: 1.0, 1.1 or 2.
func (p Proto) Version() string {
	switch p {
	case HTTP10:
		return "1.0"
	case HTTP11:
		return "1.1"
	case HTTP2:
		return "2"
	default:
		return ""
	}
}

// FromVersion returns the protocol by its version. HTTP/2 is also accepted as 2.0
func FromVersion(version string) Proto {
	switch version {
	case "1.0":
		return HTTP10
	case "1.1":
		return HTTP11
	case "2", "2.0":
		return HTTP2
	default:
		return Unknown
	}
}

// FromString parses the protocol token, e.g. the SERVER_PROTOCOL variable.
func FromString(token string) Proto {
	version, found := strings.CutPrefix(token, "HTTP/")
	if !found {
		return Unknown
	}

	return FromVersion(version)
}

// Validate checks the version to be one of 1.0, 1.1 or 2.
func Validate(version string) error {
	switch version {
	case "1.0", "1.1", "2":
		return nil
	default:
		return fmt.Errorf("%w: %q", errors.ErrInvalidProtocol, version)
	}
}
