package env

import (
	"io"
	"net/url"
)

// Request is the request snapshot side of the environment.
type Request interface {
	ServerParams() map[string]string
	CookieParams() map[string]string
	QueryParams() url.Values
	PostParams() url.Values
	UploadedFiles() Files
	Input() io.Reader
}

// Response is the response channel side of the environment.
type Response interface {
	io.Writer
	SetHeader(line string, replace bool, code int) error
	RemoveHeader(name string)
	HeaderList() []string
	HeadersSent() (sent bool, file string, line int)
	ResponseCode() int
	SetResponseCode(code int) (prev int)
	ObLevel() int
	ObStart() error
	ObContents() (string, error)
	ObLength() (int, error)
	ObClean() error
	ObFlush() error
}

// Environment is the live state message envelopes bind to.
type Environment interface {
	Request
	Response
}

var _ Environment = (*Process)(nil)
