package errors

import (
	"errors"
)

// Validation errors. They are returned before any state is changed, so the receiver
// of a failed withX call stays exactly as it was.
var (
	ErrInvalidHeaderName    = errors.New("invalid header name")
	ErrInvalidHeaderValue   = errors.New("invalid header value")
	ErrInvalidStatusCode    = errors.New("invalid status code")
	ErrInvalidProtocol      = errors.New("invalid protocol version")
	ErrInvalidMethod        = errors.New("invalid request method")
	ErrInvalidRequestTarget = errors.New("invalid request target")
	ErrInvalidURI           = errors.New("invalid uri")
	ErrUnsupportedScheme    = errors.New("unsupported uri scheme")
	ErrInvalidPort          = errors.New("invalid port")
	ErrInvalidUpload        = errors.New("invalid uploaded files structure")
	ErrInvalidCookie        = errors.New("invalid cookie")
)

// State protocol errors signal a misuse of the environment binding.
var (
	ErrStale       = errors.New("unable to modify a stale object")
	ErrNotBound    = errors.New("object was never bound to the environment")
	ErrHeadersSent = errors.New("headers are already sent")
)

// Resource errors.
var (
	ErrStreamClosed            = errors.New("the stream is closed")
	ErrNotSeekable             = errors.New("stream isn't seekable")
	ErrNotReadable             = errors.New("stream isn't readable")
	ErrNotWritable             = errors.New("stream isn't writable")
	ErrOutputBufferingDisabled = errors.New("output buffering is not enabled")
	ErrPartialOutputRead       = errors.New("unable to partially read the output buffer, cast to string instead")
	ErrOutputUnavailable       = errors.New("failed to open the output channel")
	ErrFileMoved               = errors.New("uploaded file has already been moved")
	ErrUploadFailed            = errors.New("file upload failed")
)

// Format errors.
var (
	ErrMultipartUnsupported      = errors.New("parsing multipart/form-data isn't supported")
	ErrConflictingForwardHeaders = errors.New("conflicting forward headers")
	ErrMalformedCookie           = errors.New("cookie has a malformed syntax")
)
