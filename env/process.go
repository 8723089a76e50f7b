// Package env provides the live environment message envelopes bind to: server variables,
// request parameters, the outgoing header list, the response status register and the
// output buffer stack. A hosting runtime creates one Process per handled request.
package env

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"runtime"
	"strconv"
	"strings"

	"github.com/indigo-web/message/errors"
	"github.com/indigo-web/message/http/status"
)

// Process is an in-memory environment of a single request/response cycle. It plays the role
// of process-global state in the synchronous execution model: whatever is written into it is
// what the client is going to receive.
//
// Process is not safe for concurrent use. Exactly one request is expected to be handled by it.
type Process struct {
	// Server holds server variables: REQUEST_METHOD, SERVER_PROTOCOL, REQUEST_URI, HTTP_*
	// entries and so on.
	Server  map[string]string
	Cookies map[string]string
	Query   url.Values
	Post    url.Values
	Files   Files
	input   []byte

	lines   []string
	code    int
	reason  string
	proto   string
	sent    bool
	file    string
	line    int
	buffers []*bytes.Buffer
	sink    io.Writer
	cgi     bool
}

// NewProcess returns an empty environment writing the committed response into an internal
// buffer, which is available via Committed.
func NewProcess() *Process {
	return &Process{
		Server:  make(map[string]string),
		Cookies: make(map[string]string),
		Query:   make(url.Values),
		Post:    make(url.Values),
		Files:   make(Files),
		code:    int(status.OK),
		proto:   "1.1",
		sink:    new(bytes.Buffer),
	}
}

// WithInput sets the raw request body.
func (p *Process) WithInput(input []byte) *Process {
	p.input = input
	return p
}

// WithSink redirects committed output into the writer.
func (p *Process) WithSink(w io.Writer) *Process {
	p.sink = w
	return p
}

func (p *Process) ServerParams() map[string]string {
	return p.Server
}

func (p *Process) CookieParams() map[string]string {
	return p.Cookies
}

func (p *Process) QueryParams() url.Values {
	return p.Query
}

func (p *Process) PostParams() url.Values {
	return p.Post
}

func (p *Process) UploadedFiles() Files {
	return p.Files
}

// Input returns a fresh reader over the raw request body, so it can be consumed many times.
func (p *Process) Input() io.Reader {
	return bytes.NewReader(p.input)
}

// SetHeader queues a raw header line. Lines starting with `HTTP/` set the status line
// instead.
func (p *Process) SetHeader(line string, replace bool, code int) error {
	if p.sent {
		return fmt.Errorf("%w: output started at %s:%d", errors.ErrHeadersSent, p.file, p.line)
	}

	if strings.HasPrefix(line, "HTTP/") {
		return p.setStatusLine(line)
	}

	name, _, found := strings.Cut(line, ":")
	if !found || len(strings.TrimSpace(name)) == 0 {
		return fmt.Errorf("%w: %q", errors.ErrInvalidHeaderName, line)
	}

	if replace {
		p.RemoveHeader(name)
	}

	p.lines = append(p.lines, line)
	if code != 0 {
		p.SetResponseCode(code)
	}

	return nil
}

func (p *Process) setStatusLine(line string) error {
	fields := strings.SplitN(line, " ", 3)
	if len(fields) < 2 {
		return fmt.Errorf("%w: %q", errors.ErrInvalidStatusCode, line)
	}

	code, err := strconv.Atoi(fields[1])
	if err != nil {
		return fmt.Errorf("%w: %q", errors.ErrInvalidStatusCode, line)
	}

	p.proto = strings.TrimPrefix(fields[0], "HTTP/")
	p.code = code
	p.reason = ""
	if len(fields) == 3 {
		p.reason = fields[2]
	}

	return nil
}

// RemoveHeader drops every queued line with the name. Empty name drops everything.
func (p *Process) RemoveHeader(name string) {
	if p.sent {
		return
	}

	if len(name) == 0 {
		p.lines = nil
		return
	}

	n := 0
	for _, line := range p.lines {
		if lineName, _, _ := strings.Cut(line, ":"); !strings.EqualFold(strings.TrimSpace(lineName), name) {
			p.lines[n] = line
			n++
		}
	}

	p.lines = p.lines[:n]
}

// HeaderList returns a copy of the queued header lines.
func (p *Process) HeaderList() []string {
	return append([]string(nil), p.lines...)
}

// HeadersSent reports whether any output reached the sink, and where it was produced.
func (p *Process) HeadersSent() (sent bool, file string, line int) {
	return p.sent, p.file, p.line
}

func (p *Process) ResponseCode() int {
	return p.code
}

// SetResponseCode sets the response status code and returns the previous one. The custom
// reason phrase, if any, is reset.
func (p *Process) SetResponseCode(code int) (prev int) {
	prev = p.code
	if code != prev {
		p.reason = ""
	}

	p.code = code
	return prev
}

// ReasonPhrase returns the reason phrase set via a status line, or the default one.
func (p *Process) ReasonPhrase() string {
	if len(p.reason) > 0 {
		return p.reason
	}

	return string(status.Text(status.Code(p.code)))
}

// ProtocolVersion returns the version of the response status line.
func (p *Process) ProtocolVersion() string {
	return p.proto
}

// ObLevel returns the nesting level of output buffering. Zero means no buffering.
func (p *Process) ObLevel() int {
	return len(p.buffers)
}

// ObStart opens a new output buffer on top of the stack.
func (p *Process) ObStart() error {
	if p.sink == nil {
		return errors.ErrOutputUnavailable
	}

	p.buffers = append(p.buffers, new(bytes.Buffer))
	return nil
}

// ObContents returns the content of the topmost buffer.
func (p *Process) ObContents() (string, error) {
	top, err := p.top()
	if err != nil {
		return "", err
	}

	return top.String(), nil
}

// ObLength returns the length of the topmost buffer.
func (p *Process) ObLength() (int, error) {
	top, err := p.top()
	if err != nil {
		return 0, err
	}

	return top.Len(), nil
}

// ObClean discards the content of the topmost buffer.
func (p *Process) ObClean() error {
	top, err := p.top()
	if err != nil {
		return err
	}

	top.Reset()
	return nil
}

// ObFlush passes the content of the topmost buffer one level down, or into the sink if it
// is the last buffer.
func (p *Process) ObFlush() error {
	top, err := p.top()
	if err != nil {
		return err
	}

	data := top.Bytes()
	top.Reset()

	return p.writeBelow(len(p.buffers)-1, data)
}

// ObEndFlush flushes the topmost buffer and removes it from the stack.
func (p *Process) ObEndFlush() error {
	if err := p.ObFlush(); err != nil {
		return err
	}

	p.buffers = p.buffers[:len(p.buffers)-1]
	return nil
}

// Write echoes the data into the topmost buffer, or straight into the sink if buffering
// is disabled.
func (p *Process) Write(b []byte) (n int, err error) {
	if len(p.buffers) > 0 {
		return p.buffers[len(p.buffers)-1].Write(b)
	}

	return len(b), p.writeBelow(0, b)
}

// Finish flushes every output buffer and commits the headers, even if there was no output
// at all.
func (p *Process) Finish() error {
	for len(p.buffers) > 0 {
		if err := p.ObEndFlush(); err != nil {
			return err
		}
	}

	return p.commit(2)
}

// Committed returns everything written into the default sink: the header block followed
// by the body. Returns an empty string if the sink was replaced.
func (p *Process) Committed() string {
	if buff, ok := p.sink.(*bytes.Buffer); ok {
		return buff.String()
	}

	return ""
}

func (p *Process) top() (*bytes.Buffer, error) {
	if len(p.buffers) == 0 {
		return nil, errors.ErrOutputBufferingDisabled
	}

	return p.buffers[len(p.buffers)-1], nil
}

func (p *Process) writeBelow(level int, data []byte) error {
	if level > 0 {
		_, err := p.buffers[level-1].Write(data)
		return err
	}

	if len(data) == 0 {
		return nil
	}

	if err := p.commit(3); err != nil {
		return err
	}

	_, err := p.sink.Write(data)
	return err
}

// commit renders the header block into the sink. The caller depth is used to record where
// the output has been started from.
func (p *Process) commit(depth int) error {
	if p.sent {
		return nil
	}

	if p.sink == nil {
		return errors.ErrOutputUnavailable
	}

	p.sent = true
	_, p.file, p.line, _ = runtime.Caller(depth)

	var block strings.Builder
	if p.cgi {
		block.WriteString("Status: ")
	} else {
		block.WriteString("HTTP/" + p.proto + " ")
	}

	block.WriteString(strconv.Itoa(p.code))
	block.WriteByte(' ')
	block.WriteString(p.ReasonPhrase())
	block.WriteString("\r\n")

	for _, line := range p.lines {
		block.WriteString(line)
		block.WriteString("\r\n")
	}

	block.WriteString("\r\n")
	_, err := io.WriteString(p.sink, block.String())

	return err
}
