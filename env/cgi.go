package env

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/indigo-web/chunkedbody"
	"github.com/indigo-web/message/http/cookie"
	"github.com/indigo-web/message/internal/qparams"
)

// FromCGI builds the environment of a CGI invocation: variables come from environ, the
// request body from stdin and the committed response goes into stdout, prefixed by a CGI
// header block. At most maxBody bytes of the body are read.
func FromCGI(environ []string, stdin io.Reader, stdout io.Writer, maxBody int64) (*Process, error) {
	p := NewProcess().WithSink(stdout)
	p.cgi = true

	for _, kv := range environ {
		key, value, found := strings.Cut(kv, "=")
		if found {
			p.Server[key] = value
		}
	}

	if proto := strings.TrimPrefix(p.Server["SERVER_PROTOCOL"], "HTTP/"); len(proto) > 0 {
		p.proto = proto
	}

	query, err := qparams.Values(p.Server["QUERY_STRING"])
	if err != nil {
		return nil, fmt.Errorf("query string: %w", err)
	}

	p.Query = query
	if p.Cookies, err = cookie.Parse(p.Server["HTTP_COOKIE"]); err != nil {
		return nil, err
	}

	input, err := readInput(p.Server, stdin, maxBody)
	if err != nil {
		return nil, err
	}

	p.input = input

	if p.Server["REQUEST_METHOD"] == "POST" {
		if err = p.parsePost(); err != nil {
			return nil, err
		}
	}

	return p, nil
}

func readInput(server map[string]string, stdin io.Reader, maxBody int64) ([]byte, error) {
	if stdin == nil {
		return nil, nil
	}

	limited := io.LimitReader(stdin, maxBody)

	if strings.Contains(strings.ToLower(server["HTTP_TRANSFER_ENCODING"]), "chunked") {
		raw, err := io.ReadAll(limited)
		if err != nil {
			return nil, err
		}

		return decodeChunked(raw)
	}

	length, err := strconv.ParseInt(server["CONTENT_LENGTH"], 10, 64)
	if err != nil || length <= 0 {
		return nil, nil
	}

	return io.ReadAll(io.LimitReader(limited, length))
}

func decodeChunked(raw []byte) (body []byte, err error) {
	parser := chunkedbody.NewParser(chunkedbody.DefaultSettings())

	for len(raw) > 0 {
		chunk, extra, err := parser.Parse(raw, false)
		body = append(body, chunk...)

		switch err {
		case nil:
		case io.EOF:
			return body, nil
		default:
			return nil, fmt.Errorf("chunked input: %w", err)
		}

		raw = extra
	}

	return nil, fmt.Errorf("chunked input: %w", io.ErrUnexpectedEOF)
}

func (p *Process) parsePost() error {
	mediaType, params, err := mime.ParseMediaType(p.Server["CONTENT_TYPE"])
	if err != nil {
		return nil
	}

	switch mediaType {
	case "application/x-www-form-urlencoded":
		post, err := qparams.Values(string(p.input))
		if err != nil {
			return fmt.Errorf("form body: %w", err)
		}

		p.Post = post
	case "multipart/form-data":
		return p.parseMultipart(params["boundary"])
	}

	return nil
}

func (p *Process) parseMultipart(boundary string) error {
	reader := multipart.NewReader(strings.NewReader(string(p.input)), boundary)

	for {
		part, err := reader.NextPart()
		switch err {
		case nil:
		case io.EOF:
			return nil
		default:
			return fmt.Errorf("multipart body: %w", err)
		}

		content, err := io.ReadAll(part)
		if err != nil {
			return fmt.Errorf("multipart body: %w", err)
		}

		if len(part.FileName()) == 0 {
			p.Post.Add(part.FormName(), string(content))
			continue
		}

		err = p.AddUpload(part.FormName(), part.FileName(), part.Header.Get("Content-Type"), content)
		if err != nil {
			return err
		}
	}
}
