package cookie

import (
	"fmt"
	"strings"

	"github.com/indigo-web/message/errors"
)

// Parse parses the Cookie request header. These are basically key-value pairs, so the
// function isn't applicable for Set-Cookie values. Values wrapped in double quotes are
// unquoted. Later pairs override earlier ones with the same name.
func Parse(data string) (map[string]string, error) {
	jar := make(map[string]string)

	for len(data) > 0 {
		eq := strings.IndexByte(data, '=')
		if eq == -1 {
			break
		}

		key := strings.TrimSpace(data[:eq])
		data = data[eq+1:]

		if len(key) == 0 {
			return nil, fmt.Errorf("%w: empty name", errors.ErrMalformedCookie)
		}

		var value string

		if cs := strings.IndexByte(data, ';'); cs != -1 {
			value, data = data[:cs], strings.TrimLeft(data[cs+1:], " ")
		} else {
			value, data = data, ""
		}

		if len(value) > 1 && value[0] == '"' && value[len(value)-1] == '"' {
			value = value[1 : len(value)-1]
		}

		jar[key] = value
	}

	if len(data) != 0 {
		return nil, fmt.Errorf("%w: %q", errors.ErrMalformedCookie, data)
	}

	return jar, nil
}
