package qparams

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/indigo-web/message/internal/strutil"
)

type CB = func(k string, v string)

// Parse walks an application/x-www-form-urlencoded string and calls back on every pair.
// Keys without the equality sign get an empty value, empty segments are skipped.
func Parse(data string, cb CB) error {
	for len(data) > 0 {
		var pair string
		pair, data, _ = strings.Cut(data, "&")
		if len(pair) == 0 {
			continue
		}

		if containsIllegalSymbol(pair) {
			return fmt.Errorf("illegal character in %q", pair)
		}

		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, ok := strutil.FormDecode(rawKey)
		if !ok || len(key) == 0 {
			return fmt.Errorf("malformed key in %q", pair)
		}

		value, ok := strutil.FormDecode(rawValue)
		if !ok {
			return fmt.Errorf("malformed value in %q", pair)
		}

		cb(key, value)
	}

	return nil
}

// Into returns a callback storing pairs into the values.
func Into(values url.Values) CB {
	return func(k string, v string) {
		values.Add(k, v)
	}
}

// Values parses the data into a fresh url.Values.
func Values(data string) (url.Values, error) {
	values := make(url.Values)
	err := Parse(data, Into(values))

	return values, err
}

func containsIllegalSymbol(data string) bool {
	for i := 0; i < len(data); i++ {
		if illegalSymbol(data[i]) {
			return true
		}
	}

	return false
}

func illegalSymbol(c byte) bool {
	return c < 0x21 || c > 0x7e
}
