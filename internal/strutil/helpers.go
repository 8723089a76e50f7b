package strutil

import "strings"

// CutHeader splits a header value at the first semicolon. Both halves are returned without
// surrounding whitespace.
func CutHeader(header string) (value, params string) {
	value, params, _ = strings.Cut(header, ";")
	return StripWS(value), StripWS(params)
}

// StripWS trims spaces and horizontal tabs at both ends.
func StripWS(str string) string {
	return strings.Trim(str, " \t")
}

// Unquote drops one pair of enclosing double quotes.
func Unquote(str string) string {
	if len(str) > 1 && str[0] == '"' && str[len(str)-1] == '"' {
		return str[1 : len(str)-1]
	}

	return str
}
