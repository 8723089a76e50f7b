package uri

// RFC 3986 character classes. Percent-encoded octets are handled separately.

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}

	return c == '-' || c == '.' || c == '_' || c == '~'
}

func isSubDelim(c byte) bool {
	switch c {
	case '!', '$', '&', '\'', '(', ')', '*', '+', ',', ';', '=':
		return true
	}

	return false
}

func isUserChar(c byte) bool {
	return isUnreserved(c) || isSubDelim(c)
}

func isPasswordChar(c byte) bool {
	return isUserChar(c) || c == ':'
}

func isHostChar(c byte) bool {
	return isUnreserved(c) || isSubDelim(c)
}

func isPathChar(c byte) bool {
	return isUnreserved(c) || isSubDelim(c) || c == ':' || c == '@' || c == '/'
}

func isQueryChar(c byte) bool {
	return isPathChar(c) || c == '?'
}
