package strutil

import (
	"strings"

	"github.com/indigo-web/message/internal/hexconv"
)

// FormDecode decodes an application/x-www-form-urlencoded token, where the plus sign
// stands for a space. False is returned on a malformed percent-encoding.
func FormDecode(str string) (string, bool) {
	str = strings.ReplaceAll(str, "+", " ")
	if strings.IndexByte(str, '%') == -1 {
		return str, true
	}

	var b strings.Builder
	b.Grow(len(str))

	for len(str) > 0 {
		percent := strings.IndexByte(str, '%')
		if percent == -1 {
			break
		}

		b.WriteString(str[:percent])
		if len(str) < percent+3 {
			return "", false
		}

		x, y := hexconv.Halfbyte[str[percent+1]], hexconv.Halfbyte[str[percent+2]]
		if x|y == 0xFF {
			return "", false
		}

		b.WriteByte(x<<4 | y)
		str = str[percent+3:]
	}

	b.WriteString(str)

	return b.String(), true
}
