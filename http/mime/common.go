package mime

import (
	"strings"

	"github.com/indigo-web/message/internal/strutil"
)

type MIME = string

const (
	OctetStream    MIME = "application/octet-stream"
	Plain          MIME = "text/plain"
	HTML           MIME = "text/html"
	XML            MIME = "text/xml"
	ApplicationXML MIME = "application/xml"
	JSON           MIME = "application/json"
	FormUrlencoded MIME = "application/x-www-form-urlencoded"
	Multipart      MIME = "multipart/form-data"
)

// Strip returns the lower-cased media type without parameters.
func Strip(contentType string) MIME {
	value, _ := strutil.CutHeader(contentType)
	return strings.ToLower(value)
}

// Complies returns whether two MIMEs are compatible. Empty MIME is
// considered compatible with any other MIME
func Complies(mime MIME, with string) bool {
	with = Strip(with)
	return len(with) == 0 || with == mime
}

// IsJSON matches application/json and structured syntax suffixes, e.g. application/ld+json.
func IsJSON(contentType string) bool {
	mime := Strip(contentType)
	return mime == JSON || strings.HasSuffix(mime, "+json")
}

// IsXML matches text/xml, application/xml and structured syntax suffixes, e.g.
// application/atom+xml.
func IsXML(contentType string) bool {
	mime := Strip(contentType)
	return mime == XML || mime == ApplicationXML || strings.HasSuffix(mime, "+xml")
}

func IsForm(contentType string) bool {
	return Strip(contentType) == FormUrlencoded
}

func IsMultipart(contentType string) bool {
	return Strip(contentType) == Multipart
}
