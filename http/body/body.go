// Package body parses request bodies by their content type.
package body

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/indigo-web/message/errors"
	"github.com/indigo-web/message/http/mime"
	"github.com/indigo-web/message/internal/qparams"
	"github.com/indigo-web/utils/uf"
	json "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

// Parser turns request bodies into parsed values.
type Parser struct {
	logger logrus.FieldLogger
}

func NewParser(logger logrus.FieldLogger) Parser {
	return Parser{logger: logger}
}

// Parse interprets the raw body according to the content type:
//
//   - application/x-www-form-urlencoded gives url.Values;
//   - multipart/form-data isn't supported and results in errors.ErrMultipartUnsupported;
//   - JSON gives whatever json decodes into `any`;
//   - XML gives *XMLNode.
//
// Malformed JSON and XML are logged and result in nil without an error. Other content
// types give nil as well.
func (p Parser) Parse(contentType string, raw []byte) (any, error) {
	switch {
	case mime.IsForm(contentType):
		values, err := qparams.Values(uf.B2S(raw))
		if err != nil {
			return nil, fmt.Errorf("form body: %w", err)
		}

		return values, nil
	case mime.IsMultipart(contentType):
		return nil, errors.ErrMultipartUnsupported
	case mime.IsJSON(contentType):
		return p.json(raw), nil
	case mime.IsXML(contentType):
		if node := p.xml(raw); node != nil {
			return node, nil
		}

		return nil, nil
	default:
		return nil, nil
	}
}

func (p Parser) json(raw []byte) any {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	var value any
	if err := json.ConfigCompatibleWithStandardLibrary.Unmarshal(raw, &value); err != nil {
		p.logger.WithError(err).Warn("failed to parse JSON body")
		return nil
	}

	return value
}

// XMLNode is a generic XML element.
type XMLNode struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Content  string     `xml:",chardata"`
	Children []*XMLNode `xml:",any"`
}

// Child returns the first child element with the local name, or nil.
func (n *XMLNode) Child(name string) *XMLNode {
	for _, child := range n.Children {
		if child.XMLName.Local == name {
			return child
		}
	}

	return nil
}

func (p Parser) xml(raw []byte) *XMLNode {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	node := new(XMLNode)
	if err := xml.Unmarshal(raw, node); err != nil {
		p.logger.WithError(err).Warn("failed to parse XML body")
		return nil
	}

	return node
}
