package body

import (
	"net/url"
	"testing"

	"github.com/indigo-web/message/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	logger, hook := test.NewNullLogger()
	parser := NewParser(logger)

	t.Run("urlencoded", func(t *testing.T) {
		parsed, err := parser.Parse("application/x-www-form-urlencoded; charset=UTF-8", []byte("a=1&b=hello+world&a=2"))
		require.NoError(t, err)
		require.Equal(t, url.Values{"a": {"1", "2"}, "b": {"hello world"}}, parsed)
	})

	t.Run("malformed urlencoded", func(t *testing.T) {
		_, err := parser.Parse("application/x-www-form-urlencoded", []byte("a=%zz"))
		require.Error(t, err)
	})

	t.Run("multipart", func(t *testing.T) {
		_, err := parser.Parse("multipart/form-data; boundary=X", []byte("--X--"))
		require.ErrorIs(t, err, errors.ErrMultipartUnsupported)
	})

	t.Run("json", func(t *testing.T) {
		parsed, err := parser.Parse("application/json", []byte(`{"name":"gopher","tags":["a","b"]}`))
		require.NoError(t, err)
		require.Equal(t, map[string]any{"name": "gopher", "tags": []any{"a", "b"}}, parsed)
	})

	t.Run("malformed json", func(t *testing.T) {
		hook.Reset()
		parsed, err := parser.Parse("application/json", []byte(`{"name":`))
		require.NoError(t, err)
		require.Nil(t, parsed)
		require.Len(t, hook.Entries, 1)
		require.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	})

	t.Run("xml", func(t *testing.T) {
		parsed, err := parser.Parse("application/xml", []byte(`<note lang="en"><to>Tove</to><body>Hi</body></note>`))
		require.NoError(t, err)

		node, ok := parsed.(*XMLNode)
		require.True(t, ok)
		require.Equal(t, "note", node.XMLName.Local)
		require.Len(t, node.Attrs, 1)
		require.Equal(t, "en", node.Attrs[0].Value)
		require.Equal(t, "Tove", node.Child("to").Content)
		require.Nil(t, node.Child("from"))
	})

	t.Run("malformed xml", func(t *testing.T) {
		hook.Reset()
		parsed, err := parser.Parse("text/xml", []byte(`<note><to>`))
		require.NoError(t, err)
		require.Nil(t, parsed)
		require.Len(t, hook.Entries, 1)
	})

	t.Run("unknown type", func(t *testing.T) {
		parsed, err := parser.Parse("text/plain", []byte("just text"))
		require.NoError(t, err)
		require.Nil(t, parsed)
	})
}
