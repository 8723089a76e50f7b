package status

import (
	"testing"

	"github.com/indigo-web/message/errors"
	"github.com/stretchr/testify/require"
)

func TestText(t *testing.T) {
	for code, text := range map[Code]Status{
		NotFound:              "Not Found",
		RequestEntityTooLarge: "Payload Too Large",
		Teapot:                "I'm a teapot",
		999:                   "",
	} {
		require.Equal(t, text, Text(code))
	}
}

func TestLine(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		line := NewLine()
		require.Equal(t, OK, line.Code())
		require.Equal(t, "OK", line.ReasonPhrase())
		require.Equal(t, "1.1", line.ProtocolVersion())
		require.Equal(t, "HTTP/1.1 200 OK", line.String())
	})

	t.Run("default reason phrase", func(t *testing.T) {
		line, err := NewLine().WithStatus(NotFound)
		require.NoError(t, err)
		require.Equal(t, "Not Found", line.ReasonPhrase())

		line, err = NewLine().WithStatus(999)
		require.NoError(t, err)
		require.Empty(t, line.ReasonPhrase())
	})

	t.Run("custom reason phrase", func(t *testing.T) {
		line, err := NewLine().WithStatus(NotFound, "Nothing Here")
		require.NoError(t, err)
		require.Equal(t, "Nothing Here", line.ReasonPhrase())
	})

	t.Run("identity on no-op", func(t *testing.T) {
		line, err := NewLine().WithStatus(Created)
		require.NoError(t, err)

		same, err := line.WithStatus(line.Code(), line.ReasonPhrase())
		require.NoError(t, err)
		require.Same(t, line, same)

		same, err = line.WithStatus(Created)
		require.NoError(t, err)
		require.Same(t, line, same)

		same, err = line.WithProtocolVersion("1.1")
		require.NoError(t, err)
		require.Same(t, line, same)
	})

	t.Run("immutability", func(t *testing.T) {
		line := NewLine()
		_, err := line.WithStatus(BadGateway)
		require.NoError(t, err)
		_, err = line.WithProtocolVersion("2")
		require.NoError(t, err)

		require.Equal(t, OK, line.Code())
		require.Equal(t, "OK", line.ReasonPhrase())
		require.Equal(t, "1.1", line.ProtocolVersion())
	})

	t.Run("invalid code", func(t *testing.T) {
		for _, code := range []Code{0, 99, 1000} {
			_, err := NewLine().WithStatus(code)
			require.ErrorIs(t, err, errors.ErrInvalidStatusCode)
		}
	})

	t.Run("invalid protocol", func(t *testing.T) {
		_, err := NewLine().WithProtocolVersion("3")
		require.ErrorIs(t, err, errors.ErrInvalidProtocol)
	})
}
