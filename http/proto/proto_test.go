package proto

import (
	"testing"

	"github.com/indigo-web/message/errors"
	"github.com/stretchr/testify/require"
)

func TestProto(t *testing.T) {
	t.Run("versions", func(t *testing.T) {
		for _, p := range []Proto{HTTP10, HTTP11, HTTP2} {
			require.Equal(t, p, FromVersion(p.Version()))
			require.Equal(t, p, FromString(p.String()))
			require.NoError(t, Validate(p.Version()))
		}
	})

	t.Run("unknown", func(t *testing.T) {
		require.Equal(t, Unknown, FromString("HTTP/3"))
		require.Equal(t, Unknown, FromString("1.1"))
		require.Empty(t, Unknown.String())
	})

	t.Run("validate", func(t *testing.T) {
		err := Validate("2.0")
		require.ErrorIs(t, err, errors.ErrInvalidProtocol)
		require.Contains(t, err.Error(), `"2.0"`)
	})
}
