package method

import (
	"testing"

	"github.com/indigo-web/message/errors"
	"github.com/stretchr/testify/require"
)

func TestMethod(t *testing.T) {
	for _, method := range List {
		require.NoError(t, Validate(method))
		require.True(t, IsKnown(method))
	}

	t.Run("extension method", func(t *testing.T) {
		require.NoError(t, Validate("PROPFIND"))
		require.False(t, IsKnown("PROPFIND"))
		require.False(t, IsKnown("get"))
	})

	t.Run("invalid", func(t *testing.T) {
		for _, tc := range []string{"", "GE T", "GET\r\n", "(GET)"} {
			require.ErrorIs(t, Validate(tc), errors.ErrInvalidMethod, tc)
		}
	})
}
