package binding

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestState(t *testing.T) {
	t.Run("unbound", func(t *testing.T) {
		stale, ok := Unbound.IsStale()
		require.False(t, ok)
		require.False(t, stale)
	})

	t.Run("bound", func(t *testing.T) {
		stale, ok := Bound.IsStale()
		require.True(t, ok)
		require.False(t, stale)
	})

	t.Run("stale", func(t *testing.T) {
		stale, ok := Stale.IsStale()
		require.True(t, ok)
		require.True(t, stale)
	})

	require.Equal(t, "bound", Bound.String())
}
