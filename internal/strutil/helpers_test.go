package strutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCutHeader(t *testing.T) {
	value, params := CutHeader(" application/json ;  charset=utf8")
	require.Equal(t, "application/json", value)
	require.Equal(t, "charset=utf8", params)

	value, params = CutHeader("text/plain\t")
	require.Equal(t, "text/plain", value)
	require.Empty(t, params)
}

func TestUnquote(t *testing.T) {
	require.Equal(t, "[::1]:80", Unquote(`"[::1]:80"`))
	require.Equal(t, `"`, Unquote(`"`))
	require.Equal(t, "plain", Unquote("plain"))
}

func TestStripWS(t *testing.T) {
	require.Equal(t, "a b", StripWS(" \ta b\t "))
	require.Empty(t, StripWS("   "))
}
